package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/domain"
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/ports"
)

// Reconciler owns the hierarchy view state and re-derives it against a fresh
// snapshot after every actionable remote change.
//
// Reloads are single-flight: the requests channel has capacity one, so any
// number of messages arriving while a reload is in flight collapse into
// exactly one follow-up reload. A failed reload leaves the previous snapshot
// and view state untouched.
type Reconciler struct {
	loader   ports.SnapshotLoader
	logger   *slog.Logger
	requests chan struct{}

	mu       sync.Mutex
	snapshot *domain.Snapshot
	view     domain.ViewState
	loadErr  error
	primed   bool

	onApplied func(*domain.Snapshot)
	onError   func(error)
}

// NewReconciler creates a reconciler with default (empty) view state.
func NewReconciler(loader ports.SnapshotLoader, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		loader:   loader,
		logger:   logger.With("component", "reconciler"),
		requests: make(chan struct{}, 1),
		view:     domain.NewViewState(),
	}
}

// SetOnApplied registers a callback invoked after each snapshot is applied,
// for the UI layer to re-render. Set before Run.
func (r *Reconciler) SetOnApplied(fn func(*domain.Snapshot)) {
	r.onApplied = fn
}

// SetOnError registers a callback for reload failures (banner-level errors,
// distinct from transport state). Set before Run.
func (r *Reconciler) SetOnError(fn func(error)) {
	r.onError = fn
}

// RequestReload schedules a reload. Safe to call from any goroutine and never
// blocks; requests made while a reload is running coalesce into one.
func (r *Reconciler) RequestReload() {
	select {
	case r.requests <- struct{}{}:
	default:
		// A reload is already pending; this request rides along with it.
	}
}

// Run processes reload requests until the context is canceled. This MUST be
// run as a goroutine.
func (r *Reconciler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.requests:
			r.reload(ctx)
		}
	}
}

func (r *Reconciler) reload(ctx context.Context) {
	snap, err := r.loader.Load(ctx)
	if err != nil {
		r.mu.Lock()
		r.loadErr = err
		r.mu.Unlock()

		r.logger.Error("snapshot reload failed, keeping previous state", "error", err)
		if r.onError != nil {
			r.onError(err)
		}
		return
	}

	r.Apply(snap)
}

// Apply replaces the snapshot and re-derives view state against it by ID
// lookup. Applying the same snapshot twice is a no-op for the view state.
// A superseded reload's result is still applied; snapshots are idempotent.
func (r *Reconciler) Apply(snap *domain.Snapshot) {
	snap.Normalize()

	r.mu.Lock()

	for id := range r.view.Expanded {
		if !snap.ContainsID(id) {
			delete(r.view.Expanded, id)
		}
	}
	if r.view.Selected != nil && !snap.ContainsID(r.view.Selected.ID) {
		r.logger.Debug("selected item vanished from snapshot", "id", r.view.Selected.ID)
		r.view.Selected = nil
	}
	if r.view.Pinned != nil && !snap.ContainsID(r.view.Pinned.ID) {
		r.logger.Debug("pinned item vanished from snapshot", "id", r.view.Pinned.ID)
		r.view.Pinned = nil
	}

	if !r.primed && len(snap.Products) > 0 {
		r.expandFirstPath(snap)
		r.primed = true
	}

	r.snapshot = snap
	r.loadErr = nil
	r.mu.Unlock()

	if r.onApplied != nil {
		r.onApplied(snap)
	}
}

// expandFirstPath auto-expands the first product/domain/context so a fresh
// session opens onto something useful. Caller holds the lock.
func (r *Reconciler) expandFirstPath(snap *domain.Snapshot) {
	product := &snap.Products[0]
	r.view.Expanded[product.ID] = true
	if len(product.Domains) == 0 {
		return
	}
	dom := &product.Domains[0]
	r.view.Expanded[dom.ID] = true
	if len(dom.Contexts) > 0 {
		r.view.Expanded[dom.Contexts[0].ID] = true
	}
}

// Snapshot returns the most recently applied snapshot, or nil before the
// first successful load.
func (r *Reconciler) Snapshot() *domain.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot
}

// View returns a copy of the current view state.
func (r *Reconciler) View() domain.ViewState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view.Clone()
}

// LastError returns the most recent reload failure, or nil after a success.
func (r *Reconciler) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadErr
}

// ToggleExpanded flips a node's expansion. User interactions and
// reconciliation both serialize on the reconciler's lock, so a toggle that
// lands between message receipt and reload completion is never lost.
func (r *Reconciler) ToggleExpanded(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.view.Expanded[id] {
		delete(r.view.Expanded, id)
	} else {
		r.view.Expanded[id] = true
	}
}

// Select records the current selection by type and ID.
func (r *Reconciler) Select(entity domain.EntityType, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view.Selected = &domain.SelectedItem{Type: entity, ID: id}
}

// ClearSelection drops the current selection.
func (r *Reconciler) ClearSelection() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view.Selected = nil
}

// Pin restricts the tree view to the subtree rooted at the given entity.
func (r *Reconciler) Pin(entity domain.EntityType, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view.Pinned = &domain.PinnedItem{Type: entity, ID: id}
}

// Unpin restores the full tree view.
func (r *Reconciler) Unpin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view.Pinned = nil
}

// SetStatusVisible toggles visibility of versions with the given status.
func (r *Reconciler) SetStatusVisible(status domain.VersionStatus, visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.view.StatusFilter[status] = visible
}
