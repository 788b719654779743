package services

import (
	"log/slog"
	"sync"

	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/domain"
)

// EditConflictWatcher cross-checks remote version updates against the schema
// version currently open in an edit form. It only flags the condition: the
// user's in-progress edits are never discarded and the reload is never
// blocked. Whether to warn, block submission or merge remains a product
// decision; submit-time conflicts resolve last-write-wins at the mutation
// layer.
type EditConflictWatcher struct {
	mu              sync.Mutex
	active          bool
	schemaID        string
	versionID       string
	semanticVersion string
	conflicted      bool
	logger          *slog.Logger
}

// NewEditConflictWatcher creates an inactive watcher.
func NewEditConflictWatcher(logger *slog.Logger) *EditConflictWatcher {
	return &EditConflictWatcher{
		logger: logger.With("component", "edit_conflict_watcher"),
	}
}

// BeginEdit arms the watcher for the given open edit form.
func (w *EditConflictWatcher) BeginEdit(schemaID, versionID, semanticVersion string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = true
	w.schemaID = schemaID
	w.versionID = versionID
	w.semanticVersion = semanticVersion
	w.conflicted = false
}

// EndEdit disarms the watcher when the form is submitted or canceled.
func (w *EditConflictWatcher) EndEdit() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = false
	w.schemaID = ""
	w.versionID = ""
	w.semanticVersion = ""
	w.conflicted = false
}

// Observe checks one actionable message against the open edit. It returns
// true when the message indicates another actor is modifying the same
// version.
func (w *EditConflictWatcher) Observe(msg *domain.ChangeMessage) bool {
	if !IsVersionUpdate(msg) {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.active {
		return false
	}

	match := SameVersion(msg, w.versionID) ||
		(SameSchema(msg, w.schemaID) && SameSemanticVersion(msg, w.semanticVersion))
	if !match {
		return false
	}

	w.conflicted = true
	w.logger.Warn("concurrent edit detected on open schema version",
		"schema_id", w.schemaID,
		"version_id", w.versionID,
		"semantic_version", w.semanticVersion,
		"remote_user", msg.UserID,
	)
	return true
}

// Conflicted reports whether a conflict has been flagged since BeginEdit.
func (w *EditConflictWatcher) Conflicted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conflicted
}
