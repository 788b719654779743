package realtime

import (
	"log/slog"

	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/domain"
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/services"
)

// Transport is the outbound half of a room connection, as the session sees
// it. *Conn satisfies it; tests substitute a fake.
type Transport interface {
	Send(msg domain.ChangeMessage)
	IsConnected() bool
}

// Session ties one editor's room connection to its local state: the
// notification ledger, the reconciler that refreshes the hierarchy, and the
// watcher that flags concurrent edits. Handle it every message the transport
// delivers.
type Session struct {
	transport Transport
	userID    string
	ledger    *services.ChangeLedger
	rec       *services.Reconciler
	watcher   *services.EditConflictWatcher
	logger    *slog.Logger
}

// NewSession creates a session for the given user.
func NewSession(
	transport Transport,
	userID string,
	ledger *services.ChangeLedger,
	rec *services.Reconciler,
	watcher *services.EditConflictWatcher,
	logger *slog.Logger,
) *Session {
	return &Session{
		transport: transport,
		userID:    userID,
		ledger:    ledger,
		rec:       rec,
		watcher:   watcher,
		logger:    logger.With("component", "session"),
	}
}

// HandleMessage processes one incoming change message. Non-actionable
// messages (our own, echoed back) are ignored entirely; actionable ones are
// counted synchronously, checked against any open edit, and trigger a
// coalesced snapshot reload.
func (s *Session) HandleMessage(msg *domain.ChangeMessage) {
	if !msg.IsWellFormed() {
		s.logger.Warn("dropping malformed change message", "message_type", msg.Type)
		return
	}

	if !services.IsActionable(msg, s.userID) {
		s.logger.Debug("ignoring self-originated message", "message_type", msg.Type)
		return
	}

	s.ledger.Record(msg)
	s.watcher.Observe(msg)
	s.rec.RequestReload()
}

// Send publishes a local change to the room.
func (s *Session) Send(msg domain.ChangeMessage) {
	s.transport.Send(msg)
}

// IsConnected reports the transport state for the connection indicator.
func (s *Session) IsConnected() bool {
	return s.transport.IsConnected()
}

// TotalChangeCount returns the unacknowledged remote-change count.
func (s *Session) TotalChangeCount() int {
	return s.ledger.TotalChangeCount()
}

// RecentChanges returns the recent remote changes, oldest first.
func (s *Session) RecentChanges() []domain.ChangeMessage {
	return s.ledger.Recent()
}

// AcknowledgeChanges clears the notification counts, as when the user opens
// the notification panel.
func (s *Session) AcknowledgeChanges() {
	s.ledger.Refresh()
}

// Snapshot returns the current registry snapshot.
func (s *Session) Snapshot() *domain.Snapshot {
	return s.rec.Snapshot()
}

// View returns a copy of the current view state.
func (s *Session) View() domain.ViewState {
	return s.rec.View()
}

// BeginEdit arms conflict detection for an open version edit form.
func (s *Session) BeginEdit(schemaID, versionID, semanticVersion string) {
	s.watcher.BeginEdit(schemaID, versionID, semanticVersion)
}

// EndEdit disarms conflict detection.
func (s *Session) EndEdit() {
	s.watcher.EndEdit()
}

// EditConflicted reports whether the open edit has seen a remote conflict.
func (s *Session) EditConflicted() bool {
	return s.watcher.Conflicted()
}
