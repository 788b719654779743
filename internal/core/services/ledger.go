package services

import (
	"log/slog"
	"sync"

	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/domain"
)

// DefaultLedgerCapacity bounds the recent-changes log.
const DefaultLedgerCapacity = 50

// ChangeLedger keeps an in-memory running count of remote changes per entity
// type since the user last opened the notification panel, plus a bounded log
// of recent messages. It never touches the registry snapshot; it exists only
// to drive a badge and a detail panel.
type ChangeLedger struct {
	mu       sync.Mutex
	counts   map[domain.EntityType]int
	latest   map[domain.EntityType]domain.ChangeMessage
	recent   []domain.ChangeMessage
	capacity int
	logger   *slog.Logger
}

// NewChangeLedger creates a ledger with the given recent-log capacity.
// A capacity of zero or less falls back to the default.
func NewChangeLedger(capacity int, logger *slog.Logger) *ChangeLedger {
	if capacity <= 0 {
		capacity = DefaultLedgerCapacity
	}
	return &ChangeLedger{
		counts:   make(map[domain.EntityType]int),
		latest:   make(map[domain.EntityType]domain.ChangeMessage),
		capacity: capacity,
		logger:   logger.With("component", "change_ledger"),
	}
}

// Record registers one actionable remote message. It runs synchronously so
// the ledger is current even while a reload is in flight.
func (l *ChangeLedger) Record(msg *domain.ChangeMessage) {
	entity, ok := msg.Entity()
	if !ok {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.counts[entity]++
	l.latest[entity] = *msg

	l.recent = append(l.recent, *msg)
	if len(l.recent) > l.capacity {
		// Oldest evicted first.
		l.recent = l.recent[len(l.recent)-l.capacity:]
	}

	l.logger.Debug("remote change recorded",
		"entity_type", entity,
		"message_type", msg.Type,
		"entity_id", msg.EntityID,
	)
}

// CountFor returns the unacknowledged count for one entity type.
func (l *ChangeLedger) CountFor(entity domain.EntityType) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[entity]
}

// TotalChangeCount returns the sum of unacknowledged counts across all entity
// types, for the notification badge.
func (l *ChangeLedger) TotalChangeCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := 0
	for _, n := range l.counts {
		total += n
	}
	return total
}

// Latest returns the most recent message recorded for an entity type.
func (l *ChangeLedger) Latest(entity domain.EntityType) (domain.ChangeMessage, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg, ok := l.latest[entity]
	return msg, ok
}

// Recent returns a copy of the recent-changes log, oldest first.
func (l *ChangeLedger) Recent() []domain.ChangeMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.ChangeMessage, len(l.recent))
	copy(out, l.recent)
	return out
}

// Refresh clears the counts after the user opens the notification panel.
// Counts are cleared, not decremented; the recent log stays for the panel.
func (l *ChangeLedger) Refresh() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts = make(map[domain.EntityType]int)
}
