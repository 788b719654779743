package realtime

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/domain"
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/mocks"
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTransport struct {
	sent      []domain.ChangeMessage
	connected bool
}

func (f *fakeTransport) Send(msg domain.ChangeMessage) { f.sent = append(f.sent, msg) }
func (f *fakeTransport) IsConnected() bool             { return f.connected }

func newTestSession(t *testing.T, userID string) (*Session, *fakeTransport, *atomic.Int32) {
	t.Helper()

	var loads atomic.Int32
	loader := mocks.NewMockSnapshotLoader()
	loader.On("Load", mock.Anything).Run(func(args mock.Arguments) {
		loads.Add(1)
	}).Return(&domain.Snapshot{RegistryID: "reg-1"}, nil)

	transport := &fakeTransport{connected: true}
	ledger := services.NewChangeLedger(10, testLogger())
	watcher := services.NewEditConflictWatcher(testLogger())
	rec := services.NewReconciler(loader, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go rec.Run(ctx)

	return NewSession(transport, userID, ledger, rec, watcher, testLogger()), transport, &loads
}

func remoteMessage(msgType, entityID, userID string) *domain.ChangeMessage {
	entity := domain.EntitySchema
	return &domain.ChangeMessage{
		Type:       msgType,
		EntityID:   entityID,
		EntityType: string(entity),
		Timestamp:  time.Now().UTC().Format(domain.TimestampLayout),
		UserID:     userID,
		Source:     domain.SourceClient,
	}
}

func waitForLoads(t *testing.T, loads *atomic.Int32, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if loads.Load() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d reloads, saw %d", want, loads.Load())
}

func TestSession_ActionableMessageCountsAndReloads(t *testing.T) {
	session, _, loads := newTestSession(t, "user-a")

	session.HandleMessage(remoteMessage("schema_created", "s-1", "user-b"))

	assert.Equal(t, 1, session.TotalChangeCount())
	waitForLoads(t, loads, 1)
	require.NotNil(t, session.Snapshot())
	assert.Equal(t, "reg-1", session.Snapshot().RegistryID)
}

func TestSession_SelfOriginatedMessageIgnored(t *testing.T) {
	session, _, loads := newTestSession(t, "user-a")

	session.HandleMessage(remoteMessage("schema_created", "s-1", "user-a"))

	assert.Equal(t, 0, session.TotalChangeCount())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), loads.Load())
}

func TestSession_MalformedMessageDropped(t *testing.T) {
	session, _, loads := newTestSession(t, "user-a")

	session.HandleMessage(&domain.ChangeMessage{Type: "widget_created", EntityID: "x"})

	assert.Equal(t, 0, session.TotalChangeCount())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), loads.Load())
}

func TestSession_EditConflictFlaggedNotBlocked(t *testing.T) {
	session, _, loads := newTestSession(t, "user-a")

	session.BeginEdit("s-1", "v-1", "1.0.0")

	msg := remoteMessage("schema_version_updated", "v-1", "user-b")
	msg.EntityType = "schema_version"
	session.HandleMessage(msg)

	assert.True(t, session.EditConflicted())
	// The conflict flags but never suppresses reconciliation or counting.
	assert.Equal(t, 1, session.TotalChangeCount())
	waitForLoads(t, loads, 1)

	session.EndEdit()
	assert.False(t, session.EditConflicted())
}

func TestSession_AcknowledgeChanges(t *testing.T) {
	session, _, _ := newTestSession(t, "user-a")

	session.HandleMessage(remoteMessage("schema_created", "s-1", "user-b"))
	session.HandleMessage(remoteMessage("schema_updated", "s-1", "user-b"))
	require.Equal(t, 2, session.TotalChangeCount())

	session.AcknowledgeChanges()

	assert.Equal(t, 0, session.TotalChangeCount())
	assert.Len(t, session.RecentChanges(), 2)
}

func TestSession_SendDelegatesToTransport(t *testing.T) {
	session, transport, _ := newTestSession(t, "user-a")

	msg := domain.NewChangeMessage(domain.EntitySchema, domain.OpCreated, "s-1", nil)
	session.Send(msg)

	require.Len(t, transport.sent, 1)
	assert.Equal(t, "schema_created", transport.sent[0].Type)
	assert.True(t, session.IsConnected())
}
