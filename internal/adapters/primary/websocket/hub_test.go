package websocket

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(hub *Hub, userID, room string) *Client {
	return &Client{
		Hub:    hub,
		Send:   make(chan domain.ChangeMessage, 256),
		UserID: userID,
		Room:   room,
		logger: testLogger(),
	}
}

func waitForClients(t *testing.T, hub *Hub, room string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.GetClientsInRoom(room) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("room %s never reached %d clients", room, want)
}

func receive(t *testing.T, c *Client) domain.ChangeMessage {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return domain.ChangeMessage{}
	}
}

func TestHub_BroadcastIsScopedToRoom(t *testing.T) {
	hub := NewHub(testLogger())
	go hub.Run()

	roomA := domain.RoomID("tenant-1", "reg-1")
	roomB := domain.RoomID("tenant-1", "reg-2")

	alice := newTestClient(hub, "alice", roomA)
	bob := newTestClient(hub, "bob", roomA)
	carol := newTestClient(hub, "carol", roomB)

	hub.Register <- alice
	hub.Register <- bob
	hub.Register <- carol
	waitForClients(t, hub, roomA, 2)
	waitForClients(t, hub, roomB, 1)

	msg := domain.NewChangeMessage(domain.EntitySchema, domain.OpCreated, "s-1", nil)
	msg.UserID = "alice"
	require.NoError(t, hub.Broadcast(roomA, msg))

	got := receive(t, alice)
	assert.Equal(t, "schema_created", got.Type)
	got = receive(t, bob)
	assert.Equal(t, "s-1", got.EntityID)

	select {
	case leaked := <-carol.Send:
		t.Fatalf("message leaked into another room: %+v", leaked)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_SenderSessionAlsoReceives(t *testing.T) {
	// Suppression happens at the receiver by userId, not at the hub; every
	// session in the room gets the message, the originator's included.
	hub := NewHub(testLogger())
	go hub.Run()

	room := domain.RoomID("tenant-1", "reg-1")
	alice := newTestClient(hub, "alice", room)
	hub.Register <- alice
	waitForClients(t, hub, room, 1)

	msg := domain.NewChangeMessage(domain.EntityProduct, domain.OpUpdated, "p-1", nil)
	msg.UserID = "alice"
	require.NoError(t, hub.Broadcast(room, msg))

	got := receive(t, alice)
	assert.Equal(t, "alice", got.UserID)
}

func TestHub_UnregisterRemovesClientAndClosesSend(t *testing.T) {
	hub := NewHub(testLogger())
	go hub.Run()

	room := domain.RoomID("tenant-1", "reg-1")
	client := newTestClient(hub, "alice", room)

	hub.Register <- client
	waitForClients(t, hub, room, 1)

	hub.Unregister <- client
	waitForClients(t, hub, room, 0)
	assert.Equal(t, 0, hub.GetRoomCount())

	select {
	case _, open := <-client.Send:
		assert.False(t, open, "send channel should be closed")
	case <-time.After(2 * time.Second):
		t.Fatal("send channel never closed")
	}
}

func TestHub_SlowClientIsDroppedWithoutStallingTheHub(t *testing.T) {
	// A client that stops draining its Send buffer gets unregistered during
	// the broadcast itself; the hub loop must stay responsive afterwards.
	hub := NewHub(testLogger())
	go hub.Run()

	room := domain.RoomID("tenant-1", "reg-1")
	slow := &Client{
		Hub:    hub,
		Send:   make(chan domain.ChangeMessage, 1),
		UserID: "slow",
		Room:   room,
		logger: testLogger(),
	}

	hub.Register <- slow
	waitForClients(t, hub, room, 1)

	// First message fills the buffer, second overflows it.
	msg := domain.NewChangeMessage(domain.EntityProduct, domain.OpCreated, "p-1", nil)
	require.NoError(t, hub.Broadcast(room, msg))
	require.NoError(t, hub.Broadcast(room, msg))
	waitForClients(t, hub, room, 0)

	// The hub must still accept registrations and deliver broadcasts.
	live := newTestClient(hub, "live", room)
	select {
	case hub.Register <- live:
	case <-time.After(2 * time.Second):
		t.Fatal("hub stopped accepting registrations after dropping a slow client")
	}
	waitForClients(t, hub, room, 1)

	require.NoError(t, hub.Broadcast(room, msg))
	got := receive(t, live)
	assert.Equal(t, "product_created", got.Type)
}

func TestHub_BroadcastToEmptyRoomIsNoop(t *testing.T) {
	hub := NewHub(testLogger())
	go hub.Run()

	msg := domain.NewChangeMessage(domain.EntitySchema, domain.OpDeleted, "s-1", nil)
	assert.NoError(t, hub.Broadcast("tenant-1-reg-1", msg))
	assert.Equal(t, 0, hub.GetClientCount())
}
