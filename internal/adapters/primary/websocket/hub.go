package websocket

import (
	"log/slog"
	"sync"

	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/domain"
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/ports"
)

// roomMessage pairs a change message with its destination room.
type roomMessage struct {
	room string
	msg  domain.ChangeMessage
}

// Hub maintains the set of active Clients grouped by registry room and fans
// change messages out to them. A room is "{tenantId}-{registryId}"; a client
// joins exactly one room for its connection lifetime.
type Hub struct {
	// rooms maps room IDs to subscribed clients.
	rooms map[string]map[*Client]bool

	broadcast chan roomMessage

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// mu protects the rooms map
	mu sync.RWMutex

	logger *slog.Logger
}

// Ensure Hub implements the ChangeBroadcaster interface.
var _ ports.ChangeBroadcaster = (*Hub)(nil)

// NewHub creates a new WebSocket hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan roomMessage, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     logger.With("component", "websocket_hub"),
	}
}

// Broadcast queues a change message for every client in the room, including
// any session owned by the originating user; receivers suppress their own
// messages by userId.
func (h *Hub) Broadcast(room string, msg domain.ChangeMessage) error {
	select {
	case h.broadcast <- roomMessage{room: room, msg: msg}:
		return nil
	default:
		h.logger.Warn("broadcast channel full, dropping message",
			"message_type", msg.Type,
			"room", room,
		)
		return nil
	}
}

// Run starts the hub's event loop. This MUST be run as a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case rm := <-h.broadcast:
			h.broadcastToRoom(rm.room, rm.msg)
		}
	}
}

// registerClient adds a client to its room
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[client.Room] == nil {
		h.rooms[client.Room] = make(map[*Client]bool)
	}
	h.rooms[client.Room][client] = true

	h.logger.Info("client registered",
		"user_id", client.UserID,
		"room", client.Room,
		"room_size", len(h.rooms[client.Room]),
	)
}

// unregisterClient removes a client from its room
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[client.Room]; ok {
		if _, exists := room[client]; exists {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, client.Room)
			}
		}
	}

	client.CloseSend()

	h.logger.Info("client unregistered",
		"user_id", client.UserID,
		"room", client.Room,
	)
}

// broadcastToRoom sends a message to all clients in the room
func (h *Hub) broadcastToRoom(roomID string, msg domain.ChangeMessage) {
	h.mu.RLock()
	room, ok := h.rooms[roomID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	// Copy the client list to avoid holding the lock while sending
	clients := make([]*Client, 0, len(room))
	for client := range room {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	h.logger.Debug("broadcasting change",
		"message_type", msg.Type,
		"room", roomID,
		"client_count", len(clients),
	)

	for _, client := range clients {
		select {
		case client.Send <- msg:
			// Successfully queued
		default:
			// Client's send buffer is full. Unregister directly: sending on
			// h.Unregister here would block forever, since Run is the only
			// receiver and it is the caller of this method.
			h.logger.Warn("client send buffer full, unregistering",
				"user_id", client.UserID,
				"room", roomID,
			)
			h.unregisterClient(client)
		}
	}
}

// GetClientCount returns the total number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, room := range h.rooms {
		count += len(room)
	}
	return count
}

// GetRoomCount returns the number of active rooms
func (h *Hub) GetRoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// GetClientsInRoom returns the number of clients in a room
func (h *Hub) GetClientsInRoom(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if room, ok := h.rooms[roomID]; ok {
		return len(room)
	}
	return 0
}
