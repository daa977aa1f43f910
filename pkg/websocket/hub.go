package websocket

import (
	"encoding/json"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pasugo/pkg/logger"
)

// Hub tracks realtime clients grouped into conversation rooms. Each
// user holds at most one client per room; a reconnect replaces the
// previous channel.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[primitive.ObjectID]map[primitive.ObjectID]*Client
	logger *logger.Logger
}

func NewHub() *Hub {
	return &Hub{
		rooms:  make(map[primitive.ObjectID]map[primitive.ObjectID]*Client),
		logger: logger.GetLogger(),
	}
}

// Join registers the client in its room, closing any channel the same
// user already held there.
func (h *Hub) Join(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.conversationID]
	if !ok {
		room = make(map[primitive.ObjectID]*Client)
		h.rooms[client.conversationID] = room
	}
	previous := room[client.userID]
	room[client.userID] = client
	h.mu.Unlock()

	if previous != nil {
		previous.closeSend()
	}
	h.logger.LogWebSocketEvent(client.conversationID.Hex(), client.userID.Hex(), "joined")
}

// Leave removes the client if it is still the registered channel for
// its user. A stale client from before a reconnect is ignored.
func (h *Hub) Leave(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.conversationID]
	if ok && room[client.userID] == client {
		delete(room, client.userID)
		if len(room) == 0 {
			delete(h.rooms, client.conversationID)
		}
	}
	h.mu.Unlock()

	h.logger.LogWebSocketEvent(client.conversationID.Hex(), client.userID.Hex(), "left")
}

// Broadcast sends the event to every member of the room except those in
// exclude. Slow clients are skipped rather than blocked on.
func (h *Hub) Broadcast(conversationID primitive.ObjectID, event Event, exclude ...primitive.ObjectID) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.WithError(err).Error("failed to encode broadcast event")
		return
	}

	skip := make(map[primitive.ObjectID]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[conversationID]))
	for userID, client := range h.rooms[conversationID] {
		if _, excluded := skip[userID]; excluded {
			continue
		}
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		client.trySend(payload)
	}
}

// SendTo delivers the event to a single user in the room, if connected.
func (h *Hub) SendTo(conversationID, userID primitive.ObjectID, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.WithError(err).Error("failed to encode event")
		return
	}

	h.mu.RLock()
	client := h.rooms[conversationID][userID]
	h.mu.RUnlock()

	if client != nil {
		client.trySend(payload)
	}
}

// RoomMembers returns the user ids currently connected to the room.
func (h *Hub) RoomMembers(conversationID primitive.ObjectID) []primitive.ObjectID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := make([]primitive.ObjectID, 0, len(h.rooms[conversationID]))
	for userID := range h.rooms[conversationID] {
		members = append(members, userID)
	}
	return members
}

// IsConnected reports whether the user has a live channel in the room.
func (h *Hub) IsConnected(conversationID, userID primitive.ObjectID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[conversationID][userID]
	return ok
}
