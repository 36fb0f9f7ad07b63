package websocket

import (
	"sync"

	"journey-chat/internal/metrics"
)

// Hub tracks the connections of this instance, the rooms they joined and
// the private per-user channel of each connection.
type Hub struct {
	mu sync.RWMutex

	// clients maps connection id to client
	clients map[string]*Client

	// rooms maps room id to the set of joined clients
	rooms map[string]map[*Client]struct{}

	// users maps user id to that user's connections
	users map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[*Client]struct{}),
		users:   make(map[string]map[*Client]struct{}),
	}
}

// Register adds a client and joins it to its private user channel.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	if _, ok := h.users[client.UserID]; !ok {
		h.users[client.UserID] = make(map[*Client]struct{})
	}
	h.users[client.UserID][client] = struct{}{}
	metrics.WebsocketConnections.Inc()
}

// Unregister drops a client and every room membership it held, then closes
// its outbound queue.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.ID]; !ok {
		h.mu.Unlock()
		return
	}
	for roomID := range client.rooms {
		h.removeMember(roomID, client)
	}
	client.rooms = make(map[string]bool)

	if conns, ok := h.users[client.UserID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.users, client.UserID)
		}
	}
	delete(h.clients, client.ID)
	h.mu.Unlock()

	metrics.WebsocketConnections.Dec()
	client.closeSend()
}

// Join adds client to roomID. Joining twice is a no-op.
func (h *Hub) Join(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]struct{})
	}
	h.rooms[roomID][client] = struct{}{}
	client.rooms[roomID] = true
}

// Leave removes client from roomID and reports whether it was a member.
func (h *Hub) Leave(client *Client, roomID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !client.rooms[roomID] {
		return false
	}
	h.removeMember(roomID, client)
	delete(client.rooms, roomID)
	return true
}

// removeMember must be called with the lock held.
func (h *Hub) removeMember(roomID string, client *Client) {
	if members, ok := h.rooms[roomID]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

func (h *Hub) IsMember(client *Client, roomID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return client.rooms[roomID]
}

// BroadcastRoom queues frame for every member of roomID except the given
// client, which may be nil.
func (h *Hub) BroadcastRoom(roomID string, frame []byte, except *Client) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for c := range h.rooms[roomID] {
		if c == except {
			continue
		}
		if c.SendMessage(frame) {
			sent++
		}
	}
	return sent
}

// SendToUser queues frame on every local connection of userID.
func (h *Hub) SendToUser(userID string, frame []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for c := range h.users[userID] {
		if c.SendMessage(frame) {
			sent++
		}
	}
	return sent
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}
