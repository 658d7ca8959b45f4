package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/voidkat/astrotype-backend/internal"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one connected websocket session. Writes are serialized through
// the client's own mutex; gorilla connections do not allow concurrent writers.
type Client struct {
	Id       string
	Username string
	Conn     *websocket.Conn

	mu sync.Mutex
}

func (c *Client) SafeWriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteJSON(v)
}

// Hub tracks live connections and room membership, and implements the match
// engine's Broadcaster port. Delivery is best-effort: write errors are logged
// and the read loop's own error path handles the dead connection.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.Id] = c
}

func (h *Hub) unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, clientID)
	for roomID, members := range h.rooms {
		delete(members, clientID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// JoinRoom implements internal.Broadcaster.
func (h *Hub) JoinRoom(roomID, playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[playerID]
	if !ok {
		return
	}
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[string]*Client)
	}
	h.rooms[roomID][playerID] = c
}

// ToRoom implements internal.Broadcaster.
func (h *Hub) ToRoom(roomID string, msg any) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[roomID]))
	for _, c := range h.rooms[roomID] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	for _, c := range members {
		if err := c.SafeWriteJSON(msg); err != nil {
			log.Printf("[ToRoom] room=%s: write to %s failed: %v", roomID, c.Id, err)
		}
	}
}

// ToPlayer implements internal.Broadcaster.
func (h *Hub) ToPlayer(playerID string, msg any) {
	h.mu.RLock()
	c, ok := h.clients[playerID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if err := c.SafeWriteJSON(msg); err != nil {
		log.Printf("[ToPlayer] write to %s failed: %v", playerID, err)
	}
}

// =============================================================================
// WEBSOCKET CONNECTION HANDLING
// =============================================================================

type keystrokePayload struct {
	Ch string `json:"ch"`
}

type hintPayload struct {
	Prefix string `json:"prefix"`
}

type joinPayload struct {
	Username string `json:"username"`
}

// HandleWebSocket upgrades the connection and starts the session read loop.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade failed: ", err)
		return
	}

	username := r.URL.Query().Get("username")
	if username == "" {
		username = "Anonymous"
	}

	client := &Client{
		Id:       uuid.NewString(),
		Username: username,
		Conn:     conn,
	}
	s.hub.register(client)

	if err := client.SafeWriteJSON(internal.Message[map[string]string]{
		Type: "connected",
		Data: map[string]string{"sid": client.Id},
	}); err != nil {
		log.Printf("[HandleWebSocket] handshake write to %s failed: %v", client.Id, err)
		s.hub.unregister(client.Id)
		conn.Close()
		return
	}

	go s.handleMessages(client)
}

// handleMessages routes inbound events for one session until the connection
// drops, then marks the player forfeited.
func (s *Server) handleMessages(client *Client) {
	defer func() {
		client.Conn.Close()
		s.hub.unregister(client.Id)
		s.mm.RemoveClient(client.Id)
	}()
	log.Printf("Started message handler for client: %s (%s)", client.Id, client.Username)

	for {
		_, rawMessage, err := client.Conn.ReadMessage()
		if err != nil {
			log.Printf("Read error for client %s: %v", client.Id, err)
			break
		}

		var baseMsg internal.Message[json.RawMessage]
		if err := json.Unmarshal(rawMessage, &baseMsg); err != nil {
			log.Printf("Failed to parse base message: %v", err)
			continue
		}

		switch baseMsg.Type {
		case "join_queue":
			var payload joinPayload
			if err := json.Unmarshal(baseMsg.Data, &payload); err == nil && payload.Username != "" {
				client.Username = payload.Username
			}
			s.mm.Enqueue(client.Id, client.Username)
		case "mark_ready":
			s.mm.MarkReady(client.Id)
		case "keystroke":
			var payload keystrokePayload
			if err := json.Unmarshal(baseMsg.Data, &payload); err != nil {
				log.Println("Error parsing keystroke payload:", err)
				continue
			}
			s.mm.HandleKeystroke(client.Id, payload.Ch)
		case "hint_request":
			var payload hintPayload
			if err := json.Unmarshal(baseMsg.Data, &payload); err != nil {
				log.Println("Error parsing hint payload:", err)
				continue
			}
			s.mm.HandleHint(client.Id, payload.Prefix)
		}
	}
}
