package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// EventWelcome is the first event a connection receives
const EventWelcome = "session:welcome"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the envelope of every frame, both ways
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Welcome is the payload of EventWelcome
type Welcome struct {
	PlayerID string `json:"player_id"`
	Token    string `json:"token"`
}

// Tokens issues and checks the tokens players reconnect with
type Tokens interface {
	Issue(playerID, name string) (string, error)
	Verify(token string) (playerID, name string, err error)
}

// Client is one player's connection
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	playerID string

	mu   sync.Mutex
	name string
}

// Name is the display name the player last announced
func (c *Client) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

func (c *Client) setName(name string) {
	if name == "" {
		return
	}
	c.mu.Lock()
	c.name = name
	c.mu.Unlock()
}

// Hub tracks one connection per player and the rooms players are joined
// to. It implements the service notifier.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client         // player id -> connection
	rooms   map[string]map[string]bool // room id -> player ids
	joined  map[string]string          // player id -> room id

	tokens     Tokens
	dispatcher *Dispatcher
}

// NewHub creates a new WebSocket hub
func NewHub(tokens Tokens) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]bool),
		joined:  make(map[string]string),
		tokens:  tokens,
	}
}

// Bind routes inbound events to d. It must be called before serving.
func (h *Hub) Bind(d *Dispatcher) {
	h.dispatcher = d
}

// ServeWS upgrades the request. A valid ?token= resumes the player it was
// issued to; otherwise a new player id is assigned.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID, name, resumed := "", "", false
	if token := r.URL.Query().Get("token"); token != "" {
		id, n, err := h.tokens.Verify(token)
		if err != nil {
			log.Debug().Err(err).Msg("ignoring invalid reconnect token")
		} else {
			playerID, name, resumed = id, n, true
		}
	}
	if playerID == "" {
		playerID = uuid.NewString()
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, 256),
		playerID: playerID,
		name:     name,
	}
	h.registerClient(client)

	go client.writePump()

	token, err := h.tokens.Issue(playerID, name)
	if err != nil {
		log.Error().Err(err).Str("player_id", playerID).Msg("failed to issue token")
	}
	h.EmitToPlayer(playerID, EventWelcome, Welcome{PlayerID: playerID, Token: token})
	if resumed && h.dispatcher != nil {
		h.dispatcher.Reconnected(playerID)
	}

	go client.readPump()
}

// registerClient makes client the player's connection, closing any older one
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.clients[client.playerID]; ok {
		close(old.send)
	}
	h.clients[client.playerID] = client
	log.Info().Str("player_id", client.playerID).Int("clients", len(h.clients)).Msg("client registered")
}

// unregisterClient forgets client. It reports false when a newer connection
// already replaced it.
func (h *Hub) unregisterClient(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.playerID] != client {
		return false
	}
	delete(h.clients, client.playerID)
	close(client.send)
	log.Info().Str("player_id", client.playerID).Int("clients", len(h.clients)).Msg("client unregistered")
	return true
}

// Client returns the connection of a player
func (h *Hub) Client(playerID string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[playerID]
	return c, ok
}

func encode(event string, data any) ([]byte, bool) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("failed to marshal event")
		return nil, false
	}
	frame, err := json.Marshal(Message{Event: event, Data: payload})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("failed to marshal message")
		return nil, false
	}
	return frame, true
}

// deliver queues a frame; a client that cannot keep up is dropped.
// Called with h.mu held for reading.
func (h *Hub) deliver(playerID string, frame []byte) {
	client, ok := h.clients[playerID]
	if !ok {
		return
	}
	select {
	case client.send <- frame:
	default:
		log.Warn().Str("player_id", playerID).Msg("send buffer full, closing connection")
		go client.conn.Close()
	}
}

// EmitToPlayer sends an event to one player
func (h *Hub) EmitToPlayer(playerID, event string, data any) {
	frame, ok := encode(event, data)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.deliver(playerID, frame)
}

// EmitToRoom sends an event to every player joined to a room
func (h *Hub) EmitToRoom(roomID, event string, data any) {
	h.EmitToRoomExcept(roomID, "", event, data)
}

// EmitToRoomExcept sends an event to a room, skipping one player
func (h *Hub) EmitToRoomExcept(roomID, exceptPlayerID, event string, data any) {
	frame, ok := encode(event, data)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for playerID := range h.rooms[roomID] {
		if playerID != exceptPlayerID {
			h.deliver(playerID, frame)
		}
	}
}

// EmitToIdle sends an event to every connected player outside a room
func (h *Hub) EmitToIdle(event string, data any) {
	frame, ok := encode(event, data)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for playerID := range h.clients {
		if _, busy := h.joined[playerID]; !busy {
			h.deliver(playerID, frame)
		}
	}
}

// JoinRoom adds players to a room, leaving any room they were in
func (h *Hub) JoinRoom(roomID string, playerIDs ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, id := range playerIDs {
		if previous, ok := h.joined[id]; ok && previous != roomID {
			h.leaveLocked(previous, id)
		}
		if h.rooms[roomID] == nil {
			h.rooms[roomID] = make(map[string]bool)
		}
		h.rooms[roomID][id] = true
		h.joined[id] = roomID
	}
}

// LeaveRoom removes players from a room
func (h *Hub) LeaveRoom(roomID string, playerIDs ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, id := range playerIDs {
		h.leaveLocked(roomID, id)
	}
}

func (h *Hub) leaveLocked(roomID, playerID string) {
	members, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(members, playerID)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
	if h.joined[playerID] == roomID {
		delete(h.joined, playerID)
	}
}

// RoomOf returns the room a player is joined to
func (h *Hub) RoomOf(playerID string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	id, ok := h.joined[playerID]
	return id, ok
}

// readPump pumps messages from the WebSocket connection to the dispatcher
func (c *Client) readPump() {
	defer func() {
		if c.hub.unregisterClient(c) && c.hub.dispatcher != nil {
			c.hub.dispatcher.Disconnected(c.playerID)
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("player_id", c.playerID).Msg("websocket error")
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Debug().Err(err).Str("player_id", c.playerID).Msg("dropping malformed frame")
			continue
		}
		if c.hub.dispatcher != nil {
			c.hub.dispatcher.Dispatch(c, msg)
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection. Each
// frame is its own websocket message.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
