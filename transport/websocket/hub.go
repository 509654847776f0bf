package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/mcp-training/tilekingdoms/game/engine"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Pending broadcasts buffered before senders block.
	broadcastBuffer = 64

	// Frames queued per client before it is dropped as too slow.
	clientBuffer = 256
)

// ActionResync asks the hub to resend the latest snapshot of the session
const ActionResync = "resync"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		return true
	},
}

// clientRequest is the only frame a watcher may send
type clientRequest struct {
	Action string `json:"action"`
}

// Client is one watcher of a session
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// Hub fans session frames out to watchers. All maps below are owned by
// the Run goroutine.
type Hub struct {
	sessions map[string]map[*Client]bool

	// seq is the last sequence number issued per session
	seq map[string]int64

	// latest is the most recent encoded frame carrying a game state
	latest map[string][]byte

	broadcast    chan *Message
	register     chan *Client
	unregister   chan *Client
	resync       chan *Client
	closeSession chan string
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		sessions:     make(map[string]map[*Client]bool),
		seq:          make(map[string]int64),
		latest:       make(map[string][]byte),
		broadcast:    make(chan *Message, broadcastBuffer),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		resync:       make(chan *Client),
		closeSession: make(chan string),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case client := <-h.resync:
			h.sendLatest(client)

		case sessionID := <-h.closeSession:
			h.dropSession(sessionID)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS upgrades the request and attaches the connection to sessionID
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, clientBuffer),
		sessionID: sessionID,
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastToSession sends a bare snapshot, used after resets
func (h *Hub) BroadcastToSession(sessionID string, state *engine.GameState) {
	h.broadcast <- &Message{
		SessionID: sessionID,
		Event:     EventState,
		GameState: state,
	}
}

// BroadcastTurn sends the turn frame for plays and, when the match just
// ended, a game_over frame with the final standings.
func (h *Hub) BroadcastTurn(sessionID string, state *engine.GameState, plays []TurnPlay) {
	h.broadcast <- NewTurnMessage(sessionID, state, plays)
	if state != nil && state.GameOver {
		h.broadcast <- NewGameOverMessage(sessionID, state)
	}
}

// CloseSession disconnects every watcher of sessionID and forgets its
// cached snapshot
func (h *Hub) CloseSession(sessionID string) {
	h.closeSession <- sessionID
}

// registerClient adds a client to a session and replays the latest snapshot
func (h *Hub) registerClient(client *Client) {
	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	log.Printf("Client registered for session %s (total clients: %d)",
		client.sessionID, len(h.sessions[client.sessionID]))

	h.sendLatest(client)
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	clients, ok := h.sessions[client.sessionID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)

	if len(clients) == 0 {
		delete(h.sessions, client.sessionID)
	}

	log.Printf("Client unregistered from session %s (remaining clients: %d)",
		client.sessionID, len(clients))
}

// dropSession closes all watchers of a deleted session
func (h *Hub) dropSession(sessionID string) {
	for client := range h.sessions[sessionID] {
		close(client.send)
	}
	n := len(h.sessions[sessionID])
	delete(h.sessions, sessionID)
	delete(h.latest, sessionID)
	delete(h.seq, sessionID)

	log.Printf("Session %s closed (%d watchers disconnected)", sessionID, n)
}

// sendLatest queues the cached snapshot for one client, if any
func (h *Hub) sendLatest(client *Client) {
	data, ok := h.latest[client.sessionID]
	if !ok || !h.sessions[client.sessionID][client] {
		return
	}
	select {
	case client.send <- data:
	default:
		h.unregisterClient(client)
	}
}

// broadcastMessage stamps the next sequence number and fans the frame out
func (h *Hub) broadcastMessage(message *Message) {
	h.seq[message.SessionID]++
	message.Seq = h.seq[message.SessionID]

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal broadcast message: %v", err)
		return
	}
	if message.GameState != nil {
		h.latest[message.SessionID] = data
	}

	for client := range h.sessions[message.SessionID] {
		select {
		case client.send <- data:
		default:
			h.unregisterClient(client)
		}
	}
}

// readPump handles resync requests and detects disconnects
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}

		var req clientRequest
		if err := json.Unmarshal(data, &req); err != nil {
			continue
		}
		if req.Action == ActionResync {
			c.hub.resync <- c
		}
	}
}

// writePump writes one frame per message and keeps the connection alive
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
