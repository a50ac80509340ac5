package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mthuyet/trello-app/database"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 1024 * 1024 // 1MB
)

// Client represents a connected WebSocket session. A session belongs to at
// most one board room at a time.
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	UserID string
}

// WebSocketMessage is the standard message format for WebSocket communication
type WebSocketMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
	User string `json:"user,omitempty"`
}

// ReadPump pumps messages from the WebSocket connection to the hub. The only
// client-initiated messages are room joins and pings; all board mutations go
// through the HTTP API.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var wsMessage WebSocketMessage
		if err := json.Unmarshal(message, &wsMessage); err != nil {
			log.Printf("Error unmarshalling WebSocket message: %v", err)
			continue
		}

		switch wsMessage.Type {
		case EventPing:
			// Reply with a pong directly to this client only
			pongMessage := WebSocketMessage{
				Type: EventPong,
				Data: map[string]string{"timestamp": time.Now().Format(time.RFC3339)},
			}
			if pongJSON, err := json.Marshal(pongMessage); err == nil {
				c.Send <- pongJSON
			}

		case EventJoinBoardRoom:
			c.handleJoin(wsMessage.Data)

		default:
			log.Printf("Ignoring unexpected message type %q from %s", wsMessage.Type, c.UserID)
		}
	}
}

// handleJoin authorizes the session against the board's membership and moves
// it into the board room. Unauthorized joins get an explicit failure event.
func (c *Client) handleJoin(data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		c.sendEvent(EventJoinBoardRoomFailed, map[string]string{"message": "invalid join payload"})
		return
	}
	var payload JoinBoardRoomPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.BoardID == "" {
		c.sendEvent(EventJoinBoardRoomFailed, map[string]string{"message": "boardId is required"})
		return
	}

	b, err := c.Hub.store.FindBoardByID(context.Background(), payload.BoardID)
	if err != nil {
		log.Printf("Error loading board %s for join: %v", payload.BoardID, err)
		c.sendEvent(EventJoinBoardRoomFailed, map[string]string{"message": "failed to load board"})
		return
	}
	if b == nil || b.Destroyed {
		c.sendEvent(EventJoinBoardRoomFailed, map[string]string{"message": "board not found"})
		return
	}
	if !b.IsMember(c.UserID) {
		c.sendEvent(EventJoinBoardRoomFailed, map[string]string{"message": "you are not a member of this board"})
		return
	}

	c.Hub.Join(c, payload.BoardID)
}

func (c *Client) sendEvent(eventType string, data any) {
	msg, err := json.Marshal(WebSocketMessage{Type: eventType, Data: data})
	if err != nil {
		log.Printf("Error marshalling WebSocket message: %v", err)
		return
	}
	select {
	case c.Send <- msg:
	default:
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte("\n"))
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type joinRequest struct {
	client  *Client
	boardID string
}

type publication struct {
	boardID       string
	message       []byte
	excludeUserID string
}

// Hub maintains board rooms and fans published events out to every session
// in a room. Delivery is FIFO per connection, best-effort, with no history:
// a reconnecting client re-fetches full board state.
type Hub struct {
	store *database.Store

	rooms  map[string]map[*Client]bool
	member map[*Client]string // client -> current board room

	register   chan *Client
	unregister chan *Client
	join       chan joinRequest
	broadcast  chan publication
}

// NewHub creates a new hub instance. The store backs join authorization.
func NewHub(store *database.Store) *Hub {
	return &Hub{
		store:      store,
		rooms:      make(map[string]map[*Client]bool),
		member:     make(map[*Client]string),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan joinRequest),
		broadcast:  make(chan publication),
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Join moves a client into a board room, leaving its previous room if any.
func (h *Hub) Join(client *Client, boardID string) {
	h.join <- joinRequest{client: client, boardID: boardID}
}

// Publish sends a message to every client in a board's room. An empty
// excludeUserID sends to all sessions including the originator's.
func (h *Hub) Publish(boardID string, message WebSocketMessage, excludeUserID string) {
	jsonMessage, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshalling WebSocket message: %v", err)
		return
	}
	h.broadcast <- publication{boardID: boardID, message: jsonMessage, excludeUserID: excludeUserID}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.member[client] = ""
			log.Printf("Client connected: %s", client.UserID)

		case client := <-h.unregister:
			if _, ok := h.member[client]; ok {
				h.leaveRoom(client)
				delete(h.member, client)
				close(client.Send)
				log.Printf("Client disconnected: %s", client.UserID)
			}

		case req := <-h.join:
			h.leaveRoom(req.client)
			room, ok := h.rooms[req.boardID]
			if !ok {
				room = make(map[*Client]bool)
				h.rooms[req.boardID] = room
			}
			room[req.client] = true
			h.member[req.client] = req.boardID
			log.Printf("Client %s joined board room %s", req.client.UserID, req.boardID)
			req.client.sendEvent(EventJoinedBoardRoom, JoinBoardRoomPayload{BoardID: req.boardID})

		case pub := <-h.broadcast:
			room := h.rooms[pub.boardID]
			for client := range room {
				if pub.excludeUserID != "" && client.UserID == pub.excludeUserID {
					continue
				}
				select {
				case client.Send <- pub.message:
					// Message sent successfully
				default:
					// Client's send buffer is full, assume disconnected
					log.Printf("Client send buffer full, removing client: %s", client.UserID)
					h.leaveRoom(client)
					delete(h.member, client)
					close(client.Send)
				}
			}
		}
	}
}

func (h *Hub) leaveRoom(client *Client) {
	boardID, ok := h.member[client]
	if !ok || boardID == "" {
		return
	}
	if room, ok := h.rooms[boardID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, boardID)
		}
	}
	h.member[client] = ""
}
