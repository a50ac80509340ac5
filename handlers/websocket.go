package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mthuyet/trello-app/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins; cross-origin policy is enforced by the CORS
		// layer on the HTTP routes.
		return true
	},
}

// WebSocketHandler upgrades authenticated requests to hub sessions.
type WebSocketHandler struct {
	hub         *services.Hub
	authService *services.AuthService
}

func NewWebSocketHandler(hub *services.Hub, authService *services.AuthService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		authService: authService,
	}
}

// HandleWebSocket handles WebSocket connection requests. Browsers cannot set
// an Authorization header on the upgrade request, so the token also rides in
// the query string.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		claims, err := h.authService.VerifyJWT(tokenString)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		userID = claims.UserID
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading connection: %v", err)
		return
	}

	client := &services.Client{
		Hub:    h.hub,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		UserID: userID,
	}
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
