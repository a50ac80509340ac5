package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/cors"

	"github.com/mthuyet/trello-app/database"
	"github.com/mthuyet/trello-app/handlers"
	"github.com/mthuyet/trello-app/services"
)

func main() {
	// Load environment variables from .env file
	if err := LoadEnv(".env"); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	// Initialize database
	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "trello.db"
	}
	db, err := database.InitDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	store := database.NewStore(db)
	authService := services.NewAuthService()

	// Initialize WebSocket hub
	hub := services.NewHub(store)
	go hub.Run()

	// Initialize services
	boardService := services.NewBoardService(store, hub)
	columnService := services.NewColumnService(store, hub)
	cardService := services.NewCardService(store, hub)
	invitationService := services.NewInvitationService(store, hub)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, store)
	boardHandler := handlers.NewBoardHandler(boardService)
	columnHandler := handlers.NewColumnHandler(columnService, boardService)
	cardHandler := handlers.NewCardHandler(cardService)
	invitationHandler := handlers.NewInvitationHandler(invitationService)
	wsHandler := handlers.NewWebSocketHandler(hub, authService)

	authMiddleware := handlers.NewAuthMiddleware(authService)

	// Setup router
	r := mux.NewRouter()

	// Auth routes
	r.HandleFunc("/v1/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/v1/auth/verify", authHandler.VerifyToken).Methods("GET")

	// Protected routes
	api := r.PathPrefix("/v1").Subrouter()
	api.Use(authMiddleware.Auth)

	// Board routes. The moving-cards route must register before the {id}
	// routes so mux does not swallow it as a board id.
	api.HandleFunc("/boards/supports/moving-cards", boardHandler.MoveCard).Methods("PUT")
	api.HandleFunc("/boards", boardHandler.List).Methods("GET")
	api.HandleFunc("/boards", boardHandler.Create).Methods("POST")
	api.HandleFunc("/boards/{id}", boardHandler.Get).Methods("GET")
	api.HandleFunc("/boards/{id}", boardHandler.Update).Methods("PUT")
	api.HandleFunc("/boards/{id}", boardHandler.Delete).Methods("DELETE")

	// Column routes
	api.HandleFunc("/columns", columnHandler.Create).Methods("POST")
	api.HandleFunc("/columns/{id}", columnHandler.Update).Methods("PUT")
	api.HandleFunc("/columns/{id}", columnHandler.Delete).Methods("DELETE")

	// Card routes, labels included
	api.HandleFunc("/cards", cardHandler.Create).Methods("POST")
	api.HandleFunc("/cards/{id}", cardHandler.Update).Methods("PUT")
	api.HandleFunc("/cards/{id}", cardHandler.Delete).Methods("DELETE")
	api.HandleFunc("/cards/{id}/labels", cardHandler.AddLabel).Methods("POST")
	api.HandleFunc("/cards/{id}/labels/{labelId}", cardHandler.UpdateLabel).Methods("PUT")
	api.HandleFunc("/cards/{id}/labels/{labelId}", cardHandler.RemoveLabel).Methods("DELETE")

	// Invitation routes
	api.HandleFunc("/invitations/board", invitationHandler.Create).Methods("POST")
	api.HandleFunc("/invitations", invitationHandler.List).Methods("GET")
	api.HandleFunc("/invitations/board/{invitationId}", invitationHandler.Update).Methods("PUT")

	// WebSocket route for real-time updates; authenticates via query token
	r.HandleFunc("/v1/ws", wsHandler.HandleWebSocket)

	// Setup CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // In production, change to your domain
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      c.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Server starting on port %s", port)
	log.Fatal(server.ListenAndServe())
}
