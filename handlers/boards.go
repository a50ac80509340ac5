package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mthuyet/trello-app/services"
)

// BoardHandler exposes the board endpoints, including the dedicated route
// for moving a card between two columns.
type BoardHandler struct {
	boardService *services.BoardService
}

func NewBoardHandler(boardService *services.BoardService) *BoardHandler {
	return &BoardHandler{boardService: boardService}
}

// List returns the caller's boards, paged and optionally filtered by title.
func (h *BoardHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("itemsPerPage"))
	title := r.URL.Query().Get("q")

	boards, total, err := h.boardService.GetBoards(r.Context(), userID, page, perPage, title)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"boards":      boards,
		"totalBoards": total,
	})
}

func (h *BoardHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var in services.CreateBoardInput
	if !decodeBody(w, r, &in) {
		return
	}

	b, err := h.boardService.CreateBoard(r.Context(), userID, in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, b)
}

// Get returns the full board aggregate with columns and each column's cards
// attached. Sorting by the order-id arrays and placeholder materialization
// happen client-side during hydration.
func (h *BoardHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	b, err := h.boardService.GetBoardDetails(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

func (h *BoardHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var in services.UpdateBoardInput
	if !decodeBody(w, r, &in) {
		return
	}

	b, err := h.boardService.UpdateBoard(r.Context(), userID, mux.Vars(r)["id"], in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

// MoveCard handles the cross-column card move. It is a board-level endpoint
// because the change spans two columns and the card itself.
func (h *BoardHandler) MoveCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var in services.MoveCardInput
	if !decodeBody(w, r, &in) {
		return
	}

	card, err := h.boardService.MoveCardToDifferentColumn(r.Context(), userID, in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, card)
}

func (h *BoardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.boardService.DeleteBoard(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Board deleted successfully"})
}
