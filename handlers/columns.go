package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mthuyet/trello-app/services"
)

// ColumnHandler exposes the column endpoints. A column update carrying
// cardOrderIds is a same-column card move and is routed to the board
// service, which owns the reordering protocol.
type ColumnHandler struct {
	columnService *services.ColumnService
	boardService  *services.BoardService
}

func NewColumnHandler(columnService *services.ColumnService, boardService *services.BoardService) *ColumnHandler {
	return &ColumnHandler{
		columnService: columnService,
		boardService:  boardService,
	}
}

func (h *ColumnHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var in services.CreateColumnInput
	if !decodeBody(w, r, &in) {
		return
	}

	col, err := h.columnService.CreateColumn(r.Context(), userID, in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, col)
}

func (h *ColumnHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var in struct {
		Title        *string  `json:"title"`
		CardOrderIDs []string `json:"cardOrderIds"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	columnID := mux.Vars(r)["id"]

	if in.CardOrderIDs != nil {
		col, err := h.boardService.MoveCardSameColumn(r.Context(), userID, columnID, in.CardOrderIDs)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, col)
		return
	}

	col, err := h.columnService.UpdateColumn(r.Context(), userID, columnID, services.UpdateColumnInput{Title: in.Title})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, col)
}

func (h *ColumnHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.columnService.DeleteColumn(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Column and its cards deleted successfully"})
}
