package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mthuyet/trello-app/services"
)

// CardHandler exposes card CRUD plus the label sub-resource.
type CardHandler struct {
	cardService *services.CardService
}

func NewCardHandler(cardService *services.CardService) *CardHandler {
	return &CardHandler{cardService: cardService}
}

func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var in services.CreateCardInput
	if !decodeBody(w, r, &in) {
		return
	}

	card, err := h.cardService.CreateCard(r.Context(), userID, in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, card)
}

func (h *CardHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var in services.UpdateCardInput
	if !decodeBody(w, r, &in) {
		return
	}

	card, err := h.cardService.UpdateCard(r.Context(), userID, mux.Vars(r)["id"], in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, card)
}

func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.cardService.DeleteCard(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Card deleted successfully"})
}

func (h *CardHandler) AddLabel(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var in services.LabelInput
	if !decodeBody(w, r, &in) {
		return
	}

	card, err := h.cardService.AddLabel(r.Context(), userID, mux.Vars(r)["id"], in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, card)
}

func (h *CardHandler) UpdateLabel(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var in services.UpdateLabelInput
	if !decodeBody(w, r, &in) {
		return
	}
	vars := mux.Vars(r)

	card, err := h.cardService.UpdateLabel(r.Context(), userID, vars["id"], vars["labelId"], in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, card)
}

func (h *CardHandler) RemoveLabel(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	vars := mux.Vars(r)

	card, err := h.cardService.RemoveLabel(r.Context(), userID, vars["id"], vars["labelId"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, card)
}
