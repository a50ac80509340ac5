package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mthuyet/trello-app/services"
)

// InvitationHandler exposes board invitation endpoints.
type InvitationHandler struct {
	invitationService *services.InvitationService
}

func NewInvitationHandler(invitationService *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var in services.CreateInvitationInput
	if !decodeBody(w, r, &in) {
		return
	}

	inv, err := h.invitationService.CreateBoardInvitation(r.Context(), userID, in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, inv)
}

// List returns the caller's invitations, newest first.
func (h *InvitationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	invs, err := h.invitationService.GetInvitations(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, invs)
}

// Update resolves a pending invitation to accepted or rejected.
func (h *InvitationHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var in struct {
		Status string `json:"status"`
	}
	if !decodeBody(w, r, &in) {
		return
	}

	inv, err := h.invitationService.UpdateBoardInvitation(r.Context(), userID, mux.Vars(r)["invitationId"], in.Status)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, inv)
}
