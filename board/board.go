// Package board holds the domain types shared by the server and the client
// engine: boards, columns, cards, labels, comments and invitations, plus the
// ordering model (explicit order-id arrays and placeholder cards).
package board

import (
	"time"

	"github.com/google/uuid"
)

// Board visibility.
const (
	TypePublic  = "public"
	TypePrivate = "private"
)

// Invitation statuses. An invitation is terminal once non-pending.
const (
	InvitationPending  = "PENDING"
	InvitationAccepted = "ACCEPTED"
	InvitationRejected = "REJECTED"
)

// Card member update actions.
const (
	MemberActionAdd    = "ADD"
	MemberActionRemove = "REMOVE"
)

// LabelColors is the fixed palette a card label may draw from. A card holds
// at most one label per color.
var LabelColors = []string{
	"green", "yellow", "orange", "red", "purple",
	"blue", "sky", "lime", "pink", "black",
}

// ValidLabelColor reports whether color belongs to the palette.
func ValidLabelColor(color string) bool {
	for _, c := range LabelColors {
		if c == color {
			return true
		}
	}
	return false
}

// NewID returns a fresh entity id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id is a well-formed entity id.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Board is the aggregate root. ColumnOrderIDs is the sole source of truth for
// column ordering; Columns is only populated on detail fetches.
type Board struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Type           string    `json:"type"`
	OwnerIDs       []string  `json:"ownerIds"`
	MemberIDs      []string  `json:"memberIds"`
	ColumnOrderIDs []string  `json:"columnOrderIds"`
	Columns        []*Column `json:"columns,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Destroyed      bool      `json:"destroyed,omitempty"`
}

// IsOwner reports whether userID owns the board.
func (b *Board) IsOwner(userID string) bool {
	for _, id := range b.OwnerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsMember reports whether userID is an owner or a member of the board.
func (b *Board) IsMember(userID string) bool {
	if b.IsOwner(userID) {
		return true
	}
	for _, id := range b.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Column holds an ordered card-id sequence. BoardID is immutable after
// creation. Cards is only populated on detail fetches and in client state.
type Column struct {
	ID           string    `json:"id"`
	BoardID      string    `json:"boardId"`
	Title        string    `json:"title"`
	CardOrderIDs []string  `json:"cardOrderIds"`
	Cards        []*Card   `json:"cards,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Destroyed    bool      `json:"destroyed,omitempty"`
}

// Card's ColumnID and the owning column's CardOrderIDs are two halves of one
// relationship; a cross-column move must update both atomically.
type Card struct {
	ID          string    `json:"id"`
	BoardID     string    `json:"boardId"`
	ColumnID    string    `json:"columnId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Cover       string    `json:"cover,omitempty"`
	MemberIDs   []string  `json:"memberIds"`
	Comments    []Comment `json:"comments"`
	Labels      []Label   `json:"labels"`
	// Placeholder marks a synthetic client-only card that keeps an empty
	// column droppable. Never persisted.
	Placeholder bool      `json:"placeholder,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Destroyed   bool      `json:"destroyed,omitempty"`
}

// Label is embedded in a card, not a standalone entity.
type Label struct {
	ID    string `json:"id"`
	Color string `json:"color"`
	Text  string `json:"text,omitempty"`
}

// Comment is embedded in a card, newest appended last.
type Comment struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	UserEmail       string    `json:"userEmail"`
	UserDisplayName string    `json:"userDisplayName"`
	Content         string    `json:"content"`
	CommentedAt     time.Time `json:"commentedAt"`
}

// Invitation invites an existing user to a board by email.
type Invitation struct {
	ID        string    `json:"id"`
	InviterID string    `json:"inviterId"`
	InviteeID string    `json:"inviteeId"`
	BoardID   string    `json:"boardId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// User is the slim account summary the board system needs; account
// management itself lives outside this service.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar,omitempty"`
}
