package services

import (
	"context"
	"strings"
	"time"

	"github.com/mthuyet/trello-app/board"
	"github.com/mthuyet/trello-app/database"
)

// InvitationService owns board invitations: created by an existing member,
// accepted or rejected exactly once by the invitee.
type InvitationService struct {
	store *database.Store
	pub   Publisher
}

func NewInvitationService(store *database.Store, pub Publisher) *InvitationService {
	return &InvitationService{store: store, pub: pub}
}

type CreateInvitationInput struct {
	BoardID      string `json:"boardId"`
	InviteeEmail string `json:"inviteeEmail"`
}

// InvitationDetails bundles an invitation with the related entities the
// client renders alongside it.
type InvitationDetails struct {
	*board.Invitation
	Board   *board.Board `json:"board,omitempty"`
	Inviter *board.User  `json:"inviter,omitempty"`
	Invitee *board.User  `json:"invitee,omitempty"`
}

// CreateBoardInvitation invites a user (looked up by email) to a board.
func (s *InvitationService) CreateBoardInvitation(ctx context.Context, inviterID string, in CreateInvitationInput) (*InvitationDetails, error) {
	if err := validateID(in.BoardID, "boardId"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.InviteeEmail) == "" {
		return nil, validationErrorf("inviteeEmail is required")
	}

	inviter, err := s.store.FindUserByID(ctx, inviterID)
	if err != nil {
		return nil, err
	}
	invitee, err := s.store.FindUserByEmail(ctx, in.InviteeEmail)
	if err != nil {
		return nil, err
	}
	if inviter == nil || invitee == nil {
		return nil, &NotFoundError{Entity: "user"}
	}

	b, err := requireBoardMember(ctx, s.store, in.BoardID, inviterID)
	if err != nil {
		return nil, err
	}
	if b.IsMember(invitee.ID) {
		return nil, &ConflictError{Message: "user is already a member of this board"}
	}

	now := time.Now()
	inv := &board.Invitation{
		ID:        board.NewID(),
		InviterID: inviterID,
		InviteeID: invitee.ID,
		BoardID:   in.BoardID,
		Status:    board.InvitationPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateInvitation(ctx, inv); err != nil {
		return nil, err
	}

	s.pub.Publish(in.BoardID, WebSocketMessage{
		Type: EventInvitationCreated,
		Data: InvitationCreatedPayload{BoardID: in.BoardID, Invitation: inv, Invitee: invitee},
	}, "")

	return &InvitationDetails{Invitation: inv, Board: b, Inviter: inviter, Invitee: invitee}, nil
}

// GetInvitations lists the caller's invitations with board and inviter
// attached.
func (s *InvitationService) GetInvitations(ctx context.Context, userID string) ([]*InvitationDetails, error) {
	invs, err := s.store.FindInvitationsByInvitee(ctx, userID)
	if err != nil {
		return nil, err
	}

	details := make([]*InvitationDetails, 0, len(invs))
	for _, inv := range invs {
		d := &InvitationDetails{Invitation: inv}
		if d.Board, err = s.store.FindBoardByID(ctx, inv.BoardID); err != nil {
			return nil, err
		}
		if d.Inviter, err = s.store.FindUserByID(ctx, inv.InviterID); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

// UpdateBoardInvitation resolves a pending invitation. Accepting adds the
// invitee to the board's members (guarded against existing membership) and
// announces the new member to the board room. Non-pending invitations are
// terminal.
func (s *InvitationService) UpdateBoardInvitation(ctx context.Context, userID, invitationID, status string) (*board.Invitation, error) {
	if err := validateID(invitationID, "invitationId"); err != nil {
		return nil, err
	}
	if status != board.InvitationAccepted && status != board.InvitationRejected {
		return nil, validationErrorf("status must be %q or %q", board.InvitationAccepted, board.InvitationRejected)
	}

	inv, err := s.store.FindInvitationByID(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, &NotFoundError{Entity: "invitation"}
	}
	if inv.InviteeID != userID {
		return nil, &PermissionError{Message: "this invitation is not addressed to you"}
	}
	if inv.Status != board.InvitationPending {
		return nil, &ConflictError{Message: "invitation has already been resolved"}
	}

	b, err := s.store.FindBoardByID(ctx, inv.BoardID)
	if err != nil {
		return nil, err
	}
	if b == nil || b.Destroyed {
		return nil, &NotFoundError{Entity: "board"}
	}
	if status == board.InvitationAccepted && b.IsMember(userID) {
		return nil, &ConflictError{Message: "you are already a member of this board"}
	}

	updated, err := s.store.UpdateInvitationStatus(ctx, invitationID, status)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, &NotFoundError{Entity: "invitation"}
	}

	if status == board.InvitationAccepted {
		if _, err := s.store.PushBoardMemberID(ctx, inv.BoardID, userID); err != nil {
			return nil, err
		}
		newMember, err := s.store.FindUserByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		s.pub.Publish(inv.BoardID, WebSocketMessage{
			Type: EventMemberJoined,
			Data: MemberPayload{BoardID: inv.BoardID, Member: newMember},
		}, "")
	}
	return updated, nil
}
