package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mthuyet/trello-app/board"
	"github.com/mthuyet/trello-app/database"
)

// Default paging for the board list.
const (
	DefaultPage        = 1
	DefaultItemPerPage = 12
)

// BoardService owns board-level mutations, including the three move
// operations of the reordering protocol. Every business-rule check runs
// before persistence is touched; the one cross-entity move runs inside a
// store transaction.
type BoardService struct {
	store *database.Store
	pub   Publisher
}

func NewBoardService(store *database.Store, pub Publisher) *BoardService {
	return &BoardService{store: store, pub: pub}
}

type CreateBoardInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

type UpdateBoardInput struct {
	Title          *string  `json:"title"`
	Description    *string  `json:"description"`
	Type           *string  `json:"type"`
	MemberID       string   `json:"memberId"`
	ColumnOrderIDs []string `json:"columnOrderIds"`
}

// MoveCardInput is the request body of the transactional cross-column move.
type MoveCardInput struct {
	CurrentCardID        string   `json:"currentCardId"`
	OriginalColumnID     string   `json:"originalColumnId"`
	OriginalCardOrderIDs []string `json:"originalCardOrderIds"`
	NewColumnID          string   `json:"newColumnId"`
	NewCardOrderIDs      []string `json:"newCardOrderIds"`
}

// requireBoardMember loads a board and checks the caller is an owner or
// member. Shared by every service that mutates board-scoped entities.
func requireBoardMember(ctx context.Context, store *database.Store, boardID, userID string) (*board.Board, error) {
	b, err := store.FindBoardByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if b == nil || b.Destroyed {
		return nil, &NotFoundError{Entity: "board"}
	}
	if !b.IsMember(userID) {
		return nil, &PermissionError{Message: "you do not have permission to access this board"}
	}
	return b, nil
}

// CreateBoard creates a board with the caller as sole owner.
func (s *BoardService) CreateBoard(ctx context.Context, userID string, in CreateBoardInput) (*board.Board, error) {
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}
	if in.Type != board.TypePublic && in.Type != board.TypePrivate {
		return nil, validationErrorf("type must be %q or %q", board.TypePublic, board.TypePrivate)
	}

	now := time.Now()
	b := &board.Board{
		ID:             board.NewID(),
		Title:          in.Title,
		Description:    in.Description,
		Type:           in.Type,
		OwnerIDs:       []string{userID},
		MemberIDs:      []string{},
		ColumnOrderIDs: []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateBoard(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// GetBoards lists the caller's boards with paging and optional title filter.
func (s *BoardService) GetBoards(ctx context.Context, userID string, page, perPage int, title string) ([]*board.Board, int, error) {
	if page < 1 {
		page = DefaultPage
	}
	if perPage < 1 {
		perPage = DefaultItemPerPage
	}
	return s.store.GetBoardsForUser(ctx, userID, page, perPage, title)
}

// GetBoardDetails returns the full board aggregate for reconciler hydration.
func (s *BoardService) GetBoardDetails(ctx context.Context, userID, boardID string) (*board.Board, error) {
	if err := validateID(boardID, "boardId"); err != nil {
		return nil, err
	}
	if _, err := requireBoardMember(ctx, s.store, boardID, userID); err != nil {
		return nil, err
	}
	b, err := s.store.GetBoardDetails(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, &NotFoundError{Entity: "board"}
	}
	return b, nil
}

// UpdateBoard dispatches a board update: a column order array becomes a
// column move, a memberId becomes a member removal, anything else is a
// general-field merge.
func (s *BoardService) UpdateBoard(ctx context.Context, userID, boardID string, in UpdateBoardInput) (*board.Board, error) {
	if in.ColumnOrderIDs != nil {
		return s.MoveColumn(ctx, userID, boardID, in.ColumnOrderIDs)
	}

	if err := validateID(boardID, "boardId"); err != nil {
		return nil, err
	}
	b, err := requireBoardMember(ctx, s.store, boardID, userID)
	if err != nil {
		return nil, err
	}

	if in.MemberID != "" {
		return s.removeMember(ctx, b, userID, in.MemberID)
	}

	fields := make(map[string]any)
	if in.Title != nil {
		if err := validateTitle(*in.Title); err != nil {
			return nil, err
		}
		fields["title"] = *in.Title
	}
	if in.Description != nil {
		if err := validateDescription(*in.Description); err != nil {
			return nil, err
		}
		fields["description"] = *in.Description
	}
	if in.Type != nil {
		if *in.Type != board.TypePublic && *in.Type != board.TypePrivate {
			return nil, validationErrorf("type must be %q or %q", board.TypePublic, board.TypePrivate)
		}
		fields["type"] = *in.Type
	}
	if len(fields) == 0 {
		return b, nil
	}

	updated, err := s.store.UpdateBoard(ctx, boardID, fields)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, &NotFoundError{Entity: "board"}
	}

	s.pub.Publish(boardID, WebSocketMessage{
		Type: EventBoardUpdated,
		Data: BoardUpdatedPayload{Board: updated},
	}, "")
	return updated, nil
}

// removeMember pulls a member from the board. Owner-only; owners cannot be
// removed this way.
func (s *BoardService) removeMember(ctx context.Context, b *board.Board, userID, memberID string) (*board.Board, error) {
	if err := validateID(memberID, "memberId"); err != nil {
		return nil, err
	}
	if !b.IsOwner(userID) {
		return nil, &PermissionError{Message: "only a board owner can remove members"}
	}
	if b.IsOwner(memberID) {
		return nil, &ConflictError{Message: "board owners cannot be removed"}
	}

	updated, err := s.store.PullBoardMemberID(ctx, b.ID, memberID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, &NotFoundError{Entity: "board"}
	}

	removed, err := s.store.FindUserByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	s.pub.Publish(b.ID, WebSocketMessage{
		Type: EventMemberRemoved,
		Data: MemberPayload{BoardID: b.ID, Member: removed},
	}, "")
	return updated, nil
}

// MoveColumn persists a new column order on the board and publishes the
// updated order to the board's room.
func (s *BoardService) MoveColumn(ctx context.Context, userID, boardID string, newColumnOrderIDs []string) (*board.Board, error) {
	if err := validateID(boardID, "boardId"); err != nil {
		return nil, err
	}
	if err := validateOrderIDs(newColumnOrderIDs, "columnOrderIds"); err != nil {
		return nil, err
	}
	if _, err := requireBoardMember(ctx, s.store, boardID, userID); err != nil {
		return nil, err
	}

	updated, err := s.store.SetColumnOrderIDs(ctx, boardID, newColumnOrderIDs)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, &NotFoundError{Entity: "board"}
	}

	s.pub.Publish(boardID, WebSocketMessage{
		Type: EventColumnOrderUpdated,
		Data: ColumnOrderUpdatedPayload{BoardID: boardID, ColumnOrderIDs: updated.ColumnOrderIDs},
	}, "")
	return updated, nil
}

// MoveCardSameColumn persists a new card order on one column. Concurrent
// calls on the same column race whole-array: the last write wins.
func (s *BoardService) MoveCardSameColumn(ctx context.Context, userID, columnID string, newCardOrderIDs []string) (*board.Column, error) {
	if err := validateID(columnID, "columnId"); err != nil {
		return nil, err
	}
	if err := validateOrderIDs(newCardOrderIDs, "cardOrderIds"); err != nil {
		return nil, err
	}

	col, err := s.store.FindColumnByID(ctx, columnID)
	if err != nil {
		return nil, err
	}
	if col == nil || col.Destroyed {
		return nil, &NotFoundError{Entity: "column"}
	}
	if _, err := requireBoardMember(ctx, s.store, col.BoardID, userID); err != nil {
		return nil, err
	}

	updated, err := s.store.SetCardOrderIDs(ctx, columnID, newCardOrderIDs)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, &NotFoundError{Entity: "column"}
	}

	s.pub.Publish(col.BoardID, WebSocketMessage{
		Type: EventColumnUpdated,
		Data: ColumnUpdatedPayload{BoardID: col.BoardID, Column: updated},
	}, "")
	return updated, nil
}

// MoveCardToDifferentColumn validates and applies a cross-column move as one
// transaction: origin order array, destination order array, and the card's
// columnId pointer change together or not at all.
func (s *BoardService) MoveCardToDifferentColumn(ctx context.Context, userID string, in MoveCardInput) (*board.Card, error) {
	if err := validateID(in.CurrentCardID, "currentCardId"); err != nil {
		return nil, err
	}
	if err := validateID(in.OriginalColumnID, "originalColumnId"); err != nil {
		return nil, err
	}
	if err := validateID(in.NewColumnID, "newColumnId"); err != nil {
		return nil, err
	}
	if err := validateOrderIDs(in.OriginalCardOrderIDs, "originalCardOrderIds"); err != nil {
		return nil, err
	}
	if err := validateOrderIDs(in.NewCardOrderIDs, "newCardOrderIds"); err != nil {
		return nil, err
	}

	card, err := s.store.FindCardByID(ctx, in.CurrentCardID)
	if err != nil {
		return nil, err
	}
	if card == nil || card.Destroyed {
		return nil, &NotFoundError{Entity: "card"}
	}

	origin, err := s.store.FindColumnByID(ctx, in.OriginalColumnID)
	if err != nil {
		return nil, err
	}
	dest, err := s.store.FindColumnByID(ctx, in.NewColumnID)
	if err != nil {
		return nil, err
	}
	if origin == nil || dest == nil {
		return nil, &NotFoundError{Entity: "column"}
	}

	// Cross-board moves are forbidden.
	if origin.BoardID != dest.BoardID {
		return nil, &ConflictError{Message: "columns must belong to the same board"}
	}

	if _, err := requireBoardMember(ctx, s.store, origin.BoardID, userID); err != nil {
		return nil, err
	}

	moved, err := s.store.MoveCard(ctx, in.CurrentCardID, in.OriginalColumnID, in.OriginalCardOrderIDs, in.NewColumnID, in.NewCardOrderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to move card: %w", err)
	}

	s.pub.Publish(origin.BoardID, WebSocketMessage{
		Type: EventCardMoved,
		Data: CardMovedPayload{
			BoardID:              origin.BoardID,
			CardID:               moved.ID,
			OriginalColumnID:     in.OriginalColumnID,
			OriginalCardOrderIDs: in.OriginalCardOrderIDs,
			NewColumnID:          in.NewColumnID,
			NewCardOrderIDs:      in.NewCardOrderIDs,
			Card:                 moved,
		},
	}, "")
	return moved, nil
}

// DeleteBoard removes a board and everything under it. Owner-only.
func (s *BoardService) DeleteBoard(ctx context.Context, userID, boardID string) error {
	if err := validateID(boardID, "boardId"); err != nil {
		return err
	}
	b, err := s.store.FindBoardByID(ctx, boardID)
	if err != nil {
		return err
	}
	if b == nil {
		return &NotFoundError{Entity: "board"}
	}
	if !b.IsOwner(userID) {
		return &PermissionError{Message: "you are not the owner of this board"}
	}

	if err := s.store.DeleteBoard(ctx, boardID); err != nil {
		return err
	}

	s.pub.Publish(boardID, WebSocketMessage{
		Type: EventBoardDeleted,
		Data: BoardDeletedPayload{BoardID: boardID, BoardTitle: b.Title},
	}, "")
	log.Printf("Board %s deleted by %s", boardID, userID)
	return nil
}
