package services

import (
	"context"
	"time"

	"github.com/mthuyet/trello-app/board"
	"github.com/mthuyet/trello-app/database"
)

// ColumnService owns column CRUD. Column ordering lives on the board and is
// handled by BoardService.MoveColumn.
type ColumnService struct {
	store *database.Store
	pub   Publisher
}

func NewColumnService(store *database.Store, pub Publisher) *ColumnService {
	return &ColumnService{store: store, pub: pub}
}

type CreateColumnInput struct {
	BoardID string `json:"boardId"`
	Title   string `json:"title"`
}

type UpdateColumnInput struct {
	Title *string `json:"title"`
}

// CreateColumn creates a column and appends its id to the board's order.
func (s *ColumnService) CreateColumn(ctx context.Context, userID string, in CreateColumnInput) (*board.Column, error) {
	if err := validateID(in.BoardID, "boardId"); err != nil {
		return nil, err
	}
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	if _, err := requireBoardMember(ctx, s.store, in.BoardID, userID); err != nil {
		return nil, err
	}

	now := time.Now()
	col := &board.Column{
		ID:           board.NewID(),
		BoardID:      in.BoardID,
		Title:        in.Title,
		CardOrderIDs: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateColumn(ctx, col); err != nil {
		return nil, err
	}
	if _, err := s.store.PushColumnOrderID(ctx, in.BoardID, col.ID); err != nil {
		return nil, err
	}

	s.pub.Publish(in.BoardID, WebSocketMessage{
		Type: EventColumnCreated,
		Data: ColumnCreatedPayload{BoardID: in.BoardID, Column: col, CreatedBy: userID},
	}, "")
	return col, nil
}

// UpdateColumn renames a column.
func (s *ColumnService) UpdateColumn(ctx context.Context, userID, columnID string, in UpdateColumnInput) (*board.Column, error) {
	if err := validateID(columnID, "columnId"); err != nil {
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

	fields := make(map[string]any)
	if in.Title != nil {
		if err := validateTitle(*in.Title); err != nil {
			return nil, err
		}
		fields["title"] = *in.Title
	}
	if len(fields) == 0 {
		return col, nil
	}

	updated, err := s.store.UpdateColumn(ctx, columnID, fields)
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

// DeleteColumn removes a column, cascades to its cards, and pulls the id
// from the board's column order.
func (s *ColumnService) DeleteColumn(ctx context.Context, userID, columnID string) error {
	if err := validateID(columnID, "columnId"); err != nil {
		return err
	}
	col, err := s.store.FindColumnByID(ctx, columnID)
	if err != nil {
		return err
	}
	if col == nil {
		return &NotFoundError{Entity: "column"}
	}
	if _, err := requireBoardMember(ctx, s.store, col.BoardID, userID); err != nil {
		return err
	}

	if err := s.store.DeleteColumn(ctx, columnID); err != nil {
		return err
	}
	if _, err := s.store.PullColumnOrderID(ctx, col.BoardID, columnID); err != nil {
		return err
	}

	s.pub.Publish(col.BoardID, WebSocketMessage{
		Type: EventColumnDeleted,
		Data: ColumnDeletedPayload{BoardID: col.BoardID, ColumnID: columnID, ColumnTitle: col.Title},
	}, "")
	return nil
}
