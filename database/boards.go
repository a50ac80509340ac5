package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mthuyet/trello-app/board"
)

const boardsTable = "boards"

// Fields the API must never overwrite on a board document.
var boardImmutableFields = []string{"id", "createdAt", "ownerIds"}

func (s *Store) CreateBoard(ctx context.Context, b *board.Board) error {
	doc, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal board: %w", err)
	}
	_, err = s.db.ExecContext(ctx, "INSERT INTO boards (id, doc) VALUES (?, ?)", b.ID, string(doc))
	if err != nil {
		return fmt.Errorf("failed to insert board: %w", err)
	}
	return nil
}

// FindBoardByID returns nil when no board with that id exists.
func (s *Store) FindBoardByID(ctx context.Context, id string) (*board.Board, error) {
	return findBoard(ctx, s.db, id)
}

func findBoard(ctx context.Context, q execer, id string) (*board.Board, error) {
	doc, err := getDoc(ctx, q, boardsTable, id)
	if err != nil || doc == nil {
		return nil, err
	}
	var b board.Board
	if err := json.Unmarshal(doc, &b); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board: %w", err)
	}
	return &b, nil
}

// GetBoardDetails loads a board with its non-deleted columns and each
// column's non-deleted cards attached (grouped by the card's own columnId).
func (s *Store) GetBoardDetails(ctx context.Context, id string) (*board.Board, error) {
	b, err := s.FindBoardByID(ctx, id)
	if err != nil || b == nil {
		return nil, err
	}
	if b.Destroyed {
		return nil, nil
	}

	cols, err := s.findColumnsByBoardID(ctx, id)
	if err != nil {
		return nil, err
	}

	cards, err := s.findCardsByBoardID(ctx, id)
	if err != nil {
		return nil, err
	}

	byColumn := make(map[string][]*board.Card)
	for _, card := range cards {
		byColumn[card.ColumnID] = append(byColumn[card.ColumnID], card)
	}
	for _, col := range cols {
		col.Cards = byColumn[col.ID]
	}

	b.Columns = cols
	return b, nil
}

// GetBoardsForUser lists the boards userID owns or belongs to, newest first,
// optionally filtered by a case-insensitive title substring.
func (s *Store) GetBoardsForUser(ctx context.Context, userID string, page, perPage int, title string) ([]*board.Board, int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT doc FROM boards")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query boards: %w", err)
	}
	defer rows.Close()

	var matched []*board.Board
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, 0, fmt.Errorf("failed to scan board: %w", err)
		}
		var b board.Board
		if err := json.Unmarshal([]byte(doc), &b); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal board: %w", err)
		}
		if b.Destroyed || !b.IsMember(userID) {
			continue
		}
		if title != "" && !strings.Contains(strings.ToLower(b.Title), strings.ToLower(title)) {
			continue
		}
		matched = append(matched, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to scan boards: %w", err)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (page - 1) * perPage
	if start >= total {
		return []*board.Board{}, total, nil
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// UpdateBoard merges fields into the board document and returns the updated
// board, or nil when the board does not exist.
func (s *Store) UpdateBoard(ctx context.Context, id string, fields map[string]any) (*board.Board, error) {
	var updated *board.Board
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		doc, err := getDoc(ctx, tx, boardsTable, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return nil
		}
		fields["updatedAt"] = time.Now()
		merged, err := applyFields(doc, fields, boardImmutableFields...)
		if err != nil {
			return err
		}
		if err := putDoc(ctx, tx, boardsTable, id, merged); err != nil {
			return err
		}
		var b board.Board
		if err := json.Unmarshal(merged, &b); err != nil {
			return fmt.Errorf("failed to unmarshal board: %w", err)
		}
		updated = &b
		return nil
	})
	return updated, err
}

// SetColumnOrderIDs replaces the board's column order array.
func (s *Store) SetColumnOrderIDs(ctx context.Context, boardID string, orderIDs []string) (*board.Board, error) {
	return s.UpdateBoard(ctx, boardID, map[string]any{"columnOrderIds": orderIDs})
}

// mutateBoard applies fn to the board inside a transaction and persists the
// result. The board is written back atomically with respect to concurrent
// mutators of the same document.
func (s *Store) mutateBoard(ctx context.Context, boardID string, fn func(b *board.Board)) (*board.Board, error) {
	var updated *board.Board
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		b, err := findBoard(ctx, tx, boardID)
		if err != nil {
			return err
		}
		if b == nil {
			return nil
		}
		fn(b)
		b.UpdatedAt = time.Now()
		doc, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("failed to marshal board: %w", err)
		}
		if err := putDoc(ctx, tx, boardsTable, boardID, doc); err != nil {
			return err
		}
		updated = b
		return nil
	})
	return updated, err
}

// PushColumnOrderID appends a column id to the board's order array.
func (s *Store) PushColumnOrderID(ctx context.Context, boardID, columnID string) (*board.Board, error) {
	return s.mutateBoard(ctx, boardID, func(b *board.Board) {
		for _, id := range b.ColumnOrderIDs {
			if id == columnID {
				return
			}
		}
		b.ColumnOrderIDs = append(b.ColumnOrderIDs, columnID)
	})
}

// PullColumnOrderID removes a column id from the board's order array.
func (s *Store) PullColumnOrderID(ctx context.Context, boardID, columnID string) (*board.Board, error) {
	return s.mutateBoard(ctx, boardID, func(b *board.Board) {
		kept := b.ColumnOrderIDs[:0]
		for _, id := range b.ColumnOrderIDs {
			if id != columnID {
				kept = append(kept, id)
			}
		}
		b.ColumnOrderIDs = kept
	})
}

// PushBoardMemberID adds a user to the board's member set. Idempotent.
func (s *Store) PushBoardMemberID(ctx context.Context, boardID, userID string) (*board.Board, error) {
	return s.mutateBoard(ctx, boardID, func(b *board.Board) {
		for _, id := range b.MemberIDs {
			if id == userID {
				return
			}
		}
		b.MemberIDs = append(b.MemberIDs, userID)
	})
}

// PullBoardMemberID removes a user from the board's member set.
func (s *Store) PullBoardMemberID(ctx context.Context, boardID, userID string) (*board.Board, error) {
	return s.mutateBoard(ctx, boardID, func(b *board.Board) {
		kept := b.MemberIDs[:0]
		for _, id := range b.MemberIDs {
			if id != userID {
				kept = append(kept, id)
			}
		}
		b.MemberIDs = kept
	})
}

// DeleteBoard removes the board and cascades to its columns and cards.
func (s *Store) DeleteBoard(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM cards WHERE board_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete cards: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM columns WHERE board_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete columns: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM boards WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete board: %w", err)
		}
		return nil
	})
}
