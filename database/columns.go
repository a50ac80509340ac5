package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mthuyet/trello-app/board"
)

const columnsTable = "columns"

var columnImmutableFields = []string{"id", "boardId", "createdAt"}

func (s *Store) CreateColumn(ctx context.Context, c *board.Column) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal column: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO columns (id, board_id, doc) VALUES (?, ?, ?)",
		c.ID, c.BoardID, string(doc))
	if err != nil {
		return fmt.Errorf("failed to insert column: %w", err)
	}
	return nil
}

// FindColumnByID returns nil when no column with that id exists.
func (s *Store) FindColumnByID(ctx context.Context, id string) (*board.Column, error) {
	return findColumn(ctx, s.db, id)
}

func findColumn(ctx context.Context, q execer, id string) (*board.Column, error) {
	doc, err := getDoc(ctx, q, columnsTable, id)
	if err != nil || doc == nil {
		return nil, err
	}
	var c board.Column
	if err := json.Unmarshal(doc, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal column: %w", err)
	}
	return &c, nil
}

func (s *Store) findColumnsByBoardID(ctx context.Context, boardID string) ([]*board.Column, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT doc FROM columns WHERE board_id = ?", boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	var cols []*board.Column
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		var c board.Column
		if err := json.Unmarshal([]byte(doc), &c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal column: %w", err)
		}
		if c.Destroyed {
			continue
		}
		cols = append(cols, &c)
	}
	return cols, rows.Err()
}

// UpdateColumn merges fields into the column document and returns the
// updated column, or nil when it does not exist.
func (s *Store) UpdateColumn(ctx context.Context, id string, fields map[string]any) (*board.Column, error) {
	var updated *board.Column
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		c, err := setColumnFields(ctx, tx, id, fields)
		if err != nil {
			return err
		}
		updated = c
		return nil
	})
	return updated, err
}

// setColumnFields is the tx-scoped core of UpdateColumn, shared with the
// cross-column move transaction.
func setColumnFields(ctx context.Context, tx *sql.Tx, id string, fields map[string]any) (*board.Column, error) {
	doc, err := getDoc(ctx, tx, columnsTable, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	fields["updatedAt"] = time.Now()
	merged, err := applyFields(doc, fields, columnImmutableFields...)
	if err != nil {
		return nil, err
	}
	if err := putDoc(ctx, tx, columnsTable, id, merged); err != nil {
		return nil, err
	}
	var c board.Column
	if err := json.Unmarshal(merged, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal column: %w", err)
	}
	return &c, nil
}

// SetCardOrderIDs replaces the column's card order array. Concurrent callers
// race at document granularity: the last write wins whole-array.
func (s *Store) SetCardOrderIDs(ctx context.Context, columnID string, orderIDs []string) (*board.Column, error) {
	return s.UpdateColumn(ctx, columnID, map[string]any{"cardOrderIds": orderIDs})
}

func (s *Store) mutateColumn(ctx context.Context, columnID string, fn func(c *board.Column)) (*board.Column, error) {
	var updated *board.Column
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		c, err := findColumn(ctx, tx, columnID)
		if err != nil {
			return err
		}
		if c == nil {
			return nil
		}
		fn(c)
		c.UpdatedAt = time.Now()
		doc, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal column: %w", err)
		}
		if err := putDoc(ctx, tx, columnsTable, columnID, doc); err != nil {
			return err
		}
		updated = c
		return nil
	})
	return updated, err
}

// PushCardOrderID appends a card id to the column's order array.
func (s *Store) PushCardOrderID(ctx context.Context, columnID, cardID string) (*board.Column, error) {
	return s.mutateColumn(ctx, columnID, func(c *board.Column) {
		for _, id := range c.CardOrderIDs {
			if id == cardID {
				return
			}
		}
		c.CardOrderIDs = append(c.CardOrderIDs, cardID)
	})
}

// PullCardOrderID removes a card id from the column's order array.
func (s *Store) PullCardOrderID(ctx context.Context, columnID, cardID string) (*board.Column, error) {
	return s.mutateColumn(ctx, columnID, func(c *board.Column) {
		kept := c.CardOrderIDs[:0]
		for _, id := range c.CardOrderIDs {
			if id != cardID {
				kept = append(kept, id)
			}
		}
		c.CardOrderIDs = kept
	})
}

// DeleteColumn removes the column and cascades to its cards.
func (s *Store) DeleteColumn(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM cards WHERE column_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete cards: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM columns WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete column: %w", err)
		}
		return nil
	})
}
