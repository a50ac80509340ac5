package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mthuyet/trello-app/board"
)

const cardsTable = "cards"

var cardImmutableFields = []string{"id", "boardId", "createdAt"}

func (s *Store) CreateCard(ctx context.Context, c *board.Card) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal card: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO cards (id, board_id, column_id, doc) VALUES (?, ?, ?, ?)",
		c.ID, c.BoardID, c.ColumnID, string(doc))
	if err != nil {
		return fmt.Errorf("failed to insert card: %w", err)
	}
	return nil
}

// FindCardByID returns nil when no card with that id exists.
func (s *Store) FindCardByID(ctx context.Context, id string) (*board.Card, error) {
	return findCard(ctx, s.db, id)
}

func findCard(ctx context.Context, q execer, id string) (*board.Card, error) {
	doc, err := getDoc(ctx, q, cardsTable, id)
	if err != nil || doc == nil {
		return nil, err
	}
	var c board.Card
	if err := json.Unmarshal(doc, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal card: %w", err)
	}
	return &c, nil
}

func (s *Store) findCardsByBoardID(ctx context.Context, boardID string) ([]*board.Card, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT doc FROM cards WHERE board_id = ?", boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var cards []*board.Card
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		var c board.Card
		if err := json.Unmarshal([]byte(doc), &c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal card: %w", err)
		}
		if c.Destroyed {
			continue
		}
		cards = append(cards, &c)
	}
	return cards, rows.Err()
}

// UpdateCard merges fields into the card document and returns the updated
// card, or nil when it does not exist. A columnId change also updates the
// card row's scope column so board queries stay consistent.
func (s *Store) UpdateCard(ctx context.Context, id string, fields map[string]any) (*board.Card, error) {
	var updated *board.Card
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		c, err := setCardFields(ctx, tx, id, fields)
		if err != nil {
			return err
		}
		updated = c
		return nil
	})
	return updated, err
}

func setCardFields(ctx context.Context, tx *sql.Tx, id string, fields map[string]any) (*board.Card, error) {
	doc, err := getDoc(ctx, tx, cardsTable, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	fields["updatedAt"] = time.Now()
	merged, err := applyFields(doc, fields, cardImmutableFields...)
	if err != nil {
		return nil, err
	}
	if err := putDoc(ctx, tx, cardsTable, id, merged); err != nil {
		return nil, err
	}
	var c board.Card
	if err := json.Unmarshal(merged, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal card: %w", err)
	}
	if _, ok := fields["columnId"]; ok {
		if _, err := tx.ExecContext(ctx,
			"UPDATE cards SET column_id = ? WHERE id = ?", c.ColumnID, id); err != nil {
			return nil, fmt.Errorf("failed to update card scope: %w", err)
		}
	}
	return &c, nil
}

// PushComment appends a comment to the card.
func (s *Store) PushComment(ctx context.Context, cardID string, comment board.Comment) (*board.Card, error) {
	var updated *board.Card
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		c, err := findCard(ctx, tx, cardID)
		if err != nil {
			return err
		}
		if c == nil {
			return nil
		}
		c.Comments = append(c.Comments, comment)
		c.UpdatedAt = time.Now()
		doc, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal card: %w", err)
		}
		if err := putDoc(ctx, tx, cardsTable, cardID, doc); err != nil {
			return err
		}
		updated = c
		return nil
	})
	return updated, err
}

// SetLabels replaces the card's label set whole-array.
func (s *Store) SetLabels(ctx context.Context, cardID string, labels []board.Label) (*board.Card, error) {
	return s.UpdateCard(ctx, cardID, map[string]any{"labels": labels})
}

// DeleteCard removes the card row.
func (s *Store) DeleteCard(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM cards WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return nil
}

// MoveCard executes the cross-column move as one transaction: the origin
// column's order array (card already excluded by the caller), the
// destination column's order array (card already included), and the card's
// own columnId pointer. Any failure aborts the whole move; no partial write
// is ever visible.
func (s *Store) MoveCard(ctx context.Context, cardID, originColumnID string, originOrderIDs []string, destColumnID string, destOrderIDs []string) (*board.Card, error) {
	var moved *board.Card
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		origin, err := setColumnFields(ctx, tx, originColumnID, map[string]any{"cardOrderIds": originOrderIDs})
		if err != nil {
			return err
		}
		if origin == nil {
			return fmt.Errorf("column %s not found", originColumnID)
		}

		dest, err := setColumnFields(ctx, tx, destColumnID, map[string]any{"cardOrderIds": destOrderIDs})
		if err != nil {
			return err
		}
		if dest == nil {
			return fmt.Errorf("column %s not found", destColumnID)
		}

		card, err := setCardFields(ctx, tx, cardID, map[string]any{"columnId": destColumnID})
		if err != nil {
			return err
		}
		if card == nil {
			return fmt.Errorf("card %s not found", cardID)
		}
		moved = card
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}
