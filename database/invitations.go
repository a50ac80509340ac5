package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/mthuyet/trello-app/board"
)

const invitationsTable = "invitations"

func (s *Store) CreateInvitation(ctx context.Context, inv *board.Invitation) error {
	doc, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("failed to marshal invitation: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO invitations (id, invitee_id, doc) VALUES (?, ?, ?)",
		inv.ID, inv.InviteeID, string(doc))
	if err != nil {
		return fmt.Errorf("failed to insert invitation: %w", err)
	}
	return nil
}

// FindInvitationByID returns nil when no invitation with that id exists.
func (s *Store) FindInvitationByID(ctx context.Context, id string) (*board.Invitation, error) {
	doc, err := getDoc(ctx, s.db, invitationsTable, id)
	if err != nil || doc == nil {
		return nil, err
	}
	var inv board.Invitation
	if err := json.Unmarshal(doc, &inv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal invitation: %w", err)
	}
	return &inv, nil
}

// FindInvitationsByInvitee lists a user's invitations, newest first.
func (s *Store) FindInvitationsByInvitee(ctx context.Context, inviteeID string) ([]*board.Invitation, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT doc FROM invitations WHERE invitee_id = ?", inviteeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invitations: %w", err)
	}
	defer rows.Close()

	var invs []*board.Invitation
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		var inv board.Invitation
		if err := json.Unmarshal([]byte(doc), &inv); err != nil {
			return nil, fmt.Errorf("failed to unmarshal invitation: %w", err)
		}
		invs = append(invs, &inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(invs, func(i, j int) bool {
		return invs[i].CreatedAt.After(invs[j].CreatedAt)
	})
	return invs, nil
}

// UpdateInvitationStatus sets the invitation status and returns the updated
// invitation, or nil when it does not exist.
func (s *Store) UpdateInvitationStatus(ctx context.Context, id, status string) (*board.Invitation, error) {
	var updated *board.Invitation
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		doc, err := getDoc(ctx, tx, invitationsTable, id)
		if err != nil {
			return err
		}
		if doc == nil {
			return nil
		}
		var inv board.Invitation
		if err := json.Unmarshal(doc, &inv); err != nil {
			return fmt.Errorf("failed to unmarshal invitation: %w", err)
		}
		inv.Status = status
		inv.UpdatedAt = time.Now()
		merged, err := json.Marshal(&inv)
		if err != nil {
			return fmt.Errorf("failed to marshal invitation: %w", err)
		}
		if err := putDoc(ctx, tx, invitationsTable, id, merged); err != nil {
			return err
		}
		updated = &inv
		return nil
	})
	return updated, err
}
