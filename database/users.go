package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mthuyet/trello-app/board"
)

func (s *Store) CreateUser(ctx context.Context, u *board.User) error {
	doc, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users (id, email, doc) VALUES (?, ?, ?)", u.ID, u.Email, string(doc))
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// FindUserByID returns nil when no user with that id exists.
func (s *Store) FindUserByID(ctx context.Context, id string) (*board.User, error) {
	doc, err := getDoc(ctx, s.db, "users", id)
	if err != nil || doc == nil {
		return nil, err
	}
	var u board.User
	if err := json.Unmarshal(doc, &u); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &u, nil
}

// FindUserByEmail returns nil when no user with that email exists.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*board.User, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT doc FROM users WHERE email = ?", email).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	var u board.User
	if err := json.Unmarshal([]byte(doc), &u); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &u, nil
}
