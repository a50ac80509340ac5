// Package database is the persistence gateway: a document store over sqlite.
// Every entity row carries a JSON doc plus the scope columns queries need.
// Single-document mutations are read-modify-write inside a transaction;
// the one cross-entity invariant (a card move between columns) gets an
// explicit multi-document transaction.
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			doc TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS boards (
			id TEXT PRIMARY KEY,
			doc TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS columns (
			id TEXT PRIMARY KEY,
			board_id TEXT NOT NULL,
			doc TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS cards (
			id TEXT PRIMARY KEY,
			board_id TEXT NOT NULL,
			column_id TEXT NOT NULL,
			doc TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS invitations (
			id TEXT PRIMARY KEY,
			invitee_id TEXT NOT NULL,
			doc TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_columns_board ON columns(board_id)`,
		`CREATE INDEX IF NOT EXISTS idx_cards_board ON cards(board_id)`,
		`CREATE INDEX IF NOT EXISTS idx_cards_column ON cards(column_id)`,
		`CREATE INDEX IF NOT EXISTS idx_invitations_invitee ON invitations(invitee_id)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	log.Println("Database initialized successfully")
	return db, nil
}

// Store bundles all entity stores over one database handle.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// execer is satisfied by both *sql.DB and *sql.Tx so the single-document
// helpers can run standalone or inside a larger transaction.
type execer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// getDoc loads one document. Returns nil with no error when the row is
// absent; callers translate that into their own not-found handling.
func getDoc(ctx context.Context, q execer, table, id string) ([]byte, error) {
	var doc string
	err := q.QueryRowContext(ctx, "SELECT doc FROM "+table+" WHERE id = ?", id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	return []byte(doc), nil
}

func putDoc(ctx context.Context, q execer, table, id string, doc []byte) error {
	res, err := q.ExecContext(ctx, "UPDATE "+table+" SET doc = ? WHERE id = ?", string(doc), id)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	if n != 1 {
		return fmt.Errorf("%s %s not found", table, id)
	}
	return nil
}

// applyFields merges a field map into a JSON document, dropping fields the
// caller must never overwrite.
func applyFields(doc []byte, fields map[string]any, immutable ...string) ([]byte, error) {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	for key, value := range fields {
		blocked := false
		for _, f := range immutable {
			if key == f {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}
		m[key] = value
	}
	return json.Marshal(m)
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
