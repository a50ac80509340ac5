package board

import "strings"

// Placeholder cards are a client-only convention: an empty column
// materializes exactly one synthetic card so it remains a valid drop target.
// Placeholder ids are derived from the column id and must never reach the
// persistence layer.

const placeholderSuffix = "-placeholder-card"

// PlaceholderID returns the deterministic placeholder card id for a column.
func PlaceholderID(columnID string) string {
	return columnID + placeholderSuffix
}

// IsPlaceholderID reports whether id names a placeholder card.
func IsPlaceholderID(id string) bool {
	return strings.HasSuffix(id, placeholderSuffix)
}

// NewPlaceholderCard synthesizes the placeholder card for col.
func NewPlaceholderCard(col *Column) *Card {
	return &Card{
		ID:          PlaceholderID(col.ID),
		BoardID:     col.BoardID,
		ColumnID:    col.ID,
		Placeholder: true,
	}
}

// HasRealCards reports whether col holds at least one non-placeholder card.
func (c *Column) HasRealCards() bool {
	for _, card := range c.Cards {
		if !card.Placeholder {
			return true
		}
	}
	return false
}

// SyncCardOrderIDs recomputes c.CardOrderIDs from c.Cards.
func (c *Column) SyncCardOrderIDs() {
	ids := make([]string, len(c.Cards))
	for i, card := range c.Cards {
		ids[i] = card.ID
	}
	c.CardOrderIDs = ids
}

// EnsurePlaceholder materializes the placeholder card when col holds no
// cards. Idempotent: a column that already has cards (real or placeholder)
// is left untouched.
func EnsurePlaceholder(col *Column) {
	if len(col.Cards) > 0 {
		return
	}
	col.Cards = []*Card{NewPlaceholderCard(col)}
	col.CardOrderIDs = []string{col.Cards[0].ID}
}

// RemovePlaceholder strips any placeholder card from col and recomputes
// CardOrderIDs from the remaining real cards. No-op when none is present.
// Must run before the first real card is added to a previously-empty column.
func RemovePlaceholder(col *Column) {
	kept := col.Cards[:0]
	for _, card := range col.Cards {
		if !card.Placeholder {
			kept = append(kept, card)
		}
	}
	col.Cards = kept
	col.SyncCardOrderIDs()
}

// NormalizeColumns enforces placeholder exclusivity across cols: columns
// holding real cards lose their placeholder, columns left empty gain one.
// Arrays produced after normalization never mix placeholder and real ids.
func NormalizeColumns(cols []*Column) {
	for _, col := range cols {
		if col.HasRealCards() {
			RemovePlaceholder(col)
		} else {
			col.Cards = nil
			EnsurePlaceholder(col)
		}
	}
}

// RealCardOrderIDs returns the order ids that may be persisted: placeholder
// ids are excluded, so a column holding only its placeholder counts as empty.
func (c *Column) RealCardOrderIDs() []string {
	ids := make([]string, 0, len(c.CardOrderIDs))
	for _, id := range c.CardOrderIDs {
		if !IsPlaceholderID(id) {
			ids = append(ids, id)
		}
	}
	return ids
}
