package client

import (
	"encoding/json"
	"fmt"

	"github.com/mthuyet/trello-app/board"
	"github.com/mthuyet/trello-app/services"
)

// StateReconciler holds the client's copy of one board and applies the room
// events the server publishes. Appliers are idempotent against the client's
// own echo: events carry full arrays and full entities, so replaying a
// change the client already made locally converges on the same state.
type StateReconciler struct {
	board *board.Board
}

func NewStateReconciler() *StateReconciler {
	return &StateReconciler{}
}

// Board returns the current local state, nil before hydration.
func (r *StateReconciler) Board() *board.Board { return r.board }

// Hydrate installs a freshly fetched board aggregate: columns and cards are
// sorted by their order arrays and empty columns get their placeholder.
// Called on initial load and after every reconnect.
func (r *StateReconciler) Hydrate(b *board.Board) {
	b.SortColumns()
	for _, col := range b.Columns {
		col.SortCards()
	}
	board.NormalizeColumns(b.Columns)
	r.board = b
}

// Snapshot returns a deep copy of the current state, for rollback when an
// optimistic local change is rejected by the server.
func (r *StateReconciler) Snapshot() (*board.Board, error) {
	if r.board == nil {
		return nil, nil
	}
	raw, err := json.Marshal(r.board)
	if err != nil {
		return nil, err
	}
	var copied board.Board
	if err := json.Unmarshal(raw, &copied); err != nil {
		return nil, err
	}
	return &copied, nil
}

// Restore replaces the current state with a previously taken snapshot.
func (r *StateReconciler) Restore(snapshot *board.Board) {
	r.board = snapshot
}

// ApplyEvent applies one room event to local state. Unknown event types are
// ignored so old clients tolerate new server events.
func (r *StateReconciler) ApplyEvent(eventType string, data json.RawMessage) error {
	if r.board == nil {
		return fmt.Errorf("no board hydrated")
	}

	switch eventType {
	case services.EventColumnOrderUpdated:
		var p services.ColumnOrderUpdatedPayload
		if err := unmarshal(data, &p); err != nil {
			return err
		}
		r.board.ColumnOrderIDs = p.ColumnOrderIDs
		r.board.SortColumns()

	case services.EventColumnUpdated:
		var p services.ColumnUpdatedPayload
		if err := unmarshal(data, &p); err != nil {
			return err
		}
		r.applyColumnUpdate(p.Column)

	case services.EventCardMoved:
		var p services.CardMovedPayload
		if err := unmarshal(data, &p); err != nil {
			return err
		}
		r.applyCardMove(p)

	case services.EventCardCreated:
		var p services.CardCreatedPayload
		if err := unmarshal(data, &p); err != nil {
			return err
		}
		r.applyCardCreate(p.Card)

	case services.EventCardUpdated:
		var p services.CardUpdatedPayload
		if err := unmarshal(data, &p); err != nil {
			return err
		}
		r.applyCardUpdate(p.Card)

	case services.EventCardDeleted:
		var p services.CardDeletedPayload
		if err := unmarshal(data, &p); err != nil {
			return err
		}
		r.applyCardDelete(p.ColumnID, p.CardID)

	case services.EventColumnCreated:
		var p services.ColumnCreatedPayload
		if err := unmarshal(data, &p); err != nil {
			return err
		}
		r.applyColumnCreate(p.Column)

	case services.EventColumnDeleted:
		var p services.ColumnDeletedPayload
		if err := unmarshal(data, &p); err != nil {
			return err
		}
		r.applyColumnDelete(p.ColumnID)

	case services.EventMemberJoined:
		var p services.MemberPayload
		if err := unmarshal(data, &p); err != nil {
			return err
		}
		if p.Member != nil && !r.board.IsMember(p.Member.ID) {
			r.board.MemberIDs = append(r.board.MemberIDs, p.Member.ID)
		}

	case services.EventMemberRemoved:
		var p services.MemberPayload
		if err := unmarshal(data, &p); err != nil {
			return err
		}
		if p.Member != nil {
			r.board.MemberIDs = removeString(r.board.MemberIDs, p.Member.ID)
		}

	case services.EventLabelAdded, services.EventLabelUpdated, services.EventLabelRemoved:
		var p services.LabelsPayload
		if err := unmarshal(data, &p); err != nil {
			return err
		}
		if card := r.findCard(p.CardID); card != nil {
			card.Labels = p.Labels
		}

	case services.EventBoardUpdated:
		var p services.BoardUpdatedPayload
		if err := unmarshal(data, &p); err != nil {
			return err
		}
		if p.Board != nil {
			r.board.Title = p.Board.Title
			r.board.Description = p.Board.Description
			r.board.Type = p.Board.Type
			r.board.UpdatedAt = p.Board.UpdatedAt
		}

	case services.EventBoardDeleted:
		r.board.Destroyed = true

	case services.EventInvitationCreated:
		// Notification only; no board state to change.

	default:
		// Ignore unknown events.
	}
	return nil
}

// applyColumnUpdate replaces a column's mutable fields. Covers renames and
// same-column card reorders, which arrive as the column's new order array.
func (r *StateReconciler) applyColumnUpdate(updated *board.Column) {
	if updated == nil {
		return
	}
	col := r.findColumn(updated.ID)
	if col == nil {
		return
	}
	col.Title = updated.Title
	col.UpdatedAt = updated.UpdatedAt
	if updated.CardOrderIDs != nil {
		col.CardOrderIDs = updated.CardOrderIDs
		col.SortCards()
		board.NormalizeColumns([]*board.Column{col})
	}
}

// applyCardMove replays a cross-column move: both order arrays are taken
// verbatim from the event, and the card entity is relocated.
func (r *StateReconciler) applyCardMove(p services.CardMovedPayload) {
	origin := r.findColumn(p.OriginalColumnID)
	dest := r.findColumn(p.NewColumnID)
	if origin == nil || dest == nil {
		return
	}

	var card *board.Card
	for _, col := range r.board.Columns {
		for i, c := range col.Cards {
			if c.ID == p.CardID {
				card = c
				col.Cards = append(col.Cards[:i], col.Cards[i+1:]...)
				break
			}
		}
		if card != nil {
			break
		}
	}
	if card == nil {
		card = p.Card
	}
	if card == nil {
		return
	}
	card.ColumnID = dest.ID

	origin.CardOrderIDs = p.OriginalCardOrderIDs
	origin.SortCards()
	dest.Cards = append(dest.Cards, card)
	dest.CardOrderIDs = p.NewCardOrderIDs
	dest.SortCards()
	board.NormalizeColumns([]*board.Column{origin, dest})
}

func (r *StateReconciler) applyCardCreate(card *board.Card) {
	if card == nil {
		return
	}
	col := r.findColumn(card.ColumnID)
	if col == nil {
		return
	}
	for _, c := range col.Cards {
		if c.ID == card.ID {
			return
		}
	}
	board.RemovePlaceholder(col)
	col.Cards = append(col.Cards, card)
	col.SyncCardOrderIDs()
}

func (r *StateReconciler) applyCardUpdate(updated *board.Card) {
	if updated == nil {
		return
	}
	col := r.findColumn(updated.ColumnID)
	if col == nil {
		return
	}
	for i, c := range col.Cards {
		if c.ID == updated.ID {
			col.Cards[i] = updated
			return
		}
	}
}

func (r *StateReconciler) applyCardDelete(columnID, cardID string) {
	col := r.findColumn(columnID)
	if col == nil {
		return
	}
	for i, c := range col.Cards {
		if c.ID == cardID {
			col.Cards = append(col.Cards[:i], col.Cards[i+1:]...)
			break
		}
	}
	col.SyncCardOrderIDs()
	board.EnsurePlaceholder(col)
}

func (r *StateReconciler) applyColumnCreate(col *board.Column) {
	if col == nil {
		return
	}
	for _, existing := range r.board.Columns {
		if existing.ID == col.ID {
			return
		}
	}
	board.EnsurePlaceholder(col)
	r.board.Columns = append(r.board.Columns, col)
	r.board.ColumnOrderIDs = append(r.board.ColumnOrderIDs, col.ID)
}

func (r *StateReconciler) applyColumnDelete(columnID string) {
	for i, col := range r.board.Columns {
		if col.ID == columnID {
			r.board.Columns = append(r.board.Columns[:i], r.board.Columns[i+1:]...)
			break
		}
	}
	r.board.ColumnOrderIDs = removeString(r.board.ColumnOrderIDs, columnID)
}

func (r *StateReconciler) findColumn(id string) *board.Column {
	for _, col := range r.board.Columns {
		if col.ID == id {
			return col
		}
	}
	return nil
}

func (r *StateReconciler) findCard(id string) *board.Card {
	for _, col := range r.board.Columns {
		for _, c := range col.Cards {
			if c.ID == id {
				return c
			}
		}
	}
	return nil
}

func removeString(ids []string, id string) []string {
	kept := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			kept = append(kept, v)
		}
	}
	return kept
}

func unmarshal(data json.RawMessage, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode event payload: %w", err)
	}
	return nil
}
