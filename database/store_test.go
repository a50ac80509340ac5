package database

import (
	"context"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mthuyet/trello-app/board"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func seedBoard(t *testing.T, s *Store, ownerID string) *board.Board {
	t.Helper()
	now := time.Now()
	b := &board.Board{
		ID:             board.NewID(),
		Title:          "project board",
		Description:    "testing board",
		Type:           board.TypePublic,
		OwnerIDs:       []string{ownerID},
		MemberIDs:      []string{},
		ColumnOrderIDs: []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, s.CreateBoard(context.Background(), b))
	return b
}

func seedColumn(t *testing.T, s *Store, boardID, title string) *board.Column {
	t.Helper()
	col := &board.Column{
		ID:           board.NewID(),
		BoardID:      boardID,
		Title:        title,
		CardOrderIDs: []string{},
	}
	require.NoError(t, s.CreateColumn(context.Background(), col))
	return col
}

func seedCard(t *testing.T, s *Store, boardID, columnID, title string) *board.Card {
	t.Helper()
	c := &board.Card{
		ID:        board.NewID(),
		BoardID:   boardID,
		ColumnID:  columnID,
		Title:     title,
		MemberIDs: []string{},
		Comments:  []board.Comment{},
		Labels:    []board.Label{},
	}
	require.NoError(t, s.CreateCard(context.Background(), c))
	_, err := s.PushCardOrderID(context.Background(), columnID, c.ID)
	require.NoError(t, err)
	return c
}

func TestBoardRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := seedBoard(t, s, "owner-1")

	found, err := s.FindBoardByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, b.Title, found.Title)
	assert.Equal(t, []string{"owner-1"}, found.OwnerIDs)

	missing, err := s.FindBoardByID(ctx, board.NewID())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpdateBoardIgnoresImmutableFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := seedBoard(t, s, "owner-1")

	updated, err := s.UpdateBoard(ctx, b.ID, map[string]any{
		"title":    "renamed",
		"id":       "evil-id",
		"ownerIds": []string{"intruder"},
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, b.ID, updated.ID)
	assert.Equal(t, []string{"owner-1"}, updated.OwnerIDs)
}

func TestGetBoardsForUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		seedBoard(t, s, "owner-1")
	}
	seedBoard(t, s, "someone-else")

	boards, total, err := s.GetBoardsForUser(ctx, "owner-1", 1, 2, "")
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, boards, 2)

	boards, total, err = s.GetBoardsForUser(ctx, "owner-1", 2, 2, "")
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, boards, 1)

	_, total, err = s.GetBoardsForUser(ctx, "owner-1", 1, 10, "nomatch")
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestGetBoardDetails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := seedBoard(t, s, "owner-1")
	col1 := seedColumn(t, s, b.ID, "todo")
	col2 := seedColumn(t, s, b.ID, "done")
	_, err := s.PushColumnOrderID(ctx, b.ID, col1.ID)
	require.NoError(t, err)
	_, err = s.PushColumnOrderID(ctx, b.ID, col2.ID)
	require.NoError(t, err)
	card := seedCard(t, s, b.ID, col1.ID, "task")

	details, err := s.GetBoardDetails(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, details)
	require.Len(t, details.Columns, 2)

	var todo *board.Column
	for _, c := range details.Columns {
		if c.ID == col1.ID {
			todo = c
		}
	}
	require.NotNil(t, todo)
	require.Len(t, todo.Cards, 1)
	assert.Equal(t, card.ID, todo.Cards[0].ID)
}

func TestMoveCard(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := seedBoard(t, s, "owner-1")
	origin := seedColumn(t, s, b.ID, "todo")
	dest := seedColumn(t, s, b.ID, "doing")
	card := seedCard(t, s, b.ID, origin.ID, "task")
	other := seedCard(t, s, b.ID, dest.ID, "existing")

	moved, err := s.MoveCard(ctx, card.ID,
		origin.ID, []string{},
		dest.ID, []string{other.ID, card.ID})
	require.NoError(t, err)
	assert.Equal(t, dest.ID, moved.ColumnID)

	originAfter, err := s.FindColumnByID(ctx, origin.ID)
	require.NoError(t, err)
	assert.Empty(t, originAfter.CardOrderIDs)

	destAfter, err := s.FindColumnByID(ctx, dest.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{other.ID, card.ID}, destAfter.CardOrderIDs)

	cardAfter, err := s.FindCardByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, dest.ID, cardAfter.ColumnID)
}

func TestMoveCardRollsBackOnMissingColumn(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := seedBoard(t, s, "owner-1")
	origin := seedColumn(t, s, b.ID, "todo")
	card := seedCard(t, s, b.ID, origin.ID, "task")

	_, err := s.MoveCard(ctx, card.ID,
		origin.ID, []string{},
		board.NewID(), []string{card.ID})
	require.Error(t, err)

	// The whole transaction aborted: origin still holds the card and the
	// card still points at the origin column.
	originAfter, err := s.FindColumnByID(ctx, origin.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{card.ID}, originAfter.CardOrderIDs)

	cardAfter, err := s.FindCardByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, origin.ID, cardAfter.ColumnID)
}

func TestSetCardOrderIDsLastWriteWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := seedBoard(t, s, "owner-1")
	col := seedColumn(t, s, b.ID, "todo")
	c1 := seedCard(t, s, b.ID, col.ID, "one")
	c2 := seedCard(t, s, b.ID, col.ID, "two")
	c3 := seedCard(t, s, b.ID, col.ID, "three")

	// Two writers race on the same column; the array written last is the
	// one that sticks, wholesale.
	_, err := s.SetCardOrderIDs(ctx, col.ID, []string{c2.ID, c1.ID, c3.ID})
	require.NoError(t, err)
	_, err = s.SetCardOrderIDs(ctx, col.ID, []string{c3.ID, c2.ID, c1.ID})
	require.NoError(t, err)

	after, err := s.FindColumnByID(ctx, col.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{c3.ID, c2.ID, c1.ID}, after.CardOrderIDs)
}

func TestDeleteColumnCascadesCards(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := seedBoard(t, s, "owner-1")
	col := seedColumn(t, s, b.ID, "todo")
	card := seedCard(t, s, b.ID, col.ID, "task")

	require.NoError(t, s.DeleteColumn(ctx, col.ID))

	gone, err := s.FindColumnByID(ctx, col.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	cardGone, err := s.FindCardByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Nil(t, cardGone)
}

func TestDeleteBoardCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := seedBoard(t, s, "owner-1")
	col := seedColumn(t, s, b.ID, "todo")
	card := seedCard(t, s, b.ID, col.ID, "task")

	require.NoError(t, s.DeleteBoard(ctx, b.ID))

	boardAfter, err := s.FindBoardByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, boardAfter)

	colAfter, err := s.FindColumnByID(ctx, col.ID)
	require.NoError(t, err)
	assert.Nil(t, colAfter)

	cardAfter, err := s.FindCardByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Nil(t, cardAfter)
}

func TestInvitationLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := seedBoard(t, s, "owner-1")
	inv := &board.Invitation{
		ID:        board.NewID(),
		InviterID: "owner-1",
		InviteeID: "invitee-1",
		BoardID:   b.ID,
		Status:    board.InvitationPending,
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.CreateInvitation(ctx, inv))

	list, err := s.FindInvitationsByInvitee(ctx, "invitee-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, board.InvitationPending, list[0].Status)

	updated, err := s.UpdateInvitationStatus(ctx, inv.ID, board.InvitationAccepted)
	require.NoError(t, err)
	assert.Equal(t, board.InvitationAccepted, updated.Status)
}

func TestUsersByEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &board.User{ID: board.NewID(), Email: "dev@example.com", DisplayName: "dev"}
	require.NoError(t, s.CreateUser(ctx, u))

	found, err := s.FindUserByEmail(ctx, "dev@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, u.ID, found.ID)

	missing, err := s.FindUserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
