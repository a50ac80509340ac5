package services

import (
	"context"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/mthuyet/trello-app/board"
	"github.com/mthuyet/trello-app/database"
)

// fakePublisher records published events for assertions.
type fakePublisher struct {
	events []publishedEvent
}

type publishedEvent struct {
	boardID       string
	message       WebSocketMessage
	excludeUserID string
}

func (f *fakePublisher) Publish(boardID string, msg WebSocketMessage, excludeUserID string) {
	f.events = append(f.events, publishedEvent{boardID: boardID, message: msg, excludeUserID: excludeUserID})
}

func (f *fakePublisher) last(t *testing.T) publishedEvent {
	t.Helper()
	require.NotEmpty(t, f.events)
	return f.events[len(f.events)-1]
}

type fixture struct {
	store       *database.Store
	pub         *fakePublisher
	boards      *BoardService
	columns     *ColumnService
	cards       *CardService
	invitations *InvitationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := database.NewStore(db)
	pub := &fakePublisher{}
	return &fixture{
		store:       store,
		pub:         pub,
		boards:      NewBoardService(store, pub),
		columns:     NewColumnService(store, pub),
		cards:       NewCardService(store, pub),
		invitations: NewInvitationService(store, pub),
	}
}

func (f *fixture) user(t *testing.T, email string) *board.User {
	t.Helper()
	u := &board.User{ID: board.NewID(), Email: email, DisplayName: email}
	require.NoError(t, f.store.CreateUser(context.Background(), u))
	return u
}

func (f *fixture) board(t *testing.T, ownerID string) *board.Board {
	t.Helper()
	b, err := f.boards.CreateBoard(context.Background(), ownerID, CreateBoardInput{
		Title:       "project board",
		Description: "a board for testing",
		Type:        board.TypePublic,
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) column(t *testing.T, userID, boardID, title string) *board.Column {
	t.Helper()
	col, err := f.columns.CreateColumn(context.Background(), userID, CreateColumnInput{BoardID: boardID, Title: title})
	require.NoError(t, err)
	return col
}

func (f *fixture) card(t *testing.T, userID, boardID, columnID, title string) *board.Card {
	t.Helper()
	c, err := f.cards.CreateCard(context.Background(), userID, CreateCardInput{BoardID: boardID, ColumnID: columnID, Title: title})
	require.NoError(t, err)
	return c
}

func (f *fixture) addMember(t *testing.T, boardID, userID string) {
	t.Helper()
	_, err := f.store.PushBoardMemberID(context.Background(), boardID, userID)
	require.NoError(t, err)
}
