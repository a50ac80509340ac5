package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mthuyet/trello-app/board"
)

func testBoard() *board.Board {
	col1 := &board.Column{
		ID:      "col-1",
		BoardID: "board-1",
		Cards: []*board.Card{
			{ID: "card-a", BoardID: "board-1", ColumnID: "col-1"},
			{ID: "card-b", BoardID: "board-1", ColumnID: "col-1"},
			{ID: "card-c", BoardID: "board-1", ColumnID: "col-1"},
		},
	}
	col2 := &board.Column{
		ID:      "col-2",
		BoardID: "board-1",
		Cards: []*board.Card{
			{ID: "card-d", BoardID: "board-1", ColumnID: "col-2"},
			{ID: "card-e", BoardID: "board-1", ColumnID: "col-2"},
		},
	}
	col1.SyncCardOrderIDs()
	col2.SyncCardOrderIDs()
	return &board.Board{
		ID:             "board-1",
		ColumnOrderIDs: []string{"col-1", "col-2"},
		Columns:        []*board.Column{col1, col2},
	}
}

func column(t *testing.T, b *board.Board, id string) *board.Column {
	t.Helper()
	for _, col := range b.Columns {
		if col.ID == id {
			return col
		}
	}
	t.Fatalf("column %s not found", id)
	return nil
}

func TestColumnDragEnd(t *testing.T) {
	b := testBoard()
	var reported []string
	d := NewDragReconciler(b, Callbacks{
		OnMoveColumn: func(order []string) { reported = order },
	})

	d.HandleDragStart("col-2", DragTypeColumn)
	d.HandleDragEnd("col-1", Rect{}, Rect{})

	assert.Equal(t, []string{"col-2", "col-1"}, b.ColumnOrderIDs)
	assert.Equal(t, []string{"col-2", "col-1"}, reported)
	assert.Equal(t, "col-2", b.Columns[0].ID)
	assert.False(t, d.Dragging())
}

func TestColumnDragEndOnSelfIsNoOp(t *testing.T) {
	b := testBoard()
	called := false
	d := NewDragReconciler(b, Callbacks{
		OnMoveColumn: func([]string) { called = true },
	})

	d.HandleDragStart("col-1", DragTypeColumn)
	d.HandleDragEnd("col-1", Rect{}, Rect{})

	assert.False(t, called)
	assert.Equal(t, []string{"col-1", "col-2"}, b.ColumnOrderIDs)
}

func TestCardDragSameColumn(t *testing.T) {
	b := testBoard()
	var gotColumnID string
	var gotOrder []string
	d := NewDragReconciler(b, Callbacks{
		OnMoveCardSameColumn: func(columnID string, order []string) {
			gotColumnID = columnID
			gotOrder = order
		},
	})

	d.HandleDragStart("card-a", DragTypeCard)
	d.HandleDragEnd("card-c", Rect{}, Rect{})

	assert.Equal(t, "col-1", gotColumnID)
	assert.Equal(t, []string{"card-b", "card-c", "card-a"}, gotOrder)
	assert.Equal(t, []string{"card-b", "card-c", "card-a"}, column(t, b, "col-1").CardOrderIDs)
}

func TestCardDropWithoutReorderFiresNoCallback(t *testing.T) {
	b := testBoard()
	called := false
	d := NewDragReconciler(b, Callbacks{
		OnMoveCardSameColumn: func(string, []string) { called = true },
	})

	// Released over the column body: no hovered card, so the order is
	// unchanged and no move is reported.
	d.HandleDragStart("card-a", DragTypeCard)
	d.HandleDragEnd("col-1", Rect{}, Rect{})
	assert.False(t, called)
	assert.Equal(t, []string{"card-a", "card-b", "card-c"}, column(t, b, "col-1").CardOrderIDs)

	// Released over itself.
	d.HandleDragStart("card-a", DragTypeCard)
	d.HandleDragEnd("card-a", Rect{}, Rect{})
	assert.False(t, called)
}

func TestCardDragAcrossColumns(t *testing.T) {
	b := testBoard()
	var move CrossColumnMove
	d := NewDragReconciler(b, Callbacks{
		OnMoveCardDifferentColumn: func(m CrossColumnMove) { move = m },
	})

	d.HandleDragStart("card-a", DragTypeCard)

	// Hovering above card-d inserts before it.
	active := Rect{Left: 0, Top: 10, Width: 100, Height: 40}
	overD := Rect{Left: 200, Top: 0, Width: 100, Height: 40}
	d.HandleDragOver("card-d", active, overD)

	col2 := column(t, b, "col-2")
	assert.Equal(t, []string{"card-a", "card-d", "card-e"}, col2.CardOrderIDs)
	assert.Equal(t, "col-2", col2.Cards[0].ColumnID)

	d.HandleDragEnd("card-a", active, overD)

	assert.Equal(t, "card-a", move.CardID)
	assert.Equal(t, "col-1", move.OriginalColumnID)
	assert.Equal(t, []string{"card-b", "card-c"}, move.OriginalCardOrderIDs)
	assert.Equal(t, "col-2", move.NewColumnID)
	assert.Equal(t, []string{"card-a", "card-d", "card-e"}, move.NewCardOrderIDs)
}

func TestCardDragBelowHoveredCardInsertsAfter(t *testing.T) {
	b := testBoard()
	d := NewDragReconciler(b, Callbacks{})

	d.HandleDragStart("card-a", DragTypeCard)

	// The active rect's top edge sits below card-d's lower edge.
	active := Rect{Left: 200, Top: 60, Width: 100, Height: 40}
	overD := Rect{Left: 200, Top: 0, Width: 100, Height: 40}
	d.HandleDragOver("card-d", active, overD)

	assert.Equal(t, []string{"card-d", "card-a", "card-e"}, column(t, b, "col-2").CardOrderIDs)
}

func TestCardDragEmptiesColumn(t *testing.T) {
	b := testBoard()
	col1 := column(t, b, "col-1")
	col1.Cards = col1.Cards[:1] // only card-a
	col1.SyncCardOrderIDs()

	var move CrossColumnMove
	d := NewDragReconciler(b, Callbacks{
		OnMoveCardDifferentColumn: func(m CrossColumnMove) { move = m },
	})

	d.HandleDragStart("card-a", DragTypeCard)
	d.HandleDragOver("col-2", Rect{}, Rect{})
	d.HandleDragEnd("card-a", Rect{}, Rect{})

	// The emptied column keeps its placeholder locally but reports an empty
	// order for persistence.
	require.Len(t, col1.Cards, 1)
	assert.True(t, col1.Cards[0].Placeholder)
	assert.Empty(t, move.OriginalCardOrderIDs)
	assert.Equal(t, []string{"card-d", "card-e", "card-a"}, move.NewCardOrderIDs)
}

func TestCardDragIntoEmptyColumn(t *testing.T) {
	b := testBoard()
	col2 := column(t, b, "col-2")
	col2.Cards = nil
	board.EnsurePlaceholder(col2)

	var move CrossColumnMove
	d := NewDragReconciler(b, Callbacks{
		OnMoveCardDifferentColumn: func(m CrossColumnMove) { move = m },
	})

	d.HandleDragStart("card-a", DragTypeCard)
	d.HandleDragOver(board.PlaceholderID("col-2"), Rect{}, Rect{})
	d.HandleDragEnd("card-a", Rect{}, Rect{})

	// The placeholder is gone and never reaches the reported order.
	require.Len(t, col2.Cards, 1)
	assert.Equal(t, "card-a", col2.Cards[0].ID)
	assert.Equal(t, []string{"card-a"}, move.NewCardOrderIDs)
}

func TestCardDragSingleCardIntoEmptyColumn(t *testing.T) {
	b := testBoard()
	col1 := column(t, b, "col-1")
	col1.Cards = col1.Cards[:1] // only card-a
	col1.SyncCardOrderIDs()
	col2 := column(t, b, "col-2")
	col2.Cards = nil
	board.EnsurePlaceholder(col2)

	var move CrossColumnMove
	d := NewDragReconciler(b, Callbacks{
		OnMoveCardDifferentColumn: func(m CrossColumnMove) { move = m },
	})

	d.HandleDragStart("card-a", DragTypeCard)
	d.HandleDragOver(board.PlaceholderID("col-2"), Rect{}, Rect{})
	d.HandleDragEnd("card-a", Rect{}, Rect{})

	// The emptied origin regains a fresh placeholder, the destination loses
	// its placeholder, and neither placeholder id appears in the reported
	// orders.
	require.Len(t, col1.Cards, 1)
	assert.True(t, col1.Cards[0].Placeholder)
	assert.Equal(t, board.PlaceholderID("col-1"), col1.Cards[0].ID)
	assert.Equal(t, []string{"card-a"}, col2.CardOrderIDs)

	assert.Equal(t, "col-1", move.OriginalColumnID)
	assert.Equal(t, "col-2", move.NewColumnID)
	assert.Empty(t, move.OriginalCardOrderIDs)
	assert.Equal(t, []string{"card-a"}, move.NewCardOrderIDs)
}

func TestCardDragCancelKeepsLocalStateWithoutCallback(t *testing.T) {
	b := testBoard()
	called := false
	d := NewDragReconciler(b, Callbacks{
		OnMoveCardDifferentColumn: func(CrossColumnMove) { called = true },
		OnMoveCardSameColumn:      func(string, []string) { called = true },
	})

	d.HandleDragStart("card-a", DragTypeCard)
	d.HandleDragOver("card-d", Rect{}, Rect{Top: 100})
	d.HandleDragCancel()

	assert.False(t, called)
	assert.False(t, d.Dragging())
	// The preview from the Over step remains; a rollback is the state
	// reconciler's job via snapshots.
	assert.Contains(t, column(t, b, "col-2").CardOrderIDs, "card-a")
}

func TestClosestCorners(t *testing.T) {
	near := Droppable{ID: "near", Rect: Rect{Left: 10, Top: 0, Width: 100, Height: 100}}
	far := Droppable{ID: "far", Rect: Rect{Left: 500, Top: 0, Width: 100, Height: 100}}

	got := ClosestCorners(Rect{Left: 0, Top: 0, Width: 100, Height: 100}, []Droppable{far, near})
	assert.Equal(t, "near", got)

	assert.Empty(t, ClosestCorners(Rect{}, nil))
}

func TestPointerWithin(t *testing.T) {
	a := Droppable{ID: "a", Rect: Rect{Left: 0, Top: 0, Width: 100, Height: 100}}
	b := Droppable{ID: "b", Rect: Rect{Left: 40, Top: 40, Width: 100, Height: 100}}

	// Both contain the pointer; b's center is closer.
	got := PointerWithin(Point{X: 80, Y: 80}, []Droppable{a, b})
	assert.Equal(t, []string{"b", "a"}, got)

	assert.Empty(t, PointerWithin(Point{X: 500, Y: 500}, []Droppable{a, b}))
}

func TestCollisionTargetNarrowsToHoveredColumn(t *testing.T) {
	b := testBoard()
	d := NewDragReconciler(b, Callbacks{})
	d.HandleDragStart("card-a", DragTypeCard)

	droppables := []Droppable{
		{ID: "col-2", Rect: Rect{Left: 200, Top: 0, Width: 120, Height: 400}},
		{ID: "card-d", Rect: Rect{Left: 210, Top: 10, Width: 100, Height: 40}},
		{ID: "card-e", Rect: Rect{Left: 210, Top: 60, Width: 100, Height: 40}},
	}

	// The pointer hits only the column body; the target narrows to the
	// column's own card nearest the active rect.
	active := Rect{Left: 210, Top: 55, Width: 100, Height: 40}
	got := d.CollisionTarget(Point{X: 260, Y: 230}, active, droppables)
	assert.Equal(t, "card-e", got)
}

func TestCollisionTargetNarrowingUsesCornerProximity(t *testing.T) {
	b := testBoard()
	d := NewDragReconciler(b, Callbacks{})
	d.HandleDragStart("card-a", DragTypeCard)

	// card-d is a tiny rect sharing the active rect's center; card-e nearly
	// coincides with the active rect. Center distance favors card-d, corner
	// proximity favors card-e. The narrowing pass must go by corners.
	active := Rect{Left: 0, Top: 0, Width: 100, Height: 100}
	droppables := []Droppable{
		{ID: "col-2", Rect: Rect{Left: 0, Top: 0, Width: 300, Height: 400}},
		{ID: "card-d", Rect: Rect{Left: 45, Top: 45, Width: 10, Height: 10}},
		{ID: "card-e", Rect: Rect{Left: 2, Top: 2, Width: 100, Height: 100}},
	}

	// The pointer hits only the column body.
	got := d.CollisionTarget(Point{X: 250, Y: 350}, active, droppables)
	assert.Equal(t, "card-e", got)
	assert.Equal(t, "card-e", ClosestCorners(active, droppables[1:]))
}

func TestCollisionTargetFallsBackToLastOver(t *testing.T) {
	b := testBoard()
	d := NewDragReconciler(b, Callbacks{})
	d.HandleDragStart("card-a", DragTypeCard)

	droppables := []Droppable{
		{ID: "card-d", Rect: Rect{Left: 0, Top: 0, Width: 100, Height: 40}},
	}

	first := d.CollisionTarget(Point{X: 50, Y: 20}, Rect{}, droppables)
	assert.Equal(t, "card-d", first)

	// Pointer leaves every droppable; the previous target holds.
	second := d.CollisionTarget(Point{X: 900, Y: 900}, Rect{}, droppables)
	assert.Equal(t, "card-d", second)
}

func TestCollisionTargetColumnDragUsesCorners(t *testing.T) {
	b := testBoard()
	d := NewDragReconciler(b, Callbacks{})
	d.HandleDragStart("col-1", DragTypeColumn)

	droppables := []Droppable{
		{ID: "col-1", Rect: Rect{Left: 0, Top: 0, Width: 120, Height: 400}},
		{ID: "col-2", Rect: Rect{Left: 200, Top: 0, Width: 120, Height: 400}},
	}

	got := d.CollisionTarget(Point{}, Rect{Left: 180, Top: 0, Width: 120, Height: 400}, droppables)
	assert.Equal(t, "col-2", got)
}
