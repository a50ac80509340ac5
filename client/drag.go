// Package client implements the board-side engine a UI embeds: collision
// detection and optimistic reordering for drag-and-drop, and an event-driven
// reconciler that keeps local board state in sync with the server's room
// events.
package client

import (
	"math"

	"github.com/mthuyet/trello-app/board"
)

// DragType distinguishes what is being dragged.
type DragType string

const (
	DragTypeColumn DragType = "column"
	DragTypeCard   DragType = "card"
)

// Point is a pointer position in the board's coordinate space.
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned droppable rectangle.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

func (r Rect) Right() float64  { return r.Left + r.Width }
func (r Rect) Bottom() float64 { return r.Top + r.Height }

func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right() && p.Y >= r.Top && p.Y <= r.Bottom()
}

func (r Rect) Center() Point {
	return Point{X: r.Left + r.Width/2, Y: r.Top + r.Height/2}
}

func (r Rect) corners() [4]Point {
	return [4]Point{
		{r.Left, r.Top},
		{r.Right(), r.Top},
		{r.Left, r.Bottom()},
		{r.Right(), r.Bottom()},
	}
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Droppable is a drop target the layout currently exposes: a column or a
// card (placeholders included, so empty columns stay droppable).
type Droppable struct {
	ID   string
	Rect Rect
}

// ClosestCorners returns the id of the droppable whose four corners are
// nearest, in summed distance, to the active rect's corners. Empty id when
// there are no droppables.
func ClosestCorners(active Rect, droppables []Droppable) string {
	bestID := ""
	bestDist := math.Inf(1)
	ac := active.corners()
	for _, d := range droppables {
		dc := d.Rect.corners()
		sum := 0.0
		for i := range ac {
			sum += distance(ac[i], dc[i])
		}
		if sum < bestDist {
			bestDist = sum
			bestID = d.ID
		}
	}
	return bestID
}

// ClosestCenter returns the id of the droppable whose center is nearest to
// the active rect's center.
func ClosestCenter(active Rect, droppables []Droppable) string {
	bestID := ""
	bestDist := math.Inf(1)
	c := active.Center()
	for _, d := range droppables {
		if dist := distance(c, d.Rect.Center()); dist < bestDist {
			bestDist = dist
			bestID = d.ID
		}
	}
	return bestID
}

// PointerWithin returns the ids of droppables containing the pointer, nearest
// center first.
func PointerWithin(pointer Point, droppables []Droppable) []string {
	type hit struct {
		id   string
		dist float64
	}
	var hits []hit
	for _, d := range droppables {
		if d.Rect.Contains(pointer) {
			hits = append(hits, hit{id: d.ID, dist: distance(pointer, d.Rect.Center())})
		}
	}
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].dist < hits[j-1].dist; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.id
	}
	return ids
}

// CrossColumnMove is what the engine reports when a drag ends in a different
// column: everything the transactional move endpoint needs.
type CrossColumnMove struct {
	CardID               string
	OriginalColumnID     string
	OriginalCardOrderIDs []string
	NewColumnID          string
	NewCardOrderIDs      []string
}

// Callbacks receive the persistence-worthy outcome of a finished drag. Order
// arrays handed to callbacks never contain placeholder ids. Callbacks carry
// only what the wire calls need; the reordered card entities are already
// applied to the reconciler's Board by the time a callback fires.
type Callbacks struct {
	OnMoveColumn              func(newColumnOrderIDs []string)
	OnMoveCardSameColumn      func(columnID string, newCardOrderIDs []string)
	OnMoveCardDifferentColumn func(move CrossColumnMove)
}

// DragReconciler applies a drag gesture to local board state optimistically
// and reports the final outcome through callbacks. One gesture at a time:
// Start, zero or more Over steps, then End or Cancel.
type DragReconciler struct {
	board     *board.Board
	callbacks Callbacks

	activeID   string
	activeType DragType

	// originColumn snapshots the dragged card's column at drag start so the
	// gesture can still classify same-column vs cross-column after Over
	// steps have already moved the card locally.
	originColumn *board.Column

	// lastOverID is the fallback drop target when the pointer leaves every
	// droppable mid-flight, which happens when a card drag empties a column.
	lastOverID string
}

func NewDragReconciler(b *board.Board, callbacks Callbacks) *DragReconciler {
	return &DragReconciler{board: b, callbacks: callbacks}
}

// Board exposes the local state the reconciler mutates.
func (d *DragReconciler) Board() *board.Board { return d.board }

// Dragging reports whether a gesture is in flight.
func (d *DragReconciler) Dragging() bool { return d.activeID != "" }

// CollisionTarget resolves the current drop target for the in-flight gesture.
// Columns use corner proximity. Cards use pointer containment, narrowed to
// the hovered column's own cards so tall neighbours don't steal the drop;
// with no containment hit the previous target is kept.
func (d *DragReconciler) CollisionTarget(pointer Point, activeRect Rect, droppables []Droppable) string {
	if d.activeType == DragTypeColumn {
		return ClosestCorners(activeRect, droppables)
	}

	within := PointerWithin(pointer, droppables)
	if len(within) == 0 {
		return d.lastOverID
	}
	overID := within[0]

	if col := d.findColumn(overID); col != nil {
		inColumn := make([]Droppable, 0, len(col.CardOrderIDs))
		for _, dr := range droppables {
			if dr.ID == overID || dr.ID == d.activeID {
				continue
			}
			for _, cardID := range col.CardOrderIDs {
				if dr.ID == cardID {
					inColumn = append(inColumn, dr)
					break
				}
			}
		}
		if cardID := ClosestCorners(activeRect, inColumn); cardID != "" {
			overID = cardID
		}
	}

	d.lastOverID = overID
	return overID
}

// HandleDragStart begins a gesture. For cards the owning column is
// snapshotted for end-of-gesture classification.
func (d *DragReconciler) HandleDragStart(activeID string, dragType DragType) {
	d.activeID = activeID
	d.activeType = dragType
	d.lastOverID = ""
	d.originColumn = nil
	if dragType == DragTypeCard {
		if col := d.findColumnOfCard(activeID); col != nil {
			snapshot := *col
			snapshot.CardOrderIDs = append([]string{}, col.CardOrderIDs...)
			snapshot.Cards = append([]*board.Card{}, col.Cards...)
			d.originColumn = &snapshot
		}
	}
}

// HandleDragOver updates local state while a card crosses into another
// column, so the UI previews the move. Column drags preview nothing until
// the drop.
func (d *DragReconciler) HandleDragOver(overID string, activeRect, overRect Rect) {
	if d.activeType != DragTypeCard || overID == "" || overID == d.activeID {
		return
	}

	fromCol := d.findColumnOfCard(d.activeID)
	toCol := d.columnForTarget(overID)
	if fromCol == nil || toCol == nil || fromCol.ID == toCol.ID {
		return
	}
	d.moveCardAcrossColumns(fromCol, toCol, overID, activeRect, overRect)
}

// HandleDragEnd finishes the gesture, applies the final position, and
// invokes the matching callback.
func (d *DragReconciler) HandleDragEnd(overID string, activeRect, overRect Rect) {
	defer d.reset()

	if overID == "" {
		return
	}

	if d.activeType == DragTypeColumn {
		d.endColumnDrag(overID)
		return
	}
	d.endCardDrag(overID, activeRect, overRect)
}

// HandleDragCancel abandons the gesture. Local state keeps whatever the Over
// steps already applied; nothing is persisted. Callers wanting a rollback
// pair this with StateReconciler snapshots.
func (d *DragReconciler) HandleDragCancel() {
	d.reset()
}

func (d *DragReconciler) reset() {
	d.activeID = ""
	d.activeType = ""
	d.originColumn = nil
	d.lastOverID = ""
}

func (d *DragReconciler) endColumnDrag(overID string) {
	if overID == d.activeID {
		return
	}
	from := indexOf(d.board.ColumnOrderIDs, d.activeID)
	to := indexOf(d.board.ColumnOrderIDs, overID)
	if from < 0 || to < 0 {
		return
	}

	d.board.ColumnOrderIDs = board.Reorder(d.board.ColumnOrderIDs, from, to)
	d.board.SortColumns()

	if d.callbacks.OnMoveColumn != nil {
		d.callbacks.OnMoveColumn(append([]string{}, d.board.ColumnOrderIDs...))
	}
}

func (d *DragReconciler) endCardDrag(overID string, activeRect, overRect Rect) {
	if d.originColumn == nil {
		return
	}
	overCol := d.columnForTarget(overID)
	if overCol == nil {
		return
	}

	if d.originColumn.ID != overCol.ID {
		// The Over steps already parked the card in the destination; apply
		// the final in-column position, then report the whole move.
		fromCol := d.findColumnOfCard(d.activeID)
		if fromCol != nil && fromCol.ID != overCol.ID {
			d.moveCardAcrossColumns(fromCol, overCol, overID, activeRect, overRect)
		} else if fromCol != nil {
			d.reorderWithinColumn(overCol, overID)
		}

		originCol := d.findColumn(d.originColumn.ID)
		move := CrossColumnMove{
			CardID:           d.activeID,
			OriginalColumnID: d.originColumn.ID,
			NewColumnID:      overCol.ID,
			NewCardOrderIDs:  overCol.RealCardOrderIDs(),
		}
		if originCol != nil {
			move.OriginalCardOrderIDs = originCol.RealCardOrderIDs()
		}
		if d.callbacks.OnMoveCardDifferentColumn != nil {
			d.callbacks.OnMoveCardDifferentColumn(move)
		}
		return
	}

	// Same column from start to finish. A drop that did not change the
	// order (released over itself or over the column body) reports nothing.
	if overID == d.activeID {
		return
	}
	if !d.reorderWithinColumn(overCol, overID) {
		return
	}
	if d.callbacks.OnMoveCardSameColumn != nil {
		d.callbacks.OnMoveCardSameColumn(overCol.ID, overCol.RealCardOrderIDs())
	}
}

// reorderWithinColumn moves the active card to the hovered card's position
// and reports whether the order actually changed.
func (d *DragReconciler) reorderWithinColumn(col *board.Column, overID string) bool {
	from := indexOfCard(col.Cards, d.activeID)
	to := indexOfCard(col.Cards, overID)
	if from < 0 || to < 0 || from == to {
		return false
	}
	col.Cards = board.Reorder(col.Cards, from, to)
	col.SyncCardOrderIDs()
	return true
}

// moveCardAcrossColumns removes the active card from its column and inserts
// it into the target column at the position the pointer indicates.
// Placeholder exclusivity is restored on both sides.
func (d *DragReconciler) moveCardAcrossColumns(fromCol, toCol *board.Column, overID string, activeRect, overRect Rect) {
	cardIdx := indexOfCard(fromCol.Cards, d.activeID)
	if cardIdx < 0 {
		return
	}
	card := fromCol.Cards[cardIdx]

	newIndex := calculateNewCardIndex(indexOfCard(toCol.Cards, overID), len(toCol.Cards), activeRect, overRect)

	fromCol.Cards = append(fromCol.Cards[:cardIdx], fromCol.Cards[cardIdx+1:]...)
	fromCol.SyncCardOrderIDs()
	board.EnsurePlaceholder(fromCol)

	board.RemovePlaceholder(toCol)
	if newIndex > len(toCol.Cards) {
		newIndex = len(toCol.Cards)
	}
	card.ColumnID = toCol.ID
	toCol.Cards = append(toCol.Cards[:newIndex], append([]*board.Card{card}, toCol.Cards[newIndex:]...)...)
	toCol.SyncCardOrderIDs()
}

// calculateNewCardIndex derives the insertion index from the hovered card's
// position: dropping below the hovered card's lower edge inserts after it.
// Hovering the column itself (no card hit) appends.
func calculateNewCardIndex(overCardIndex, cardCount int, activeRect, overRect Rect) int {
	if overCardIndex < 0 {
		return cardCount
	}
	modifier := 0
	if activeRect.Top > overRect.Bottom() {
		modifier = 1
	}
	return overCardIndex + modifier
}

// columnForTarget resolves a drop target id to a column: either the column
// itself or the column owning the targeted card.
func (d *DragReconciler) columnForTarget(id string) *board.Column {
	if col := d.findColumn(id); col != nil {
		return col
	}
	return d.findColumnOfCard(id)
}

func (d *DragReconciler) findColumn(id string) *board.Column {
	for _, col := range d.board.Columns {
		if col.ID == id {
			return col
		}
	}
	return nil
}

func (d *DragReconciler) findColumnOfCard(cardID string) *board.Column {
	for _, col := range d.board.Columns {
		for _, c := range col.Cards {
			if c.ID == cardID {
				return col
			}
		}
	}
	return nil
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func indexOfCard(cards []*board.Card, id string) int {
	for i, c := range cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}
