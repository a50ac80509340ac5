package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReorder(t *testing.T) {
	seq := []string{"a", "b", "c", "d"}

	t.Run("moves forward", func(t *testing.T) {
		assert.Equal(t, []string{"b", "c", "a", "d"}, Reorder(seq, 0, 2))
	})

	t.Run("moves backward", func(t *testing.T) {
		assert.Equal(t, []string{"d", "a", "b", "c"}, Reorder(seq, 3, 0))
	})

	t.Run("same index is a no-op", func(t *testing.T) {
		assert.Equal(t, seq, Reorder(seq, 1, 1))
	})

	t.Run("out of range is a no-op", func(t *testing.T) {
		assert.Equal(t, seq, Reorder(seq, -1, 2))
		assert.Equal(t, seq, Reorder(seq, 0, 4))
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		in := []string{"a", "b", "c"}
		Reorder(in, 0, 2)
		assert.Equal(t, []string{"a", "b", "c"}, in)
	})

	t.Run("preserves every element", func(t *testing.T) {
		out := Reorder(seq, 2, 0)
		assert.ElementsMatch(t, seq, out)
		assert.Len(t, out, len(seq))
	})
}

func TestMapOrder(t *testing.T) {
	cards := []*Card{
		{ID: "c1", Title: "one"},
		{ID: "c2", Title: "two"},
		{ID: "c3", Title: "three"},
	}

	t.Run("orders by the id array", func(t *testing.T) {
		out := MapOrder(cards, []string{"c3", "c1", "c2"}, func(c *Card) string { return c.ID })
		assert.Equal(t, []string{"c3", "c1", "c2"}, cardIDs(out))
	})

	t.Run("unknown ids keep relative order at the tail", func(t *testing.T) {
		out := MapOrder(cards, []string{"c3"}, func(c *Card) string { return c.ID })
		assert.Equal(t, []string{"c3", "c1", "c2"}, cardIDs(out))
	})

	t.Run("empty order keeps input order", func(t *testing.T) {
		out := MapOrder(cards, nil, func(c *Card) string { return c.ID })
		assert.Equal(t, []string{"c1", "c2", "c3"}, cardIDs(out))
	})
}

func TestSortColumns(t *testing.T) {
	b := &Board{
		ColumnOrderIDs: []string{"col2", "col1"},
		Columns: []*Column{
			{ID: "col1"},
			{ID: "col2"},
		},
	}
	b.SortColumns()
	assert.Equal(t, "col2", b.Columns[0].ID)
	assert.Equal(t, "col1", b.Columns[1].ID)
}

func cardIDs(cards []*Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}
