package board

import "sort"

// Reorder returns a copy of seq with the element at from moved to to. The
// move is stable: no element is created or destroyed. Out-of-range indexes
// and from == to return an unchanged copy.
func Reorder[T any](seq []T, from, to int) []T {
	out := make([]T, len(seq))
	copy(out, seq)
	if from == to || from < 0 || to < 0 || from >= len(out) || to >= len(out) {
		return out
	}
	item := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]T{item}, out[to:]...)...)
	return out
}

// MapOrder sorts items by the position of their ids in orderIDs. Items whose
// id is absent from orderIDs keep their relative input order at the tail.
func MapOrder[T any](items []T, orderIDs []string, id func(T) string) []T {
	pos := make(map[string]int, len(orderIDs))
	for i, oid := range orderIDs {
		pos[oid] = i
	}
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		pi, iok := pos[id(out[i])]
		pj, jok := pos[id(out[j])]
		if iok && jok {
			return pi < pj
		}
		return iok && !jok
	})
	return out
}

// SortColumns orders b.Columns by b.ColumnOrderIDs.
func (b *Board) SortColumns() {
	b.Columns = MapOrder(b.Columns, b.ColumnOrderIDs, func(c *Column) string { return c.ID })
}

// SortCards orders c.Cards by c.CardOrderIDs.
func (c *Column) SortCards() {
	c.Cards = MapOrder(c.Cards, c.CardOrderIDs, func(card *Card) string { return card.ID })
}
