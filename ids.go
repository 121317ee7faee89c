package bsets

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalizeFeature applies Unicode NFKC normalization and casefolds the
// feature label, so that two feature strings that only differ in
// Unicode representation or case collapse to the same column. This
// mirrors how the reference text index normalizes tokens before
// indexing them.
func normalizeFeature(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}

// itemTable is a bijection between external item ids and dense row
// indices. Row indices are assigned in insertion order and never
// reused; a row index is permanent once assigned.
type itemTable struct {
	toRow map[int64]int32
	toID  []int64
}

func newItemTable() *itemTable {
	return &itemTable{toRow: make(map[int64]int32)}
}

// getOrCreate returns the row index for id, allocating a fresh one if id
// has not been seen before. The second return value reports whether a
// new row was allocated.
func (t *itemTable) getOrCreate(id int64) (row int32, isNew bool) {
	if row, ok := t.toRow[id]; ok {
		return row, false
	}
	row = int32(len(t.toID))
	t.toRow[id] = row
	t.toID = append(t.toID, id)
	return row, true
}

// row resolves an item id to its row index. ok is false if the id has
// never been added.
func (t *itemTable) row(id int64) (row int32, ok bool) {
	row, ok = t.toRow[id]
	return row, ok
}

func (t *itemTable) len() int { return len(t.toID) }

// featureTable is a bijection between normalized feature labels and
// dense column indices, with the same insertion-order, never-reused
// assignment policy as itemTable. It additionally retains the original
// (pre-normalization) label so that .fts can be written back in the
// form the caller used to add it.
type featureTable struct {
	toCol  map[string]int32
	labels []string // labels[col] = the label as first added for that column
}

func newFeatureTable() *featureTable {
	return &featureTable{toCol: make(map[string]int32)}
}

func (t *featureTable) getOrCreate(label string) (col int32, isNew bool) {
	key := normalizeFeature(label)
	if col, ok := t.toCol[key]; ok {
		return col, false
	}
	col = int32(len(t.labels))
	t.toCol[key] = col
	t.labels = append(t.labels, label)
	return col, true
}

func (t *featureTable) len() int { return len(t.labels) }
