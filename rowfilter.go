package bsets

import (
	"sync"

	"github.com/RoaringBitmap/roaring"
)

// RowFilter is a set of rows a query skips when scoring, e.g. to
// exclude the query's own seed items from its results. It uses a
// roaring bitmap for fast membership testing over potentially millions
// of rows.
type RowFilter struct {
	bitmap *roaring.Bitmap
}

var rowFilterPool = sync.Pool{
	New: func() interface{} {
		return &RowFilter{bitmap: roaring.New()}
	},
}

// NewRowFilter creates a filter that excludes the given row indices
// from scoring. If rows is empty, NewRowFilter returns nil, meaning no
// filtering.
func NewRowFilter(rows []int32) *RowFilter {
	if len(rows) == 0 {
		return nil
	}

	f := rowFilterPool.Get().(*RowFilter)
	f.bitmap.Clear()
	for _, r := range rows {
		f.bitmap.Add(uint32(r))
	}
	return f
}

// Release returns the filter to the pool. The filter must not be used
// afterward.
func (f *RowFilter) Release() {
	if f != nil {
		rowFilterPool.Put(f)
	}
}

// ShouldSkip reports whether row should be excluded from scoring.
// A nil filter excludes nothing.
func (f *RowFilter) ShouldSkip(row int32) bool {
	return f != nil && f.bitmap.Contains(uint32(row))
}
