package bsets

import "sync"

// heapEntry is one candidate row and its log score, as tracked by the
// top-K selection heap.
type heapEntry struct {
	row   int32
	score float64
}

// less reports whether a is a worse candidate than b: a lower score,
// or an equal score with a is the larger (later) row index. The
// min-heap's root is always the worst surviving candidate, the one
// that gets evicted when a better one arrives. This gives ties their
// required resolution: on equal scores, the lower row index wins.
func less(a, b heapEntry) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	return a.row > b.row
}

// resultHeap is a bounded min-heap of heapEntry keyed by (score,
// -row), used to keep the top-K candidates of a query without sorting
// every row.
type resultHeap []heapEntry

func (h resultHeap) Len() int            { return len(h) }
func (h resultHeap) Less(i, j int) bool  { return less(h[i], h[j]) }
func (h resultHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *resultHeap) Push(x interface{}) { *h = append(*h, x.(heapEntry)) }
func (h *resultHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// resultHeapPool reduces allocations across repeated queries against
// the same handler, mirroring how a request-scoped scratch buffer
// would be pooled in a hot query path.
var resultHeapPool = sync.Pool{
	New: func() interface{} {
		h := &resultHeap{}
		return h
	},
}
