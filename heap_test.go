package bsets

import (
	"container/heap"
	"testing"
)

func TestLess_TieBreakLowerRowWins(t *testing.T) {
	a := heapEntry{row: 5, score: 1.0}
	b := heapEntry{row: 2, score: 1.0}

	// Equal scores: the higher row index is the "worse" candidate, so
	// it must report less (evictable first from the min-heap).
	if !less(a, b) {
		t.Error("less(row5, row2) with equal scores = false, want true (row5 is worse)")
	}
	if less(b, a) {
		t.Error("less(row2, row5) with equal scores = true, want false")
	}
}

func TestLess_LowerScoreIsWorse(t *testing.T) {
	low := heapEntry{row: 0, score: 0.5}
	high := heapEntry{row: 1, score: 1.5}

	if !less(low, high) {
		t.Error("less(low, high) = false, want true")
	}
	if less(high, low) {
		t.Error("less(high, low) = true, want false")
	}
}

func TestResultHeap_HeapInterfaceOrdering(t *testing.T) {
	h := &resultHeap{}
	heap.Init(h)

	entries := []heapEntry{
		{row: 0, score: 3.0},
		{row: 1, score: 1.0},
		{row: 2, score: 5.0},
		{row: 3, score: 1.0}, // ties row 1 on score; row 3 is worse (higher row)
	}
	for _, e := range entries {
		heap.Push(h, e)
	}

	if h.Len() != len(entries) {
		t.Fatalf("Len() = %d, want %d", h.Len(), len(entries))
	}

	// Popping in heap order should yield ascending "badness": row3
	// (score 1, row 3) first, then row1 (score 1, row 1), then row0
	// (score 3), then row2 (score 5).
	want := []int32{3, 1, 0, 2}
	for i, wantRow := range want {
		got := heap.Pop(h).(heapEntry)
		if got.row != wantRow {
			t.Errorf("pop[%d].row = %d, want %d", i, got.row, wantRow)
		}
	}
}

func TestResultHeapPool_ReturnsUsableEmptyHeap(t *testing.T) {
	h := resultHeapPool.Get().(*resultHeap)
	*h = (*h)[:0]
	if h.Len() != 0 {
		t.Fatalf("pooled heap Len() = %d, want 0", h.Len())
	}
	heap.Push(h, heapEntry{row: 1, score: 1})
	if h.Len() != 1 {
		t.Fatalf("Len() after push = %d, want 1", h.Len())
	}
	*h = (*h)[:0]
	resultHeapPool.Put(h)
}
