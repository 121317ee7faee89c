package bsets

import (
	"context"
	"testing"
)

func TestRunConcurrentQueries_OrderPreserved(t *testing.T) {
	idx := buildTestIndex(t)

	batch := []BatchQuery{
		{ItemIDs: []int64{1}, TopK: 5},
		{ItemIDs: []int64{2}, TopK: 5},
		{ItemIDs: []int64{3}, TopK: 5},
		{ItemIDs: []int64{4}, TopK: 5},
	}

	results, err := RunConcurrentQueries(idx, batch, 2)
	if err != nil {
		t.Fatalf("RunConcurrentQueries: %v", err)
	}
	if len(results) != len(batch) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(batch))
	}

	for i, r := range results {
		if r.Err != nil {
			t.Errorf("batch[%d] error = %v", i, r.Err)
		}
		direct, err := mustHandler(t, idx).Query(batch[i].ItemIDs, batch[i].TopK)
		if err != nil {
			t.Fatalf("direct Query: %v", err)
		}
		if len(r.Results) != len(direct) {
			t.Fatalf("batch[%d] result length = %d, want %d", i, len(r.Results), len(direct))
		}
		for j := range direct {
			if r.Results[j].ItemID != direct[j].ItemID {
				t.Errorf("batch[%d].Results[%d].ItemID = %d, want %d", i, j, r.Results[j].ItemID, direct[j].ItemID)
			}
		}
	}
}

func mustHandler(t *testing.T, idx *ComputedIndex) *QueryHandler {
	t.Helper()
	h, err := NewQueryHandler(idx)
	if err != nil {
		t.Fatalf("NewQueryHandler: %v", err)
	}
	return h
}

func TestRunConcurrentQueries_EmptyQueryIsolated(t *testing.T) {
	idx := buildTestIndex(t)

	batch := []BatchQuery{
		{ItemIDs: []int64{1}, TopK: 5},
		{ItemIDs: []int64{}, TopK: 5}, // yields an empty, non-error result
	}

	results, err := RunConcurrentQueries(idx, batch, 0)
	if err != nil {
		t.Fatalf("RunConcurrentQueries: %v", err)
	}
	if results[0].Err != nil {
		t.Errorf("batch[0].Err = %v, want nil", results[0].Err)
	}
	if len(results[0].Results) == 0 {
		t.Errorf("batch[0].Results is empty, want non-empty")
	}
	if results[1].Err != nil {
		t.Errorf("batch[1].Err = %v, want nil", results[1].Err)
	}
	if len(results[1].Results) != 0 {
		t.Errorf("batch[1].Results = %v, want empty", results[1].Results)
	}
}

func TestRunConcurrentQueriesContext_CancelledPropagates(t *testing.T) {
	idx := buildTestIndex(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := []BatchQuery{
		{ItemIDs: []int64{1}, TopK: 5},
		{ItemIDs: []int64{2}, TopK: 5},
	}

	results, err := RunConcurrentQueriesContext(ctx, idx, batch, 0)
	if err != nil {
		t.Fatalf("RunConcurrentQueriesContext: %v", err)
	}
	for i, r := range results {
		if r.Err != ErrQueryCancelled {
			t.Errorf("batch[%d].Err = %v, want ErrQueryCancelled", i, r.Err)
		}
	}
}
