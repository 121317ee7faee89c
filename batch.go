// Package bsets implements concurrent batch evaluation of independent
// queries against a shared ComputedIndex.
//
// Each query in a batch gets its own QueryHandler, since a handler's
// scratch state is not safe for concurrent use; the index itself is
// immutable and happily shared across every goroutine in the batch.
package bsets

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchQuery is one query in a RunConcurrentQueries batch.
type BatchQuery struct {
	ItemIDs []int64
	TopK    int
}

// BatchResult is the outcome of one BatchQuery, in the same order as
// the input.
type BatchResult struct {
	Results []Result
	Err     error
}

// RunConcurrentQueries evaluates every query in batch concurrently
// against index, bounding the number of in-flight goroutines to
// maxConcurrency (a value <= 0 means unbounded). It returns one
// BatchResult per input query, preserving order; a query's own error
// is captured in its BatchResult rather than aborting the batch.
func RunConcurrentQueries(index *ComputedIndex, batch []BatchQuery, maxConcurrency int) ([]BatchResult, error) {
	return RunConcurrentQueriesContext(context.Background(), index, batch, maxConcurrency)
}

// RunConcurrentQueriesContext is RunConcurrentQueries with a ctx that, if
// cancelled, aborts in-flight and not-yet-started queries; their
// BatchResult carries ErrQueryCancelled.
func RunConcurrentQueriesContext(ctx context.Context, index *ComputedIndex, batch []BatchQuery, maxConcurrency int) ([]BatchResult, error) {
	results := make([]BatchResult, len(batch))

	g := new(errgroup.Group)
	if maxConcurrency > 0 {
		g.SetLimit(maxConcurrency)
	}

	for i, q := range batch {
		i, q := i, q
		g.Go(func() error {
			handler, err := NewQueryHandler(index)
			if err != nil {
				results[i] = BatchResult{Err: err}
				return nil
			}
			res, err := handler.QueryContext(ctx, q.ItemIDs, q.TopK)
			results[i] = BatchResult{Results: res, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
