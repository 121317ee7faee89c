// Package bsets implements query evaluation: resolving a set of query
// items, deriving per-query feature weights from the precomputed
// hyperparameters, and scoring every candidate row with a single fused
// sparse matrix-vector product.
//
// WHAT IS THE QUERY HANDLER?
// A QueryHandler binds a single query item set to a ComputedIndex and
// produces ranked results. Preparing a query (resolving ids, summing
// feature frequencies, deriving per-feature weights) is the expensive
// part; once prepared, scoring every row is one pass over the CSR
// matrix's nonzero entries.
//
// TIME COMPLEXITY: O(nnz) to prepare the query vector plus O(nnz) for
// the mat-vec, independent of top_k; O(N log(top_k)) for the bounded
// top-K selection.
//
// MEMORY REQUIREMENTS: O(M) for the dense per-feature weight vector,
// O(top_k) for the result heap.
package bsets

import (
	"container/heap"
	"context"
	"math"
	"time"
)

// cancelCheckInterval is how many rows scoreAndRank scores between
// context-cancellation checks, so cancellation is honoured promptly
// without paying a ctx.Err() call on every row.
const cancelCheckInterval = 4096

// Result is a single scored candidate.
type Result struct {
	ItemID   int64
	LogScore float64
}

// queryState is the prepared, reusable intermediate state of a query:
// the per-feature weight vector u, the scalar bias b, and (for the
// explainer) the per-column contribution A_j and query frequency q_j.
type queryState struct {
	rows []int32 // resolved, deduplicated row indices, first-occurrence order
	q    []int64 // q_j, length M
	u    []float64
	a    []float64 // A_j, the per-column summand of b; 0 for inactive columns
	b    float64
}

// QueryHandler evaluates queries against a single ComputedIndex. It is
// not safe for concurrent use: prepared query state is cached on the
// handler and reused across Query and GetDetailedScores calls against
// the same item set, the same way a single-shot request-scoped object
// would be used by one goroutine at a time.
type QueryHandler struct {
	index *ComputedIndex

	// ExcludeSeedRows, when true, removes the resolved query rows
	// themselves from the candidate set before ranking. Bayesian Sets
	// naturally scores a query's own seed items highest, so this is
	// off by default; callers building a "more like this, excluding
	// this" experience can turn it on.
	ExcludeSeedRows bool

	// Metrics, if set, receives per-query observations. A nil Metrics
	// is a no-op.
	Metrics *Metrics

	lastItemIDs []int64
	lastState   *queryState
}

// NewQueryHandler creates a QueryHandler bound to index. index must not
// be nil; the index itself may be shared by any number of handlers.
func NewQueryHandler(index *ComputedIndex) (*QueryHandler, error) {
	if index == nil {
		return nil, ErrNilComputedIndex
	}
	return &QueryHandler{index: index}, nil
}

// Query resolves itemIDs against the index and returns up to topK
// candidates ranked by descending log score. Unknown ids are silently
// dropped; if none resolve, Query returns an empty, non-nil slice and a
// nil error. topK <= 0 returns an empty result; topK >= N returns every
// row, sorted.
func (h *QueryHandler) Query(itemIDs []int64, topK int) ([]Result, error) {
	return h.QueryContext(context.Background(), itemIDs, topK)
}

// QueryContext is Query with cancellation: ctx is checked between query
// preparation and the mat-vec/top-K phase, and periodically at row-block
// boundaries during the mat-vec itself. A cancelled ctx yields
// ErrQueryCancelled and no partial results, a distinct outcome from any
// other error.
func (h *QueryHandler) QueryContext(ctx context.Context, itemIDs []int64, topK int) ([]Result, error) {
	start := time.Now()

	if topK <= 0 {
		h.observeQuery("empty", start, nil)
		return []Result{}, nil
	}

	state, err := h.prepareQuery(itemIDs)
	if err != nil {
		h.observeQuery("error", start, nil)
		return nil, err
	}
	if state == nil {
		h.observeQuery("empty", start, nil)
		return []Result{}, nil
	}

	if err := ctx.Err(); err != nil {
		h.observeQuery("cancelled", start, nil)
		return nil, ErrQueryCancelled
	}

	topK = sanitizeTopK(topK, h.index.csr.N)

	results, err := h.scoreAndRank(ctx, state, topK)
	if err != nil {
		h.observeQuery("cancelled", start, nil)
		return nil, err
	}
	h.observeQuery("ok", start, results)
	return results, nil
}

func (h *QueryHandler) observeQuery(outcome string, start time.Time, results []Result) {
	if h.Metrics == nil {
		return
	}
	h.Metrics.QueriesTotal.WithLabelValues(outcome).Inc()
	h.Metrics.QueryLatency.Observe(time.Since(start).Seconds())
	if results != nil {
		h.Metrics.ResultsReturned.Observe(float64(len(results)))
	}
}

// prepareQuery resolves itemIDs and computes the query state, reusing
// the cached state when itemIDs is element-for-element identical to the
// previous call's ids (same values in the same order).
func (h *QueryHandler) prepareQuery(itemIDs []int64) (*queryState, error) {
	if h.lastState != nil && sameItemIDs(h.lastItemIDs, itemIDs) {
		return h.lastState, nil
	}

	rows := h.resolveRows(itemIDs)
	if len(rows) == 0 {
		h.lastItemIDs = append([]int64(nil), itemIDs...)
		h.lastState = nil
		return nil, nil
	}

	state := h.computeQueryState(rows)
	h.lastItemIDs = append([]int64(nil), itemIDs...)
	h.lastState = state
	return state, nil
}

// resolveRows deduplicates itemIDs preserving first occurrence and
// resolves each to a row index, silently dropping ids absent from the
// item table.
func (h *QueryHandler) resolveRows(itemIDs []int64) []int32 {
	seen := make(map[int64]struct{}, len(itemIDs))
	rows := make([]int32, 0, len(itemIDs))
	for _, id := range itemIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if row, ok := h.index.items.row(id); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// computeQueryState derives q_j, the per-feature weights u_j, the
// bias b, and the explainer's per-column A_j, following §4.3/§4.4:
//
//	w_j = log(alpha_j+q_j) - log(alpha_j) - log(apb_j+Q) + log(apb_j)
//	A_j = log(beta_j+Q-q_j) - log(beta_j) - log(apb_j+Q) + log(apb_j)
//	u_j = w_j - (log(beta_j+Q-q_j) - log(beta_j))
//	b   = sum over active j of A_j
//
// only over columns with s_j > 0 (and, symmetrically, s_j < N); see
// hyperparams.go for why those columns are excluded.
func (h *QueryHandler) computeQueryState(rows []int32) *queryState {
	csr := h.index.csr
	hp := h.index.hyper
	m := csr.M
	qCount := int64(len(rows))

	q := make([]int64, m)
	for _, r := range rows {
		for _, j := range csr.Row(int(r)) {
			q[j]++
		}
	}

	u := make([]float64, m)
	a := make([]float64, m)
	var b float64

	qf := float64(qCount)
	for j := 0; j < m; j++ {
		if !hp.Active[j] {
			continue
		}
		apb := hp.AlphaPlusBeta(j)
		logApb := math.Log(apb)
		logApbPlusQ := math.Log(apb + qf)

		qj := float64(q[j])
		wj := math.Log(hp.Alpha[j]+qj) - hp.LogAlpha[j] - logApbPlusQ + logApb
		nj := math.Log(hp.Beta[j]+qf-qj) - hp.LogBeta[j]

		u[j] = wj - nj
		a[j] = nj + (logApb - logApbPlusQ)
		b += a[j]
	}

	return &queryState{rows: rows, q: q, u: u, a: a, b: b}
}

// scoreAndRank evaluates log_score_i = b + sum_{j: X[i,j]=1} u_j for
// every row as a sparse matrix-vector product, then keeps the top topK
// via a bounded min-heap. ctx is checked every cancelCheckInterval rows.
func (h *QueryHandler) scoreAndRank(ctx context.Context, state *queryState, topK int) ([]Result, error) {
	csr := h.index.csr
	n := csr.N

	hp := resultHeapPool.Get().(*resultHeap)
	*hp = (*hp)[:0]
	defer func() {
		*hp = (*hp)[:0]
		resultHeapPool.Put(hp)
	}()

	var filter *RowFilter
	if h.ExcludeSeedRows {
		filter = NewRowFilter(state.rows)
		defer filter.Release()
	}

	for i := 0; i < n; i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, ErrQueryCancelled
			}
		}
		if filter.ShouldSkip(int32(i)) {
			continue
		}
		score := state.b
		for _, j := range csr.Row(i) {
			score += state.u[j]
		}
		cand := heapEntry{row: int32(i), score: score}

		if hp.Len() < topK {
			heap.Push(hp, cand)
		} else if less((*hp)[0], cand) {
			heap.Pop(hp)
			heap.Push(hp, cand)
		}
	}

	results := make([]Result, hp.Len())
	for i := len(results) - 1; i >= 0; i-- {
		e := heap.Pop(hp).(heapEntry)
		results[i] = Result{ItemID: h.index.items.toID[e.row], LogScore: e.score}
	}
	return results, nil
}

func sameItemIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
