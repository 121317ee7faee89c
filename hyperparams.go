// Package bsets implements precomputation of the Bayesian Sets
// hyperparameters.
//
// WHAT ARE THE HYPERPARAMETERS?
// Bayesian Sets models each feature as an independent Beta-Bernoulli: a
// feature's prevalence across the whole corpus sets a Beta(alpha_j,
// beta_j) prior, smoothed by a constant c shared across features so
// that alpha_j+beta_j is the same for every column. Precomputing these
// once, at load time, is what lets every later query reduce to a
// single sparse matrix-vector product (see query.go) instead of a full
// rescan of the corpus.
//
// DEGENERATE COLUMNS:
// A column with s_j=0 (feature present nowhere) has alpha_j=0, and a
// column with s_j=N (feature present everywhere) has beta_j=0; both
// make a term in the scoring sum take log(0). Such columns carry no
// discriminating information between candidates anyway — every row
// agrees on them — so both are treated as degenerate and excluded from
// the per-query weight and bias sums, the same way the zero-column
// case is documented to behave.
package bsets

import "math"

// Hyperparams holds the per-feature Beta-Bernoulli parameters derived
// from the corpus-wide column sums, plus the scalars needed to
// reconstruct them (N and the smoothing constant c).
type Hyperparams struct {
	N          int64
	SmoothingC float64
	S          []int64   // s_j, document frequency of feature j
	Alpha      []float64 // alpha_j = c * s_j / N
	Beta       []float64 // beta_j  = c * (N - s_j) / N
	LogAlpha   []float64 // log(alpha_j), valid only where Active[j]
	LogBeta    []float64 // log(beta_j), valid only where Active[j]
	Active     []bool    // false for degenerate columns (s_j==0 or s_j==N)
}

// DefaultSmoothingC is the smoothing constant used when none is
// configured explicitly.
const DefaultSmoothingC = 2.0

// computeHyperparams derives the Bayesian Sets hyperparameters from a
// CSR matrix's column sums. c must be positive.
func computeHyperparams(csr *CSRMatrix, n int64, c float64) *Hyperparams {
	s := csr.ColumnSums()
	m := len(s)

	h := &Hyperparams{
		N:          n,
		SmoothingC: c,
		S:          s,
		Alpha:      make([]float64, m),
		Beta:       make([]float64, m),
		LogAlpha:   make([]float64, m),
		LogBeta:    make([]float64, m),
		Active:     make([]bool, m),
	}

	if n == 0 {
		return h
	}

	nf := float64(n)
	for j := 0; j < m; j++ {
		sj := float64(s[j])
		h.Alpha[j] = c * sj / nf
		h.Beta[j] = c * (nf - sj) / nf

		if s[j] == 0 || int64(s[j]) == n {
			continue
		}
		h.Active[j] = true
		h.LogAlpha[j] = math.Log(h.Alpha[j])
		h.LogBeta[j] = math.Log(h.Beta[j])
	}

	return h
}

// AlphaPlusBeta returns alpha_j+beta_j, which by construction equals
// the smoothing constant c for every column, active or not.
func (h *Hyperparams) AlphaPlusBeta(j int) float64 {
	return h.Alpha[j] + h.Beta[j]
}
