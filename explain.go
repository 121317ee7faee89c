// Package bsets implements the explainer: decomposing a candidate's
// score into a ranked list of per-feature contributions.
//
// WHAT IS A CONTRIBUTION?
// Every feature column that enters the scoring formula contributes an
// additive term to the candidate's log score; the explainer exposes
// those terms individually instead of only the sum, so a caller can
// see which features actually drove a match.
//
// TWO ATTRIBUTION MODES:
//   - PresentOnly (default): only features the candidate has (X[i,j]=1)
//     are reported, each worth u_j, the same term summed in the mat-vec.
//     This mirrors the reference implementation's detailed-score output,
//     where the reported total is explicitly not the full log score.
//   - IncludeAbsent: present features are worth A_j+u_j and every
//     absent active feature is worth A_j, where A_j is the per-column
//     summand of the query bias b. Present and absent contributions
//     over every active column sum exactly to log_score_i, because
//     A_j+u_j and A_j partition b+sum(u_j) by construction; this only
//     holds with an unbounded max_terms, since truncation drops terms
//     from the sum.
package bsets

import "sort"

// AttributionMode selects how GetDetailedScores decomposes a score.
type AttributionMode int

const (
	// PresentOnly reports only features the candidate has.
	PresentOnly AttributionMode = iota
	// IncludeAbsent additionally reports every active feature the
	// candidate lacks; untruncated, the contributions sum to the log
	// score.
	IncludeAbsent
)

// FeatureContribution is one feature's additive contribution to a
// candidate's score.
type FeatureContribution struct {
	Feature      string
	Contribution float64
}

// Explanation is the decomposition of one candidate's score.
type Explanation struct {
	ItemID     int64
	TotalScore float64 // sum of the returned Contributions only, not the full log score
	Scores     []FeatureContribution
}

// GetDetailedScores explains each of candidateItemIDs against the
// query formed by queryItemIDs, reusing the handler's cached query
// state when queryItemIDs matches the previous call. A candidate id
// absent from the index yields an Explanation with no contributions.
func (h *QueryHandler) GetDetailedScores(queryItemIDs, candidateItemIDs []int64, maxTerms int, mode AttributionMode) ([]Explanation, error) {
	state, err := h.prepareQuery(queryItemIDs)
	if err != nil {
		return nil, err
	}

	if h.Metrics != nil {
		h.Metrics.ExplanationsTotal.Add(float64(len(candidateItemIDs)))
	}

	out := make([]Explanation, len(candidateItemIDs))
	for i, id := range candidateItemIDs {
		out[i] = h.explainOne(state, id, maxTerms, mode)
	}
	return out, nil
}

func (h *QueryHandler) explainOne(state *queryState, id int64, maxTerms int, mode AttributionMode) Explanation {
	if state == nil {
		return Explanation{ItemID: id}
	}
	row, ok := h.index.items.row(id)
	if !ok {
		return Explanation{ItemID: id}
	}

	csr := h.index.csr
	present := csr.Row(int(row))
	presentSet := make(map[int32]struct{}, len(present))
	for _, j := range present {
		presentSet[j] = struct{}{}
	}

	type colTerm struct {
		col          int32
		contribution float64
	}

	colTerms := make([]colTerm, 0, len(present))
	for _, j := range present {
		colTerms = append(colTerms, colTerm{col: j, contribution: h.presentContribution(state, mode, int(j))})
	}

	if mode == IncludeAbsent {
		for j := 0; j < csr.M; j++ {
			if _, isPresent := presentSet[int32(j)]; isPresent {
				continue
			}
			if !h.index.hyper.Active[j] {
				continue
			}
			colTerms = append(colTerms, colTerm{col: int32(j), contribution: state.a[j]})
		}
	}

	sort.Slice(colTerms, func(i, j int) bool {
		if colTerms[i].contribution != colTerms[j].contribution {
			return colTerms[i].contribution > colTerms[j].contribution
		}
		return colTerms[i].col < colTerms[j].col
	})

	if maxTerms > 0 && len(colTerms) > maxTerms {
		colTerms = colTerms[:maxTerms]
	}

	var total float64
	terms := make([]FeatureContribution, len(colTerms))
	for i, t := range colTerms {
		total += t.contribution
		terms[i] = FeatureContribution{Feature: h.index.feats.labels[t.col], Contribution: t.contribution}
	}

	return Explanation{ItemID: id, TotalScore: total, Scores: terms}
}

// presentContribution returns a present feature's contribution under
// the given mode: u_j in PresentOnly, A_j+u_j in IncludeAbsent.
func (h *QueryHandler) presentContribution(state *queryState, mode AttributionMode, j int) float64 {
	if mode == IncludeAbsent {
		return state.a[j] + state.u[j]
	}
	return state.u[j]
}
