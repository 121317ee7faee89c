// Package searchbridge connects bsets's item-similarity ranking to a
// free-text search layer, letting a caller find seed items by keyword
// before handing their ids to a bsets.QueryHandler, or re-rank a
// bsets result list by blending in full-text relevance.
//
// WHAT IS A SCOREINJECTOR?
// A ScoreInjector supplies an auxiliary score for an item id, given a
// free-text query. InjectScores blends that score with a candidate's
// bsets log score by simple weighted sum, producing a list re-sorted
// for the combined ranking.
package searchbridge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/index/scorch"
	"github.com/nrumiano/bsets"
)

// ScoreInjector supplies an auxiliary relevance score for itemID given
// a free-text query, independent of the Bayesian Sets score.
type ScoreInjector interface {
	Score(query string, itemID int64) (float64, bool)
}

// itemDocument is the Bleve document shape indexed for each item: its
// id plus whatever free text describes it (title, tags, description).
type itemDocument struct {
	ItemID int64  `json:"item_id"`
	Text   string `json:"text"`
}

// BleveInjector indexes free text per item id with Bleve and serves as
// a ScoreInjector backed by Bleve's own relevance scoring.
type BleveInjector struct {
	index bleve.Index
}

// NewBleveInjector creates an in-memory Bleve index for ad hoc or test
// use; nothing is persisted to disk.
func NewBleveInjector() (*BleveInjector, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("searchbridge: creating bleve index: %w", err)
	}
	return &BleveInjector{index: index}, nil
}

// NewBleveInjectorAt opens or creates a disk-backed Bleve index at
// path, using the scorch storage engine.
func NewBleveInjectorAt(path string) (*BleveInjector, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("searchbridge: creating index directory: %w", err)
	}

	mapping := bleve.NewIndexMapping()
	index, err := bleve.NewUsing(path, mapping, scorch.Name, scorch.Name, nil)
	if err != nil {
		index, err = bleve.Open(path)
		if err != nil {
			return nil, fmt.Errorf("searchbridge: opening bleve index at %s: %w", path, err)
		}
	}
	return &BleveInjector{index: index}, nil
}

// IndexItem associates itemID with free text, making it discoverable
// by SeedItemIDs and scoreable by Score.
func (b *BleveInjector) IndexItem(itemID int64, text string) error {
	id := fmt.Sprintf("%d", itemID)
	if err := b.index.Index(id, itemDocument{ItemID: itemID, Text: text}); err != nil {
		return fmt.Errorf("searchbridge: indexing item %d: %w", itemID, err)
	}
	return nil
}

// SeedItemIDs runs a free-text query and returns up to limit matching
// item ids ranked by Bleve relevance, suitable as a bsets query's seed
// item ids.
func (b *BleveInjector) SeedItemIDs(query string, limit int) ([]int64, error) {
	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	result, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searchbridge: searching for %q: %w", query, err)
	}

	ids := make([]int64, 0, len(result.Hits))
	for _, hit := range result.Hits {
		var id int64
		if _, err := fmt.Sscanf(hit.ID, "%d", &id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Score implements ScoreInjector using Bleve's own relevance score for
// a single document lookup.
func (b *BleveInjector) Score(query string, itemID int64) (float64, bool) {
	idStr := fmt.Sprintf("%d", itemID)
	docQuery := bleve.NewConjunctionQuery(bleve.NewMatchQuery(query), bleve.NewDocIDQuery([]string{idStr}))
	req := bleve.NewSearchRequestOptions(docQuery, 1, 0, false)
	result, err := b.index.Search(req)
	if err != nil || len(result.Hits) == 0 {
		return 0, false
	}
	return result.Hits[0].Score, true
}

// Close closes the underlying Bleve index.
func (b *BleveInjector) Close() error {
	return b.index.Close()
}

// InjectScores blends each result's bsets log score with an auxiliary
// ScoreInjector score (weight in [0,1], 0 = ignore the injector) and
// re-sorts descending by the combined value.
func InjectScores(results []bsets.Result, query string, injector ScoreInjector, weight float64) []bsets.Result {
	type scored struct {
		result   bsets.Result
		combined float64
	}

	scoredResults := make([]scored, len(results))
	for i, r := range results {
		combined := r.LogScore
		if aux, ok := injector.Score(query, r.ItemID); ok {
			combined = (1-weight)*r.LogScore + weight*aux
		}
		scoredResults[i] = scored{result: r, combined: combined}
	}

	sort.SliceStable(scoredResults, func(i, j int) bool {
		return scoredResults[i].combined > scoredResults[j].combined
	})

	out := make([]bsets.Result, len(scoredResults))
	for i, s := range scoredResults {
		out[i] = s.result
	}
	return out
}
