// Package bsets implements loading a raw index directory into a
// queryable ComputedIndex.
//
// WHAT IS A COMPUTED INDEX?
// A ComputedIndex is the read-only, in-memory form of a raw index: the
// four flat files are parsed once into the identifier tables, the CSR
// matrix, and the precomputed hyperparameters. It never changes after
// Load returns and is safe for concurrent use by any number of query
// handlers.
//
// LOAD-TIME VALIDATION:
// Load rejects a directory outright rather than building a partially
// valid index: row/column coordinate streams must agree in length and
// stay in range, item ids in .ids must be unique, and an empty .fts
// with a non-empty .yco is rejected as an inconsistent combination.
package bsets

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// ComputedIndex is the read-only, queryable form of a raw index.
type ComputedIndex struct {
	items *itemTable
	feats *featureTable
	csr   *CSRMatrix
	hyper *Hyperparams
}

// NumItems returns the number of distinct items in the index.
func (c *ComputedIndex) NumItems() int { return c.items.len() }

// NumFeatures returns the number of distinct features in the index.
func (c *ComputedIndex) NumFeatures() int { return c.feats.len() }

// SmoothingC returns the smoothing constant the index was built with.
func (c *ComputedIndex) SmoothingC() float64 { return c.hyper.SmoothingC }

// ItemIDs returns the item id for each row, indexed by row number. The
// returned slice must not be modified.
func (c *ComputedIndex) ItemIDs() []int64 { return c.items.toID }

// FeatureLabels returns the original (pre-normalization) label for
// each column, indexed by column number. The returned slice must not
// be modified.
func (c *ComputedIndex) FeatureLabels() []string { return c.feats.labels }

// Rows returns, for each row, the sorted column indices present in
// that row. The result is a snapshot; mutating it does not affect the
// index.
func (c *ComputedIndex) Rows() [][]int32 {
	rows := make([][]int32, c.csr.N)
	for r := 0; r < c.csr.N; r++ {
		rows[r] = append([]int32(nil), c.csr.Row(r)...)
	}
	return rows
}

// Load reads the raw index directory dir and builds a ComputedIndex
// using the default smoothing constant.
func Load(dir string) (*ComputedIndex, error) {
	return LoadWithSmoothing(dir, DefaultSmoothingC)
}

// LoadWithMetrics is Load with build-duration and size observations
// reported to m. A nil m behaves exactly like Load.
func LoadWithMetrics(dir string, m *Metrics) (*ComputedIndex, error) {
	start := time.Now()
	idx, err := LoadWithSmoothing(dir, DefaultSmoothingC)
	if m == nil {
		return idx, err
	}
	if err != nil {
		return idx, err
	}
	m.BuildDuration.Observe(time.Since(start).Seconds())
	m.ObserveIndexLoaded(idx)
	return idx, err
}

// LoadWithSmoothing is Load with an explicit smoothing constant c.
func LoadWithSmoothing(dir string, c float64) (*ComputedIndex, error) {
	ids, err := readIDs(filepath.Join(dir, ".ids"))
	if err != nil {
		return nil, err
	}
	labels, err := readLines(filepath.Join(dir, ".fts"))
	if err != nil {
		return nil, err
	}
	xco, err := readCoordinates(filepath.Join(dir, ".xco"))
	if err != nil {
		return nil, err
	}
	yco, err := readCoordinates(filepath.Join(dir, ".yco"))
	if err != nil {
		return nil, err
	}

	return ComputedIndexFromParts(ids, labels, xco, yco, c)
}

// ComputedIndexFromParts builds a ComputedIndex directly from parsed
// item ids, feature labels, and coordinate streams, applying the same
// validation Load performs on a raw index directory. It is meant for
// callers that persist an index in a form other than the four flat
// files, such as a SQL-backed store.
func ComputedIndexFromParts(ids []int64, labels []string, xco, yco []int32, c float64) (*ComputedIndex, error) {
	if len(xco) != len(yco) {
		return nil, ErrRowColMismatch
	}
	if len(labels) == 0 && len(yco) > 0 {
		return nil, ErrEmptyFeaturesNonEmptyCoords
	}

	n, m := len(ids), len(labels)
	for _, r := range xco {
		if r < 0 || int(r) >= n {
			return nil, ErrRowOutOfRange
		}
	}
	for _, col := range yco {
		if col < 0 || int(col) >= m {
			return nil, ErrColOutOfRange
		}
	}

	items := newItemTable()
	for _, id := range ids {
		if _, isNew := items.getOrCreate(id); !isNew {
			return nil, ErrDuplicateItemID
		}
	}

	feats := newFeatureTable()
	for _, label := range labels {
		feats.getOrCreate(label)
	}

	csr := buildCSR(n, m, xco, yco)
	hyper := computeHyperparams(csr, int64(n), c)

	return &ComputedIndex{items: items, feats: feats, csr: csr, hyper: hyper}, nil
}

func readIDs(path string) ([]int64, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(lines))
	for i, line := range lines {
		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCoordinate, err)
		}
		ids[i] = id
	}
	return ids, nil
}

func readCoordinates(path string) ([]int32, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	coords := make([]int32, len(lines))
	for i, line := range lines {
		v, err := strconv.ParseInt(line, 10, 32)
		if err != nil || v < 0 {
			return nil, ErrMalformedCoordinate
		}
		coords[i] = int32(v)
	}
	return coords, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bsets: opening %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("bsets: reading %s: %w", filepath.Base(path), err)
	}
	return lines, nil
}
