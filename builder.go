// Package bsets implements the append-only raw index builder.
//
// WHAT IS THE RAW INDEX?
// The raw index is the on-disk, append-only form of a feature matrix: a
// pair of coordinate streams (.xco, .yco) recording every (item, feature)
// presence pair ever added, plus two label streams (.ids, .fts) recording
// the insertion order of item ids and feature labels. It is write-only
// during a build and is never read back by the builder itself; a
// ComputedIndex (see index.go) is what turns it into something queryable.
//
// WHY FOUR FLAT FILES?
// A directory of newline-delimited text files is trivially portable,
// diffable, and inspectable with ordinary Unix tools, at the cost of
// being slower to reload than a binary format. See cache.go and the
// cache subpackage for an optional faster-reload bundle built on top of
// this format.
package bsets

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// FeaturePair is a single (item, feature) presence assertion, as
// produced by a FeaturePairSource.
type FeaturePair struct {
	ItemID  int64
	Feature string
}

// FeaturePairSource is a push-style iterator of FeaturePairs. It lets a
// SQL-backed cursor, a message-queue consumer, a test fixture, or an
// in-memory slice all drive indexing without sharing a type hierarchy;
// only this one method is required.
//
// Next returns ok=false once the source is exhausted. A non-nil error
// aborts the build immediately; Next is not called again afterward.
type FeaturePairSource interface {
	Next() (pair FeaturePair, ok bool, err error)
}

// RawIndex is an append-only builder for the on-disk raw index format.
// It is created with CreateRawIndex, fed pairs with Add, and frozen with
// Close. A RawIndex is not safe for concurrent use.
type RawIndex struct {
	dir    string
	items  *itemTable
	feats  *featureTable
	closed bool

	// Metrics, if set, is incremented as pairs are added. A nil
	// Metrics is a no-op.
	Metrics *Metrics

	xco *bufio.Writer
	yco *bufio.Writer
	ids *bufio.Writer
	fts *bufio.Writer

	xcoFile *os.File
	ycoFile *os.File
	idsFile *os.File
	ftsFile *os.File
}

// CreateRawIndex creates a new raw index at dir, overwriting any
// existing index files there. The directory is created if it does not
// already exist.
func CreateRawIndex(dir string) (*RawIndex, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("bsets: creating index directory: %w", err)
	}

	r := &RawIndex{
		dir:   dir,
		items: newItemTable(),
		feats: newFeatureTable(),
	}

	var err error
	if r.xcoFile, err = os.Create(filepath.Join(dir, ".xco")); err != nil {
		return nil, fmt.Errorf("bsets: creating .xco: %w", err)
	}
	if r.ycoFile, err = os.Create(filepath.Join(dir, ".yco")); err != nil {
		return nil, fmt.Errorf("bsets: creating .yco: %w", err)
	}
	if r.idsFile, err = os.Create(filepath.Join(dir, ".ids")); err != nil {
		return nil, fmt.Errorf("bsets: creating .ids: %w", err)
	}
	if r.ftsFile, err = os.Create(filepath.Join(dir, ".fts")); err != nil {
		return nil, fmt.Errorf("bsets: creating .fts: %w", err)
	}

	r.xco = bufio.NewWriter(r.xcoFile)
	r.yco = bufio.NewWriter(r.ycoFile)
	r.ids = bufio.NewWriter(r.idsFile)
	r.fts = bufio.NewWriter(r.ftsFile)

	return r, nil
}

// Add appends a presence pair to the raw index. item_id must be
// non-negative; feature is an arbitrary UTF-8 string. Duplicate pairs
// (including repeats of the exact same item/feature) are permitted here
// and are collapsed later, during CSR construction.
//
// Add after Close is fatal.
func (r *RawIndex) Add(itemID int64, feature string) error {
	if r.closed {
		return ErrBuilderClosed
	}
	if itemID < 0 {
		return ErrNegativeItemID
	}

	row, newRow := r.items.getOrCreate(itemID)
	if newRow {
		if _, err := fmt.Fprintf(r.ids, "%d\n", itemID); err != nil {
			return fmt.Errorf("bsets: writing .ids: %w", err)
		}
	}

	col, newCol := r.feats.getOrCreate(feature)
	if newCol {
		if _, err := fmt.Fprintf(r.fts, "%s\n", r.feats.labels[col]); err != nil {
			return fmt.Errorf("bsets: writing .fts: %w", err)
		}
	}

	if _, err := fmt.Fprintf(r.xco, "%d\n", row); err != nil {
		return fmt.Errorf("bsets: writing .xco: %w", err)
	}
	if _, err := fmt.Fprintf(r.yco, "%d\n", col); err != nil {
		return fmt.Errorf("bsets: writing .yco: %w", err)
	}
	if r.Metrics != nil {
		r.Metrics.PairsIndexedTotal.Inc()
	}
	return nil
}

// AddFromSource drains a FeaturePairSource into the raw index, calling
// Add for every pair it yields. It stops at the first error, either from
// the source or from Add.
func (r *RawIndex) AddFromSource(source FeaturePairSource) (int, error) {
	n := 0
	for {
		pair, ok, err := source.Next()
		if err != nil {
			return n, fmt.Errorf("bsets: reading from feature pair source: %w", err)
		}
		if !ok {
			return n, nil
		}
		if err := r.Add(pair.ItemID, pair.Feature); err != nil {
			return n, err
		}
		n++
	}
}

// NumItems returns the number of distinct items added so far.
func (r *RawIndex) NumItems() int { return r.items.len() }

// NumFeatures returns the number of distinct feature labels added so far.
func (r *RawIndex) NumFeatures() int { return r.feats.len() }

// Close flushes and closes the underlying files, finalizing the raw
// index. Close is idempotent; calling it more than once is a no-op after
// the first call succeeds.
func (r *RawIndex) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, w := range []*bufio.Writer{r.xco, r.yco, r.ids, r.fts} {
		record(w.Flush())
	}
	for _, f := range []*os.File{r.xcoFile, r.ycoFile, r.idsFile, r.ftsFile} {
		record(f.Close())
	}
	return firstErr
}
