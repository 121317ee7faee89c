package bsets

import (
	"errors"
	"testing"
)

func TestRawIndex_AddAndClose(t *testing.T) {
	dir := t.TempDir()
	r, err := CreateRawIndex(dir)
	if err != nil {
		t.Fatalf("CreateRawIndex: %v", err)
	}

	pairs := []FeaturePair{
		{ItemID: 1, Feature: "a"},
		{ItemID: 1, Feature: "b"},
		{ItemID: 2, Feature: "a"},
		{ItemID: 3, Feature: "c"},
	}
	for _, p := range pairs {
		if err := r.Add(p.ItemID, p.Feature); err != nil {
			t.Fatalf("Add(%d, %q): %v", p.ItemID, p.Feature, err)
		}
	}

	if r.NumItems() != 3 {
		t.Errorf("NumItems() = %d, want 3", r.NumItems())
	}
	if r.NumFeatures() != 3 {
		t.Errorf("NumFeatures() = %d, want 3", r.NumFeatures())
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Close is idempotent.
	if err := r.Close(); err != nil {
		t.Errorf("second Close: %v, want nil", err)
	}

	idx, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if idx.NumItems() != 3 || idx.NumFeatures() != 3 {
		t.Fatalf("loaded index shape = (%d,%d), want (3,3)", idx.NumItems(), idx.NumFeatures())
	}
}

func TestRawIndex_AddAfterCloseFails(t *testing.T) {
	dir := t.TempDir()
	r, err := CreateRawIndex(dir)
	if err != nil {
		t.Fatalf("CreateRawIndex: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := r.Add(1, "a"); !errors.Is(err, ErrBuilderClosed) {
		t.Errorf("Add after Close error = %v, want ErrBuilderClosed", err)
	}
}

func TestRawIndex_NegativeItemIDRejected(t *testing.T) {
	dir := t.TempDir()
	r, err := CreateRawIndex(dir)
	if err != nil {
		t.Fatalf("CreateRawIndex: %v", err)
	}
	defer r.Close()

	if err := r.Add(-1, "a"); !errors.Is(err, ErrNegativeItemID) {
		t.Errorf("Add(-1, ...) error = %v, want ErrNegativeItemID", err)
	}
}

func TestRawIndex_DuplicatePairsCollapse(t *testing.T) {
	dir := t.TempDir()
	r, err := CreateRawIndex(dir)
	if err != nil {
		t.Fatalf("CreateRawIndex: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := r.Add(5, "x"); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	idx, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if idx.NumItems() != 1 || idx.NumFeatures() != 1 {
		t.Fatalf("shape = (%d,%d), want (1,1)", idx.NumItems(), idx.NumFeatures())
	}

	h, err := NewQueryHandler(idx)
	if err != nil {
		t.Fatalf("NewQueryHandler: %v", err)
	}
	results, err := h.Query([]int64{5}, 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 1 || results[0].ItemID != 5 {
		t.Errorf("results = %v, want [{5 ...}]", results)
	}
}

func TestRawIndex_AddFromSource(t *testing.T) {
	dir := t.TempDir()
	r, err := CreateRawIndex(dir)
	if err != nil {
		t.Fatalf("CreateRawIndex: %v", err)
	}
	defer r.Close()

	src := &sliceSource{pairs: []FeaturePair{
		{ItemID: 1, Feature: "a"},
		{ItemID: 2, Feature: "b"},
	}}
	n, err := r.AddFromSource(src)
	if err != nil {
		t.Fatalf("AddFromSource: %v", err)
	}
	if n != 2 {
		t.Errorf("AddFromSource returned %d, want 2", n)
	}
	if r.NumItems() != 2 {
		t.Errorf("NumItems() = %d, want 2", r.NumItems())
	}
}

type sliceSource struct {
	pairs []FeaturePair
	pos   int
}

func (s *sliceSource) Next() (FeaturePair, bool, error) {
	if s.pos >= len(s.pairs) {
		return FeaturePair{}, false, nil
	}
	p := s.pairs[s.pos]
	s.pos++
	return p, true, nil
}

func TestCreateRawIndex_EmptyBuildProducesEmptyIndex(t *testing.T) {
	dir := t.TempDir()
	r, err := CreateRawIndex(dir)
	if err != nil {
		t.Fatalf("CreateRawIndex: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	idx, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if idx.NumItems() != 0 || idx.NumFeatures() != 0 {
		t.Fatalf("shape = (%d,%d), want (0,0)", idx.NumItems(), idx.NumFeatures())
	}

	h, err := NewQueryHandler(idx)
	if err != nil {
		t.Fatalf("NewQueryHandler: %v", err)
	}
	results, err := h.Query([]int64{1}, 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Query against empty index = %v, want empty", results)
	}
}
