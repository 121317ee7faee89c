package searchbridge

import (
	"testing"

	"github.com/nrumiano/bsets"
)

func newTestInjector(t *testing.T) *BleveInjector {
	t.Helper()
	inj, err := NewBleveInjector()
	if err != nil {
		t.Fatalf("NewBleveInjector: %v", err)
	}
	t.Cleanup(func() { inj.Close() })
	return inj
}

func TestBleveInjector_IndexAndSeedItemIDs(t *testing.T) {
	inj := newTestInjector(t)

	if err := inj.IndexItem(1, "red sports car"); err != nil {
		t.Fatalf("IndexItem: %v", err)
	}
	if err := inj.IndexItem(2, "blue sedan"); err != nil {
		t.Fatalf("IndexItem: %v", err)
	}
	if err := inj.IndexItem(3, "red bicycle"); err != nil {
		t.Fatalf("IndexItem: %v", err)
	}

	ids, err := inj.SeedItemIDs("red", 10)
	if err != nil {
		t.Fatalf("SeedItemIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("SeedItemIDs(\"red\") = %v, want 2 ids", ids)
	}
	seen := map[int64]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	if !seen[1] || !seen[3] {
		t.Errorf("SeedItemIDs(\"red\") = %v, want to contain 1 and 3", ids)
	}
}

func TestBleveInjector_Score(t *testing.T) {
	inj := newTestInjector(t)
	if err := inj.IndexItem(1, "red sports car"); err != nil {
		t.Fatalf("IndexItem: %v", err)
	}

	score, ok := inj.Score("red", 1)
	if !ok {
		t.Fatal("Score(\"red\", 1) ok = false, want true")
	}
	if score <= 0 {
		t.Errorf("Score(\"red\", 1) = %v, want > 0", score)
	}

	_, ok = inj.Score("red", 999)
	if ok {
		t.Error("Score for unindexed item ok = true, want false")
	}
}

func TestInjectScores_BlendsAndReorders(t *testing.T) {
	inj := newTestInjector(t)
	if err := inj.IndexItem(1, "red red red sports car"); err != nil {
		t.Fatalf("IndexItem: %v", err)
	}
	if err := inj.IndexItem(2, "red"); err != nil {
		t.Fatalf("IndexItem: %v", err)
	}

	// item 2 has a better bsets score but item 1 is far more relevant
	// to the text query; a high weight should flip the ranking.
	results := []bsets.Result{
		{ItemID: 2, LogScore: -0.1},
		{ItemID: 1, LogScore: -5.0},
	}

	blended := InjectScores(results, "red", inj, 1.0)
	if len(blended) != 2 {
		t.Fatalf("len(blended) = %d, want 2", len(blended))
	}
	if blended[0].ItemID != 1 {
		t.Errorf("InjectScores with weight=1.0 top result = %d, want 1", blended[0].ItemID)
	}
}

func TestInjectScores_ZeroWeightPreservesOriginalOrder(t *testing.T) {
	inj := newTestInjector(t)
	results := []bsets.Result{
		{ItemID: 1, LogScore: -0.1},
		{ItemID: 2, LogScore: -5.0},
	}
	blended := InjectScores(results, "anything", inj, 0.0)
	if blended[0].ItemID != 1 || blended[1].ItemID != 2 {
		t.Errorf("InjectScores with weight=0 reordered results: %v", blended)
	}
}
