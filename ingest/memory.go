package ingest

import "github.com/nrumiano/bsets"

// MemorySource is a bsets.FeaturePairSource backed by an in-memory
// slice, useful for tests and small fixtures.
type MemorySource struct {
	pairs []bsets.FeaturePair
	pos   int
}

// NewMemorySource wraps pairs as a FeaturePairSource.
func NewMemorySource(pairs []bsets.FeaturePair) *MemorySource {
	return &MemorySource{pairs: pairs}
}

// Next implements bsets.FeaturePairSource.
func (s *MemorySource) Next() (bsets.FeaturePair, bool, error) {
	if s.pos >= len(s.pairs) {
		return bsets.FeaturePair{}, false, nil
	}
	p := s.pairs[s.pos]
	s.pos++
	return p, true, nil
}
