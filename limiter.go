package bsets

// sanitizeTopK clamps a requested top_k to the valid range [1, n].
// Values <= 0 are handled by the caller before this is reached; this
// only caps an over-large request down to the row count, per the
// top_k >= N edge case.
func sanitizeTopK(topK, n int) int {
	if topK > n {
		return n
	}
	return topK
}
