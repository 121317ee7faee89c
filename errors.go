package bsets

import "errors"

// Build-time errors. These are fatal: no partially built index is
// considered valid.
var (
	// ErrBuilderClosed is returned by Add when called after Close.
	ErrBuilderClosed = errors.New("bsets: add called on a closed raw index")

	// ErrNegativeItemID is returned when an item id is negative.
	ErrNegativeItemID = errors.New("bsets: item id must be non-negative")
)

// Load-time errors. A directory that triggers any of these is rejected
// outright; the computed index is never partially constructed.
var (
	// ErrRowColMismatch is returned when .xco and .yco have different
	// line counts.
	ErrRowColMismatch = errors.New("bsets: row coordinate and column coordinate streams have different lengths")

	// ErrRowOutOfRange is returned when a row coordinate falls outside
	// [0, N) as defined by the .ids file.
	ErrRowOutOfRange = errors.New("bsets: row coordinate out of range")

	// ErrColOutOfRange is returned when a column coordinate falls
	// outside [0, M) as defined by the .fts file.
	ErrColOutOfRange = errors.New("bsets: column coordinate out of range")

	// ErrDuplicateItemID is returned when the .ids file lists the same
	// internal item id on more than one line.
	ErrDuplicateItemID = errors.New("bsets: duplicate item id in .ids file")

	// ErrEmptyFeaturesNonEmptyCoords is returned when .fts is empty but
	// .yco is not, an inconsistent combination that cannot describe a
	// valid matrix.
	ErrEmptyFeaturesNonEmptyCoords = errors.New("bsets: .fts is empty but .yco is not")

	// ErrMalformedCoordinate is returned when a coordinate line is not
	// a valid non-negative decimal integer.
	ErrMalformedCoordinate = errors.New("bsets: malformed coordinate line")

	// ErrBadCacheMagic is returned by ReadCacheBundle when the binary cache
	// bundle does not start with the expected magic number.
	ErrBadCacheMagic = errors.New("bsets: cache bundle has invalid magic number")

	// ErrUnsupportedCacheVersion is returned by ReadCacheBundle when the
	// binary cache bundle was written by an incompatible format
	// version.
	ErrUnsupportedCacheVersion = errors.New("bsets: cache bundle has unsupported version")
)

// Query-time conditions. Per the propagation policy, these are tolerated
// silently rather than surfaced as errors to the caller: an empty result
// or a dropped id is a valid, successful outcome.
var (
	// ErrNilComputedIndex is returned when a QueryHandler is created
	// with a nil index; this is a programmer error, not a query-time
	// condition, so it is returned rather than silently tolerated.
	ErrNilComputedIndex = errors.New("bsets: computed index is nil")
)

// ErrQueryCancelled is returned by QueryContext when the supplied
// context is cancelled after query preparation or at a row-block
// boundary of the fused mat-vec/top-K pass. It is a distinct
// outcome, not an error in the usual sense: no partial result is ever
// returned alongside it.
var ErrQueryCancelled = errors.New("bsets: query cancelled")
