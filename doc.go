/*
Package bsets implements an item-based similarity retrieval engine using
the Bayesian Sets model.

A query is a set of item identifiers that exemplify a latent concept; the
response is a ranked list of items judged most likely to belong to that
concept, along with per-feature score attributions explaining each match.

# Overview

bsets is built around three tightly coupled pieces:

  - an append-only builder that records (item, feature) presence pairs and
    freezes them into four sibling text files (.xco, .yco, .ids, .fts)
  - a read-only ComputedIndex that loads those files into a compressed
    sparse row (CSR) matrix and precomputes the Bayesian Sets
    hyperparameters
  - a QueryHandler that resolves a query, evaluates a fused sparse
    matrix-vector product over the CSR matrix, and returns the top-K
    candidates with per-feature explanations

# Quick Start

Build an index, then query it:

	raw, err := bsets.CreateRawIndex("/var/data/myindex")
	if err != nil {
	    log.Fatal(err)
	}
	raw.Add(1, "red")
	raw.Add(1, "round")
	raw.Add(2, "red")
	raw.Add(3, "round")
	if err := raw.Close(); err != nil {
	    log.Fatal(err)
	}

	index, err := bsets.Load("/var/data/myindex")
	if err != nil {
	    log.Fatal(err)
	}

	handler, err := bsets.NewQueryHandler(index)
	if err != nil {
	    log.Fatal(err)
	}
	results, err := handler.Query([]int64{1}, 10)
	if err != nil {
	    log.Fatal(err)
	}
	for _, r := range results {
	    fmt.Printf("item=%d log_score=%.4f\n", r.ItemID, r.LogScore)
	}

# Explanations

A QueryHandler can also decompose a candidate's score into ranked
per-feature contributions:

	explanations, err := handler.GetDetailedScores(
	    []int64{1},          // query item ids
	    []int64{2, 3},       // candidates to explain
	    20,                  // max terms per explanation
	    bsets.PresentOnly,    // or bsets.IncludeAbsent
	)

# Ingestion

The builder accepts presence pairs from any FeaturePairSource, letting a
SQL-backed cursor, a Kafka consumer, or an in-memory slice all drive
indexing through the same contract. See the ingest subpackage for
concrete sources.

# Persistence

The four on-disk files are the portable, diffable source of truth. For
faster reload, a ComputedIndex can additionally be serialized to a
single binary bundle via WriteTo/ReadCacheBundle, or persisted to SQLite
via the cache subpackage.

# Thread Safety

A ComputedIndex is immutable after Load and safe for concurrent use by
any number of QueryHandlers. A QueryHandler itself is not safe for
concurrent use: it holds mutable scratch buffers and is meant to be used
by one goroutine for one query, then discarded or reused for the next
query.

# License

MIT License.
*/
package bsets
