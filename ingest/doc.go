// Package ingest provides FeaturePairSource implementations that feed
// a bsets.RawIndex from external systems: an in-memory slice, a SQL
// cursor, or a Kafka topic. Each adapts a different data source to the
// single bsets.FeaturePairSource contract, so the builder never needs
// to know where a pair came from.
package ingest
