// Package ingest implements a Postgres-backed FeaturePairSource.
//
// WHAT IT DOES:
// PostgresSource runs a caller-supplied query expected to yield rows
// of (item_id bigint, feature text) and streams them out one at a
// time through database/sql's cursor, so a builder can ingest a
// corpus far larger than memory without materializing it up front.
package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/nrumiano/bsets"
)

// PostgresConfig is an alias of bsets.PostgresConfig, so a
// bsets.Config's Postgres field can be passed to NewPostgresSource
// without conversion.
type PostgresConfig = bsets.PostgresConfig

// PostgresSource streams (item_id, feature) pairs from a Postgres
// query via a single open cursor.
type PostgresSource struct {
	db   *sql.DB
	rows *sql.Rows
}

// NewPostgresSource opens a connection using cfg and runs cfg.Query,
// which must select exactly two columns: a bigint item id and a text
// feature label, in that order.
func NewPostgresSource(ctx context.Context, cfg PostgresConfig) (*PostgresSource, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("ingest: opening postgres connection: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ingest: pinging postgres: %w", err)
	}

	rows, err := db.QueryContext(ctx, cfg.Query)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ingest: running feature pair query: %w", err)
	}

	return &PostgresSource{db: db, rows: rows}, nil
}

// Next implements bsets.FeaturePairSource.
func (s *PostgresSource) Next() (bsets.FeaturePair, bool, error) {
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return bsets.FeaturePair{}, false, fmt.Errorf("ingest: scanning feature pair row: %w", err)
		}
		return bsets.FeaturePair{}, false, nil
	}

	var p bsets.FeaturePair
	if err := s.rows.Scan(&p.ItemID, &p.Feature); err != nil {
		return bsets.FeaturePair{}, false, fmt.Errorf("ingest: scanning feature pair row: %w", err)
	}
	return p, true, nil
}

// Close releases the underlying cursor and connection pool.
func (s *PostgresSource) Close() error {
	s.rows.Close()
	return s.db.Close()
}
