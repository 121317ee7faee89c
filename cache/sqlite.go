// Package cache persists a bsets.ComputedIndex as queryable SQLite
// tables, as an alternative to the root package's binary WriteTo/
// ReadCacheBundle bundle. Where the binary bundle is a flat byte
// stream meant for fast whole-index reload, a Store lets a caller
// inspect or partially rebuild an index with ordinary SQL — for
// example, looking up which features an item has without decoding the
// whole CSR matrix.
package cache

import (
	"database/sql"
	"fmt"
	"log"

	_ "modernc.org/sqlite"

	"github.com/nrumiano/bsets"
)

// Store is a SQLite-backed persistence layer for a bsets.ComputedIndex.
type Store struct {
	db *sql.DB
}

// Open opens or creates a SQLite database at path and applies any
// pending migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: opening sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

type migration struct {
	version int
	name    string
	up      func(*sql.Tx) error
}

func (s *Store) runMigrations() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return fmt.Errorf("cache: creating schema_migrations table: %w", err)
	}

	var version int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&version); err != nil {
		return fmt.Errorf("cache: reading schema version: %w", err)
	}

	migrations := []migration{
		{version: 1, name: "initial_schema", up: migration001InitialSchema},
	}

	for _, m := range migrations {
		if version >= m.version {
			continue
		}
		log.Printf("cache: running migration %d: %s", m.version, m.name)
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("cache: beginning migration %d: %w", m.version, err)
		}
		if err := m.up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("cache: migration %d failed: %w", m.version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.version, m.name); err != nil {
			tx.Rollback()
			return fmt.Errorf("cache: recording migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("cache: committing migration %d: %w", m.version, err)
		}
	}
	return nil
}

func migration001InitialSchema(tx *sql.Tx) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS index_meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS items (
			row     INTEGER PRIMARY KEY,
			item_id INTEGER NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS features (
			col   INTEGER PRIMARY KEY,
			label TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS entries (
			row INTEGER NOT NULL,
			col INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_row ON entries(row)`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Save replaces the store's contents with a snapshot of index.
func (s *Store) Save(index *bsets.ComputedIndex) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("cache: beginning save transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"index_meta", "items", "features", "entries"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("cache: clearing table %s: %w", table, err)
		}
	}

	if _, err := tx.Exec("INSERT INTO index_meta (key, value) VALUES ('smoothing_c', ?)",
		fmt.Sprintf("%g", index.SmoothingC())); err != nil {
		return fmt.Errorf("cache: writing smoothing_c: %w", err)
	}

	itemStmt, err := tx.Prepare("INSERT INTO items (row, item_id) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("cache: preparing item insert: %w", err)
	}
	defer itemStmt.Close()
	for row, id := range index.ItemIDs() {
		if _, err := itemStmt.Exec(row, id); err != nil {
			return fmt.Errorf("cache: inserting item row %d: %w", row, err)
		}
	}

	featStmt, err := tx.Prepare("INSERT INTO features (col, label) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("cache: preparing feature insert: %w", err)
	}
	defer featStmt.Close()
	for col, label := range index.FeatureLabels() {
		if _, err := featStmt.Exec(col, label); err != nil {
			return fmt.Errorf("cache: inserting feature col %d: %w", col, err)
		}
	}

	entryStmt, err := tx.Prepare("INSERT INTO entries (row, col) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("cache: preparing entry insert: %w", err)
	}
	defer entryStmt.Close()
	for row, cols := range index.Rows() {
		for _, col := range cols {
			if _, err := entryStmt.Exec(row, col); err != nil {
				return fmt.Errorf("cache: inserting entry (%d,%d): %w", row, col, err)
			}
		}
	}

	return tx.Commit()
}

// Load reconstructs a ComputedIndex from the store's current contents.
func (s *Store) Load() (*bsets.ComputedIndex, error) {
	var smoothingC float64
	row := s.db.QueryRow("SELECT value FROM index_meta WHERE key = 'smoothing_c'")
	var raw string
	if err := row.Scan(&raw); err != nil {
		return nil, fmt.Errorf("cache: reading smoothing_c: %w", err)
	}
	if _, err := fmt.Sscanf(raw, "%g", &smoothingC); err != nil {
		return nil, fmt.Errorf("cache: parsing smoothing_c %q: %w", raw, err)
	}

	itemRows, err := s.db.Query("SELECT row, item_id FROM items ORDER BY row")
	if err != nil {
		return nil, fmt.Errorf("cache: querying items: %w", err)
	}
	defer itemRows.Close()
	var itemIDs []int64
	for itemRows.Next() {
		var r int
		var id int64
		if err := itemRows.Scan(&r, &id); err != nil {
			return nil, fmt.Errorf("cache: scanning item row: %w", err)
		}
		itemIDs = append(itemIDs, id)
		_ = r
	}

	featRows, err := s.db.Query("SELECT col, label FROM features ORDER BY col")
	if err != nil {
		return nil, fmt.Errorf("cache: querying features: %w", err)
	}
	defer featRows.Close()
	var labels []string
	for featRows.Next() {
		var c int
		var label string
		if err := featRows.Scan(&c, &label); err != nil {
			return nil, fmt.Errorf("cache: scanning feature row: %w", err)
		}
		labels = append(labels, label)
		_ = c
	}

	entryRows, err := s.db.Query("SELECT row, col FROM entries ORDER BY row, col")
	if err != nil {
		return nil, fmt.Errorf("cache: querying entries: %w", err)
	}
	defer entryRows.Close()
	var xco, yco []int32
	for entryRows.Next() {
		var r, c int32
		if err := entryRows.Scan(&r, &c); err != nil {
			return nil, fmt.Errorf("cache: scanning entry row: %w", err)
		}
		xco = append(xco, r)
		yco = append(yco, c)
	}

	return bsets.ComputedIndexFromParts(itemIDs, labels, xco, yco, smoothingC)
}
