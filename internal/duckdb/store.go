// Package duckdb persists the final call table and per-well summaries
// in a DuckDB database for downstream querying.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for run results.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS variant_calls (
		plate INTEGER,
		well VARCHAR,
		position BIGINT,
		ref VARCHAR,
		called VARCHAR,
		frequency DOUBLE,
		depth BIGINT,
		status VARCHAR,
		PRIMARY KEY (plate, well, position)
	)`); err != nil {
		return err
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS well_summaries (
		plate INTEGER,
		well VARCHAR,
		variant VARCHAR,
		aa_variant VARCHAR,
		mean_frequency DOUBLE,
		read_count BIGINT,
		failed BOOLEAN,
		failure VARCHAR,
		PRIMARY KEY (plate, well)
	)`)
	return err
}
