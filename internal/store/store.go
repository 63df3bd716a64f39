package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// migration upgrades a results log written by an older slotbench.
// migrations[i] brings a log from user_version i to i+1.
type migration struct {
	name string
	stmt string
}

var migrations = []migration{
	{
		name: "index runs for history filters",
		stmt: `CREATE INDEX IF NOT EXISTS idx_runs_scenario_threads ON runs(scenario, threads)`,
	},
}

// resultsPragmas configure the connection. WAL lets `slotbench history`
// read while `slotbench bench` is recording, and the busy timeout covers
// the short window in which both want the write lock.
var resultsPragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
}

// Store is the durable results log.
type Store struct {
	db *sql.DB
}

// Open opens the results log at path, creating it if needed, and brings
// its schema up to date. Opening an existing log never touches recorded
// runs.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open results log: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to results log: %w", err)
	}

	// Recording is a single writer; one connection keeps the pragmas in
	// force for every statement.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := prepare(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// prepare applies the pragmas, the base schema and any pending migrations.
func prepare(db *sql.DB) error {
	for _, pragma := range resultsPragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("configure results log: %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create results tables: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for v := version; v < len(migrations); v++ {
		m := migrations[v]
		if _, err := db.Exec(m.stmt); err != nil {
			return fmt.Errorf("migrate results log to v%d (%s): %w", v+1, m.name, err)
		}
	}
	if version < len(migrations) {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", len(migrations))); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	}
	return nil
}

// verifyPragma reports whether pragma name currently reads as expected.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
