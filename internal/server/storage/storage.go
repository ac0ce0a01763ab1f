package storage

import (
	"database/sql"
	"fmt"
	"os"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
)

// Store handles SQLite persistence for the registry and ledger. All
// writes are synchronous full-state transactions: a replay rewrites
// every player's rating, so the persisted state must change
// all-or-nothing and never expose a partially replayed registry.
type Store struct {
	db           *sql.DB
	path         string
	healthStatus atomic.Bool
}

// NewStore opens the database file and configures the connection
func NewStore(dataSourceName string, devMode bool) (*Store, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode in development for better concurrency
	if devMode {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Enable foreign keys and bound lock waits
	if _, err := db.Exec("PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}

	// SQLite allows a single writer; a small pool is enough for reads
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	s := &Store{
		db:   db,
		path: dataSourceName,
	}
	s.healthStatus.Store(true)

	return s, nil
}

// IsHealthy returns true if the last storage operation succeeded
func (s *Store) IsHealthy() bool {
	return s.healthStatus.Load()
}

// SaveState persists the full registry and ledger in one transaction.
// The dataset is a small roster, so a rewrite is cheaper and simpler
// than diffing which rows a replay touched.
func (s *Store) SaveState(players []PlayerRecord, matches []MatchRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		s.healthStatus.Store(false)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM matches`); err != nil {
		s.healthStatus.Store(false)
		return fmt.Errorf("failed to clear matches: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM players`); err != nil {
		s.healthStatus.Store(false)
		return fmt.Errorf("failed to clear players: %w", err)
	}

	for _, p := range players {
		if err := insertPlayer(tx, p); err != nil {
			s.healthStatus.Store(false)
			return err
		}
	}
	for _, m := range matches {
		if err := insertMatch(tx, m); err != nil {
			s.healthStatus.Store(false)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		s.healthStatus.Store(false)
		return fmt.Errorf("failed to commit: %w", err)
	}

	s.healthStatus.Store(true)
	return nil
}

// LoadState reads the full registry and ledger. Matches are returned in
// ledger order (played_at, seq).
func (s *Store) LoadState() ([]PlayerRecord, []MatchRecord, error) {
	players, err := s.loadPlayers()
	if err != nil {
		s.healthStatus.Store(false)
		return nil, nil, err
	}

	matches, err := s.loadMatches()
	if err != nil {
		s.healthStatus.Store(false)
		return nil, nil, err
	}

	s.healthStatus.Store(true)
	return players, matches, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InitDB creates the database schema
func (s *Store) InitDB() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return tx.Commit()
}

// DeleteDB removes the database file
func (s *Store) DeleteDB() error {
	// Close connection first
	if err := s.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	// ☣ DESTRUCTIVE: Removes database file
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete database file: %w", err)
	}

	return nil
}
