// Package store persists the honeytoken ledger, the append-only generation
// log, and closed job contexts in SQLite.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/mattn/go-sqlite3"

	"decoyforge/internal/logging"
	"decoyforge/internal/token"
)

// Store owns the SQLite database. A single connection with WAL keeps the
// check-then-insert mint path serialized without table locks blocking readers.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string

	// lookupCache serves hot Lookup(value) hits. Entries are dropped on any
	// state change to the cached record.
	lookupCache *lru.Cache[string, token.Record]
}

// Open initializes the database at path. Use ":memory:" for tests.
// cacheSize <= 0 disables the lookup cache.
func Open(path string, cacheSize int) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Open")
	defer timer.Stop()

	logging.Store("opening ledger database at %s", path)

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("failed to set sqlite journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("failed to set sqlite synchronous=NORMAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		logging.StoreDebug("failed to set sqlite foreign_keys=ON: %v", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if cacheSize > 0 {
		cache, err := lru.New[string, token.Record](cacheSize)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create lookup cache: %w", err)
		}
		s.lookupCache = cache
	}

	logging.StoreDebug("schema initialized, lookup cache size %d", cacheSize)
	return s, nil
}

// initialize creates the required tables.
func (s *Store) initialize() error {
	honeytokens := `
	CREATE TABLE IF NOT EXISTS honeytokens (
		id TEXT PRIMARY KEY,
		token_type TEXT NOT NULL,
		token_value TEXT NOT NULL UNIQUE,
		decoy_id TEXT NOT NULL DEFAULT '',
		file_path TEXT NOT NULL DEFAULT '',
		job_id TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT 'active',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		accessed_at DATETIME,
		access_count INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_honeytokens_decoy ON honeytokens(decoy_id);
	CREATE INDEX IF NOT EXISTS idx_honeytokens_job ON honeytokens(job_id);
	CREATE INDEX IF NOT EXISTS idx_honeytokens_state ON honeytokens(state);`

	generationLog := `
	CREATE TABLE IF NOT EXISTS generation_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		generation_id TEXT NOT NULL,
		content_type TEXT NOT NULL,
		file_type TEXT NOT NULL DEFAULT '',
		decoy_id TEXT NOT NULL DEFAULT '',
		job_id TEXT NOT NULL DEFAULT '',
		attempt INTEGER NOT NULL,
		prompt_hash TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL DEFAULT '',
		temperature REAL NOT NULL DEFAULT 0,
		min_score REAL NOT NULL DEFAULT 0,
		accepted INTEGER NOT NULL DEFAULT 0,
		rejection_reasons TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_generation_log_generation ON generation_log(generation_id);
	CREATE INDEX IF NOT EXISTS idx_generation_log_decoy ON generation_log(decoy_id);`

	jobContexts := `
	CREATE TABLE IF NOT EXISTS job_contexts (
		job_id TEXT PRIMARY KEY,
		decoy_id TEXT NOT NULL,
		slots TEXT NOT NULL DEFAULT '{}',
		token_ids TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		closed_at DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_job_contexts_decoy ON job_contexts(decoy_id);`

	for _, stmt := range []string{honeytokens, generationLog, jobContexts} {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	logging.StoreDebug("closing database at %s", s.dbPath)
	return s.db.Close()
}
