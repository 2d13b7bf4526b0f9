// Package store persists validation runs, user feedback and curated
// sample mappings in a single SQLite database. The engine itself is
// stateless; everything recorded here is an audit trail for the
// orchestrating agent and the humans reviewing its decisions.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Store wraps the SQLite handle. One writer at a time; WAL keeps readers
// unblocked while the agent records results.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
	vecExt bool
	log    *zap.Logger
}

// Open initializes the database at path, creating the schema on first
// use.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		log.Debug("failed to set busy_timeout", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		log.Debug("failed to set journal_mode", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		log.Debug("failed to set synchronous", zap.Error(err))
	}

	s := &Store{db: db, dbPath: path, log: log}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.detectVecExtension()
	if s.vecExt {
		log.Info("sqlite-vec extension detected, ANN sample search enabled")
	} else {
		log.Debug("sqlite-vec extension unavailable, falling back to in-process cosine similarity")
	}

	return s, nil
}

func (s *Store) initialize() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS validation_runs (
		id TEXT PRIMARY KEY,
		mapping_name TEXT NOT NULL,
		valid INTEGER NOT NULL,
		error_count INTEGER NOT NULL,
		warning_count INTEGER NOT NULL,
		result_json TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_runs_mapping ON validation_runs(mapping_name, created_at);

	CREATE TABLE IF NOT EXISTS feedback (
		id TEXT PRIMARY KEY,
		mapping_name TEXT NOT NULL,
		verdict TEXT NOT NULL,
		comment TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_feedback_mapping ON feedback(mapping_name, created_at);

	CREATE TABLE IF NOT EXISTS samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		document TEXT NOT NULL,
		embedding TEXT,
		metadata TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize store schema: %w", err)
	}
	return nil
}

// detectVecExtension probes for the sqlite-vec extension. Builds without
// the sqlite_vec tag always take the fallback path.
func (s *Store) detectVecExtension() {
	var version string
	if err := s.db.QueryRow("SELECT vec_version()").Scan(&version); err != nil {
		s.vecExt = false
		return
	}
	s.vecExt = true
	s.log.Debug("sqlite-vec available", zap.String("version", version))
}

// VecEnabled reports whether ANN search runs inside SQLite.
func (s *Store) VecEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vecExt
}

// Close releases the database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
