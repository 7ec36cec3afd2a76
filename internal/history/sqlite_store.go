package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/adelmans/zev/internal/llm"
)

// SQLiteStore persists history in a SQLite database
type SQLiteStore struct {
	db         *sql.DB
	path       string
	maxEntries int
	mu         sync.Mutex
}

// NewSQLiteStore opens (or creates) the database at path
func NewSQLiteStore(path string, max int) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db, path: path, maxEntries: maxEntries(max)}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query TEXT NOT NULL,
		response TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`)
	return err
}

// Save inserts an entry and deletes everything older than the newest maxEntries
func (s *SQLiteStore) Save(query string, resp *llm.OptionsResponse) error {
	entry, err := newEntry(query, resp)
	if err != nil {
		return err
	}
	data, err := json.Marshal(entry.Response)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO history (query, response, created_at) VALUES (?, ?, ?)`,
		entry.Query, string(data), entry.CreatedAt.Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM history WHERE id NOT IN (
		SELECT id FROM history ORDER BY id DESC LIMIT ?
	)`, s.maxEntries); err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}
	return tx.Commit()
}

// Load returns the retained entries oldest-first. Rows whose response no
// longer decodes are skipped.
func (s *SQLiteStore) Load() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT query, response, created_at FROM history ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var response, createdAt string
		if err := rows.Scan(&e.Query, &response, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		if err := json.Unmarshal([]byte(response), &e.Response); err != nil {
			continue
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Path returns the sqlite database path
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
