package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adelmans/zev/internal/config"
	"github.com/adelmans/zev/internal/llm"
)

const (
	FileName       = ".zev_history"
	SQLiteFileName = ".zev_history.db"

	// DefaultMaxEntries is how many entries are retained when no bound is given
	DefaultMaxEntries = 100
)

// ErrNilResponse is returned when saving an entry without a response
var ErrNilResponse = errors.New("history entry requires a response")

// Entry is one persisted query and the response it produced
type Entry struct {
	Query     string              `json:"query"`
	Response  llm.OptionsResponse `json:"response"`
	CreatedAt time.Time           `json:"created_at"`
}

// Store is a bounded, append-only log of entries. Load returns entries
// oldest-first and nil when there are none.
type Store interface {
	Save(query string, resp *llm.OptionsResponse) error
	Load() ([]Entry, error)
	Path() string
	Close() error
}

// Options configures Open
type Options struct {
	// Dir holds the history file. Defaults to the user's home directory.
	Dir string

	// MaxEntries bounds the retained entries. Defaults to DefaultMaxEntries.
	MaxEntries int
}

// Open returns the store selected by HISTORY_BACKEND
func Open(cfg config.Config, opts Options) (Store, error) {
	if opts.Dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		opts.Dir = home
	}

	switch cfg.History() {
	case config.HistorySQLite:
		return NewSQLiteStore(filepath.Join(opts.Dir, SQLiteFileName), opts.MaxEntries)
	default:
		return NewFileStore(filepath.Join(opts.Dir, FileName), opts.MaxEntries), nil
	}
}

func newEntry(query string, resp *llm.OptionsResponse) (Entry, error) {
	if resp == nil {
		return Entry{}, ErrNilResponse
	}
	return Entry{
		Query:     query,
		Response:  *resp,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func maxEntries(n int) int {
	if n <= 0 {
		return DefaultMaxEntries
	}
	return n
}
