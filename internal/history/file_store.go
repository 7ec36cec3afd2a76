package history

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/adelmans/zev/internal/llm"
)

// FileStore keeps history as one JSON entry per line
type FileStore struct {
	path       string
	maxEntries int
	mu         sync.Mutex
}

// NewFileStore creates a store backed by the jsonl file at path
func NewFileStore(path string, max int) *FileStore {
	return &FileStore{path: path, maxEntries: maxEntries(max)}
}

// Save appends an entry, then drops the oldest lines beyond the bound
func (f *FileStore) Save(query string, resp *llm.OptionsResponse) error {
	entry, err := newEntry(query, resp)
	if err != nil {
		return err
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	if _, err := file.Write(append(data, '\n')); err != nil {
		file.Close()
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}

	return f.trim()
}

// trim rewrites the file with only the newest maxEntries lines
func (f *FileStore) trim() error {
	lines, err := f.lines()
	if err != nil {
		return err
	}
	if len(lines) <= f.maxEntries {
		return nil
	}
	lines = lines[len(lines)-f.maxEntries:]

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp history file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		w.Write(line)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp history file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write temp history file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}

// lines returns the non-blank lines of the history file
func (f *FileStore) lines() ([][]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	var lines [][]byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// Load returns the retained entries oldest-first. Lines that do not decode
// are skipped.
func (f *FileStore) Load() ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	lines, err := f.lines()
	if err != nil {
		return nil, err
	}
	var entries []Entry
	for _, line := range lines {
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Path returns the backing file path
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Close() error {
	return nil
}

var _ Store = (*FileStore)(nil)
