// Package dynstore persists the accepted scraped questions for one data
// directory as a single JSON array. The store only ever grows: callers load
// the full list, append, and persist a full snapshot back.
package dynstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/AlexOliinyk1/careerintel/pkg/question"
)

// FileName is the fixed store file name inside a data directory.
const FileName = "scraped_questions.json"

// ErrCorrupted marks a store file that exists but does not parse. Callers
// must not confuse this with an absent file: overwriting a corrupted store
// with a fresh snapshot destroys whatever the file still holds.
var ErrCorrupted = errors.New("store file corrupted")

// Options configures a Store.
type Options struct {
	Logger *slog.Logger
}

func (o *Options) defaults() {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Store is the file-backed dynamic question store for one data directory.
type Store struct {
	dir    string
	path   string
	logger *slog.Logger
}

// Open returns a Store for dataDir. No I/O happens until Load or Persist.
func Open(dataDir string, opts Options) *Store {
	opts.defaults()
	return &Store{
		dir:    dataDir,
		path:   filepath.Join(dataDir, FileName),
		logger: opts.Logger,
	}
}

// Path returns the store file path.
func (s *Store) Path() string { return s.path }

// Load reads the full record list from disk. A missing file is the empty
// store, not an error. A file that exists but cannot be parsed returns an
// error wrapping ErrCorrupted.
func (s *Store) Load() ([]question.Classified, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store %s: %w", s.path, err)
	}

	var records []question.Classified
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse store %s: %w: %v", s.path, ErrCorrupted, err)
	}
	return records, nil
}

// Persist writes the full record list as one snapshot, creating the data
// directory if needed. The write goes to a temp file first and is renamed
// into place, so a reader never observes a torn file.
func (s *Store) Persist(records []question.Classified) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create data dir %s: %w", s.dir, err)
	}

	if records == nil {
		records = []question.Classified{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize store: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write store %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("commit store %s: %w", s.path, err)
	}
	return nil
}
