// Package session persists the currently loaded dataset between CLI
// invocations as a single snapshot file.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/churnlens-cli/internal/dataset"
	"github.com/KaramelBytes/churnlens-cli/internal/utils"
)

const (
	snapshotFileName = "session.json"
	cursorFileName   = "cursor.json"
)

// ErrNoSession is returned when no dataset has been loaded.
var ErrNoSession = errors.New("no dataset loaded")

// Snapshot is one loaded dataset. A new upload produces a new Snapshot
// with a fresh ID; snapshots are never edited in place.
type Snapshot struct {
	ID       string           `json:"id"`
	Source   string           `json:"source"`
	LoadedAt time.Time        `json:"loaded_at"`
	Warnings []string         `json:"warnings,omitempty"`
	Dataset  *dataset.Dataset `json:"dataset"`
}

// NewSnapshot wraps ds in a Snapshot with a fresh ID.
func NewSnapshot(source string, ds *dataset.Dataset, warnings []string) *Snapshot {
	return &Snapshot{
		ID:       uuid.NewString(),
		Source:   source,
		LoadedAt: time.Now().UTC(),
		Warnings: warnings,
		Dataset:  ds,
	}
}

// Store keeps the snapshot file in a directory.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string) *Store { return &Store{dir: dir} }

// Path returns the snapshot file location.
func (s *Store) Path() string { return filepath.Join(s.dir, snapshotFileName) }

// Save replaces the stored snapshot using an atomic write.
func (s *Store) Save(snap *Snapshot) error {
	if snap == nil {
		return errors.New("snapshot is nil")
	}
	return utils.WriteJSON(s.Path(), snap)
}

// Load reads the stored snapshot. It returns ErrNoSession when nothing
// has been saved.
func (s *Store) Load() (*Snapshot, error) {
	b, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", s.Path(), err)
	}
	if snap.Dataset == nil {
		snap.Dataset = dataset.New(nil, nil)
	}
	return &snap, nil
}

// Reset removes the stored snapshot and cursor. Resetting an empty store
// is not an error.
func (s *Store) Reset() error {
	for _, name := range []string{snapshotFileName, cursorFileName} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove session: %w", err)
		}
	}
	return nil
}

// Cursor remembers the customer table position for one snapshot.
type Cursor struct {
	SnapshotID string `json:"snapshot_id"`
	Page       int    `json:"page"`
	Size       int    `json:"size"`
}

// LoadCursor returns the saved cursor for snapshotID. A missing cursor, or
// one saved for another snapshot, yields page 1 with size 0.
func (s *Store) LoadCursor(snapshotID string) (Cursor, error) {
	fresh := Cursor{SnapshotID: snapshotID, Page: 1}
	b, err := os.ReadFile(filepath.Join(s.dir, cursorFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fresh, nil
		}
		return Cursor{}, fmt.Errorf("read cursor: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return Cursor{}, fmt.Errorf("parse cursor: %w", err)
	}
	if c.SnapshotID != snapshotID {
		return fresh, nil
	}
	return c, nil
}

// SaveCursor stores c atomically.
func (s *Store) SaveCursor(c Cursor) error {
	return utils.WriteJSON(filepath.Join(s.dir, cursorFileName), c)
}
