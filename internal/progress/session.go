package progress

import (
	"errors"
	"time"

	"github.com/kingrea/wordtrack/internal/plan"
)

// ErrNotLoaded is returned when a session is used before Load.
var ErrNotLoaded = errors.New("progress: session not loaded")

// Session holds the in-memory snapshot for one user session. The snapshot is
// read from the store once and reused until Reload is called.
type Session struct {
	store    *Store
	entries  []plan.Entry
	snapshot Snapshot
	loaded   bool
	created  bool
}

// NewSession binds a store to the plan it tracks.
func NewSession(store *Store, entries []plan.Entry) *Session {
	return &Session{store: store, entries: entries}
}

// Load populates the snapshot on first use. Later calls are no-ops.
func (s *Session) Load() error {
	if s.loaded {
		return nil
	}
	return s.Reload()
}

// Reload rereads the snapshot from the store, creating it if necessary.
func (s *Session) Reload() error {
	exists, err := s.store.Exists()
	if err != nil {
		return err
	}
	snap, err := s.store.LoadOrInit(s.entries)
	if err != nil {
		return err
	}
	s.snapshot = snap
	s.loaded = true
	s.created = !exists
	return nil
}

// Created reports whether the last load had to initialize the store.
func (s *Session) Created() bool {
	return s.created
}

// Loaded reports whether a snapshot is held in memory.
func (s *Session) Loaded() bool {
	return s.loaded
}

// Snapshot returns a copy of the current snapshot.
func (s *Session) Snapshot() Snapshot {
	return s.snapshot.Clone()
}

// Plan returns the plan entries the session tracks.
func (s *Session) Plan() []plan.Entry {
	return s.entries
}

// StorePath returns the progress file location.
func (s *Session) StorePath() string {
	return s.store.Path()
}

// Commit merges inputs into the snapshot and persists the whole snapshot.
// The in-memory snapshot only changes if the save succeeds.
func (s *Session) Commit(inputs map[int]bool, today time.Time) ([]Change, error) {
	if !s.loaded {
		return nil, ErrNotLoaded
	}
	next := s.snapshot.Clone()
	changes := Apply(next, inputs, today)
	if err := s.store.Save(next); err != nil {
		return nil, err
	}
	s.snapshot = next
	return changes, nil
}
