package store

import (
	"context"
	"fmt"
	"sync"

	"seodash/domain/core"
	"seodash/domain/searchdata"
	"seodash/internal"
	"seodash/ports"
)

// Store holds the session's record collection. The in-memory slice is
// authoritative; every successful update is written through to the mirror on
// a best-effort basis.
type Store struct {
	mu      sync.RWMutex
	records []searchdata.Record
	loaded  bool
	version uint64

	// persistMu orders mirror writes; only the latest version is saved
	persistMu sync.Mutex

	mirror ports.RecordMirror
	logger *internal.Logger
}

// New creates an empty store. A nil mirror keeps the store memory-only.
func New(mirror ports.RecordMirror, logger *internal.Logger) *Store {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Store{
		mirror: mirror,
		logger: logger.WithComponent("Store"),
	}
}

// Init warm-starts the store from the mirror. Any failure leaves the store
// empty; it is never reported to the caller.
func (s *Store) Init(ctx context.Context) {
	if s.mirror == nil {
		return
	}

	var records []searchdata.Record
	err := guard(func() error {
		var err error
		records, err = s.mirror.Load(ctx)
		return err
	})
	if err != nil {
		s.logger.Error("Error loading stored data: %v", err)
		return
	}
	if len(records) == 0 {
		return
	}

	s.mu.Lock()
	s.records = records
	s.loaded = true
	s.mu.Unlock()

	s.logger.Info("Loaded %d records from storage", len(records))
}

// SetRecords replaces the collection wholesale. An empty input is rejected
// with core.ErrEmptyInput and leaves the current state untouched.
func (s *Store) SetRecords(ctx context.Context, records []searchdata.Record) error {
	if len(records) == 0 {
		return core.ErrEmptyInput
	}

	owned := make([]searchdata.Record, len(records))
	copy(owned, records)

	s.mu.Lock()
	s.records = owned
	s.loaded = true
	s.version++
	version := s.version
	s.mu.Unlock()

	s.persist(ctx, version, owned)
	s.logger.Info("Data saved: %d records", len(owned))
	return nil
}

// ByCategory returns the records tagged with category, in stored order
func (s *Store) ByCategory(category searchdata.Category) []searchdata.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return searchdata.FilterByCategory(s.records, category)
}

// Records returns a copy of the whole collection
func (s *Store) Records() []searchdata.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]searchdata.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Loaded reports whether any load has succeeded since start or the last Clear
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Len returns the number of records held
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Categories returns the record count per category
func (s *Store) Categories() map[searchdata.Category]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return searchdata.CountByCategory(s.records)
}

// Clear empties the collection and deletes the mirror
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.records = nil
	s.loaded = false
	s.version++
	s.mu.Unlock()

	if s.mirror == nil {
		return
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if err := guard(func() error { return s.mirror.Delete(ctx) }); err != nil {
		s.logger.Error("Error deleting stored data: %v", err)
	}
}

// persist writes records to the mirror unless a newer update has superseded them
func (s *Store) persist(ctx context.Context, version uint64, records []searchdata.Record) {
	if s.mirror == nil {
		return
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.RLock()
	current := s.version
	s.mu.RUnlock()
	if current != version {
		s.logger.Debug("Skipping stale save of %d records", len(records))
		return
	}

	if err := guard(func() error { return s.mirror.Save(ctx, records) }); err != nil {
		s.logger.Error("Error storing data: %v", err)
	}
}

// guard runs fn and turns a panic into an error
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mirror panicked: %v", r)
		}
	}()
	return fn()
}
