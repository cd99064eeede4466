package vocabulary

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ErrNotLoaded is returned when no vocabulary has been loaded yet.
var ErrNotLoaded = errors.New("vocabulary not loaded")

// Observer is notified after every load attempt.
type Observer interface {
	ObserveVocabularyReload(source string, sizes map[string]int, err error)
}

// Store holds the current Set and replaces it on reload. A failed reload
// keeps the previous Set.
type Store struct {
	loader   *Loader
	source   string
	observer Observer
	logger   *slog.Logger

	current atomic.Pointer[Set]
	mu      sync.Mutex
}

// NewStore creates an empty Store for source.
func NewStore(loader *Loader, source string, observer Observer, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		loader:   loader,
		source:   source,
		observer: observer,
		logger:   logger,
	}
}

// Source returns the configured vocabulary source.
func (s *Store) Source() string {
	return s.source
}

// Current returns the loaded Set, or nil before the first successful load.
func (s *Store) Current() *Set {
	return s.current.Load()
}

// Get returns the loaded Set or ErrNotLoaded.
func (s *Store) Get() (*Set, error) {
	if set := s.current.Load(); set != nil {
		return set, nil
	}
	return nil, ErrNotLoaded
}

// Set replaces the current Set directly.
func (s *Store) Set(set *Set) {
	s.current.Store(set)
}

// Reload loads the source again and swaps it in on success. Concurrent
// reloads are serialised.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.loader.Load(ctx, s.source)
	if err != nil {
		s.logger.Error("vocabulary reload failed", "source", s.source, "error", err)
		if s.observer != nil {
			s.observer.ObserveVocabularyReload(s.source, nil, err)
		}
		return err
	}

	previous := s.current.Swap(set)
	sizes := set.Sizes(s.loader.config.Fields)
	if s.observer != nil {
		s.observer.ObserveVocabularyReload(s.source, sizes, nil)
	}

	if previous == nil {
		s.logger.Info("vocabulary loaded", "source", s.source, "sizes", sizes)
	} else {
		s.logger.Info("vocabulary reloaded", "source", s.source, "sizes", sizes)
	}
	return nil
}
