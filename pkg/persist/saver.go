package persist

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardspace/pkg/entity"
	"github.com/matzehuels/cardspace/pkg/errors"
	"github.com/matzehuels/cardspace/pkg/observability"
)

// Saver moves a store's dataset to and from a backend.
type Saver struct {
	backend Backend
	store   *entity.Store
	key     string
	logger  *log.Logger

	mu       sync.Mutex
	lastHash string
}

// SaverOption configures a Saver.
type SaverOption func(*Saver)

// WithKey stores the dataset under key instead of DefaultKey.
func WithKey(key string) SaverOption {
	return func(s *Saver) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) SaverOption {
	return func(s *Saver) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSaver creates a saver for store. A nil backend uses Null.
func NewSaver(backend Backend, store *entity.Store, opts ...SaverOption) *Saver {
	if backend == nil {
		backend = NewNull()
	}
	s := &Saver{
		backend: backend,
		store:   store,
		key:     DefaultKey,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend returns the backend.
func (s *Saver) Backend() Backend { return s.backend }

// Key returns the storage key.
func (s *Saver) Key() string { return s.key }

// Load reads the dataset and imports it into the store. ok is false when
// the backend has no dataset, in which case the store is left alone.
func (s *Saver) Load(ctx context.Context) (ok bool, err error) {
	start := time.Now()
	var data []byte
	err = RetryWithBackoff(ctx, func() error {
		var gerr error
		data, ok, gerr = s.backend.Get(ctx, s.key)
		return gerr
	})
	observability.Persist().OnLoad(ctx, s.backend.Name(), ok, time.Since(start), err)
	if err != nil || !ok {
		return false, err
	}
	if err := s.store.Import(data); err != nil {
		return false, err
	}

	s.mu.Lock()
	s.lastHash = Hash(data)
	s.mu.Unlock()
	s.logger.Debug("dataset loaded", "backend", s.backend.Name(), "entities", s.store.Len())
	return true, nil
}

// Save exports the store and writes it when it changed since the last
// save or load. It reports whether a write happened.
func (s *Saver) Save(ctx context.Context) (bool, error) {
	data, err := s.store.Export()
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeInternal, err, "export dataset")
	}
	h := Hash(data)

	s.mu.Lock()
	defer s.mu.Unlock()
	if h == s.lastHash {
		return false, nil
	}

	start := time.Now()
	err = RetryWithBackoff(ctx, func() error { return s.backend.Set(ctx, s.key, data) })
	observability.Persist().OnSave(ctx, s.backend.Name(), len(data), time.Since(start), err)
	if err != nil {
		return false, err
	}
	s.lastHash = h
	s.logger.Debug("dataset saved", "backend", s.backend.Name(), "bytes", len(data))
	return true, nil
}

// Hook returns a function suitable for the store's persist hook. Failures
// are logged, never returned, so the interaction that triggered the save
// carries on.
func (s *Saver) Hook(ctx context.Context) func() {
	return func() {
		if _, err := s.Save(ctx); err != nil {
			s.logger.Error("persist failed", "backend", s.backend.Name(), "err", err)
		}
	}
}

// Close closes the backend.
func (s *Saver) Close() error { return s.backend.Close() }
