package entity

import (
	"bytes"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/matzehuels/cardspace/pkg/errors"
	"github.com/matzehuels/cardspace/pkg/observability"
)

// Store holds every entity in insertion order.
//
// A Store is safe for concurrent use, but the engine mutates returned
// entities in place; callers that share a Store across goroutines must funnel
// entity mutations through a single goroutine.
type Store struct {
	mu      sync.RWMutex
	items   *orderedmap.OrderedMap[string, *Entity]
	logger  *log.Logger
	persist func()
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for warnings.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPersist installs the hook run by [Store.Persist].
func WithPersist(fn func()) Option {
	return func(s *Store) { s.persist = fn }
}

// WithClock overrides the clock used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		items:  orderedmap.New[string, *Entity](),
		logger: log.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetPersist replaces the persistence hook.
func (s *Store) SetPersist(fn func()) {
	s.mu.Lock()
	s.persist = fn
	s.mu.Unlock()
}

// Persist signals that the current state should be made durable.
func (s *Store) Persist() {
	s.mu.RLock()
	fn := s.persist
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Get returns the entity with the given id.
func (s *Store) Get(id string) (*Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items.Get(id)
}

// Has reports whether id is stored.
func (s *Store) Has(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// Put stores e under e.ID, replacing any previous record but keeping its
// position in iteration order.
func (s *Store) Put(e *Entity) error {
	if e == nil || e.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "entity id is required")
	}
	if rejected := e.normalize(); rejected != "" {
		s.logger.Warn("unknown content kind, inferred instead", "id", e.ID, "type", rejected, "kind", e.Kind)
	}

	s.mu.Lock()
	s.items.Set(e.ID, e)
	n := s.items.Len()
	s.mu.Unlock()

	observability.Store().OnMutation("put", n)
	return nil
}

// Create stores a new text entity with a fresh id and default slots.
func (s *Store) Create(title, detail string) *Entity {
	e := &Entity{
		ID:        uuid.NewString(),
		Title:     title,
		Detail:    detail,
		Kind:      KindText,
		Timestamp: s.now().UnixMilli(),
	}
	_ = s.Put(e)
	return e
}

// Delete removes id from the store and from every parent's children.
// Deleting a missing id logs a warning and returns false.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	if _, ok := s.items.Delete(id); !ok {
		s.mu.Unlock()
		s.logger.Warn("delete: entity does not exist", "id", id)
		return false
	}
	for pair := s.items.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.removeChild(id) {
			s.logger.Debug("removed child reference", "parent", pair.Key, "child", id)
		}
	}
	n := s.items.Len()
	s.mu.Unlock()

	observability.Store().OnMutation("delete", n)
	return true
}

// Len returns the number of entities.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items.Len()
}

// IDs returns every id in iteration order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, s.items.Len())
	for pair := s.items.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	return ids
}

// All returns every entity in iteration order.
func (s *Store) All() []*Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Entity, 0, s.items.Len())
	for pair := s.items.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Children returns a copy of the child id list of id. ok is false when id
// is missing or has no child list.
func (s *Store) Children(id string) (ids []string, ok bool) {
	e, found := s.Get(id)
	if !found || e.Children == nil || e.Children.Cards == nil {
		return nil, false
	}
	return slices.Clone(e.Children.Cards), true
}

// =============================================================================
// JSON boundary
// =============================================================================

// Import replaces the whole dataset with the JSON object in data. On any
// error the store is left untouched.
func (s *Store) Import(data []byte) error {
	items := orderedmap.New[string, *Entity]()
	if err := json.Unmarshal(data, items); err != nil {
		observability.Store().OnImport(0, err)
		return errors.Wrap(errors.ErrCodeMalformedInput, err, "dataset is not a valid card document")
	}

	for pair := items.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == nil {
			pair.Value = &Entity{}
		}
		pair.Value.ID = pair.Key
		if rejected := pair.Value.normalize(); rejected != "" {
			s.logger.Warn("unknown content kind, inferred instead", "id", pair.Key, "type", rejected, "kind", pair.Value.Kind)
		}
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	observability.Store().OnImport(items.Len(), nil)
	return nil
}

// Export returns the dataset as pretty-printed JSON.
func (s *Store) Export() ([]byte, error) {
	s.mu.RLock()
	raw, err := json.Marshal(s.items)
	s.mu.RUnlock()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode dataset")
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "    "); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "indent dataset")
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
