package persist

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Multi writes to every backend concurrently and reads from the first one
// that has the key.
type Multi struct {
	backends []Backend
}

// NewMulti combines backends. Reads try them in the given order.
func NewMulti(backends ...Backend) *Multi {
	return &Multi{backends: backends}
}

// Backends returns the combined backends.
func (m *Multi) Backends() []Backend { return m.backends }

// Name joins the backend names with "+".
func (m *Multi) Name() string {
	names := make([]string, len(m.backends))
	for i, b := range m.backends {
		names[i] = b.Name()
	}
	return strings.Join(names, "+")
}

// Get returns the first hit. An error from one backend falls through to
// the next; it is returned only when no backend has the key.
func (m *Multi) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var firstErr error
	for _, b := range m.backends {
		data, ok, err := b.Get(ctx, key)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			return data, true, nil
		}
	}
	return nil, false, firstErr
}

// Set writes to every backend and returns the first error.
func (m *Multi) Set(ctx context.Context, key string, data []byte) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, b := range m.backends {
		g.Go(func() error { return b.Set(ctx, key, data) })
	}
	return g.Wait()
}

// Delete removes key from every backend and returns the first error.
func (m *Multi) Delete(ctx context.Context, key string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, b := range m.backends {
		g.Go(func() error { return b.Delete(ctx, key) })
	}
	return g.Wait()
}

// Close closes every backend and returns the first error.
func (m *Multi) Close() error {
	var first error
	for _, b := range m.backends {
		if err := b.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

var _ Backend = (*Multi)(nil)
