package persist

import "context"

// Null is a backend that never stores anything. It is the default when no
// backend is configured.
type Null struct{}

// NewNull creates a null backend.
func NewNull() Backend { return Null{} }

// Name returns "null".
func (Null) Name() string { return "null" }

// Get always reports a miss.
func (Null) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set does nothing.
func (Null) Set(context.Context, string, []byte) error { return nil }

// Delete does nothing.
func (Null) Delete(context.Context, string) error { return nil }

// Close does nothing.
func (Null) Close() error { return nil }

var _ Backend = Null{}
