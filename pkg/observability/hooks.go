// Package observability provides hooks for metrics and logging.
//
// Instrumentation is optional: libraries call the registered hooks, and the
// defaults are no-ops. The binary registers real implementations at startup
// (see [Metrics] for the Prometheus one).
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    m, _ := observability.NewMetrics(prometheus.NewRegistry())
//	    m.Install()
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Engine().OnModeSwitch("map")
//	observability.Persist().OnSave(ctx, "redis", len(data), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from the arrangement engine.
// Calls happen on the engine's interaction thread and must not block.
type EngineHooks interface {
	// OnModeSwitch records a top-level arrangement mode switch.
	OnModeSwitch(mode string)

	// OnFrameSelect records a frame selection and whether it resolved to children.
	OnFrameSelect(key string, resolved bool)

	// OnDragCommit records where a drag wrote its position:
	// "slot", "override" or "skipped".
	OnDragCommit(target string)

	// OnTweens reports the number of active tweens after a tick.
	OnTweens(active int)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from the entity store.
type StoreHooks interface {
	// OnMutation records a put or delete.
	OnMutation(op string, entities int)

	// OnImport records a full dataset import.
	OnImport(entities int, err error)
}

// =============================================================================
// Persist Hooks
// =============================================================================

// PersistHooks receives events from persistence backends.
type PersistHooks interface {
	OnSave(ctx context.Context, backend string, size int, duration time.Duration, err error)
	OnLoad(ctx context.Context, backend string, hit bool, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnModeSwitch(string)        {}
func (NoopEngineHooks) OnFrameSelect(string, bool) {}
func (NoopEngineHooks) OnDragCommit(string)        {}
func (NoopEngineHooks) OnTweens(int)               {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnMutation(string, int) {}
func (NoopStoreHooks) OnImport(int, error)    {}

// NoopPersistHooks is a no-op implementation of PersistHooks.
type NoopPersistHooks struct{}

func (NoopPersistHooks) OnSave(context.Context, string, int, time.Duration, error)  {}
func (NoopPersistHooks) OnLoad(context.Context, string, bool, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	engineHooks  EngineHooks  = NoopEngineHooks{}
	storeHooks   StoreHooks   = NoopStoreHooks{}
	persistHooks PersistHooks = NoopPersistHooks{}
	hooksMu      sync.RWMutex
)

// SetEngineHooks registers custom engine hooks.
func SetEngineHooks(h EngineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		engineHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetPersistHooks registers custom persistence hooks.
func SetPersistHooks(h PersistHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		persistHooks = h
	}
}

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return engineHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Persist returns the registered persistence hooks.
func Persist() PersistHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return persistHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	engineHooks = NoopEngineHooks{}
	storeHooks = NoopStoreHooks{}
	persistHooks = NoopPersistHooks{}
}
