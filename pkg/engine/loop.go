package engine

import (
	"context"
	"time"
)

// Loop owns an engine on a single goroutine. It ticks the engine at a fixed
// interval and runs submitted operations between ticks, so an operation
// always sees the settled result of every earlier one.
type Loop struct {
	engine   *Engine
	interval time.Duration
	ops      chan op
	done     chan struct{}
}

type op struct {
	fn    func(*Engine) error
	reply chan error
}

// NewLoop wraps e. A non-positive interval ticks at 60 Hz.
func NewLoop(e *Engine, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &Loop{
		engine:   e,
		interval: interval,
		ops:      make(chan op),
		done:     make(chan struct{}),
	}
}

// Run ticks and serves operations until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			l.engine.Tick(now.Sub(last))
			last = now
		case o := <-l.ops:
			o.reply <- o.fn(l.engine)
		}
	}
}

// Do runs fn on the loop goroutine and waits for it.
func (l *Loop) Do(ctx context.Context, fn func(*Engine) error) error {
	o := op{fn: fn, reply: make(chan error, 1)}
	select {
	case l.ops <- o:
	case <-l.done:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-o.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
