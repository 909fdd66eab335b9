// Package tween drives time-based property animations and one-shot timers
// from a single explicit tick.
//
// A [Scheduler] keeps a registry of tasks keyed by (object, property).
// Starting a task for a key that is already animating replaces the running
// task, so two tweens never fight over one property. Callers never wait for
// completion: they register work and the owning loop calls
// [Scheduler.Tick] once per frame.
//
// Transform animations jitter their duration uniformly in [d, 2d) per
// property so a batch of cards does not land in lockstep; they ease with
// exponential in/out. Colour animations ease quadratically and interpolate
// in normalised RGBA. A malformed target colour is rejected before any
// task starts.
//
// [Scheduler.After] schedules callbacks on the same clock, which is how the
// engine implements delayed hides and temporarily disabled camera controls
// without goroutines.
package tween
