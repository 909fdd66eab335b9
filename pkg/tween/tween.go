package tween

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/fogleman/ease"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/matzehuels/cardspace/pkg/color"
	"github.com/matzehuels/cardspace/pkg/entity"
)

// Property names an animatable property of an object.
type Property string

const (
	Position Property = "position"
	Rotation Property = "rotation"
	Color    Property = "color"
)

// Key identifies a task. At most one task runs per key.
type Key struct {
	Object   string
	Property Property
}

// Easing maps linear progress in [0, 1] to eased progress.
type Easing func(float64) float64

var (
	// Transform easing for position and rotation.
	Transform Easing = ease.InOutExpo
	// ColorEasing for material colour.
	ColorEasing Easing = ease.InOutQuad
	// Camera easing for camera moves.
	Camera Easing = ease.OutQuad
)

type task struct {
	group    string
	start    time.Duration
	duration time.Duration
	from, to []float64
	easing   Easing
	apply    func([]float64)
	buf      []float64
}

type timer struct {
	id  TimerID
	due time.Duration
	fn  func()
}

// TimerID identifies a pending [Scheduler.After] callback.
type TimerID uint64

// Scheduler advances tweens and timers on an explicit tick.
//
// A Scheduler is not safe for concurrent use; it belongs to the goroutine
// that owns the scene.
type Scheduler struct {
	clock  time.Duration
	tasks  *orderedmap.OrderedMap[Key, *task]
	timers []timer
	nextID TimerID
	rng    *rand.Rand
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithSeed makes duration jitter deterministic.
func WithSeed(seed uint64) Option {
	return func(s *Scheduler) {
		s.rng = rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	}
}

// New creates a scheduler with its clock at zero.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		tasks: orderedmap.New[Key, *task](),
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the scheduler clock.
func (s *Scheduler) Now() time.Duration { return s.clock }

// Active returns the number of running tasks.
func (s *Scheduler) Active() int { return s.tasks.Len() }

// Running reports whether a task runs for key.
func (s *Scheduler) Running(key Key) bool {
	_, ok := s.tasks.Get(key)
	return ok
}

// Jitter returns a duration drawn uniformly from [base, 2*base).
func (s *Scheduler) Jitter(base time.Duration) time.Duration {
	if base <= 0 {
		return base
	}
	return base + time.Duration(s.rng.Float64()*float64(base))
}

// Start registers a task interpolating from → to over d, replacing any task
// already running for key. apply receives the interpolated values on every
// tick; its slice is reused between calls. group tags the task for
// [Scheduler.CancelGroup].
func (s *Scheduler) Start(key Key, group string, from, to []float64, d time.Duration, easing Easing, apply func([]float64)) {
	if easing == nil {
		easing = ease.Linear
	}
	s.tasks.Delete(key)
	s.tasks.Set(key, &task{
		group:    group,
		start:    s.clock,
		duration: d,
		from:     slices.Clone(from),
		to:       slices.Clone(to),
		easing:   easing,
		apply:    apply,
		buf:      make([]float64, len(to)),
	})
}

// Vec3 animates a vector property.
func (s *Scheduler) Vec3(key Key, group string, from, to entity.Vec3, d time.Duration, easing Easing, apply func(entity.Vec3)) {
	s.Start(key, group, vec(from), vec(to), d, easing, func(v []float64) {
		apply(entity.Vec3{X: v[0], Y: v[1], Z: v[2]})
	})
}

// AnimateTransform moves object's position and rotation toward the targets.
// Each property's duration is jittered independently within [base, 2*base).
func (s *Scheduler) AnimateTransform(object, group string, fromPos, toPos, fromRot, toRot entity.Vec3, base time.Duration, setPos, setRot func(entity.Vec3)) {
	s.Vec3(Key{object, Position}, group, fromPos, toPos, s.Jitter(base), Transform, setPos)
	s.Vec3(Key{object, Rotation}, group, fromRot, toRot, s.Jitter(base), Transform, setRot)
}

// AnimateColor tweens object's colour toward the hex target. A malformed
// target fails before any task starts.
func (s *Scheduler) AnimateColor(object, group string, from color.RGBA, target string, d time.Duration, apply func(color.RGBA)) error {
	to, err := color.ParseHex(target)
	if err != nil {
		return err
	}
	s.Start(Key{object, Color}, group,
		[]float64{from.R, from.G, from.B, from.A},
		[]float64{to.R, to.G, to.B, to.A},
		d, ColorEasing,
		func(v []float64) { apply(color.RGBA{R: v[0], G: v[1], B: v[2], A: v[3]}) })
	return nil
}

// Cancel stops every task on object without applying final values.
func (s *Scheduler) Cancel(object string) {
	s.cancelWhere(func(k Key, _ *task) bool { return k.Object == object })
}

// CancelKey stops the task for key.
func (s *Scheduler) CancelKey(key Key) {
	s.tasks.Delete(key)
}

// CancelGroup stops every task tagged with group.
func (s *Scheduler) CancelGroup(group string) {
	s.cancelWhere(func(_ Key, t *task) bool { return t.group == group })
}

func (s *Scheduler) cancelWhere(match func(Key, *task) bool) {
	var drop []Key
	for pair := s.tasks.Oldest(); pair != nil; pair = pair.Next() {
		if match(pair.Key, pair.Value) {
			drop = append(drop, pair.Key)
		}
	}
	for _, k := range drop {
		s.tasks.Delete(k)
	}
}

// After schedules fn to run on the first tick at or after d from now.
func (s *Scheduler) After(d time.Duration, fn func()) TimerID {
	s.nextID++
	s.timers = append(s.timers, timer{id: s.nextID, due: s.clock + d, fn: fn})
	return s.nextID
}

// Stop cancels a pending timer. It reports whether the timer was pending.
func (s *Scheduler) Stop(id TimerID) bool {
	i := slices.IndexFunc(s.timers, func(t timer) bool { return t.id == id })
	if i < 0 {
		return false
	}
	s.timers = slices.Delete(s.timers, i, i+1)
	return true
}

// Pending returns the number of timers not yet fired.
func (s *Scheduler) Pending() int { return len(s.timers) }

// Tick advances the clock by dt, applies every running task, retires the
// finished ones, then fires due timers in due order. Timers and tasks
// registered by callbacks during the tick are picked up on the next tick.
func (s *Scheduler) Tick(dt time.Duration) {
	if dt > 0 {
		s.clock += dt
	}

	var done []Key
	for pair := s.tasks.Oldest(); pair != nil; pair = pair.Next() {
		t := pair.Value
		p := 1.0
		if t.duration > 0 {
			p = min(float64(s.clock-t.start)/float64(t.duration), 1)
		}
		if p >= 1 {
			copy(t.buf, t.to)
			done = append(done, pair.Key)
		} else {
			e := t.easing(p)
			for i := range t.buf {
				t.buf[i] = t.from[i] + (t.to[i]-t.from[i])*e
			}
		}
		t.apply(t.buf)
	}
	for _, k := range done {
		s.tasks.Delete(k)
	}

	var due []timer
	s.timers = slices.DeleteFunc(s.timers, func(t timer) bool {
		if t.due <= s.clock {
			due = append(due, t)
			return true
		}
		return false
	})
	slices.SortStableFunc(due, func(a, b timer) int {
		switch {
		case a.due < b.due:
			return -1
		case a.due > b.due:
			return 1
		}
		return 0
	})
	for _, t := range due {
		t.fn()
	}
}

func vec(v entity.Vec3) []float64 { return []float64{v.X, v.Y, v.Z} }
