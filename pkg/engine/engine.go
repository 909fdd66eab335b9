package engine

import (
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardspace/pkg/camera"
	"github.com/matzehuels/cardspace/pkg/catalog"
	"github.com/matzehuels/cardspace/pkg/color"
	"github.com/matzehuels/cardspace/pkg/entity"
	"github.com/matzehuels/cardspace/pkg/errors"
	"github.com/matzehuels/cardspace/pkg/frame"
	"github.com/matzehuels/cardspace/pkg/layout"
	"github.com/matzehuels/cardspace/pkg/lod"
	"github.com/matzehuels/cardspace/pkg/observability"
	"github.com/matzehuels/cardspace/pkg/scene"
	"github.com/matzehuels/cardspace/pkg/tween"
)

// CardGroup tags every card tween so mode switches can cancel them at once.
const CardGroup = "cards"

// =============================================================================
// Configuration
// =============================================================================

// Config holds the engine tunables.
type Config struct {
	// NearField is the camera depth distance within which pointer-down
	// drills or anchors instead of dragging.
	NearField float64
	// Duration is the base duration of card and frame moves.
	Duration time.Duration
	// HideDelay is how long after a map or category switch the cards hide.
	HideDelay time.Duration
	// ControlsDelay is how long camera controls stay off after a drill
	// applies a saved pose.
	ControlsDelay time.Duration
	// DepthStep is the z nudge of one arrow key press.
	DepthStep float64
	// LOD turns on distance-based detail switching.
	LOD bool
	// Width and Height are the viewport in pixels.
	Width, Height float64
	// Seed makes spawn positions and jitter deterministic; zero is random.
	Seed uint64
}

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		NearField:     2000,
		Duration:      2000 * time.Millisecond,
		HideDelay:     2050 * time.Millisecond,
		ControlsDelay: 2100 * time.Millisecond,
		DepthStep:     100,
		Width:         camera.DefaultWidth,
		Height:        camera.DefaultHeight,
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig replaces the tunables.
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithCatalog replaces the embedded catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(e *Engine) {
		if c != nil {
			e.cat = c
		}
	}
}

// WithBackend renders into b instead of an in-memory scene.
func WithBackend(b scene.Backend) Option {
	return func(e *Engine) {
		if b != nil {
			e.backend = b
		}
	}
}

// WithConfirm installs the delete confirmation. Without one every delete is
// confirmed.
func WithConfirm(fn func(id string) bool) Option {
	return func(e *Engine) { e.confirm = fn }
}

// WithEditor installs the callback that opens the detail editor for a card.
func WithEditor(fn func(id string)) Option {
	return func(e *Engine) { e.editor = fn }
}

// =============================================================================
// Engine
// =============================================================================

// Engine is the arrangement and interaction engine.
type Engine struct {
	cfg     Config
	logger  *log.Logger
	store   *entity.Store
	cat     *catalog.Catalog
	backend scene.Backend
	confirm func(id string) bool
	editor  func(id string)

	rng    *rand.Rand
	sched  *tween.Scheduler
	set    *scene.Set
	lod    *lod.Controller
	cam    *camera.Camera
	frames *frame.Registry

	ctx     ArrangementContext
	topMode entity.Mode
	targets []layout.Transform
	history []string
	panel   Panel

	regions        []*region
	selectedRegion string
	regionTimer    tween.TimerID
	hideTimer      tween.TimerID
}

// New creates an engine over store. Call [Engine.Init] before use.
func New(store *entity.Store, opts ...Option) *Engine {
	e := &Engine{
		cfg:     DefaultConfig(),
		logger:  log.Default(),
		store:   store,
		cat:     catalog.Default(),
		topMode: entity.ModeAlphabetic,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.backend == nil {
		e.backend = scene.NewMemory()
	}

	seed := e.cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	e.rng = rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	e.sched = tween.New(tween.WithSeed(seed))
	e.set = scene.NewSet(e.backend, e.rng)
	e.lod = lod.New(e.set, nil)
	e.lod.Enabled = e.cfg.LOD
	e.cam = camera.New(e.cfg.Width, e.cfg.Height)
	e.frames = frame.NewRegistry(e.backend, e.sched, e.cat, e.rng, e.logger)
	e.ctx.ActiveMode = string(e.topMode)
	return e
}

// Store returns the entity store.
func (e *Engine) Store() *entity.Store { return e.store }

// Catalog returns the catalog in use.
func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// Backend returns the scene backend.
func (e *Engine) Backend() scene.Backend { return e.backend }

// Camera returns the camera.
func (e *Engine) Camera() *camera.Camera { return e.cam }

// Frames returns the frame registry.
func (e *Engine) Frames() *frame.Registry { return e.frames }

// Visuals returns the visual object set.
func (e *Engine) Visuals() *scene.Set { return e.set }

// LOD returns the detail controller.
func (e *Engine) LOD() *lod.Controller { return e.lod }

// Scheduler returns the tween scheduler.
func (e *Engine) Scheduler() *tween.Scheduler { return e.sched }

// Context returns a copy of the arrangement context.
func (e *Engine) Context() ArrangementContext { return e.ctx }

// Targets returns the last computed baseline.
func (e *Engine) Targets() []layout.Transform { return e.targets }

// History returns the navigation history, oldest first.
func (e *Engine) History() []string { return append([]string(nil), e.history...) }

// Init builds the derived state for the current store contents. A known
// focus id is shown as if it had been clicked; otherwise every card snaps
// to the baseline and hides.
func (e *Engine) Init(focus string) {
	e.buildRegions()
	e.arrange()
	if focus != "" && e.store.Has(focus) {
		e.Focus(focus)
	} else {
		if focus != "" {
			e.logger.Warn("focus entity not found", "id", focus)
		}
		e.transform(time.Millisecond, false)
		e.lod.HideAll()
	}
	e.cam.Save()
}

// Reload drops derived state after the store was replaced and initialises
// again.
func (e *Engine) Reload(focus string) {
	e.stopHideTimer()
	e.sched.CancelGroup(CardGroup)
	for _, id := range e.set.IDs() {
		if !e.store.Has(id) {
			e.set.Remove(id)
			e.lod.Forget(id)
			e.sched.Cancel(id)
		}
	}
	e.ctx = ArrangementContext{ActiveMode: string(e.topMode)}
	e.history = nil
	e.panel = Panel{}
	e.frames.HideAll()
	e.Init(focus)
}

// Tick advances animation by dt.
func (e *Engine) Tick(dt time.Duration) {
	e.sched.Tick(dt)
	e.lod.Update(e.cam.Position.Z)
	observability.Engine().OnTweens(e.sched.Active())
}

// Settle ticks until every tween and timer has finished, or until limit
// worth of ticks have run.
func (e *Engine) Settle(step, limit time.Duration) {
	for elapsed := time.Duration(0); elapsed < limit; elapsed += step {
		if e.sched.Active() == 0 && e.sched.Pending() == 0 {
			return
		}
		e.Tick(step)
	}
}

// =============================================================================
// Layout and transitions
// =============================================================================

// arrange recomputes the shared baseline over every stored entity.
func (e *Engine) arrange() {
	e.targets = layout.Baseline(e.store.IDs(), layout.DefaultGrid)
}

// moveCard animates every representation of id toward pos with zero
// rotation, creating the representations if needed.
func (e *Engine) moveCard(id string, pos entity.Vec3, d time.Duration) {
	r, _ := e.set.Ensure(id)
	e.sched.AnimateTransform(id, CardGroup,
		e.backend.Position(r.High), pos, e.set.Rotation(id), entity.Vec3{}, d,
		func(v entity.Vec3) { e.set.SetPosition(id, v) },
		func(v entity.Vec3) { e.set.SetRotation(id, v) })
}

// colorCard animates id toward the hex colour. A bad colour is logged and
// skipped.
func (e *Engine) colorCard(id, hex string, d time.Duration) bool {
	e.set.Ensure(id)
	if err := e.sched.AnimateColor(id, CardGroup, e.set.Color(id), hex, d,
		func(c color.RGBA) { e.set.SetColor(id, c) }); err != nil {
		e.logger.Warn("skipping colour", "id", id, "color", hex, "err", err)
		return false
	}
	return true
}

// transform cancels every card tween, then animates each entity to its
// baseline target and its colour for the active top-level mode. When
// visible is set every card is shown.
func (e *Engine) transform(d time.Duration, visible bool) {
	e.arrange()
	e.sched.CancelGroup(CardGroup)
	for _, t := range e.targets {
		ent, ok := e.store.Get(t.ID)
		if !ok {
			continue
		}
		e.moveCard(t.ID, t.Position, d)
		e.colorCard(t.ID, ent.Color.Get(e.topMode), d)
		if visible {
			e.lod.Show(t.ID)
		}
	}
}

// showChildren lays ids out as a child grid and reveals them. Missing ids
// are logged and skipped.
func (e *Engine) showChildren(ids []string, spec layout.ChildSpec) {
	e.stopHideTimer()
	placed, missing := layout.Children(ids, e.store.Has, spec)
	for _, id := range missing {
		e.logger.Warn("child entity not found", "id", id)
	}
	for _, t := range placed {
		e.moveCard(t.ID, t.Position, e.cfg.Duration)
		e.lod.Show(t.ID)
	}
}

func (e *Engine) stopHideTimer() {
	if e.hideTimer != 0 {
		e.sched.Stop(e.hideTimer)
		e.hideTimer = 0
	}
}

func (e *Engine) armHideTimer() {
	e.stopHideTimer()
	e.hideTimer = e.sched.After(e.cfg.HideDelay, func() {
		e.hideTimer = 0
		e.lod.HideAll()
	})
}

// =============================================================================
// Modes and recolouring
// =============================================================================

// SwitchMode activates a top-level mode.
func (e *Engine) SwitchMode(m entity.Mode) error {
	if !m.TopLevel() {
		return errors.New(errors.ErrCodeInvalidInput, "%q is not a top-level mode", m)
	}
	e.ctx.ActiveMode = string(m)
	e.topMode = m
	e.history = nil

	switch m {
	case entity.ModeMap:
		e.cam.MoveToOrigin()
		e.panel.Open = false
		e.frames.HideAll()
		e.armHideTimer()
		e.gatherRegions()
		e.transform(e.cfg.Duration, false)
	case entity.ModeCategory:
		e.cam.MoveToOrigin()
		e.panel.Open = false
		e.frames.HideAll()
		e.armHideTimer()
		e.scatterRegions()
		e.frames.ShowCategories()
		e.transform(e.cfg.Duration, false)
	case entity.ModeAlphabetic:
		e.cam.MoveToOrigin()
		e.panel.Open = false
		e.frames.HideAll()
		e.scatterRegions()
		e.frames.ShowBuckets()
		e.transform(e.cfg.Duration, true)
	case entity.ModeTheme:
		e.frames.HideAll()
		e.scatterRegions()
		e.transform(e.cfg.Duration, true)
	}
	observability.Engine().OnModeSwitch(string(m))
	e.logger.Debug("mode switched", "mode", m)
	return nil
}

// Scheme names a recolouring.
type Scheme string

const (
	SchemeCategory Scheme = "category"
	SchemeIssue    Scheme = "issue"
)

// Recolor applies a recolouring scheme.
func (e *Engine) Recolor(s Scheme) error {
	switch s {
	case SchemeCategory:
		e.RecolorByCategory()
	case SchemeIssue:
		e.RecolorByIssue()
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown colour scheme %q", s)
	}
	return nil
}

// RecolorByCategory colours every entity with a category label by its
// category and stores the colour in the category slot.
func (e *Engine) RecolorByCategory() {
	changed := 0
	for _, ent := range e.store.All() {
		if ent.Party == "" {
			continue
		}
		c := e.cat.CategoryColor(ent.Party)
		if e.colorCard(ent.ID, c, e.cfg.Duration) {
			ent.Color.Set(entity.ModeCategory, c)
			changed++
		}
	}
	if changed > 0 {
		e.store.Persist()
	}
}

// RecolorByIssue colours every entity by its issue markers. The colours are
// not stored.
func (e *Engine) RecolorByIssue() {
	for _, ent := range e.store.All() {
		e.colorCard(ent.ID, e.cat.IssueColor(ent.TuboVerdict, ent.UraganeVerdict), e.cfg.Duration)
	}
}

// Snapshotter is implemented by backends that can list their objects.
type Snapshotter interface {
	Snapshot() []scene.Snapshot
}

// Snapshot lists every scene object when the backend supports it.
func (e *Engine) Snapshot() ([]scene.Snapshot, bool) {
	s, ok := e.backend.(Snapshotter)
	if !ok {
		return nil, false
	}
	return s.Snapshot(), true
}
