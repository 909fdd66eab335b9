package frame

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardspace/pkg/catalog"
	"github.com/matzehuels/cardspace/pkg/color"
	"github.com/matzehuels/cardspace/pkg/entity"
	"github.com/matzehuels/cardspace/pkg/layout"
	"github.com/matzehuels/cardspace/pkg/scene"
	"github.com/matzehuels/cardspace/pkg/tween"
)

// Group tags every frame tween.
const Group = "frames"

const (
	// Duration of every frame move.
	Duration = 2000 * time.Millisecond
	// HiddenDepth is where hidden frames are sent.
	HiddenDepth = -200
	// SpawnRange is the half-extent of the cube frames start in.
	SpawnRange = 200
)

var (
	// SelectedAt is where a selected frame moves.
	SelectedAt = entity.Vec3{X: -80, Y: 250, Z: 180}
	// SingleChoiceAt and BlockChoiceAt place the district choice frames.
	SingleChoiceAt = entity.Vec3{X: -60, Z: 210}
	BlockChoiceAt  = entity.Vec3{X: 60, Z: 210}
)

// Frame is one navigation widget.
type Frame struct {
	Key    string
	Label  string
	Color  string
	Handle scene.Handle
}

// Registry owns every frame.
type Registry struct {
	backend scene.Backend
	sched   *tween.Scheduler
	cat     *catalog.Catalog
	logger  *log.Logger

	frames []*Frame
	byKey  map[string]*Frame
}

// NewRegistry creates every frame the catalog defines, hidden at a random
// point inside the spawn cube. A nil rng uses a random seed.
func NewRegistry(backend scene.Backend, sched *tween.Scheduler, cat *catalog.Catalog, rng *rand.Rand, logger *log.Logger) *Registry {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if logger == nil {
		logger = log.Default()
	}
	r := &Registry{
		backend: backend,
		sched:   sched,
		cat:     cat,
		logger:  logger,
		byKey:   make(map[string]*Frame),
	}
	for _, spec := range cat.Frames() {
		c, err := color.ParseHex(spec.Color)
		if err != nil {
			// Catalog colours are validated at load.
			c = color.Black
		}
		f := &Frame{Key: spec.Key, Label: spec.Label, Color: spec.Color}
		f.Handle = backend.CreateFrame(spec.Key, spec.Label, c)
		backend.SetPosition(f.Handle, entity.Vec3{
			X: rng.Float64()*2*SpawnRange - SpawnRange,
			Y: rng.Float64()*2*SpawnRange - SpawnRange,
			Z: rng.Float64()*2*SpawnRange - SpawnRange,
		})
		backend.SetVisible(f.Handle, false)
		r.frames = append(r.frames, f)
		r.byKey[f.Key] = f
	}
	return r
}

// Get returns the frame with the given key.
func (r *Registry) Get(key string) (*Frame, bool) {
	f, ok := r.byKey[key]
	return f, ok
}

// Keys returns every frame key in creation order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.frames))
	for i, f := range r.frames {
		keys[i] = f.Key
	}
	return keys
}

// Len returns the number of frames.
func (r *Registry) Len() int { return len(r.frames) }

// Visible reports whether the frame is shown.
func (r *Registry) Visible(key string) bool {
	f, ok := r.byKey[key]
	return ok && r.backend.Visible(f.Handle)
}

// VisibleKeys returns the keys of every shown frame.
func (r *Registry) VisibleKeys() []string {
	var keys []string
	for _, f := range r.frames {
		if r.backend.Visible(f.Handle) {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// Position returns the frame's current position.
func (r *Registry) Position(key string) (entity.Vec3, bool) {
	f, ok := r.byKey[key]
	if !ok {
		return entity.Vec3{}, false
	}
	return r.backend.Position(f.Handle), true
}

// Move animates the frame toward to. Unknown keys are ignored.
func (r *Registry) Move(key string, to entity.Vec3) {
	f, ok := r.byKey[key]
	if !ok {
		r.logger.Debug("frame not found", "key", key)
		return
	}
	h := f.Handle
	r.sched.Vec3(tween.Key{Object: "frame:" + key, Property: tween.Position}, Group,
		r.backend.Position(h), to, Duration, tween.Transform,
		func(v entity.Vec3) { r.backend.SetPosition(h, v) })
}

// Show reveals the frame and moves it to at.
func (r *Registry) Show(key string, at entity.Vec3) {
	if f, ok := r.byKey[key]; ok {
		r.backend.SetVisible(f.Handle, true)
	}
	r.Move(key, at)
}

// HideAll hides every frame except those in except and sends them back to
// HiddenDepth, keeping x and y.
func (r *Registry) HideAll(except ...string) {
	for _, f := range r.frames {
		if slices.Contains(except, f.Key) {
			continue
		}
		r.backend.SetVisible(f.Handle, false)
		p := r.backend.Position(f.Handle)
		r.Move(f.Key, entity.Vec3{X: p.X, Y: p.Y, Z: HiddenDepth})
	}
}

// ShowBoard shows keys on the two-column board.
func (r *Registry) ShowBoard(keys []string) {
	for _, t := range layout.Board(keys, layout.DefaultBoard) {
		r.Show(t.ID, t.Position)
	}
}

// ShowCategories shows the category board.
func (r *Registry) ShowCategories() { r.ShowBoard(r.cat.CategoryOrder()) }

// ShowBuckets shows the alphabetic bucket board.
func (r *Registry) ShowBuckets() { r.ShowBoard(r.cat.BucketOrder()) }

// ShowDistrictChoice shows the single-member and block district frames.
func (r *Registry) ShowDistrictChoice() {
	for _, d := range r.cat.Districts {
		switch d.Kind {
		case catalog.DistrictSingle:
			r.Show(d.Key, SingleChoiceAt)
		case catalog.DistrictBlock:
			r.Show(d.Key, BlockChoiceAt)
		}
	}
}

// Select moves the frame aside and hides every other frame.
func (r *Registry) Select(key string) {
	r.Move(key, SelectedAt)
	r.HideAll(key)
}

// Place shows the frames of a grouped layout at their group rows.
func (r *Registry) Place(frames []layout.Transform) {
	for _, t := range frames {
		r.Show(t.ID, t.Position)
	}
}
