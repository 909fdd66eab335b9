// Package lod decides which representation of each entity is visible.
//
// [Controller.SetDetailLevel] shows exactly one representation of an
// entity, or none. [Controller.HideAll] hides every entity except an
// optional survivor and is used whenever a mode switch or drill-down starts.
//
// Distance-based switching ([Controller.Update]) maps the depth distance
// between camera and card to a level through [Bands]. It is off unless
// [Controller.Enabled] is set; [LevelFor] is usable on its own either way.
package lod

import (
	"slices"

	"github.com/matzehuels/cardspace/pkg/scene"
)

// Band maps distances below Max to Level.
type Band struct {
	Max   float64
	Level scene.Level
}

// Bands is an ascending list of bands. Distances past the last band use
// the low level.
type Bands []Band

// DefaultBands: too close or behind the camera shows nothing, then high,
// medium, and low detail.
var DefaultBands = Bands{
	{Max: 500, Level: scene.LevelNone},
	{Max: 2500, Level: scene.LevelHigh},
	{Max: 10000, Level: scene.LevelMedium},
}

// LevelFor returns the level for a camera-to-object depth distance.
func (b Bands) LevelFor(distance float64) scene.Level {
	for _, band := range b {
		if distance < band.Max {
			return band.Level
		}
	}
	return scene.LevelLow
}

// LevelFor uses DefaultBands.
func LevelFor(distance float64) scene.Level { return DefaultBands.LevelFor(distance) }

// Controller gates representation visibility.
type Controller struct {
	// Enabled turns on distance-based switching in Update.
	Enabled bool

	set    *scene.Set
	bands  Bands
	levels map[string]scene.Level
	shown  map[string]bool
}

// New creates a controller over set. Nil bands use DefaultBands.
func New(set *scene.Set, bands Bands) *Controller {
	if bands == nil {
		bands = DefaultBands
	}
	return &Controller{
		set:    set,
		bands:  bands,
		levels: make(map[string]scene.Level),
		shown:  make(map[string]bool),
	}
}

// Preferred returns the level shown when id is revealed: the last level
// Update chose, or high detail.
func (c *Controller) Preferred(id string) scene.Level {
	if l, ok := c.levels[id]; ok && l != scene.LevelNone {
		return l
	}
	return scene.LevelHigh
}

// SetDetailLevel makes only the representation at level visible. LevelNone
// hides them all. Unknown ids are ignored.
func (c *Controller) SetDetailLevel(id string, level scene.Level) {
	r, ok := c.set.Get(id)
	if !ok {
		return
	}
	b := c.set.Backend()
	for _, l := range scene.Levels {
		h, _ := r.At(l)
		b.SetVisible(h, l == level)
	}
}

// Show reveals id at its preferred level and lets Update manage it.
func (c *Controller) Show(id string) {
	if !c.set.Has(id) {
		return
	}
	c.shown[id] = true
	c.SetDetailLevel(id, c.Preferred(id))
}

// Hide hides every representation of id until the next Show.
func (c *Controller) Hide(id string) {
	delete(c.shown, id)
	c.SetDetailLevel(id, scene.LevelNone)
}

// Shown reports whether id was revealed with Show and not hidden since.
func (c *Controller) Shown(id string) bool { return c.shown[id] }

// HideAll hides every entity except those named in except.
func (c *Controller) HideAll(except ...string) {
	for _, id := range c.set.IDs() {
		if slices.Contains(except, id) {
			continue
		}
		c.Hide(id)
	}
}

// Forget drops all state kept for id.
func (c *Controller) Forget(id string) {
	delete(c.levels, id)
	delete(c.shown, id)
}

// Update picks a level for every shown entity from its depth distance to
// cameraZ. It returns the number of entities whose level changed, and does
// nothing while the controller is disabled.
func (c *Controller) Update(cameraZ float64) int {
	if !c.Enabled {
		return 0
	}
	b := c.set.Backend()
	changed := 0
	for _, id := range c.set.IDs() {
		if !c.shown[id] {
			continue
		}
		r, _ := c.set.Get(id)
		level := c.bands.LevelFor(cameraZ - b.Position(r.High).Z)
		if prev, ok := c.levels[id]; ok && prev == level {
			continue
		}
		c.levels[id] = level
		c.SetDetailLevel(id, level)
		changed++
	}
	return changed
}
