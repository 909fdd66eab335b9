package engine

import (
	"maps"
	"slices"
	"time"

	"github.com/matzehuels/cardspace/pkg/camera"
	"github.com/matzehuels/cardspace/pkg/entity"
	"github.com/matzehuels/cardspace/pkg/frame"
	"github.com/matzehuels/cardspace/pkg/layout"
	"github.com/matzehuels/cardspace/pkg/observability"
)

// Card placements used while navigating.
var (
	groupCardAt  = entity.Vec3{X: -80, Y: 250, Z: 90}
	focusGroupAt = entity.Vec3{X: -80, Y: 250, Z: 200}
	detailCardAt = entity.Vec3{X: 0, Y: 200, Z: 230}
)

// =============================================================================
// Drill and anchor
// =============================================================================

// Drill makes id the active mode, applies its saved camera pose and moves
// every child with an override record to its stored position and colour.
// Entities without children are left alone.
func (e *Engine) Drill(id string) {
	ent, ok := e.store.Get(id)
	if !ok {
		e.logger.Warn("drill: entity not found", "id", id)
		return
	}
	c := ent.Children
	if c == nil {
		e.logger.Debug("drill: no children", "id", id)
		return
	}
	e.ctx.ActiveMode = id
	observability.Engine().OnModeSwitch("drill")

	if c.Camera != nil {
		pose := camera.Pose{Position: *c.Camera}
		if c.CameraTarget != nil {
			pose.Target = *c.CameraTarget
		}
		e.cam.ControlsEnabled = false
		e.cam.MoveTo(pose)
		e.sched.After(e.cfg.ControlsDelay, func() { e.cam.ControlsEnabled = true })
	}

	e.sched.CancelGroup(CardGroup)
	for _, child := range slices.Sorted(maps.Keys(c.Overrides)) {
		ov := c.Overrides[child]
		if !e.store.Has(child) {
			e.logger.Warn("drill: child not found", "parent", id, "child", child)
			continue
		}
		if ov.Position != nil {
			e.moveCard(child, *ov.Position, e.cfg.Duration)
		}
		if ov.Color != "" {
			e.colorCard(child, ov.Color, e.cfg.Duration)
		}
		e.lod.Show(child)
	}
}

// Anchor highlights id as the drop target for drags and makes it the
// active mode. A previous anchor is released first.
func (e *Engine) Anchor(id string) {
	if !e.store.Has(id) {
		e.logger.Warn("anchor: entity not found", "id", id)
		return
	}
	e.ctx.freshAnchor = true
	e.ReleaseAnchor()
	e.ctx.ActiveMode = id
	e.ctx.AnchorID = id
	e.set.SetHighlight(id, true)
}

// ReleaseAnchor clears the anchor highlight.
func (e *Engine) ReleaseAnchor() {
	if e.ctx.AnchorID == "" {
		return
	}
	e.set.SetHighlight(e.ctx.AnchorID, false)
	e.ctx.AnchorID = ""
}

// =============================================================================
// Cards, frames and focus
// =============================================================================

// openCard handles a click on a card: a folder reveals its children beside
// it, anything else opens the detail panel.
func (e *Engine) openCard(id string) {
	ent, ok := e.store.Get(id)
	if !ok {
		e.logger.Warn("click: entity not found", "id", id)
		return
	}
	e.frames.HideAll()
	e.lod.HideAll(id)
	e.lod.Show(id)
	e.history = append(e.history, id)

	if ent.Kind == entity.KindFolder {
		e.moveCard(id, groupCardAt, e.cfg.Duration)
		e.showChildren(ent.ChildIDs(), layout.DefaultChildren)
		return
	}
	e.cam.MoveToOrigin()
	e.moveCard(id, detailCardAt, e.cfg.Duration)
	e.openPanel(ent)
}

// SelectFrame resolves a frame and shows what it leads to. A frame that
// resolves to nothing is logged and leaves the scene unchanged.
func (e *Engine) SelectFrame(key string) {
	res, err := frame.Resolve(e.cat, e.store, key, e.selectedRegion)
	if err != nil {
		e.logger.Info("frame selection not resolved", "frame", key, "err", err)
		observability.Engine().OnFrameSelect(key, false)
		return
	}
	for _, id := range res.Missing {
		e.logger.Warn("child entity not found", "frame", key, "id", id)
	}

	e.frames.Select(key)
	e.stopHideTimer()
	e.lod.HideAll()
	e.history = append(e.history, res.Key)

	if len(res.Frames) > 0 {
		e.frames.HideAll()
		e.frames.Place(res.Frames)
	}
	for _, t := range res.Cards {
		e.moveCard(t.ID, t.Position, e.cfg.Duration)
		e.lod.Show(t.ID)
	}
	observability.Engine().OnFrameSelect(key, true)
}

// Focus shows id as the starting point: an entity with children moves
// aside and reveals them, any other opens its detail panel. An unknown id
// snaps every card to the baseline and hides it.
func (e *Engine) Focus(id string) {
	ent, ok := e.store.Get(id)
	if !ok {
		e.logger.Warn("focus: entity not found", "id", id)
		e.transform(time.Millisecond, false)
		e.lod.HideAll()
		return
	}
	e.set.Ensure(id)
	e.lod.HideAll(id)
	e.lod.Show(id)
	if ent.HasChildren() {
		e.moveCard(id, focusGroupAt, e.cfg.Duration)
		e.showChildren(ent.ChildIDs(), layout.DefaultChildren)
		return
	}
	e.moveCard(id, detailCardAt, e.cfg.Duration)
	e.openPanel(ent)
}

// Back returns to the previous navigation step. With no step left it
// switches back into the current top-level mode.
func (e *Engine) Back() {
	if n := len(e.history); n > 0 {
		e.history = e.history[:n-1]
	}
	if len(e.history) == 0 {
		_ = e.SwitchMode(e.topMode)
		return
	}
	prev := e.history[len(e.history)-1]
	ids, ok := e.store.Children(prev)
	if !ok {
		e.logger.Info("back: previous step has no children", "id", prev)
		return
	}
	e.panel.Open = false
	e.frames.HideAll()
	e.lod.HideAll()
	e.showChildren(ids, layout.DefaultChildren)
}
