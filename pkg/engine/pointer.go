package engine

import (
	"math"
	"time"

	"github.com/matzehuels/cardspace/pkg/camera"
	"github.com/matzehuels/cardspace/pkg/entity"
	"github.com/matzehuels/cardspace/pkg/errors"
	"github.com/matzehuels/cardspace/pkg/observability"
	"github.com/matzehuels/cardspace/pkg/scene"
)

// Button is a pointer button.
type Button int

const (
	ButtonLeft  Button = 0
	ButtonRight Button = 2
)

// Pointer is a pointer event in viewport pixels.
type Pointer struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Button Button  `json:"button"`
}

// Key is a keyboard key name.
type Key string

const (
	KeyArrowUp    Key = "ArrowUp"
	KeyArrowDown  Key = "ArrowDown"
	KeyArrowRight Key = "ArrowRight"
)

// restoreDuration is how long the camera takes to return after a drag.
const restoreDuration = time.Millisecond

// pick returns the nearest visible card under the pointer.
func (e *Engine) pick(p Pointer) (scene.Hit, bool) {
	for _, h := range e.backend.HitTest(e.cam.Ray(p.X, p.Y)) {
		if h.Kind == scene.KindCard {
			return h, true
		}
	}
	return scene.Hit{}, false
}

// =============================================================================
// Pointer session
// =============================================================================

// PointerDown starts an interaction. A card within the near field drills
// (left button) or anchors (right button). A farther card opens the editor
// on the right button, or a pending drag session on the left. Empty space
// does nothing until pointer-up.
func (e *Engine) PointerDown(p Pointer) {
	hit, ok := e.pick(p)
	if !ok {
		return
	}
	id := hit.EntityID
	pos := e.backend.Position(hit.Handle)

	if math.Abs(e.cam.Position.Z-pos.Z) <= e.cfg.NearField {
		switch p.Button {
		case ButtonLeft:
			e.Drill(id)
		case ButtonRight:
			e.Anchor(id)
		}
		return
	}
	if p.Button == ButtonRight {
		if e.editor != nil {
			e.editor(id)
		}
		return
	}

	e.ctx.Session = SessionPending
	e.ctx.Drag = &DragSession{EntityID: id, Handle: hit.Handle, StartX: p.X, StartY: p.Y}
	e.ctx.Selected = id
	e.cam.ControlsEnabled = false
	e.cam.Save()
}

// PointerMove continues a drag. The first move after pointer-down promotes
// the session to dragging and captures the card's depth; every move then
// translates the card by the change in unprojected pointer position.
func (e *Engine) PointerMove(p Pointer) {
	e.ctx.cameraMoving = true
	d := e.ctx.Drag
	if d == nil {
		return
	}

	if e.ctx.Session == SessionPending {
		start := e.backend.Position(d.Handle)
		d.Depth = e.cam.Project(start).Z
		d.Last = e.unproject(d.StartX, d.StartY, d.Depth)
		e.ctx.Session = SessionDragging
	}

	cur := e.unproject(p.X, p.Y, d.Depth)
	pos := e.backend.Position(d.Handle).Add(cur.Sub(d.Last))
	d.Last = cur

	// Stop any tween still pulling the card toward an old target.
	e.sched.Cancel(d.EntityID)
	e.set.SetPosition(d.EntityID, pos)
	e.commitPosition(d.EntityID, pos, false)
}

func (e *Engine) unproject(px, py, depth float64) entity.Vec3 {
	x, y := e.cam.NDC(px, py)
	return e.cam.Unproject(entity.Vec3{X: x, Y: y, Z: depth})
}

// commitPosition writes a card position into the store. Top-level modes
// take x and y (and z when withZ is set) into the mode slot; a drilled and
// anchored parent takes the full position into its override record.
func (e *Engine) commitPosition(id string, pos entity.Vec3, withZ bool) {
	ent, ok := e.store.Get(id)
	if !ok {
		e.logger.Warn("commit: entity not found", "id", id)
		return
	}
	if m, top := e.ctx.TopLevel(); top {
		slot := ent.Position.Get(m)
		slot.X, slot.Y = pos.X, pos.Y
		if withZ {
			slot.Z = pos.Z
		}
		ent.Position.Set(m, slot)
		observability.Engine().OnDragCommit(string(m))
		return
	}
	if withZ {
		// Depth nudges only persist into top-level slots.
		return
	}
	if e.ctx.AnchorID == "" {
		e.logger.Warn("commit: no anchored parent", "id", id, "mode", e.ctx.ActiveMode,
			"err", errors.New(errors.ErrCodeInvariant, "override write without anchor"))
		return
	}
	parent, ok := e.store.Get(e.ctx.ActiveMode)
	if !ok {
		e.logger.Warn("commit: parent not found", "parent", e.ctx.ActiveMode)
		return
	}
	c := parent.EnsureChildren()
	if c.Overrides == nil {
		c.Overrides = make(map[string]entity.Override)
	}
	ov := c.Overrides[id]
	p := pos
	ov.Position = &p
	c.Overrides[id] = ov
	observability.Engine().OnDragCommit("override")
}

// PointerUp ends an interaction. A release on empty space that follows
// neither an anchor click nor a camera move releases the anchor. A pending
// session that never moved turns the camera to face the card. Every
// release restores controls, recomputes the baseline and persists.
func (e *Engine) PointerUp(Pointer) {
	switch e.ctx.Session {
	case SessionIdle:
		if !e.ctx.freshAnchor && !e.ctx.cameraMoving {
			e.ReleaseAnchor()
		} else {
			e.ctx.freshAnchor = false
		}
	case SessionPending:
		if pos, ok := e.set.Position(e.ctx.Drag.EntityID); ok {
			e.cam.MoveTo(camera.Facing(pos))
		}
	case SessionDragging:
		e.cam.Restore(e.sched, restoreDuration)
	}
	e.end()
}

// end closes the session and persists.
func (e *Engine) end() {
	e.cam.ControlsEnabled = true
	e.ctx.endSession()
	e.arrange()
	e.store.Persist()
}

// =============================================================================
// Click
// =============================================================================

// Click resolves a click without drag against everything under the
// pointer, nearest first: a map region is picked, a folder card shows its
// children, any other card opens its detail panel, a frame is selected.
func (e *Engine) Click(p Pointer) {
	for _, h := range e.backend.HitTest(e.cam.Ray(p.X, p.Y)) {
		switch h.Kind {
		case scene.KindRegion:
			e.PickRegion(h.Region)
			return
		case scene.KindCard:
			e.openCard(h.EntityID)
			return
		case scene.KindFrame:
			e.SelectFrame(h.FrameKey)
			return
		}
	}
	e.logger.Debug("click on empty space", "x", p.X, "y", p.Y)
}

// =============================================================================
// Keys
// =============================================================================

// PressKey handles a key press. Arrow up and down nudge the selected card
// along z; arrow right saves the camera pose into the drilled entity.
func (e *Engine) PressKey(k Key) error {
	switch k {
	case KeyArrowUp:
		e.nudge(e.cfg.DepthStep)
	case KeyArrowDown:
		e.nudge(-e.cfg.DepthStep)
	case KeyArrowRight:
		e.saveCameraPose()
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unbound key %q", k)
	}
	return nil
}

func (e *Engine) nudge(dz float64) {
	id := e.ctx.Selected
	if id == "" {
		e.logger.Debug("no card selected to move")
		return
	}
	pos, ok := e.set.Position(id)
	if !ok {
		return
	}
	pos.Z += dz
	e.sched.Cancel(id)
	e.set.SetPosition(id, pos)
	e.commitPosition(id, pos, true)
	e.store.Persist()
}

func (e *Engine) saveCameraPose() {
	if !e.ctx.Drilled() {
		e.logger.Warn("camera pose: no drilled entity", "mode", e.ctx.ActiveMode)
		return
	}
	parent, ok := e.store.Get(e.ctx.ActiveMode)
	if !ok {
		e.logger.Warn("camera pose: parent not found", "parent", e.ctx.ActiveMode)
		return
	}
	c := parent.EnsureChildren()
	pos, target := e.cam.Position, e.cam.Target
	c.Camera, c.CameraTarget = &pos, &target
	e.store.Persist()
}
