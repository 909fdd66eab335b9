package engine

import (
	"github.com/matzehuels/cardspace/pkg/entity"
	"github.com/matzehuels/cardspace/pkg/scene"
)

// Session is the pointer session state.
type Session int

const (
	SessionIdle Session = iota
	SessionPending
	SessionDragging
)

func (s Session) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionPending:
		return "pending"
	case SessionDragging:
		return "dragging"
	}
	return "unknown"
}

// DragSession is the grabbed card between pointer-down and pointer-up.
type DragSession struct {
	EntityID string
	Handle   scene.Handle
	// StartX and StartY are the viewport pixels of the pointer-down.
	StartX, StartY float64
	// Depth is the card's NDC depth captured when the drag starts.
	Depth float64
	// Last is the previous unprojected pointer position.
	Last entity.Vec3
}

// ArrangementContext is the explicit interaction state.
type ArrangementContext struct {
	// ActiveMode is a top-level mode name or the id of a drilled entity.
	ActiveMode string
	// AnchorID is the highlighted drop target, if any.
	AnchorID string
	Session  Session
	Drag     *DragSession
	// Selected is the card key input acts on.
	Selected string

	// freshAnchor swallows the pointer-up that follows an anchor click.
	freshAnchor bool
	// cameraMoving is set by any pointer move and cleared on pointer-up.
	cameraMoving bool
}

// TopLevel returns the active mode if it is one of the four top-level modes.
func (c *ArrangementContext) TopLevel() (entity.Mode, bool) {
	m := entity.Mode(c.ActiveMode)
	return m, m.TopLevel()
}

// Drilled reports whether the active mode is an entity id.
func (c *ArrangementContext) Drilled() bool {
	_, top := c.TopLevel()
	return c.ActiveMode != "" && !top
}

func (c *ArrangementContext) endSession() {
	c.Session = SessionIdle
	c.Drag = nil
	c.cameraMoving = false
}
