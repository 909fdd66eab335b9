// Package camera is a perspective camera with screen/world conversion.
//
// Screen coordinates are pixels with the origin at the top-left of the
// viewport. Normalised device coordinates (NDC) run from -1 to 1 on every
// axis, +y up. [Camera.Project] maps world points to NDC and
// [Camera.Unproject] maps NDC back to world space; the engine unprojects at
// a fixed NDC depth while dragging so the card stays in its plane.
package camera

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/cardspace/pkg/entity"
	"github.com/matzehuels/cardspace/pkg/scene"
	"github.com/matzehuels/cardspace/pkg/tween"
)

// Defaults for a new camera.
const (
	DefaultFOV    = 40
	DefaultNear   = 1
	DefaultFar    = 10000
	DefaultZ      = 1000
	DefaultWidth  = 1920
	DefaultHeight = 1080

	// SoftSelectDistance is how far in front of a card a soft select
	// places the camera.
	SoftSelectDistance = 1500
)

// Origin is the home pose.
var Origin = Pose{Position: entity.Vec3{Z: DefaultZ}}

// Pose is a camera position and look-at target.
type Pose struct {
	Position entity.Vec3 `json:"position"`
	Target   entity.Vec3 `json:"target"`
}

// Facing returns the pose looking straight at p from SoftSelectDistance
// along +z.
func Facing(p entity.Vec3) Pose {
	return Pose{Position: p.Add(entity.Vec3{Z: SoftSelectDistance}), Target: p}
}

// Camera is a perspective camera with orbit-style controls state.
type Camera struct {
	Pose

	FOV    float64
	Near   float64
	Far    float64
	Width  float64
	Height float64

	// ControlsEnabled mirrors whether user pan/zoom is accepted.
	ControlsEnabled bool

	saved Pose
}

// New creates a camera at the origin pose with the default lens.
func New(width, height float64) *Camera {
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}
	return &Camera{
		Pose:            Origin,
		FOV:             DefaultFOV,
		Near:            DefaultNear,
		Far:             DefaultFar,
		Width:           width,
		Height:          height,
		ControlsEnabled: true,
		saved:           Origin,
	}
}

func v3(v entity.Vec3) mgl64.Vec3 { return mgl64.Vec3{v.X, v.Y, v.Z} }

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(v3(c.Position), v3(c.Target), mgl64.Vec3{0, 1, 0})
}

// Projection returns the camera-to-clip matrix.
func (c *Camera) Projection() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.FOV), c.Width/c.Height, c.Near, c.Far)
}

// Project maps a world point to NDC.
func (c *Camera) Project(p entity.Vec3) entity.Vec3 {
	clip := c.Projection().Mul4(c.View()).Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
	w := clip.W()
	if w == 0 {
		return entity.Vec3{}
	}
	return entity.Vec3{X: clip.X() / w, Y: clip.Y() / w, Z: clip.Z() / w}
}

// Unproject maps an NDC point to world space.
func (c *Camera) Unproject(ndc entity.Vec3) entity.Vec3 {
	inv := c.Projection().Mul4(c.View()).Inv()
	world := inv.Mul4x1(mgl64.Vec4{ndc.X, ndc.Y, ndc.Z, 1})
	w := world.W()
	if w == 0 {
		return entity.Vec3{}
	}
	return entity.Vec3{X: world.X() / w, Y: world.Y() / w, Z: world.Z() / w}
}

// NDC converts viewport pixels to normalised device x and y.
func (c *Camera) NDC(px, py float64) (x, y float64) {
	return px/c.Width*2 - 1, -(py/c.Height*2 - 1)
}

// Ray returns the pick ray through the given viewport pixel.
func (c *Camera) Ray(px, py float64) scene.Ray {
	x, y := c.NDC(px, py)
	through := c.Unproject(entity.Vec3{X: x, Y: y, Z: 0.5})
	return scene.Ray{Origin: c.Position, Direction: through.Sub(c.Position)}
}

// MoveTo jumps to pose.
func (c *Camera) MoveTo(p Pose) { c.Pose = p }

// MoveToOrigin jumps to the home pose.
func (c *Camera) MoveToOrigin() { c.Pose = Origin }

// Save remembers the current pose for Restore.
func (c *Camera) Save() { c.saved = c.Pose }

// Saved returns the remembered pose.
func (c *Camera) Saved() Pose { return c.saved }

// Restore animates back to the saved pose over d.
func (c *Camera) Restore(s *tween.Scheduler, d time.Duration) {
	c.AnimateTo(s, c.saved, d)
}

// AnimateTo tweens position and target toward p with quadratic ease-out.
func (c *Camera) AnimateTo(s *tween.Scheduler, p Pose, d time.Duration) {
	s.Vec3(tween.Key{Object: "camera", Property: tween.Position}, "camera", c.Position, p.Position, d, tween.Camera,
		func(v entity.Vec3) { c.Position = v })
	s.Vec3(tween.Key{Object: "camera", Property: "target"}, "camera", c.Target, p.Target, d, tween.Camera,
		func(v entity.Vec3) { c.Target = v })
}

// Depth returns the depth distance from the camera to p, positive in front.
func (c *Camera) Depth(p entity.Vec3) float64 {
	return c.Position.Z - p.Z
}
