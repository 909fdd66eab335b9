package scene

import (
	"fmt"

	"github.com/matzehuels/cardspace/pkg/color"
	"github.com/matzehuels/cardspace/pkg/entity"
)

// Level is a representation detail level.
type Level int

const (
	LevelNone Level = iota
	LevelHigh
	LevelMedium
	LevelLow
)

// Levels lists every level that has a representation.
var Levels = []Level{LevelHigh, LevelMedium, LevelLow}

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelHigh:
		return "high"
	case LevelMedium:
		return "medium"
	case LevelLow:
		return "low"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Handle is an opaque reference to a backend object.
type Handle uint64

// Kind classifies hit-testable objects.
type Kind int

const (
	KindCard Kind = iota + 1
	KindFrame
	KindRegion
)

func (k Kind) String() string {
	switch k {
	case KindCard:
		return "card"
	case KindFrame:
		return "frame"
	case KindRegion:
		return "region"
	}
	return "unknown"
}

// Hit is one hit-test result. Exactly one of EntityID, FrameKey and Region
// is set, matching Kind.
type Hit struct {
	Handle   Handle
	Kind     Kind
	EntityID string
	Level    Level
	FrameKey string
	Region   string
	Distance float64
	Point    entity.Vec3
}

// Ray is a half-line in world space. Direction need not be normalised.
type Ray struct {
	Origin    entity.Vec3
	Direction entity.Vec3
}

// At returns the point at parameter t.
func (r Ray) At(t float64) entity.Vec3 {
	return entity.Vec3{
		X: r.Origin.X + r.Direction.X*t,
		Y: r.Origin.Y + r.Direction.Y*t,
		Z: r.Origin.Z + r.Direction.Z*t,
	}
}

// Backend is the rendering boundary. The engine never reasons about
// geometry beyond what this interface exposes.
//
// New objects start hidden. HitTest only reports visible objects, nearest
// first.
type Backend interface {
	CreateRepresentation(entityID string, level Level) Handle
	CreateFrame(key, label string, c color.RGBA) Handle
	CreateRegion(name string) Handle
	Remove(h Handle)

	SetVisible(h Handle, visible bool)
	Visible(h Handle) bool
	SetPosition(h Handle, p entity.Vec3)
	Position(h Handle) entity.Vec3
	SetRotation(h Handle, r entity.Vec3)
	Rotation(h Handle) entity.Vec3
	SetMaterialColor(h Handle, c color.RGBA)
	MaterialColor(h Handle) color.RGBA
	SetHighlight(h Handle, on bool)

	HitTest(ray Ray) []Hit
}
