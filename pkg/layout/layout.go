package layout

import (
	"math"

	"github.com/matzehuels/cardspace/pkg/entity"
)

// Transform is a target placement for one object.
type Transform struct {
	ID       string
	Position entity.Vec3
	Rotation entity.Vec3
}

// =============================================================================
// Baseline grid
// =============================================================================

// Grid configures the baseline square grid.
type Grid struct {
	PitchX float64
	PitchY float64
	Depth  float64
}

// DefaultGrid is the grid shared by every top-level mode.
var DefaultGrid = Grid{PitchX: 120, PitchY: 50, Depth: -1000}

// Side returns the side length of the square grid holding n items.
func Side(n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Ceil(math.Sqrt(float64(n))))
}

// Baseline places ids row-major on a square grid of side ceil(sqrt(n))
// centred on the origin. Rotation is always zero.
func Baseline(ids []string, g Grid) []Transform {
	side := Side(len(ids))
	out := make([]Transform, len(ids))
	for i, id := range ids {
		row, col := i/side, i%side
		out[i] = Transform{
			ID: id,
			Position: entity.Vec3{
				X: float64(col)*g.PitchX - g.PitchX*float64(side)/2,
				Y: -float64(row)*g.PitchY + g.PitchY*float64(side)/2,
				Z: g.Depth,
			},
		}
	}
	return out
}

// =============================================================================
// Children grid
// =============================================================================

// ChildSpec configures a drill-down child grid.
type ChildSpec struct {
	Columns       int
	RowSpacing    float64
	ColumnSpacing float64
	StartX        float64
	StartY        float64
	Depth         float64
}

var (
	// DefaultChildren is used when drilling into a card.
	DefaultChildren = ChildSpec{Columns: 2, RowSpacing: 70, ColumnSpacing: 150, StartX: -70, StartY: 200, Depth: 100}
	// DistrictChildren is used for district and bucket selections.
	DistrictChildren = ChildSpec{Columns: 3, RowSpacing: 70, ColumnSpacing: 105, StartX: -100, StartY: 230, Depth: 100}
	// CategoryChildren is used for category selections.
	CategoryChildren = ChildSpec{Columns: 3, RowSpacing: 80, ColumnSpacing: 105, StartX: -100, StartY: 200, Depth: 100}
)

// Children places ids row-major from the start offset. Ids for which exists
// reports false are skipped and returned in missing; the remaining ids are
// packed without gaps.
func Children(ids []string, exists func(string) bool, spec ChildSpec) (out []Transform, missing []string) {
	cols := max(spec.Columns, 1)
	for _, id := range ids {
		if !exists(id) {
			missing = append(missing, id)
			continue
		}
		i := len(out)
		row, col := i/cols, i%cols
		out = append(out, Transform{
			ID: id,
			Position: entity.Vec3{
				X: spec.StartX + float64(col)*spec.ColumnSpacing,
				Y: spec.StartY - float64(row)*spec.RowSpacing,
				Z: spec.Depth,
			},
		})
	}
	return out, missing
}

// =============================================================================
// Grouped rows
// =============================================================================

// GroupSpec configures the category-grouped layout.
type GroupSpec struct {
	StartX        float64
	StartY        float64
	GroupSpacing  float64
	ColumnSpacing float64
	Depth         float64
}

// DefaultGroups is used for proportional-block selections.
var DefaultGroups = GroupSpec{StartX: -100, StartY: 220, GroupSpacing: 50, ColumnSpacing: 105, Depth: 100}

// Grouped is the result of [GroupRows]: one frame placement per non-empty
// group and one placement per member card.
type Grouped struct {
	Frames []Transform
	Cards  []Transform
}

// GroupRows groups ids by groupOf and lays the groups out top to bottom in
// the given order. Each group's frame sits at the row start and its members
// follow in a single row. groupOf reports false for ids that do not exist;
// those are returned in missing. Groups not named in order are not placed.
func GroupRows(ids []string, groupOf func(string) (string, bool), order []string, spec GroupSpec) (g Grouped, missing []string) {
	members := make(map[string][]string)
	for _, id := range ids {
		key, ok := groupOf(id)
		if !ok {
			missing = append(missing, id)
			continue
		}
		members[key] = append(members[key], id)
	}

	row := 0
	for _, key := range order {
		ms := members[key]
		if len(ms) == 0 {
			continue
		}
		y := spec.StartY - float64(row)*spec.GroupSpacing
		g.Frames = append(g.Frames, Transform{ID: key, Position: entity.Vec3{X: spec.StartX, Y: y, Z: spec.Depth}})
		for i, id := range ms {
			g.Cards = append(g.Cards, Transform{
				ID:       id,
				Position: entity.Vec3{X: spec.StartX + float64(i+1)*spec.ColumnSpacing, Y: y, Z: spec.Depth},
			})
		}
		row++
	}
	return g, missing
}

// =============================================================================
// Frame boards
// =============================================================================

// BoardSpec configures a two-column board of frames.
type BoardSpec struct {
	Columns int
	PitchX  float64
	PitchY  float64
	OffsetY float64
	Depth   float64
}

// DefaultBoard is the category and bucket board.
var DefaultBoard = BoardSpec{Columns: 2, PitchX: 120, PitchY: 50, OffsetY: 100, Depth: 210}

// Board places frame keys row-major, centred horizontally on the origin.
func Board(keys []string, spec BoardSpec) []Transform {
	cols := max(spec.Columns, 1)
	out := make([]Transform, len(keys))
	for i, key := range keys {
		row, col := i/cols, i%cols
		out[i] = Transform{
			ID: key,
			Position: entity.Vec3{
				X: float64(col)*spec.PitchX - spec.PitchX/2,
				Y: -float64(row)*spec.PitchY + spec.OffsetY,
				Z: spec.Depth,
			},
		}
	}
	return out
}
