package layout

import (
	"fmt"
	"testing"

	"github.com/matzehuels/cardspace/pkg/entity"
)

func ids(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("e%d", i)
	}
	return out
}

func TestSide(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{0, 0}, {1, 1}, {2, 2}, {4, 2}, {5, 3}, {9, 3}, {10, 4}, {100, 10}, {101, 11},
	}
	for _, tt := range tests {
		if got := Side(tt.n); got != tt.want {
			t.Errorf("Side(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestBaselineUniqueAndComplete(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 7, 16, 17, 250} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			in := ids(n)
			out := Baseline(in, DefaultGrid)
			if len(out) != n {
				t.Fatalf("Baseline() = %d transforms, want %d", len(out), n)
			}

			seenID := make(map[string]bool)
			seenXY := make(map[[2]float64]string)
			for i, tr := range out {
				if tr.ID != in[i] {
					t.Errorf("transform %d id = %q, want %q", i, tr.ID, in[i])
				}
				if seenID[tr.ID] {
					t.Errorf("id %q placed twice", tr.ID)
				}
				seenID[tr.ID] = true

				xy := [2]float64{tr.Position.X, tr.Position.Y}
				if other, dup := seenXY[xy]; dup {
					t.Errorf("%q and %q share %v", other, tr.ID, xy)
				}
				seenXY[xy] = tr.ID

				if tr.Position.Z != DefaultGrid.Depth {
					t.Errorf("%q depth = %v, want %v", tr.ID, tr.Position.Z, DefaultGrid.Depth)
				}
				if tr.Rotation != (entity.Vec3{}) {
					t.Errorf("%q rotation = %v, want zero", tr.ID, tr.Rotation)
				}
			}
		})
	}
}

func TestBaselinePositions(t *testing.T) {
	out := Baseline(ids(5), DefaultGrid)

	// side 3: x0 = -180, y0 = 75
	want := []entity.Vec3{
		{X: -180, Y: 75, Z: -1000},
		{X: -60, Y: 75, Z: -1000},
		{X: 60, Y: 75, Z: -1000},
		{X: -180, Y: 25, Z: -1000},
		{X: -60, Y: 25, Z: -1000},
	}
	for i, w := range want {
		if out[i].Position != w {
			t.Errorf("Baseline()[%d] = %v, want %v", i, out[i].Position, w)
		}
	}
}

func TestChildren(t *testing.T) {
	exists := func(id string) bool { return id != "ghost" }

	tests := []struct {
		name        string
		ids         []string
		spec        ChildSpec
		want        []entity.Vec3
		wantMissing []string
	}{
		{
			name: "default two columns",
			ids:  []string{"a", "b", "c"},
			spec: DefaultChildren,
			want: []entity.Vec3{{X: -70, Y: 200, Z: 100}, {X: 80, Y: 200, Z: 100}, {X: -70, Y: 130, Z: 100}},
		},
		{
			name:        "missing child packs the rest",
			ids:         []string{"a", "ghost", "b"},
			spec:        DistrictChildren,
			want:        []entity.Vec3{{X: -100, Y: 230, Z: 100}, {X: 5, Y: 230, Z: 100}},
			wantMissing: []string{"ghost"},
		},
		{
			name: "category rows",
			ids:  []string{"a", "b", "c", "d"},
			spec: CategoryChildren,
			want: []entity.Vec3{{X: -100, Y: 200, Z: 100}, {X: 5, Y: 200, Z: 100}, {X: 110, Y: 200, Z: 100}, {X: -100, Y: 120, Z: 100}},
		},
		{
			name: "empty",
			spec: DefaultChildren,
		},
		{
			name: "zero columns behaves as one",
			ids:  []string{"a", "b"},
			spec: ChildSpec{RowSpacing: 10},
			want: []entity.Vec3{{}, {Y: -10}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, missing := Children(tt.ids, exists, tt.spec)
			if len(out) != len(tt.want) {
				t.Fatalf("Children() = %d transforms, want %d", len(out), len(tt.want))
			}
			for i, w := range tt.want {
				if out[i].Position != w {
					t.Errorf("Children()[%d] = %v, want %v", i, out[i].Position, w)
				}
			}
			if fmt.Sprint(missing) != fmt.Sprint(tt.wantMissing) {
				t.Errorf("missing = %v, want %v", missing, tt.wantMissing)
			}
		})
	}
}

func TestGroupRows(t *testing.T) {
	groups := map[string]string{
		"c1": "rikken",
		"c2": "zimin",
		"c3": "rikken",
		"c4": "fumei",
	}
	groupOf := func(id string) (string, bool) {
		g, ok := groups[id]
		return g, ok
	}
	order := []string{"zimin", "koumei", "rikken", "fumei"}

	g, missing := GroupRows([]string{"c1", "c2", "ghost", "c3", "c4"}, groupOf, order, DefaultGroups)

	if len(missing) != 1 || missing[0] != "ghost" {
		t.Errorf("missing = %v, want [ghost]", missing)
	}

	wantFrames := []Transform{
		{ID: "zimin", Position: entity.Vec3{X: -100, Y: 220, Z: 100}},
		{ID: "rikken", Position: entity.Vec3{X: -100, Y: 170, Z: 100}},
		{ID: "fumei", Position: entity.Vec3{X: -100, Y: 120, Z: 100}},
	}
	if len(g.Frames) != len(wantFrames) {
		t.Fatalf("frames = %v, want %v", g.Frames, wantFrames)
	}
	for i, w := range wantFrames {
		if g.Frames[i] != w {
			t.Errorf("frame %d = %v, want %v", i, g.Frames[i], w)
		}
	}

	wantCards := []Transform{
		{ID: "c2", Position: entity.Vec3{X: 5, Y: 220, Z: 100}},
		{ID: "c1", Position: entity.Vec3{X: 5, Y: 170, Z: 100}},
		{ID: "c3", Position: entity.Vec3{X: 110, Y: 170, Z: 100}},
		{ID: "c4", Position: entity.Vec3{X: 5, Y: 120, Z: 100}},
	}
	for i, w := range wantCards {
		if g.Cards[i] != w {
			t.Errorf("card %d = %v, want %v", i, g.Cards[i], w)
		}
	}

	empty, _ := GroupRows(nil, groupOf, order, DefaultGroups)
	if len(empty.Frames) != 0 || len(empty.Cards) != 0 {
		t.Errorf("GroupRows(nil) = %+v, want empty", empty)
	}
}

func TestBoard(t *testing.T) {
	out := Board([]string{"a", "ka", "sa"}, DefaultBoard)
	want := []entity.Vec3{{X: -60, Y: 100, Z: 210}, {X: 60, Y: 100, Z: 210}, {X: -60, Y: 50, Z: 210}}
	for i, w := range want {
		if out[i].Position != w {
			t.Errorf("Board()[%d] = %v, want %v", i, out[i].Position, w)
		}
	}
}

func ExampleBaseline() {
	for _, tr := range Baseline([]string{"a", "b", "c", "d"}, DefaultGrid) {
		fmt.Println(tr.ID, tr.Position.X, tr.Position.Y)
	}
	// Output:
	// a -120 50
	// b 0 50
	// c -120 0
	// d 0 0
}
