package scene

import (
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/cardspace/pkg/color"
	"github.com/matzehuels/cardspace/pkg/entity"
)

func TestLevelString(t *testing.T) {
	tests := map[Level]string{
		LevelNone:   "none",
		LevelHigh:   "high",
		LevelMedium: "medium",
		LevelLow:    "low",
		Level(9):    "Level(9)",
	}
	for l, want := range tests {
		if got := l.String(); got != want {
			t.Errorf("Level(%d).String() = %q, want %q", int(l), got, want)
		}
	}
}

func TestMemoryHitTest(t *testing.T) {
	m := NewMemory()

	near := m.CreateRepresentation("near", LevelHigh)
	far := m.CreateRepresentation("far", LevelHigh)
	hidden := m.CreateRepresentation("hidden", LevelHigh)
	frame := m.CreateFrame("zimin", "自由民主党", color.MustParseHex("#3CA324"))

	m.SetPosition(near, entity.Vec3{Z: 100})
	m.SetPosition(far, entity.Vec3{X: 10, Z: -500})
	m.SetPosition(hidden, entity.Vec3{Z: 200})
	m.SetPosition(frame, entity.Vec3{X: 500, Z: 0})
	m.SetVisible(near, true)
	m.SetVisible(far, true)
	m.SetVisible(frame, true)

	ray := Ray{Origin: entity.Vec3{Z: 1000}, Direction: entity.Vec3{Z: -1}}
	hits := m.HitTest(ray)
	if len(hits) != 2 {
		t.Fatalf("HitTest() = %d hits, want 2: %+v", len(hits), hits)
	}
	if hits[0].EntityID != "near" || hits[1].EntityID != "far" {
		t.Errorf("hit order = %s, %s; want near, far", hits[0].EntityID, hits[1].EntityID)
	}
	if hits[0].Distance != 900 {
		t.Errorf("near distance = %v, want 900", hits[0].Distance)
	}

	frameHits := m.HitTest(Ray{Origin: entity.Vec3{X: 540, Z: 1000}, Direction: entity.Vec3{Z: -2}})
	if len(frameHits) != 1 || frameHits[0].Kind != KindFrame || frameHits[0].FrameKey != "zimin" {
		t.Errorf("frame hit = %+v", frameHits)
	}

	if got := m.HitTest(Ray{Origin: entity.Vec3{Z: 1000}, Direction: entity.Vec3{Z: 1}}); len(got) != 0 {
		t.Errorf("ray pointing away hit %d objects", len(got))
	}
	if got := m.HitTest(Ray{Direction: entity.Vec3{X: 1}}); got != nil {
		t.Errorf("ray parallel to the planes hit %v", got)
	}
}

func TestMemoryRemove(t *testing.T) {
	m := NewMemory()
	h := m.CreateRegion("東京")
	if !m.Exists(h) || m.Len() != 1 {
		t.Fatal("region not created")
	}
	m.Remove(h)
	if m.Exists(h) {
		t.Error("Exists() after Remove() = true")
	}
	// Operations on removed handles are ignored.
	m.SetVisible(h, true)
	if m.Visible(h) {
		t.Error("removed handle reports visible")
	}
}

func TestSetEnsure(t *testing.T) {
	m := NewMemory()
	s := NewSet(m, rand.New(rand.NewPCG(1, 2)))

	r, created := s.Ensure("e1")
	if !created {
		t.Fatal("Ensure() created = false on first call")
	}
	again, created := s.Ensure("e1")
	if created || again != r {
		t.Error("second Ensure() should return the existing set")
	}
	if m.Len() != 3 {
		t.Errorf("backend objects = %d, want 3", m.Len())
	}

	start := m.Position(r.High)
	for _, h := range r.All() {
		if m.Visible(h) {
			t.Errorf("new representation %d is visible", h)
		}
		if m.Position(h) != start {
			t.Errorf("representations start apart: %v vs %v", m.Position(h), start)
		}
	}
	for _, c := range []float64{start.X, start.Y, start.Z} {
		if c < -SpawnRange || c >= SpawnRange {
			t.Errorf("start %v outside spawn cube", start)
		}
	}
}

func TestSetRemove(t *testing.T) {
	m := NewMemory()
	s := NewSet(m, nil)
	r, _ := s.Ensure("e1")
	s.Ensure("e2")

	if !s.Remove("e1") {
		t.Fatal("Remove(e1) = false")
	}
	if s.Has("e1") {
		t.Error("Has(e1) after remove")
	}
	for _, h := range r.All() {
		if m.Exists(h) {
			t.Errorf("handle %d still in backend", h)
		}
	}
	if s.Remove("e1") {
		t.Error("second Remove(e1) = true")
	}
	if ids := s.IDs(); len(ids) != 1 || ids[0] != "e2" {
		t.Errorf("IDs() = %v, want [e2]", ids)
	}
}

func TestSetSync(t *testing.T) {
	m := NewMemory()
	s := NewSet(m, nil)
	r, _ := s.Ensure("e1")

	p := entity.Vec3{X: 1, Y: 2, Z: 3}
	s.SetPosition("e1", p)
	for _, h := range r.All() {
		if m.Position(h) != p {
			t.Errorf("handle %d at %v, want %v", h, m.Position(h), p)
		}
	}
	if got, ok := s.Position("e1"); !ok || got != p {
		t.Errorf("Position() = %v, %v", got, ok)
	}

	s.SetHighlight("e1", true)
	if !m.Highlighted(r.Low) {
		t.Error("low representation not highlighted")
	}

	m.SetVisible(r.Medium, true)
	if n := s.VisibleCount("e1"); n != 1 {
		t.Errorf("VisibleCount() = %d, want 1", n)
	}
	if h, ok := r.At(LevelNone); ok || h != 0 {
		t.Error("At(LevelNone) should report no handle")
	}
}

func TestSnapshot(t *testing.T) {
	m := NewMemory()
	h := m.CreateRepresentation("e1", LevelLow)
	m.SetMaterialColor(h, color.MustParseHex("#ff0000"))
	m.CreateFrame("a", "あ", color.Black)

	snap := m.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Snapshot() = %d, want 2", len(snap))
	}
	if snap[0].Kind != "card" || snap[0].Level != "low" || snap[0].Color != "#ff0000" {
		t.Errorf("card snapshot = %+v", snap[0])
	}
	if snap[1].Kind != "frame" || snap[1].Label != "あ" || snap[1].Level != "" {
		t.Errorf("frame snapshot = %+v", snap[1])
	}
}
