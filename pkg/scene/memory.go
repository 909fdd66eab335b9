package scene

import (
	"math"
	"slices"
	"sync"

	"github.com/matzehuels/cardspace/pkg/color"
	"github.com/matzehuels/cardspace/pkg/entity"
)

// Default object extents in world units.
const (
	CardWidth    = 100
	CardHeight   = 30
	RegionWidth  = 60
	RegionHeight = 60
)

type object struct {
	kind      Kind
	entityID  string
	level     Level
	frameKey  string
	label     string
	region    string
	position  entity.Vec3
	rotation  entity.Vec3
	color     color.RGBA
	visible   bool
	highlight bool
	w, h      float64
}

// Memory is an in-memory [Backend]. Objects are flat rectangles facing +z;
// rotation is stored but ignored by hit-testing.
type Memory struct {
	mu      sync.RWMutex
	next    Handle
	objects map[Handle]*object
}

// Snapshot is a read-only copy of one object's state.
type Snapshot struct {
	Handle    Handle      `json:"handle"`
	Kind      string      `json:"kind"`
	EntityID  string      `json:"entity,omitempty"`
	Level     string      `json:"level,omitempty"`
	FrameKey  string      `json:"frame,omitempty"`
	Label     string      `json:"label,omitempty"`
	Region    string      `json:"region,omitempty"`
	Position  entity.Vec3 `json:"position"`
	Rotation  entity.Vec3 `json:"rotation"`
	Color     string      `json:"color"`
	Visible   bool        `json:"visible"`
	Highlight bool        `json:"highlight,omitempty"`
}

// NewMemory creates an empty scene.
func NewMemory() *Memory {
	return &Memory{objects: make(map[Handle]*object)}
}

func (m *Memory) add(o *object) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	o.color = color.Black
	if o.w == 0 {
		o.w, o.h = CardWidth, CardHeight
	}
	m.objects[m.next] = o
	return m.next
}

func (m *Memory) CreateRepresentation(entityID string, level Level) Handle {
	return m.add(&object{kind: KindCard, entityID: entityID, level: level})
}

func (m *Memory) CreateFrame(key, label string, c color.RGBA) Handle {
	h := m.add(&object{kind: KindFrame, frameKey: key, label: label})
	m.SetMaterialColor(h, c)
	return h
}

func (m *Memory) CreateRegion(name string) Handle {
	return m.add(&object{kind: KindRegion, region: name, w: RegionWidth, h: RegionHeight})
}

func (m *Memory) Remove(h Handle) {
	m.mu.Lock()
	delete(m.objects, h)
	m.mu.Unlock()
}

func (m *Memory) with(h Handle, fn func(*object)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.objects[h]; ok {
		fn(o)
	}
}

func (m *Memory) get(h Handle) (object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[h]
	if !ok {
		return object{}, false
	}
	return *o, true
}

func (m *Memory) SetVisible(h Handle, v bool) { m.with(h, func(o *object) { o.visible = v }) }

func (m *Memory) Visible(h Handle) bool {
	o, _ := m.get(h)
	return o.visible
}

func (m *Memory) SetPosition(h Handle, p entity.Vec3) { m.with(h, func(o *object) { o.position = p }) }

func (m *Memory) Position(h Handle) entity.Vec3 {
	o, _ := m.get(h)
	return o.position
}

func (m *Memory) SetRotation(h Handle, r entity.Vec3) { m.with(h, func(o *object) { o.rotation = r }) }

func (m *Memory) Rotation(h Handle) entity.Vec3 {
	o, _ := m.get(h)
	return o.rotation
}

func (m *Memory) SetMaterialColor(h Handle, c color.RGBA) { m.with(h, func(o *object) { o.color = c }) }

func (m *Memory) MaterialColor(h Handle) color.RGBA {
	o, _ := m.get(h)
	return o.color
}

func (m *Memory) SetHighlight(h Handle, on bool) { m.with(h, func(o *object) { o.highlight = on }) }

// Highlighted reports whether h is highlighted.
func (m *Memory) Highlighted(h Handle) bool {
	o, _ := m.get(h)
	return o.highlight
}

// Exists reports whether h refers to a live object.
func (m *Memory) Exists(h Handle) bool {
	_, ok := m.get(h)
	return ok
}

// Len returns the number of live objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// HitTest intersects ray with the plane of every visible object and returns
// the objects whose rectangle contains the intersection, nearest first.
func (m *Memory) HitTest(ray Ray) []Hit {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var hits []Hit
	if ray.Direction.Z == 0 {
		return nil
	}
	for h, o := range m.objects {
		if !o.visible {
			continue
		}
		t := (o.position.Z - ray.Origin.Z) / ray.Direction.Z
		if t < 0 {
			continue
		}
		p := ray.At(t)
		if math.Abs(p.X-o.position.X) > o.w/2 || math.Abs(p.Y-o.position.Y) > o.h/2 {
			continue
		}
		dir := math.Sqrt(ray.Direction.X*ray.Direction.X + ray.Direction.Y*ray.Direction.Y + ray.Direction.Z*ray.Direction.Z)
		hits = append(hits, Hit{
			Handle:   h,
			Kind:     o.kind,
			EntityID: o.entityID,
			Level:    o.level,
			FrameKey: o.frameKey,
			Region:   o.region,
			Distance: t * dir,
			Point:    p,
		})
	}
	slices.SortFunc(hits, func(a, b Hit) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return int(a.Handle) - int(b.Handle)
	})
	return hits
}

// Snapshot returns every object ordered by handle.
func (m *Memory) Snapshot() []Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Snapshot, 0, len(m.objects))
	for h, o := range m.objects {
		s := Snapshot{
			Handle:    h,
			Kind:      o.kind.String(),
			EntityID:  o.entityID,
			FrameKey:  o.frameKey,
			Label:     o.label,
			Region:    o.region,
			Position:  o.position,
			Rotation:  o.rotation,
			Color:     o.color.Hex(),
			Visible:   o.visible,
			Highlight: o.highlight,
		}
		if o.kind == KindCard {
			s.Level = o.level.String()
		}
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b Snapshot) int { return int(a.Handle) - int(b.Handle) })
	return out
}
