package scene

import (
	"math/rand/v2"
	"sort"

	"github.com/matzehuels/cardspace/pkg/color"
	"github.com/matzehuels/cardspace/pkg/entity"
)

// SpawnRange is the half-extent of the cube new representations start in.
const SpawnRange = 2000

// Reps is the representation set of one entity, one handle per level.
type Reps struct {
	High, Medium, Low Handle
}

// All returns every handle, high detail first.
func (r Reps) All() []Handle { return []Handle{r.High, r.Medium, r.Low} }

// At returns the handle for level.
func (r Reps) At(l Level) (Handle, bool) {
	switch l {
	case LevelHigh:
		return r.High, true
	case LevelMedium:
		return r.Medium, true
	case LevelLow:
		return r.Low, true
	}
	return 0, false
}

// Set is the visual object set: entity id to representation set. Sets are
// created lazily and destroyed only by [Set.Remove].
type Set struct {
	backend Backend
	rng     *rand.Rand
	reps    map[string]Reps
}

// NewSet creates an empty set over backend. rng places new representations;
// nil uses a random seed.
func NewSet(backend Backend, rng *rand.Rand) *Set {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Set{backend: backend, rng: rng, reps: make(map[string]Reps)}
}

// Backend returns the underlying backend.
func (s *Set) Backend() Backend { return s.backend }

// Ensure returns the representations of id, creating them hidden at a
// random position inside the spawn cube if needed. created reports whether
// new representations were made.
func (s *Set) Ensure(id string) (r Reps, created bool) {
	if r, ok := s.reps[id]; ok {
		return r, false
	}
	start := entity.Vec3{
		X: s.rng.Float64()*2*SpawnRange - SpawnRange,
		Y: s.rng.Float64()*2*SpawnRange - SpawnRange,
		Z: s.rng.Float64()*2*SpawnRange - SpawnRange,
	}
	r = Reps{
		High:   s.backend.CreateRepresentation(id, LevelHigh),
		Medium: s.backend.CreateRepresentation(id, LevelMedium),
		Low:    s.backend.CreateRepresentation(id, LevelLow),
	}
	for _, h := range r.All() {
		s.backend.SetPosition(h, start)
		s.backend.SetVisible(h, false)
	}
	s.reps[id] = r
	return r, true
}

// Get returns the representations of id without creating them.
func (s *Set) Get(id string) (Reps, bool) {
	r, ok := s.reps[id]
	return r, ok
}

// Has reports whether id has representations.
func (s *Set) Has(id string) bool {
	_, ok := s.reps[id]
	return ok
}

// Remove destroys the representations of id.
func (s *Set) Remove(id string) bool {
	r, ok := s.reps[id]
	if !ok {
		return false
	}
	for _, h := range r.All() {
		s.backend.Remove(h)
	}
	delete(s.reps, id)
	return true
}

// Len returns the number of entities with representations.
func (s *Set) Len() int { return len(s.reps) }

// IDs returns every entity id with representations, sorted.
func (s *Set) IDs() []string {
	ids := make([]string, 0, len(s.reps))
	for id := range s.reps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SetPosition moves every representation of id.
func (s *Set) SetPosition(id string, p entity.Vec3) {
	if r, ok := s.reps[id]; ok {
		for _, h := range r.All() {
			s.backend.SetPosition(h, p)
		}
	}
}

// Position returns the position of the high-detail representation.
func (s *Set) Position(id string) (entity.Vec3, bool) {
	r, ok := s.reps[id]
	if !ok {
		return entity.Vec3{}, false
	}
	return s.backend.Position(r.High), true
}

// SetHighlight toggles the highlight on every representation of id.
func (s *Set) SetHighlight(id string, on bool) {
	if r, ok := s.reps[id]; ok {
		for _, h := range r.All() {
			s.backend.SetHighlight(h, on)
		}
	}
}

// VisibleCount returns how many representations of id are visible.
func (s *Set) VisibleCount(id string) int {
	r, ok := s.reps[id]
	if !ok {
		return 0
	}
	n := 0
	for _, h := range r.All() {
		if s.backend.Visible(h) {
			n++
		}
	}
	return n
}

// SetRotation rotates every representation of id.
func (s *Set) SetRotation(id string, r entity.Vec3) {
	if reps, ok := s.reps[id]; ok {
		for _, h := range reps.All() {
			s.backend.SetRotation(h, r)
		}
	}
}

// Rotation returns the rotation of the high-detail representation.
func (s *Set) Rotation(id string) entity.Vec3 {
	if r, ok := s.reps[id]; ok {
		return s.backend.Rotation(r.High)
	}
	return entity.Vec3{}
}

// SetColor sets the material colour of every representation of id.
func (s *Set) SetColor(id string, c color.RGBA) {
	if r, ok := s.reps[id]; ok {
		for _, h := range r.All() {
			s.backend.SetMaterialColor(h, c)
		}
	}
}

// Color returns the material colour of the high-detail representation.
func (s *Set) Color(id string) color.RGBA {
	if r, ok := s.reps[id]; ok {
		return s.backend.MaterialColor(r.High)
	}
	return color.Black
}

