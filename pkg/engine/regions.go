package engine

import (
	"time"

	"github.com/matzehuels/cardspace/pkg/catalog"
	"github.com/matzehuels/cardspace/pkg/color"
	"github.com/matzehuels/cardspace/pkg/entity"
	"github.com/matzehuels/cardspace/pkg/scene"
	"github.com/matzehuels/cardspace/pkg/tween"
)

// Map region placement.
const (
	regionGroup    = "regions"
	regionDuration = 3000 * time.Millisecond
	regionColumns  = 8
	regionScatter  = 1000
	regionAway     = -2000
	regionColor    = "#696969"
	pickedColor    = "#b0c4de"
)

var (
	mapOrigin   = entity.Vec3{X: -500, Y: 400, Z: 100}
	mapRotation = entity.Vec3{X: 3.14}
	pickedDepth = 200.0
)

type region struct {
	name   string
	handle scene.Handle
	offset entity.Vec3
}

// buildRegions creates one map region per child of the single-member
// district root (the prefectures), replacing any previous set.
func (e *Engine) buildRegions() {
	for _, r := range e.regions {
		e.sched.Cancel(regionKey(r.name))
		e.backend.Remove(r.handle)
	}
	e.regions = nil
	e.selectedRegion = ""

	var root string
	for _, d := range e.cat.Districts {
		if d.Kind == catalog.DistrictSingle {
			root = d.Label
			break
		}
	}
	names, _ := e.store.Children(root)
	gray := color.MustParseHex(regionColor)
	for i, name := range names {
		h := e.backend.CreateRegion(name)
		r := &region{
			name:   name,
			handle: h,
			offset: entity.Vec3{
				X: float64(i%regionColumns) * scene.RegionWidth,
				Y: -float64(i/regionColumns) * scene.RegionHeight,
			},
		}
		e.backend.SetMaterialColor(h, gray)
		e.backend.SetPosition(h, entity.Vec3{Z: regionAway})
		e.backend.SetVisible(h, false)
		e.regions = append(e.regions, r)
	}
}

func regionKey(name string) string { return "region:" + name }

// Regions returns the map region names.
func (e *Engine) Regions() []string {
	names := make([]string, len(e.regions))
	for i, r := range e.regions {
		names[i] = r.name
	}
	return names
}

// SelectedRegion returns the last picked region.
func (e *Engine) SelectedRegion() string { return e.selectedRegion }

func (e *Engine) moveRegion(r *region, to, rot entity.Vec3, d time.Duration) {
	h := r.handle
	e.sched.Vec3(tween.Key{Object: regionKey(r.name), Property: tween.Position}, regionGroup,
		e.backend.Position(h), to, d, tween.Transform,
		func(v entity.Vec3) { e.backend.SetPosition(h, v) })
	e.sched.Vec3(tween.Key{Object: regionKey(r.name), Property: tween.Rotation}, regionGroup,
		e.backend.Rotation(h), rot, d, tween.Transform,
		func(v entity.Vec3) { e.backend.SetRotation(h, v) })
}

func (e *Engine) colorRegion(r *region, hex string, d time.Duration) {
	h := r.handle
	_ = e.sched.AnimateColor(regionKey(r.name), regionGroup, e.backend.MaterialColor(h), hex, d,
		func(c color.RGBA) { e.backend.SetMaterialColor(h, c) })
}

// gatherRegions shows every region and assembles the map.
func (e *Engine) gatherRegions() {
	if e.regionTimer != 0 {
		e.sched.Stop(e.regionTimer)
		e.regionTimer = 0
	}
	for _, r := range e.regions {
		e.backend.SetVisible(r.handle, true)
		e.moveRegion(r, mapOrigin.Add(r.offset), mapRotation, regionDuration)
	}
}

// scatterRegions sends every region to a random point far behind the
// cards and hides it when it arrives.
func (e *Engine) scatterRegions() {
	if len(e.regions) == 0 {
		return
	}
	for _, r := range e.regions {
		to := entity.Vec3{
			X: e.rng.Float64()*2*regionScatter - regionScatter,
			Y: e.rng.Float64()*2*regionScatter - regionScatter,
			Z: regionAway,
		}
		e.moveRegion(r, to, entity.Vec3{}, regionDuration)
	}
	if e.regionTimer != 0 {
		e.sched.Stop(e.regionTimer)
	}
	e.regionTimer = e.sched.After(regionDuration, func() {
		e.regionTimer = 0
		for _, r := range e.regions {
			e.backend.SetVisible(r.handle, false)
		}
	})
}

// PickRegion highlights a map region, remembers it for district frames and
// offers the district choice.
func (e *Engine) PickRegion(name string) {
	var picked *region
	for _, r := range e.regions {
		if r.name == name {
			picked = r
		}
	}
	if picked == nil {
		e.logger.Info("region not found", "name", name)
		return
	}
	e.selectedRegion = name
	for _, r := range e.regions {
		at := mapOrigin.Add(r.offset)
		if r == picked {
			at.Z = pickedDepth
			e.colorRegion(r, pickedColor, e.cfg.Duration)
		} else {
			e.colorRegion(r, regionColor, e.cfg.Duration)
		}
		e.moveRegion(r, at, mapRotation, e.cfg.Duration)
	}
	e.frames.ShowDistrictChoice()
}
