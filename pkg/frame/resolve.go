package frame

import (
	"github.com/matzehuels/cardspace/pkg/catalog"
	"github.com/matzehuels/cardspace/pkg/entity"
	"github.com/matzehuels/cardspace/pkg/errors"
	"github.com/matzehuels/cardspace/pkg/layout"
)

// Source is the read side of the entity store.
type Source interface {
	Get(id string) (*entity.Entity, bool)
	Has(id string) bool
	Children(id string) ([]string, bool)
}

// Route says which resolution rule a frame key follows.
type Route int

const (
	RouteNone Route = iota
	RouteDistrict
	RouteBlock
	RouteCategory
	RouteBucket
)

func (r Route) String() string {
	switch r {
	case RouteDistrict:
		return "district"
	case RouteBlock:
		return "block"
	case RouteCategory:
		return "category"
	case RouteBucket:
		return "bucket"
	}
	return "none"
}

// RouteOf classifies a frame key.
func RouteOf(cat *catalog.Catalog, key string) Route {
	if d, ok := cat.District(key); ok {
		if d.Kind == catalog.DistrictBlock {
			return RouteBlock
		}
		return RouteDistrict
	}
	if cat.IsCategory(key) {
		return RouteCategory
	}
	if _, ok := cat.Bucket(key); ok {
		return RouteBucket
	}
	return RouteNone
}

// Resolution is the content a frame selection reveals.
type Resolution struct {
	Frame string
	Route Route
	// Key is the entity whose children are shown; it is pushed onto the
	// navigation history.
	Key string
	// Cards are the child placements.
	Cards []layout.Transform
	// Frames are group-row frame placements; only block selections set them.
	Frames []layout.Transform
	// Missing lists children without a record.
	Missing []string
}

// IDs returns the ids of the placed cards.
func (r *Resolution) IDs() []string {
	ids := make([]string, len(r.Cards))
	for i, t := range r.Cards {
		ids[i] = t.ID
	}
	return ids
}

func miss(format string, args ...any) error {
	return errors.New(errors.ErrCodeResolutionMiss, format, args...)
}

// Resolve computes what selecting frame key reveals. region is the
// currently highlighted geography label; only district frames use it.
func Resolve(cat *catalog.Catalog, src Source, key, region string) (*Resolution, error) {
	res := &Resolution{Frame: key, Route: RouteOf(cat, key)}

	switch res.Route {
	case RouteDistrict:
		if catalog.RegionName(region) == "" {
			return nil, miss("frame %s: no region selected", key)
		}
		geo, ok := cat.ResolveGeography(region, src.Has)
		if !ok {
			return nil, miss("frame %s: region %q not found", key, region)
		}
		return res.children(src, geo, layout.DistrictChildren)

	case RouteBlock:
		block := cat.ProportionalBlock
		ids, ok := src.Children(block)
		if !ok || len(ids) == 0 {
			return nil, miss("frame %s: block %q has no children", key, block)
		}
		res.Key = block
		groupOf := func(id string) (string, bool) {
			e, ok := src.Get(id)
			if !ok {
				return "", false
			}
			return cat.GroupKey(e.Party), true
		}
		g, missing := layout.GroupRows(ids, groupOf, cat.CategoryOrder(), layout.DefaultGroups)
		res.Cards, res.Frames, res.Missing = g.Cards, g.Frames, missing
		return res, nil

	case RouteCategory:
		return res.children(src, key, layout.CategoryChildren)

	case RouteBucket:
		b, _ := cat.Bucket(key)
		var ids []string
		for _, glyph := range b.Glyphs {
			if cs, ok := src.Children(glyph); ok {
				ids = append(ids, cs...)
			}
		}
		if len(ids) == 0 {
			return nil, miss("frame %s: no glyph has children", key)
		}
		if len(b.Glyphs) > 0 {
			res.Key = b.Glyphs[0]
		}
		res.Cards, res.Missing = layout.Children(ids, src.Has, layout.DistrictChildren)
		return res, nil
	}
	return nil, miss("frame %q is not routable", key)
}

func (r *Resolution) children(src Source, parent string, spec layout.ChildSpec) (*Resolution, error) {
	ids, ok := src.Children(parent)
	if !ok || len(ids) == 0 {
		return nil, miss("frame %s: %q has no children", r.Frame, parent)
	}
	r.Key = parent
	r.Cards, r.Missing = layout.Children(ids, src.Has, spec)
	return r, nil
}
