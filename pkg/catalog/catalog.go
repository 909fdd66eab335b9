// Package catalog holds the static reference tables used to group and colour
// cards: categories with their aliases and colours, alphabetic buckets,
// district frames, the issue palette, and geography name merges.
//
// The built-in tables are embedded from catalog.toml and validated once on
// first use. [Load] and [LoadFile] parse a replacement table with the same
// schema; every table is checked as a closed enumeration at load time, so
// lookups never need ad hoc string predicates.
package catalog

import (
	"bytes"
	_ "embed"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/unicode/norm"

	"github.com/matzehuels/cardspace/pkg/color"
	"github.com/matzehuels/cardspace/pkg/errors"
)

//go:embed catalog.toml
var builtin []byte

// DistrictKind says how a district frame selection is resolved.
type DistrictKind string

const (
	// DistrictSingle resolves the highlighted region to its own children.
	DistrictSingle DistrictKind = "single"
	// DistrictBlock maps every region to the nationwide proportional block.
	DistrictBlock DistrictKind = "block"
)

// Category is one grouping key.
type Category struct {
	Key     string   `toml:"key"`
	Label   string   `toml:"label"`
	Color   string   `toml:"color"`
	Aliases []string `toml:"aliases"`
	Frame   *bool    `toml:"frame"`
}

// HasFrame reports whether the category gets a board frame.
func (c Category) HasFrame() bool { return c.Frame == nil || *c.Frame }

// Bucket is an alphabetic group expanding to its member glyphs.
type Bucket struct {
	Key    string   `toml:"key"`
	Label  string   `toml:"label"`
	Glyphs []string `toml:"glyphs"`
}

// District is a frame that routes the currently highlighted region.
type District struct {
	Key   string       `toml:"key"`
	Label string       `toml:"label"`
	Kind  DistrictKind `toml:"kind"`
}

// IssuePalette colours entities by their two issue markers.
type IssuePalette struct {
	First  string `toml:"first"`
	Second string `toml:"second"`
	Both   string `toml:"both"`
	None   string `toml:"none"`
}

// Geography holds region-name resolution rules.
type Geography struct {
	Suffix string            `toml:"suffix"`
	Merges map[string]string `toml:"merges"`
}

// Catalog is a validated set of reference tables.
type Catalog struct {
	Unknown           string       `toml:"unknown"`
	ProportionalBlock string       `toml:"proportional_block"`
	DefaultFrameColor string       `toml:"default_frame_color"`
	Issue             IssuePalette `toml:"issue"`
	Geography         Geography    `toml:"geography"`
	Districts         []District   `toml:"district"`
	Categories        []Category   `toml:"category"`
	Buckets           []Bucket     `toml:"bucket"`

	aliases    map[string]string
	categories map[string]int
	buckets    map[string]int
	districts  map[string]int
}

var (
	defaultCatalog *Catalog
	defaultOnce    sync.Once
)

// Default returns the embedded catalog. It panics if the embedded table is
// invalid, which the package tests rule out.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(builtin)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// LoadFile reads and validates a catalog file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "read catalog %s", path)
	}
	return Load(data)
}

// Load parses and validates a TOML catalog.
func Load(data []byte) (*Catalog, error) {
	var c Catalog
	if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "parse catalog")
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return &c, nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidCatalog, format, args...)
}

func (c *Catalog) index() error {
	c.aliases = make(map[string]string)
	c.categories = make(map[string]int, len(c.Categories))
	c.buckets = make(map[string]int, len(c.Buckets))
	c.districts = make(map[string]int, len(c.Districts))

	if c.DefaultFrameColor == "" {
		c.DefaultFrameColor = "#000000"
	}
	for name, hex := range map[string]string{
		"default_frame_color": c.DefaultFrameColor,
		"issue.first":         c.Issue.First,
		"issue.second":        c.Issue.Second,
		"issue.both":          c.Issue.Both,
		"issue.none":          c.Issue.None,
	} {
		if !color.Valid(hex) {
			return invalid("%s: bad colour %q", name, hex)
		}
	}

	for i, cat := range c.Categories {
		if cat.Key == "" {
			return invalid("category %d: empty key", i)
		}
		if _, dup := c.categories[cat.Key]; dup {
			return invalid("category %q: duplicate key", cat.Key)
		}
		if !color.Valid(cat.Color) {
			return invalid("category %q: bad colour %q", cat.Key, cat.Color)
		}
		c.categories[cat.Key] = i

		for _, alias := range append([]string{cat.Key}, cat.Aliases...) {
			n := normalize(alias)
			if prev, ok := c.aliases[n]; ok && prev != cat.Key {
				return invalid("alias %q maps to both %q and %q", alias, prev, cat.Key)
			}
			c.aliases[n] = cat.Key
		}
	}
	if i, ok := c.categories[c.Unknown]; !ok {
		return invalid("unknown bucket %q is not a category", c.Unknown)
	} else if !c.Categories[i].HasFrame() {
		return invalid("unknown bucket %q must have a frame", c.Unknown)
	}

	for i, b := range c.Buckets {
		if b.Key == "" || len(b.Glyphs) == 0 {
			return invalid("bucket %d: key and glyphs are required", i)
		}
		if _, dup := c.buckets[b.Key]; dup {
			return invalid("bucket %q: duplicate key", b.Key)
		}
		if _, clash := c.categories[b.Key]; clash {
			return invalid("bucket %q clashes with a category key", b.Key)
		}
		c.buckets[b.Key] = i
	}

	for i, d := range c.Districts {
		if d.Kind != DistrictSingle && d.Kind != DistrictBlock {
			return invalid("district %q: unknown kind %q", d.Key, d.Kind)
		}
		if _, dup := c.districts[d.Key]; dup {
			return invalid("district %q: duplicate key", d.Key)
		}
		if _, clash := c.categories[d.Key]; clash {
			return invalid("district %q clashes with a category key", d.Key)
		}
		if _, clash := c.buckets[d.Key]; clash {
			return invalid("district %q clashes with a bucket key", d.Key)
		}
		c.districts[d.Key] = i
	}

	if c.ProportionalBlock == "" && slices.ContainsFunc(c.Districts, func(d District) bool { return d.Kind == DistrictBlock }) {
		return invalid("block district configured without proportional_block")
	}
	return nil
}

func normalize(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

// =============================================================================
// Categories
// =============================================================================

// ResolveCategory maps a raw label (or a canonical key) to its category key.
// Unrecognised labels resolve to the unknown bucket with ok == false; the
// result is never empty.
func (c *Catalog) ResolveCategory(label string) (key string, ok bool) {
	if k, found := c.aliases[normalize(label)]; found {
		return k, true
	}
	return c.Unknown, false
}

// Category returns the category with the given canonical key.
func (c *Catalog) Category(key string) (Category, bool) {
	i, ok := c.categories[key]
	if !ok {
		return Category{}, false
	}
	return c.Categories[i], true
}

// IsCategory reports whether key is a canonical category key.
func (c *Catalog) IsCategory(key string) bool {
	_, ok := c.categories[key]
	return ok
}

// CategoryColor returns the colour of the category label resolves to.
func (c *Catalog) CategoryColor(label string) string {
	key, _ := c.ResolveCategory(label)
	cat, _ := c.Category(key)
	return cat.Color
}

// GroupKey is the category a label is filed under in grouped layouts: its
// resolved key when that category has a frame, else the unknown bucket.
func (c *Catalog) GroupKey(label string) string {
	key, _ := c.ResolveCategory(label)
	if cat, ok := c.Category(key); ok && cat.HasFrame() {
		return key
	}
	return c.Unknown
}

// CategoryOrder lists the keys of every framed category in display order.
func (c *Catalog) CategoryOrder() []string {
	keys := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.HasFrame() {
			keys = append(keys, cat.Key)
		}
	}
	return keys
}

// =============================================================================
// Issues
// =============================================================================

// IssueColor returns the highlight colour for the two issue markers. A
// marker counts as set when it is non-empty after trimming.
func (c *Catalog) IssueColor(first, second string) string {
	hasFirst := strings.TrimSpace(first) != ""
	hasSecond := strings.TrimSpace(second) != ""
	switch {
	case hasFirst && hasSecond:
		return c.Issue.Both
	case hasSecond:
		return c.Issue.Second
	case hasFirst:
		return c.Issue.First
	}
	return c.Issue.None
}

// =============================================================================
// Buckets and districts
// =============================================================================

// Bucket returns the alphabetic bucket with the given key.
func (c *Catalog) Bucket(key string) (Bucket, bool) {
	i, ok := c.buckets[key]
	if !ok {
		return Bucket{}, false
	}
	return c.Buckets[i], true
}

// BucketOrder lists every bucket key in display order.
func (c *Catalog) BucketOrder() []string {
	keys := make([]string, len(c.Buckets))
	for i, b := range c.Buckets {
		keys[i] = b.Key
	}
	return keys
}

// District returns the district frame with the given key.
func (c *Catalog) District(key string) (District, bool) {
	i, ok := c.districts[key]
	if !ok {
		return District{}, false
	}
	return c.Districts[i], true
}

// =============================================================================
// Frames
// =============================================================================

// FrameSpec describes one board frame created at startup.
type FrameSpec struct {
	Key   string
	Label string
	Color string
}

// Frames lists every frame the catalog defines: districts, framed
// categories, then buckets. Frames whose colour is black use the default
// frame colour.
func (c *Catalog) Frames() []FrameSpec {
	var out []FrameSpec
	for _, d := range c.Districts {
		out = append(out, FrameSpec{Key: d.Key, Label: d.Label, Color: c.DefaultFrameColor})
	}
	for _, cat := range c.Categories {
		if !cat.HasFrame() {
			continue
		}
		col := cat.Color
		if strings.EqualFold(col, "#000000") {
			col = c.DefaultFrameColor
		}
		out = append(out, FrameSpec{Key: cat.Key, Label: cat.Label, Color: col})
	}
	for _, b := range c.Buckets {
		out = append(out, FrameSpec{Key: b.Key, Label: b.Label, Color: c.DefaultFrameColor})
	}
	return out
}

// =============================================================================
// Geography
// =============================================================================

// RegionName returns the part of a highlighted region label before the
// first space.
func RegionName(label string) string {
	name, _, _ := strings.Cut(strings.TrimSpace(label), " ")
	return name
}

// ResolveGeography maps a region name to an existing entity key. It tries
// the name itself, then the merge table, then the name with the suffix
// appended. When nothing exists it returns the name unchanged with
// ok == false.
func (c *Catalog) ResolveGeography(name string, exists func(string) bool) (key string, ok bool) {
	name = RegionName(name)
	if name == "" {
		return "", false
	}
	if exists(name) {
		return name, true
	}
	if merged, found := c.Geography.Merges[name]; found && exists(merged) {
		return merged, true
	}
	if c.Geography.Suffix != "" {
		if withSuffix := name + c.Geography.Suffix; exists(withSuffix) {
			return withSuffix, true
		}
	}
	return name, false
}
