package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DefaultColor is the colour of every slot that the dataset leaves empty.
const DefaultColor = "#007f7f"

// Entity is a single card.
type Entity struct {
	ID string `json:"-" bson:"_id"`

	Title  string      `json:"title" bson:"title"`
	Detail string      `json:"detail" bson:"detail"`
	Kind   ContentKind `json:"type" bson:"type"`

	Position Positions     `json:"position" bson:"position"`
	Color    Colors        `json:"color" bson:"color"`
	Children *ChildrenInfo `json:"childrenInfo,omitempty" bson:"childrenInfo,omitempty"`

	Image     string `json:"img,omitempty" bson:"img,omitempty"`
	Video     string `json:"video,omitempty" bson:"video,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty" bson:"timestamp,omitempty"`

	// Candidate fields. Keys follow the curated dataset.
	Party          string     `json:"seitou,omitempty" bson:"seitou,omitempty"`
	Age            FlexString `json:"age,omitempty" bson:"age,omitempty"`
	Prefecture     string     `json:"todoufuken,omitempty" bson:"todoufuken,omitempty"`
	District       string     `json:"senkyoku,omitempty" bson:"senkyoku,omitempty"`
	TuboVerdict    string     `json:"tubohantei,omitempty" bson:"tubohantei,omitempty"`
	TuboNote       string     `json:"tubonaiyou,omitempty" bson:"tubonaiyou,omitempty"`
	TuboURL        string     `json:"tuboURL,omitempty" bson:"tuboURL,omitempty"`
	UraganeVerdict string     `json:"uraganehantei,omitempty" bson:"uraganehantei,omitempty"`
	UraganeNote    string     `json:"uraganenaiyou,omitempty" bson:"uraganenaiyou,omitempty"`
	UraganeURL     string     `json:"uraganeURL,omitempty" bson:"uraganeURL,omitempty"`
	TuboURLs       URLList    `json:"tuboURLarray,omitempty" bson:"tuboURLarray,omitempty"`
}

// CreatedAt returns the creation timestamp.
func (e *Entity) CreatedAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// HasChildren reports whether drilling into e reveals anything.
func (e *Entity) HasChildren() bool {
	return e.Children != nil && (len(e.Children.Cards) > 0 || len(e.Children.Overrides) > 0)
}

// ChildIDs returns the ordered child list, or nil.
func (e *Entity) ChildIDs() []string {
	if e.Children == nil {
		return nil
	}
	return e.Children.Cards
}

// EnsureChildren returns e.Children, allocating it if needed.
func (e *Entity) EnsureChildren() *ChildrenInfo {
	if e.Children == nil {
		e.Children = &ChildrenInfo{}
	}
	return e.Children
}

// normalize fills the invariants every stored entity satisfies and infers
// the content kind. It returns the rejected explicit kind, if any.
func (e *Entity) normalize() (rejected string) {
	e.Color.fill(DefaultColor)

	if c := e.Children; c != nil {
		if len(c.Cards) == 0 {
			c.Cards = nil
		}
		if len(c.Overrides) == 0 {
			c.Overrides = nil
		}
	}

	if k, ok := ParseContentKind(string(e.Kind)); ok {
		e.Kind = k
		return ""
	}
	rejected = string(e.Kind)
	if e.HasChildren() {
		e.Kind = KindFolder
	} else {
		e.Kind = KindText
	}
	return rejected
}

// removeChild drops id from the child list and the override table.
func (e *Entity) removeChild(id string) bool {
	c := e.Children
	if c == nil {
		return false
	}
	changed := false
	if slices.Contains(c.Cards, id) {
		c.Cards = slices.DeleteFunc(c.Cards, func(s string) bool { return s == id })
		if len(c.Cards) == 0 {
			c.Cards = nil
		}
		changed = true
	}
	if _, ok := c.Overrides[id]; ok {
		delete(c.Overrides, id)
		if len(c.Overrides) == 0 {
			c.Overrides = nil
		}
		changed = true
	}
	return changed
}

// =============================================================================
// Per-mode slots
// =============================================================================

// Positions holds one position per mode.
type Positions struct {
	Free       Vec3 `json:"free" bson:"free"`
	Theme      Vec3 `json:"theme" bson:"theme"`
	Map        Vec3 `json:"map" bson:"map"`
	Alphabetic Vec3 `json:"aiueo" bson:"aiueo"`
	Category   Vec3 `json:"politicalParty" bson:"politicalParty"`
}

func (p *Positions) slot(m Mode) *Vec3 {
	switch m {
	case ModeFree:
		return &p.Free
	case ModeTheme:
		return &p.Theme
	case ModeMap:
		return &p.Map
	case ModeAlphabetic:
		return &p.Alphabetic
	case ModeCategory:
		return &p.Category
	}
	return nil
}

// Get returns the position stored for m (zero for unknown modes).
func (p *Positions) Get(m Mode) Vec3 {
	if s := p.slot(m); s != nil {
		return *s
	}
	return Vec3{}
}

// Set stores v for m and reports whether m is a known slot.
func (p *Positions) Set(m Mode, v Vec3) bool {
	s := p.slot(m)
	if s == nil {
		return false
	}
	*s = v
	return true
}

// Colors holds one colour string per mode.
type Colors struct {
	Free       string `json:"free" bson:"free"`
	Theme      string `json:"theme" bson:"theme"`
	Map        string `json:"map" bson:"map"`
	Alphabetic string `json:"aiueo" bson:"aiueo"`
	Category   string `json:"politicalParty" bson:"politicalParty"`
}

func (c *Colors) slot(m Mode) *string {
	switch m {
	case ModeFree:
		return &c.Free
	case ModeTheme:
		return &c.Theme
	case ModeMap:
		return &c.Map
	case ModeAlphabetic:
		return &c.Alphabetic
	case ModeCategory:
		return &c.Category
	}
	return nil
}

// Get returns the colour stored for m, or DefaultColor.
func (c *Colors) Get(m Mode) string {
	if s := c.slot(m); s != nil && *s != "" {
		return *s
	}
	return DefaultColor
}

// Set stores color for m and reports whether m is a known slot.
func (c *Colors) Set(m Mode, color string) bool {
	s := c.slot(m)
	if s == nil {
		return false
	}
	*s = color
	return true
}

func (c *Colors) fill(def string) {
	for _, m := range AllModes {
		if s := c.slot(m); *s == "" {
			*s = def
		}
	}
}

// =============================================================================
// Children
// =============================================================================

// Override is a per-child placement used while the parent is drilled into.
type Override struct {
	Position *Vec3 `json:"position,omitempty" bson:"position,omitempty"`
	Color    string `json:"color,omitempty" bson:"color,omitempty"`
}

// ChildrenInfo is the nested collection of an entity.
//
// Datasets write "cards" either as an array of child ids or as an object of
// child overrides. Both forms are accepted; the canonical encoding writes the
// id list under "cards" and the overrides under "overrides".
type ChildrenInfo struct {
	Camera       *Vec3               `bson:"camera,omitempty"`
	CameraTarget *Vec3               `bson:"cameraTarget,omitempty"`
	Cards        []string            `bson:"cards,omitempty"`
	Overrides    map[string]Override `bson:"overrides,omitempty"`
}

type childrenJSON struct {
	Camera       *Vec3               `json:"camera"`
	CameraTarget *Vec3               `json:"cameraTarget,omitempty"`
	Cards        json.RawMessage     `json:"cards,omitempty"`
	Overrides    map[string]Override `json:"overrides,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (c ChildrenInfo) MarshalJSON() ([]byte, error) {
	out := childrenJSON{
		Camera:       c.Camera,
		CameraTarget: c.CameraTarget,
		Overrides:    c.Overrides,
	}
	if len(c.Cards) > 0 {
		raw, err := json.Marshal(c.Cards)
		if err != nil {
			return nil, err
		}
		out.Cards = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *ChildrenInfo) UnmarshalJSON(data []byte) error {
	var in childrenJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*c = ChildrenInfo{
		Camera:       in.Camera,
		CameraTarget: in.CameraTarget,
		Overrides:    in.Overrides,
	}

	raw := bytes.TrimSpace(in.Cards)
	switch {
	case len(raw) == 0, bytes.Equal(raw, []byte("null")):
	case raw[0] == '[':
		var ids []*string
		if err := json.Unmarshal(raw, &ids); err != nil {
			return err
		}
		for _, id := range ids {
			if id != nil && *id != "" {
				c.Cards = append(c.Cards, *id)
			}
		}
	case raw[0] == '{':
		var ov map[string]Override
		if err := json.Unmarshal(raw, &ov); err != nil {
			return err
		}
		if c.Overrides == nil && len(ov) > 0 {
			c.Overrides = make(map[string]Override, len(ov))
		}
		for id, o := range ov {
			c.Overrides[id] = o
		}
	default:
		return fmt.Errorf("childrenInfo.cards: expected array or object, got %s", raw[:1])
	}
	return nil
}

// =============================================================================
// Lenient scalar types
// =============================================================================

// URLList is a list of reference URLs. It decodes from either an array of
// strings or a single comma-separated string; items are trimmed and empty
// items dropped.
type URLList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *URLList) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*l = nil
		return nil
	}

	var items []string
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		items = strings.Split(s, ",")
	} else {
		var arr []*string
		if err := json.Unmarshal(raw, &arr); err != nil {
			return err
		}
		for _, s := range arr {
			if s != nil {
				items = append(items, *s)
			}
		}
	}

	var out URLList
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}

// FlexString decodes from a JSON string or number.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	switch {
	case len(raw) == 0, bytes.Equal(raw, []byte("null")):
		*f = ""
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	default:
		n, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return err
		}
		*f = FlexString(strconv.FormatFloat(n, 'f', -1, 64))
	}
	return nil
}
