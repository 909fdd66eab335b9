package entity

import (
	"strings"

	"github.com/matzehuels/cardspace/pkg/errors"
)

// Vec3 is a point or Euler rotation in world space.
type Vec3 struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
	Z float64 `json:"z" bson:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// =============================================================================
// Arrangement modes
// =============================================================================

// Mode names a position/colour slot. The string values are the keys used in
// the JSON dataset.
type Mode string

const (
	ModeFree       Mode = "free"
	ModeTheme      Mode = "theme"
	ModeMap        Mode = "map"
	ModeAlphabetic Mode = "aiueo"
	ModeCategory   Mode = "politicalParty"
)

// AllModes lists every slot in dataset order.
var AllModes = []Mode{ModeFree, ModeTheme, ModeMap, ModeAlphabetic, ModeCategory}

// TopLevelModes lists the modes a user can switch to directly.
var TopLevelModes = []Mode{ModeTheme, ModeMap, ModeAlphabetic, ModeCategory}

// TopLevel reports whether m is one of the four switchable modes.
func (m Mode) TopLevel() bool {
	switch m {
	case ModeTheme, ModeMap, ModeAlphabetic, ModeCategory:
		return true
	}
	return false
}

// ParseMode accepts the dataset key or its descriptive alias
// ("alphabetic", "category").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "free":
		return ModeFree, nil
	case "theme":
		return ModeTheme, nil
	case "map":
		return ModeMap, nil
	case "aiueo", "alphabetic":
		return ModeAlphabetic, nil
	case "politicalparty", "category":
		return ModeCategory, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown mode %q", s)
}

// =============================================================================
// Content kinds
// =============================================================================

// ContentKind is the closed set of card presentations.
type ContentKind string

const (
	KindText      ContentKind = "text"
	KindImage     ContentKind = "img"
	KindImageText ContentKind = "img-text"
	KindVideo     ContentKind = "video"
	KindVideoText ContentKind = "video-text"
	KindFolder    ContentKind = "folder"
)

// ContentKinds lists every valid kind.
var ContentKinds = []ContentKind{KindText, KindImage, KindImageText, KindVideo, KindVideoText, KindFolder}

// ParseContentKind reports whether s names a valid kind.
func ParseContentKind(s string) (ContentKind, bool) {
	for _, k := range ContentKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// ShowsText reports whether the kind renders the title/detail text.
func (k ContentKind) ShowsText() bool {
	switch k {
	case KindText, KindImageText, KindVideoText, KindFolder:
		return true
	}
	return false
}

// ShowsImage reports whether the kind renders the image reference.
func (k ContentKind) ShowsImage() bool { return k == KindImage || k == KindImageText }

// ShowsVideo reports whether the kind renders the video reference.
func (k ContentKind) ShowsVideo() bool { return k == KindVideo || k == KindVideoText }
