// Package color parses card colours and interpolates them in normalised
// channel space.
//
// Dataset colours are hex strings in one of three shapes: "#rgb",
// "#rrggbb", or "#rrggbbaa". [ParseHex] accepts all three and returns an
// [RGBA] whose channels lie in [0, 1]. Anything else is a MALFORMED_INPUT
// error; a bad colour never silently becomes black.
package color

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/cardspace/pkg/errors"
)

// RGBA is a colour with channels normalised to [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// Black is opaque black.
var Black = RGBA{A: 1}

// ParseHex parses "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseHex(s string) (RGBA, error) {
	hex := strings.TrimSpace(s)
	if !strings.HasPrefix(hex, "#") {
		return RGBA{}, malformed(s, "missing leading #")
	}
	if !isHexDigits(hex[1:]) {
		return RGBA{}, malformed(s, "invalid hex digits")
	}

	switch len(hex) {
	case 4, 7:
		c, err := colorful.Hex(strings.ToLower(hex))
		if err != nil {
			return RGBA{}, malformed(s, "invalid hex digits")
		}
		return RGBA{R: c.R, G: c.G, B: c.B, A: 1}, nil
	case 9:
		c, err := colorful.Hex(strings.ToLower(hex[:7]))
		if err != nil {
			return RGBA{}, malformed(s, "invalid hex digits")
		}
		a, err := strconv.ParseUint(hex[7:], 16, 8)
		if err != nil {
			return RGBA{}, malformed(s, "invalid alpha digits")
		}
		return RGBA{R: c.R, G: c.G, B: c.B, A: float64(a) / 255}, nil
	}
	return RGBA{}, malformed(s, "expected 3, 6 or 8 hex digits")
}

// MustParseHex is ParseHex for literals known to be valid.
func MustParseHex(s string) RGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Valid reports whether s parses.
func Valid(s string) bool {
	_, err := ParseHex(s)
	return err == nil
}

func malformed(s, reason string) error {
	return errors.New(errors.ErrCodeMalformedInput, "bad hex colour %q: %s", s, reason)
}

// Hex formats c as "#rrggbb", or "#rrggbbaa" when c is not opaque.
func (c RGBA) Hex() string {
	rgb := colorful.Color{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B)}.Hex()
	if c.A >= 1 {
		return rgb
	}
	return fmt.Sprintf("%s%02x", rgb, uint8(math.Round(clamp(c.A)*255)))
}

// Lerp interpolates from c to o by t in RGB space. Alpha is interpolated
// linearly alongside.
func (c RGBA) Lerp(o RGBA, t float64) RGBA {
	mixed := colorful.Color{R: c.R, G: c.G, B: c.B}.BlendRgb(colorful.Color{R: o.R, G: o.G, B: o.B}, t)
	return RGBA{R: mixed.R, G: mixed.G, B: mixed.B, A: c.A + (o.A-c.A)*t}
}

// Blend parses two hex colours and returns their mix at t as "#rrggbb".
func Blend(from, to string, t float64) (string, error) {
	a, err := ParseHex(from)
	if err != nil {
		return "", err
	}
	b, err := ParseHex(to)
	if err != nil {
		return "", err
	}
	return a.Lerp(b, t).Hex(), nil
}

func isHexDigits(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
