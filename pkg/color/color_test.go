package color

import (
	"math"
	"testing"

	"github.com/matzehuels/cardspace/pkg/errors"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want RGBA
	}{
		{"#ff0000", RGBA{1, 0, 0, 1}},
		{"#F00", RGBA{1, 0, 0, 1}},
		{"#007f7f", RGBA{0, 127.0 / 255, 127.0 / 255, 1}},
		{" #000000 ", RGBA{0, 0, 0, 1}},
		{"#ffffff80", RGBA{1, 1, 1, 128.0 / 255}},
		{"#3CA324", RGBA{60.0 / 255, 163.0 / 255, 36.0 / 255, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if err != nil {
				t.Fatalf("ParseHex(%q) error = %v", tt.in, err)
			}
			if !approx(got.R, tt.want.R) || !approx(got.G, tt.want.G) || !approx(got.B, tt.want.B) || !approx(got.A, tt.want.A) {
				t.Errorf("ParseHex(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseHexMalformed(t *testing.T) {
	inputs := []string{"", "red", "ff0000", "#ff00", "#gg0000", "#12345g", "#ff0000zz", "#1234567890"}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := ParseHex(in)
			if err == nil {
				t.Fatalf("ParseHex(%q) error = nil, want error", in)
			}
			if !errors.Is(err, errors.ErrCodeMalformedInput) {
				t.Errorf("ParseHex(%q) code = %v, want %v", in, errors.GetCode(err), errors.ErrCodeMalformedInput)
			}
			if Valid(in) {
				t.Errorf("Valid(%q) = true", in)
			}
		})
	}
}

func TestHex(t *testing.T) {
	tests := []struct {
		in   RGBA
		want string
	}{
		{RGBA{1, 0, 0, 1}, "#ff0000"},
		{RGBA{0, 0.5, 1, 1}, "#0080ff"},
		{RGBA{2, -1, 0, 1}, "#ff0000"},
		{RGBA{1, 1, 1, 128.0 / 255}, "#ffffff80"},
	}
	for _, tt := range tests {
		if got := tt.in.Hex(); got != tt.want {
			t.Errorf("%+v.Hex() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLerp(t *testing.T) {
	from := MustParseHex("#000000")
	to := MustParseHex("#ffffff00")

	if got := from.Lerp(to, 0); got != from {
		t.Errorf("Lerp(0) = %+v, want %+v", got, from)
	}
	mid := from.Lerp(to, 0.5)
	if !approx(mid.R, 0.5) || !approx(mid.A, 0.5) {
		t.Errorf("Lerp(0.5) = %+v", mid)
	}
	end := from.Lerp(to, 1)
	if !approx(end.G, 1) || !approx(end.A, 0) {
		t.Errorf("Lerp(1) = %+v", end)
	}
}

func TestBlend(t *testing.T) {
	got, err := Blend("#000", "#ff0000", 1)
	if err != nil {
		t.Fatalf("Blend() error = %v", err)
	}
	if got != "#ff0000" {
		t.Errorf("Blend() = %q, want #ff0000", got)
	}
	if _, err := Blend("#000", "nope", 0.5); err == nil {
		t.Error("Blend() with a bad colour should fail")
	}
}
