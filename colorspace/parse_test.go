// SPDX-License-Identifier: Unlicense OR MIT

package colorspace

import (
	"math"
	"testing"
)

func TestParseRGBA128Grammars(t *testing.T) {
	cases := []struct {
		literal string
		want    RGBA128
	}{
		{"#fff", Opaque(White)},
		{"0xFFFFFFFF", Opaque(White)},
		{"#000000", Opaque(Black)},
		{"rgb(255, 0, 0)", Opaque(RGB128{R: 1})},
		{"hdr(2.5, 0, 0, 0.5)", RGBA128{RGB128: RGB128{R: 2.5}, A: 0.5}},
	}
	for _, c := range cases {
		got, err := ParseRGBA128(c.literal)
		if err != nil {
			t.Fatalf("ParseRGBA128(%q) error: %v", c.literal, err)
		}
		if math.Abs(got.R-c.want.R) > 1e-6 || math.Abs(got.G-c.want.G) > 1e-6 ||
			math.Abs(got.B-c.want.B) > 1e-6 || math.Abs(got.A-c.want.A) > 1e-6 {
			t.Errorf("ParseRGBA128(%q) = %+v, want %+v", c.literal, got, c.want)
		}
	}
}

func TestParseRGBA128Invalid(t *testing.T) {
	if _, err := ParseRGBA128("teal"); err == nil {
		t.Error("expected error for unrecognized literal")
	}
}

func TestSRGBRoundTrip(t *testing.T) {
	for x := 0.0; x <= 1.0; x += 0.05 {
		got := ForwardSRGB(InverseSRGB(x))
		if math.Abs(got-x) > 1e-5 {
			t.Errorf("ForwardSRGB(InverseSRGB(%v)) = %v", x, got)
		}
	}
}
