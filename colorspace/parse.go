// SPDX-License-Identifier: Unlicense OR MIT

package colorspace

import (
	"fmt"
	"strconv"
	"strings"
)

// RGBA128 is RGB128 plus an alpha channel, the type the literal parser
// produces (spec §6).
type RGBA128 struct {
	RGB128
	A float64
}

// Opaque wraps c with full alpha.
func Opaque(c RGB128) RGBA128 {
	return RGBA128{RGB128: c, A: 1}
}

// ParseError reports a malformed color literal.
type ParseError struct {
	Literal string
	Reason  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("colorspace: invalid color literal %q: %s", e.Literal, e.Reason)
}

// ParseRGBA128 accepts the four literal grammars spec §6 describes:
// "0x…", "#…" (1/3/4/6/8 hex digits), "rgb(r, g, b[, a])" with 0-255
// integers, and "hdr(r, g, b[, a])" with floats. Whitespace is
// trimmed; a missing alpha channel defaults to fully opaque.
func ParseRGBA128(literal string) (RGBA128, error) {
	s := strings.TrimSpace(literal)
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		return parseHex(s, s[2:])
	case strings.HasPrefix(s, "#"):
		return parseHex(s, s[1:])
	case strings.HasPrefix(strings.ToLower(s), "rgb("):
		return parseComponents(s, s[4:len(s)-1], parseByteComponent)
	case strings.HasPrefix(strings.ToLower(s), "hdr("):
		return parseComponents(s, s[4:len(s)-1], parseFloatComponent)
	default:
		return RGBA128{}, &ParseError{Literal: literal, Reason: "unrecognized color grammar"}
	}
}

func parseHex(literal, digits string) (RGBA128, error) {
	digits = strings.TrimSpace(digits)
	expand := func(c byte) (byte, byte) { return c, c }
	var r, g, b, a string
	switch len(digits) {
	case 1:
		h1, h2 := expand(digits[0])
		r, g, b, a = string(h1)+string(h2), string(h1)+string(h2), string(h1)+string(h2), "ff"
	case 3:
		r = strings.Repeat(string(digits[0]), 2)
		g = strings.Repeat(string(digits[1]), 2)
		b = strings.Repeat(string(digits[2]), 2)
		a = "ff"
	case 4:
		r = strings.Repeat(string(digits[0]), 2)
		g = strings.Repeat(string(digits[1]), 2)
		b = strings.Repeat(string(digits[2]), 2)
		a = strings.Repeat(string(digits[3]), 2)
	case 6:
		r, g, b, a = digits[0:2], digits[2:4], digits[4:6], "ff"
	case 8:
		r, g, b, a = digits[0:2], digits[2:4], digits[4:6], digits[6:8]
	default:
		return RGBA128{}, &ParseError{Literal: literal, Reason: "expected 1, 3, 4, 6, or 8 hex digits"}
	}
	rv, err1 := strconv.ParseUint(r, 16, 8)
	gv, err2 := strconv.ParseUint(g, 16, 8)
	bv, err3 := strconv.ParseUint(b, 16, 8)
	av, err4 := strconv.ParseUint(a, 16, 8)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return RGBA128{}, &ParseError{Literal: literal, Reason: "non-hex digit"}
	}
	return RGBA128{
		RGB128: RGB128{R: float64(rv) / 255, G: float64(gv) / 255, B: float64(bv) / 255},
		A:      float64(av) / 255,
	}, nil
}

func parseByteComponent(s string) (float64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil {
		return 0, err
	}
	if v > 255 {
		return 0, fmt.Errorf("component %d out of [0, 255]", v)
	}
	return float64(v) / 255, nil
}

func parseFloatComponent(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseComponents(literal, body string, parse func(string) (float64, error)) (RGBA128, error) {
	parts := strings.Split(body, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return RGBA128{}, &ParseError{Literal: literal, Reason: "expected 3 or 4 components"}
	}
	values := make([]float64, len(parts))
	for i, p := range parts {
		v, err := parse(p)
		if err != nil {
			return RGBA128{}, &ParseError{Literal: literal, Reason: err.Error()}
		}
		values[i] = v
	}
	result := RGBA128{
		RGB128: RGB128{R: values[0], G: values[1], B: values[2]},
		A:      1,
	}
	if len(values) == 4 {
		result.A = values[3]
	}
	return result, nil
}
