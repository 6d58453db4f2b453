// color.go — Hex colour parsing.
package canvas

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseColor parses "#rrggbb" or "rrggbb". Empty input is black.
func ParseColor(s string) (color.RGBA, error) {
	if s == "" {
		return Black, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return Black, fmt.Errorf("invalid color %q: expected 6-char hex", s)
	}

	rv, err := strconv.ParseUint(hex[0:2], 16, 8)
	if err != nil {
		return Black, fmt.Errorf("invalid red channel in %q: %w", s, err)
	}
	gv, err := strconv.ParseUint(hex[2:4], 16, 8)
	if err != nil {
		return Black, fmt.Errorf("invalid green channel in %q: %w", s, err)
	}
	bv, err := strconv.ParseUint(hex[4:6], 16, 8)
	if err != nil {
		return Black, fmt.Errorf("invalid blue channel in %q: %w", s, err)
	}

	return color.RGBA{R: uint8(rv), G: uint8(gv), B: uint8(bv), A: 255}, nil
}

// ParseHexRGBA is ParseColor with black on any parse error.
func ParseHexRGBA(s string) color.RGBA {
	c, err := ParseColor(s)
	if err != nil {
		return Black
	}
	return c
}

// Hex formats c as "#rrggbb".
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
