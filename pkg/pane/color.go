package pane

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/fundiary/fundiary/pkg/types"
)

// MaxColor is the largest 24-bit RGB value.
const MaxColor = 0xFFFFFF

// ColorFromValue converts a packed 0xRRGGBB integer to a colour.
func ColorFromValue(v int) (colorful.Color, error) {
	if v < 0 || v > MaxColor {
		return colorful.Color{}, fmt.Errorf("colour %d outside 24-bit range: %w", v, types.ErrOutOfRange)
	}
	return colorful.Color{
		R: float64(v>>16&0xFF) / 255,
		G: float64(v>>8&0xFF) / 255,
		B: float64(v&0xFF) / 255,
	}, nil
}

// ColorValue packs a colour into a 0xRRGGBB integer. Out of gamut colours
// are clamped first.
func ColorValue(c colorful.Color) int {
	r, g, b := c.Clamped().RGB255()
	return int(r)<<16 | int(g)<<8 | int(b)
}

// ParseColor accepts #rrggbb or a decimal integer and returns the
// packed value.
func ParseColor(s string) (int, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return 0, fmt.Errorf("parse colour %q: %w", s, types.ErrTypeMismatch)
		}
		return ColorValue(c), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parse colour %q: %w", s, types.ErrTypeMismatch)
	}
	if _, err := ColorFromValue(n); err != nil {
		return 0, err
	}
	return n, nil
}

// FormatColor renders a packed value as #rrggbb.
func FormatColor(v int) string {
	c, err := ColorFromValue(v)
	if err != nil {
		return strconv.Itoa(v)
	}
	return c.Hex()
}
