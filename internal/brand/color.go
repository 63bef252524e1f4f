package brand

import (
	"image/color"
	"strconv"
	"strings"
)

// IsBrandColor reports whether color is one of the palette colors (case-insensitive).
func (c Config) IsBrandColor(hex string) bool {
	for _, p := range c.Palette() {
		if strings.EqualFold(p, strings.TrimSpace(hex)) {
			return true
		}
	}
	return false
}

// Nearest snaps an arbitrary hex color to the closest palette color by RGB distance.
// Unparseable input maps to the primary color.
func (c Config) Nearest(hex string) string {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return c.Colors.Primary
	}

	best := c.Colors.Primary
	bestDist := -1
	for _, p := range c.Palette() {
		pr, pg, pb, _ := parseHex(p)
		dr, dg, db := r-pr, g-pg, b-pb
		dist := dr*dr + dg*dg + db*db
		if bestDist < 0 || dist < bestDist {
			best, bestDist = p, dist
		}
	}
	return best
}

// RGBA converts a hex color to an opaque color.RGBA.
func RGBA(hex string) (color.RGBA, bool) {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xFF}, true
}

func parseHex(hex string) (r, g, b int, ok bool) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF), true
}
