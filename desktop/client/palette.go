package client

import (
	"image/color"
	"strconv"
	"strings"
)

// elementHex matches the server's element palette
var elementHex = map[string]string{
	"Fire":     "#ef4444",
	"Water":    "#3b82f6",
	"Grass":    "#22c55e",
	"Electric": "#facc15",
	"Ice":      "#67e8f9",
	"Fighting": "#ea580c",
	"Psychic":  "#ec4899",
	"Rock":     "#78716c",
	"Ghost":    "#4338ca",
	"Dragon":   "#7c3aed",
}

var neutralColor = color.RGBA{163, 163, 163, 255}

// ElementColor returns the draw color for an element, gray for Normal or unknown
func ElementColor(element string) color.RGBA {
	if hex, ok := elementHex[element]; ok {
		if c, ok := ParseHexColor(hex); ok {
			return c
		}
	}
	return neutralColor
}

// ParseHexColor parses #rrggbb
func ParseHexColor(hex string) (color.RGBA, bool) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}

// ProjectilePosition interpolates a projectile between its start and target
func ProjectilePosition(p Projectile) (float64, float64) {
	t := p.Progress
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.StartX + (p.TargetX-p.StartX)*t, p.StartY + (p.TargetY-p.StartY)*t
}

// OnPath reports whether grid cell (x, y) is a path node
func OnPath(path []Coordinate, x, y int) bool {
	for _, c := range path {
		if int(c.X) == x && int(c.Y) == y {
			return true
		}
	}
	return false
}
