package treebloom

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Vec3 is the 3D vector used for every position, offset and direction in
// the engine. It is mgl64.Vec3 so callers get the full mathgl API.
type Vec3 = mgl64.Vec3

// Vec2 is a 2D size or offset, used for photo frame dimensions.
type Vec2 struct {
	X, Y float64
}

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// ColorGold is the tint of satellites and the topper star.
var ColorGold = Color{1, 0.843, 0, 1}

// colorFromColorful converts a go-colorful color to an opaque Color.
func colorFromColorful(c colorful.Color) Color {
	c = c.Clamped()
	return Color{R: c.R, G: c.G, B: c.B, A: 1}
}

// ColorFromHex parses a "#rrggbb" string. Invalid input yields white.
func ColorFromHex(hex string) Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return ColorWhite
	}
	return colorFromColorful(c)
}

// toRGBA converts to a premultiplied color.RGBA for ebiten.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

// Rect is an axis-aligned screen rectangle. The coordinate system has its
// origin at the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Range is a general-purpose min/max range.
// Used by the field configs for scales and radii.
type Range struct {
	Min, Max float64
}

// Phase is one of the four display states of the whole animation.
type Phase uint8

const (
	PhaseTree       Phase = iota // particles hold the tree layout
	PhaseBlooming                // progress animating toward the nebula layout
	PhaseNebula                  // particles hold the nebula layout
	PhaseCollapsing              // progress animating back toward the tree
)

// String returns the lowercase phase name.
func (p Phase) String() string {
	switch p {
	case PhaseTree:
		return "tree"
	case PhaseBlooming:
		return "blooming"
	case PhaseNebula:
		return "nebula"
	case PhaseCollapsing:
		return "collapsing"
	default:
		return "unknown"
	}
}

// ParsePhase maps a lowercase phase name back to a Phase.
func ParsePhase(name string) (Phase, bool) {
	switch name {
	case "tree":
		return PhaseTree, true
	case "blooming":
		return PhaseBlooming, true
	case "nebula":
		return PhaseNebula, true
	case "collapsing":
		return PhaseCollapsing, true
	}
	return PhaseTree, false
}

// treeShaped reports whether decorations that belong to the tree (the topper
// star) are visible in this phase.
func (p Phase) treeShaped() bool {
	return p == PhaseTree || p == PhaseCollapsing
}

// Instance is one positioned, scaled, colored copy of a shared geometry.
// Field transform functions write one Instance per record.
type Instance struct {
	Position Vec3
	Scale    float64
	Color    Color
}

// PhaseEvent is emitted to the EntityStore whenever the phase changes.
type PhaseEvent struct {
	From     Phase
	To       Phase
	Progress float64
	Time     float64
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
