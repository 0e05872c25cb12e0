// Package brush renders brush strokes onto a mask layer.
package brush

import (
	"image/color"

	"magic-eraser/pkg/colorutil"
	"magic-eraser/pkg/geometry"
)

const (
	MinSize        = 1
	MaxSize        = 200
	DefaultSize    = 20
	DefaultOpacity = 100
	DefaultColor   = "#ffffff"
)

// Shape is the on-screen cursor style. It has no effect on the mask.
type Shape int

const (
	ShapeMagicWand Shape = iota
	ShapeCircle
	ShapeCrosshair
)

func (s Shape) String() string {
	switch s {
	case ShapeMagicWand:
		return "magic-wand"
	case ShapeCircle:
		return "circle"
	case ShapeCrosshair:
		return "crosshair"
	default:
		return "unknown"
	}
}

// ParseShape maps a cursor style name to a Shape.
func ParseShape(name string) (Shape, bool) {
	for _, s := range []Shape{ShapeMagicWand, ShapeCircle, ShapeCrosshair} {
		if s.String() == name {
			return s, true
		}
	}
	return ShapeMagicWand, false
}

// Settings describes the brush. Size is a diameter in canvas pixels,
// Opacity is a percentage and Color an "#rrggbb" string.
type Settings struct {
	Size    int     `json:"size"`
	Opacity float64 `json:"opacity"`
	Color   string  `json:"color"`
	Shape   Shape   `json:"shape"`
}

// DefaultSettings returns a 20px fully opaque white brush.
func DefaultSettings() Settings {
	return Settings{
		Size:    DefaultSize,
		Opacity: DefaultOpacity,
		Color:   DefaultColor,
		Shape:   ShapeMagicWand,
	}
}

// Normalize clamps size and opacity into range and replaces an unparsable
// color with the default.
func (s Settings) Normalize() Settings {
	if s.Size < MinSize {
		s.Size = MinSize
	}
	if s.Size > MaxSize {
		s.Size = MaxSize
	}
	s.Opacity = geometry.Clamp(s.Opacity, 0, 100)
	if _, err := colorutil.ParseHex(s.Color); err != nil {
		s.Color = DefaultColor
	}
	return s
}

// Radius returns half the brush size.
func (s Settings) Radius() float64 {
	return float64(s.Size) / 2
}

// Alpha returns the opacity as a fraction.
func (s Settings) Alpha() float64 {
	return s.Opacity / 100
}

// RGBA returns the parsed brush color, white when invalid.
func (s Settings) RGBA() color.RGBA {
	c, err := colorutil.ParseHex(s.Color)
	if err != nil {
		return colorutil.White
	}
	return c
}
