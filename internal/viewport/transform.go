// Package viewport maps between screen and canvas space and owns the
// scale/offset state of an editor view.
package viewport

import (
	"magic-eraser/pkg/geometry"
)

// ViewState is the scale and pan of the displayed canvas. Offsets are
// display-space pixels added to the centered layout.
type ViewState struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// DefaultView is unit scale, no pan.
func DefaultView() ViewState {
	return ViewState{Scale: 1}
}

func (v ViewState) scale() float64 {
	if v.Scale <= 0 {
		return 1
	}
	return v.Scale
}

// DisplayOrigin returns the top-left of the displayed canvas relative to the
// container's own top-left.
func DisplayOrigin(container, canvas geometry.Size, v ViewState) geometry.Point2D {
	s := v.scale()
	return geometry.Point2D{
		X: (container.Width-canvas.Width*s)/2 + v.OffsetX,
		Y: (container.Height-canvas.Height*s)/2 + v.OffsetY,
	}
}

// ScreenToCanvas converts a screen point to canvas pixels. container is the
// container's rectangle in the same screen coordinates as the point.
func ScreenToCanvas(screen geometry.Point2D, container geometry.Rect, v ViewState, canvas geometry.Size) geometry.Point2D {
	origin := DisplayOrigin(container.Size(), canvas, v)
	s := v.scale()
	return geometry.Point2D{
		X: (screen.X - container.X - origin.X) / s,
		Y: (screen.Y - container.Y - origin.Y) / s,
	}
}

// CanvasToScreen is the inverse of ScreenToCanvas.
func CanvasToScreen(p geometry.Point2D, container geometry.Rect, v ViewState, canvas geometry.Size) geometry.Point2D {
	origin := DisplayOrigin(container.Size(), canvas, v)
	s := v.scale()
	return geometry.Point2D{
		X: p.X*s + container.X + origin.X,
		Y: p.Y*s + container.Y + origin.Y,
	}
}

// ViewTransform returns the canvas-to-screen mapping as an affine transform.
func ViewTransform(container geometry.Rect, v ViewState, canvas geometry.Size) geometry.AffineTransform {
	origin := DisplayOrigin(container.Size(), canvas, v)
	s := v.scale()
	return geometry.Translation(container.X+origin.X, container.Y+origin.Y).
		Compose(geometry.Scale(s, s))
}
