package viewport

import (
	"math"

	"magic-eraser/pkg/geometry"
)

const (
	// MinScale and MaxScale bound interactive zoom.
	MinScale = 0.2
	MaxScale = 3.0

	// MinFitScale and MaxFitScale bound the automatic fit.
	MinFitScale = 0.3
	MaxFitScale = 1.5

	// ZoomStep is the toolbar / keyboard increment.
	ZoomStep = 0.2
)

// WheelStep returns the zoom increment for one wheel notch at the given
// scale. Smaller scales take finer steps.
func WheelStep(scale float64) float64 {
	switch {
	case scale < 0.5:
		return 0.05
	case scale < 1:
		return 0.08
	default:
		return 0.12
	}
}

// FitScale returns the unclamped scale that fits canvas inside container
// after removing padding from each side.
func FitScale(container, canvas geometry.Size, padding float64) float64 {
	if canvas.IsEmpty() {
		return 1
	}
	w := math.Max(container.Width-2*padding, 1)
	h := math.Max(container.Height-2*padding, 1)
	return math.Min(w/canvas.Width, h/canvas.Height)
}

// Controller owns a ViewState and the geometry it is interpreted against.
type Controller struct {
	view      ViewState
	container geometry.Rect
	canvas    geometry.Size
	padding   float64
}

// NewController creates a controller at unit scale.
func NewController() *Controller {
	return &Controller{view: DefaultView()}
}

// View returns the current view state.
func (c *Controller) View() ViewState {
	return c.view
}

// SetView replaces the view state, clamping the scale.
func (c *Controller) SetView(v ViewState) {
	v.Scale = geometry.Clamp(v.scale(), MinScale, MaxScale)
	c.view = v
}

// SetContainer records the container rectangle in screen coordinates.
func (c *Controller) SetContainer(r geometry.Rect) {
	c.container = r
}

// Container returns the last recorded container rectangle.
func (c *Controller) Container() geometry.Rect {
	return c.container
}

// SetCanvasSize records the canvas (image) size in pixels.
func (c *Controller) SetCanvasSize(s geometry.Size) {
	c.canvas = s
}

// CanvasSize returns the canvas size in pixels.
func (c *Controller) CanvasSize() geometry.Size {
	return c.canvas
}

// SetPadding sets the margin kept around the canvas by FitToView.
func (c *Controller) SetPadding(p float64) {
	c.padding = math.Max(p, 0)
}

// FitToView records container and canvas sizes, then scales the canvas to
// fit with offsets reset to zero.
func (c *Controller) FitToView(container, canvas geometry.Size) ViewState {
	c.container.Width, c.container.Height = container.Width, container.Height
	c.canvas = canvas
	return c.Refit()
}

// Refit recomputes the fit for the recorded container and canvas.
func (c *Controller) Refit() ViewState {
	scale := FitScale(c.container.Size(), c.canvas, c.padding)
	c.view = ViewState{Scale: geometry.Clamp(scale, MinFitScale, MaxFitScale)}
	return c.view
}

// Zoom changes the scale by delta around the container center.
func (c *Controller) Zoom(delta float64) bool {
	return c.ZoomAt(delta, geometry.Point2D{X: c.container.Width / 2, Y: c.container.Height / 2})
}

// ZoomAt changes the scale by delta keeping the canvas point under center
// fixed on screen. center is relative to the container's top-left.
// Returns false when the clamped scale did not change.
func (c *Controller) ZoomAt(delta float64, center geometry.Point2D) bool {
	return c.ZoomTo(c.view.scale()+delta, center)
}

// ZoomTo sets an absolute scale anchored at center.
func (c *Controller) ZoomTo(scale float64, center geometry.Point2D) bool {
	old := c.view.scale()
	next := geometry.Clamp(scale, MinScale, MaxScale)
	if next == old {
		return false
	}
	k := 1 - next/old
	// The layout centers the canvas, so the anchor is taken relative to the
	// container center.
	rx := center.X - c.container.Width/2
	ry := center.Y - c.container.Height/2
	c.view.OffsetX += (rx - c.view.OffsetX) * k
	c.view.OffsetY += (ry - c.view.OffsetY) * k
	c.view.Scale = next
	return true
}

// Pan moves the view by a display-space delta. Offsets are not clamped.
func (c *Controller) Pan(dx, dy float64) {
	c.view.OffsetX += dx
	c.view.OffsetY += dy
}

// ScreenToCanvas maps a screen point through the current view.
func (c *Controller) ScreenToCanvas(p geometry.Point2D) geometry.Point2D {
	return ScreenToCanvas(p, c.container, c.view, c.canvas)
}

// CanvasToScreen maps a canvas point through the current view.
func (c *Controller) CanvasToScreen(p geometry.Point2D) geometry.Point2D {
	return CanvasToScreen(p, c.container, c.view, c.canvas)
}

// Transform returns the current canvas-to-screen transform.
func (c *Controller) Transform() geometry.AffineTransform {
	return ViewTransform(c.container, c.view, c.canvas)
}

// ResetView restores unit scale with no offset.
func (c *Controller) ResetView() ViewState {
	c.view = DefaultView()
	return c.view
}
