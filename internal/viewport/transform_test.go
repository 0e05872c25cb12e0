package viewport

import (
	"testing"

	"magic-eraser/pkg/geometry"

	"github.com/stretchr/testify/assert"
)

func TestScreenToCanvasCentered(t *testing.T) {
	container := geometry.NewRect(0, 0, 400, 300)
	canvas := geometry.NewSize(800, 600)
	v := ViewState{Scale: 0.5}

	// At scale 0.5 the canvas fills the container exactly.
	p := ScreenToCanvas(geometry.Point2D{X: 50, Y: 50}, container, v, canvas)
	assert.InDelta(t, 100, p.X, 1e-9)
	assert.InDelta(t, 100, p.Y, 1e-9)
}

func TestScreenToCanvasWithContainerOffsetAndPan(t *testing.T) {
	container := geometry.NewRect(30, 40, 400, 300)
	canvas := geometry.NewSize(100, 100)
	v := ViewState{Scale: 2, OffsetX: 10, OffsetY: -5}

	// Display origin: ((400-200)/2+10, (300-200)/2-5) = (110, 45).
	p := ScreenToCanvas(geometry.Point2D{X: 30 + 110, Y: 40 + 45}, container, v, canvas)
	assert.InDelta(t, 0, p.X, 1e-9)
	assert.InDelta(t, 0, p.Y, 1e-9)
}

func TestTransformRoundTrip(t *testing.T) {
	container := geometry.NewRect(17, 23, 640, 480)
	canvas := geometry.NewSize(1920, 1080)
	views := []ViewState{
		{Scale: 0.2},
		{Scale: 0.37, OffsetX: -120, OffsetY: 55},
		{Scale: 1, OffsetX: 3.5},
		{Scale: 3, OffsetX: 900, OffsetY: -400},
	}
	for _, v := range views {
		for x := 17.0; x <= 17+640; x += 79 {
			for y := 23.0; y <= 23+480; y += 61 {
				screen := geometry.Point2D{X: x, Y: y}
				back := CanvasToScreen(ScreenToCanvas(screen, container, v, canvas), container, v, canvas)
				assert.InDelta(t, screen.X, back.X, 1e-9)
				assert.InDelta(t, screen.Y, back.Y, 1e-9)
			}
		}
	}
}

func TestViewTransformMatchesCanvasToScreen(t *testing.T) {
	container := geometry.NewRect(5, 6, 300, 200)
	canvas := geometry.NewSize(50, 80)
	v := ViewState{Scale: 1.7, OffsetX: 4, OffsetY: -9}
	tr := ViewTransform(container, v, canvas)

	p := geometry.Point2D{X: 12.5, Y: 33}
	want := CanvasToScreen(p, container, v, canvas)
	got := tr.Apply(p)
	assert.InDelta(t, want.X, got.X, 1e-9)
	assert.InDelta(t, want.Y, got.Y, 1e-9)
}
