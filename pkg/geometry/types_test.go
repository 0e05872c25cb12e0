package geometry

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAffineInverseRoundTrip(t *testing.T) {
	tr := Translation(12, -7).Compose(Scale(0.5, 0.5))
	inv, ok := tr.Inverse()
	require.True(t, ok)

	for _, p := range []Point2D{{0, 0}, {10, 20}, {-35.5, 400.25}} {
		back := inv.Apply(tr.Apply(p))
		assert.InDelta(t, p.X, back.X, 1e-9)
		assert.InDelta(t, p.Y, back.Y, 1e-9)
	}
}

func TestAffineSingular(t *testing.T) {
	_, ok := Scale(0, 1).Inverse()
	assert.False(t, ok)
}

func TestComposeOrder(t *testing.T) {
	// Scale first, then translate.
	tr := Translation(10, 0).Compose(Scale(2, 2))
	assert.Equal(t, Point2D{X: 12, Y: 2}, tr.Apply(Point2D{X: 1, Y: 1}))
}

func TestRectBounds(t *testing.T) {
	r := NewRect(1.5, 2.2, 3, 4)
	assert.Equal(t, image.Rect(1, 2, 5, 7), r.Bounds())
	assert.True(t, r.Contains(Point2D{X: 1.5, Y: 6.2}))
	assert.False(t, r.Contains(Point2D{X: 1.4, Y: 3}))
}

func TestLerpAndClamp(t *testing.T) {
	p := Point2D{X: 0, Y: 0}.Lerp(Point2D{X: 10, Y: -10}, 0.25)
	assert.Equal(t, Point2D{X: 2.5, Y: -2.5}, p)
	assert.Equal(t, 0.2, Clamp(0.1, 0.2, 3))
	assert.Equal(t, 3.0, Clamp(5, 0.2, 3))
	assert.Equal(t, 1.0, Clamp(1, 0.2, 3))
}
