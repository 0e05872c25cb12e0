package brush

import (
	"testing"

	"magic-eraser/internal/mask"
	"magic-eraser/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLayer(t *testing.T, w, h int) *mask.Layer {
	t.Helper()
	l := mask.New()
	require.NoError(t, l.Initialize(w, h))
	return l
}

func TestBeginStrokeDab(t *testing.T) {
	l := newLayer(t, 800, 600)
	r := NewRenderer(l)
	r.SetSettings(Settings{Size: 20, Opacity: 100, Color: "#ff3333"})

	r.BeginStroke(geometry.Point2D{X: 100, Y: 100})
	assert.Equal(t, uint8(255), l.AlphaAt(100, 100))
	assert.Greater(t, l.AlphaAt(106, 100), uint8(0))
	assert.Equal(t, uint8(0), l.AlphaAt(113, 100))
	assert.Equal(t, uint8(0), l.AlphaAt(200, 200))
	assert.True(t, r.EndStroke())
	assert.False(t, r.EndStroke(), "drawn flag resets")
}

func TestContinueStrokeHasNoGaps(t *testing.T) {
	l := newLayer(t, 300, 100)
	r := NewRenderer(l)
	r.SetSettings(Settings{Size: 10, Opacity: 100, Color: "#ffffff"})

	from := geometry.Point2D{X: 10, Y: 50}
	to := geometry.Point2D{X: 250, Y: 50}
	r.BeginStroke(from)
	r.ContinueStroke(from, to)

	for x := 10; x <= 250; x += 5 {
		assert.Equal(t, uint8(255), l.AlphaAt(x, 50), "x=%d", x)
	}
	assert.Equal(t, uint8(0), l.AlphaAt(130, 50+9))
	assert.Equal(t, uint8(0), l.AlphaAt(130, 50-9))
}

func TestDiagonalStrokeMidpoint(t *testing.T) {
	l := newLayer(t, 200, 200)
	r := NewRenderer(l)
	r.SetSettings(Settings{Size: 6, Opacity: 100, Color: "#ffffff"})

	r.StrokeTo(geometry.Point2D{X: 20, Y: 20})
	r.StrokeTo(geometry.Point2D{X: 180, Y: 160})
	assert.Equal(t, uint8(255), l.AlphaAt(100, 90))
}

func TestStrokeToAfterEndStartsFreshDab(t *testing.T) {
	l := newLayer(t, 200, 50)
	r := NewRenderer(l)
	r.SetSettings(Settings{Size: 8, Opacity: 100, Color: "#ffffff"})

	r.BeginStroke(geometry.Point2D{X: 20, Y: 25})
	r.EndStroke()
	r.StrokeTo(geometry.Point2D{X: 180, Y: 25})

	assert.Equal(t, uint8(255), l.AlphaAt(180, 25))
	assert.Equal(t, uint8(0), l.AlphaAt(100, 25), "no line from a stale point")
}

func TestLiftBreaksSegment(t *testing.T) {
	l := newLayer(t, 200, 50)
	r := NewRenderer(l)
	r.SetSettings(Settings{Size: 8, Opacity: 100, Color: "#ffffff"})

	r.StrokeTo(geometry.Point2D{X: 20, Y: 25})
	r.Lift()
	assert.False(t, r.Active())
	r.StrokeTo(geometry.Point2D{X: 180, Y: 25})
	assert.Equal(t, uint8(0), l.AlphaAt(100, 25))
}

func TestOpacityScalesAlpha(t *testing.T) {
	l := newLayer(t, 50, 50)
	r := NewRenderer(l)
	r.SetSettings(Settings{Size: 20, Opacity: 50, Color: "#ffffff"})
	r.BeginStroke(geometry.Point2D{X: 25, Y: 25})
	assert.InDelta(t, 128, int(l.AlphaAt(25, 25)), 1)
}

func TestZeroOpacityDrawsNothing(t *testing.T) {
	l := newLayer(t, 50, 50)
	r := NewRenderer(l)
	r.SetSettings(Settings{Size: 20, Opacity: 0, Color: "#ffffff"})
	r.BeginStroke(geometry.Point2D{X: 25, Y: 25})
	assert.True(t, l.IsEmpty())
	assert.False(t, r.EndStroke())
}

func TestOutOfBoundsIsClipped(t *testing.T) {
	l := newLayer(t, 50, 50)
	r := NewRenderer(l)
	assert.NotPanics(t, func() {
		r.BeginStroke(geometry.Point2D{X: -500, Y: -500})
		r.ContinueStroke(geometry.Point2D{X: -500, Y: -500}, geometry.Point2D{X: -400, Y: 900})
	})
	assert.True(t, l.IsEmpty())

	r.BeginStroke(geometry.Point2D{X: 0, Y: 0})
	assert.Equal(t, uint8(255), l.AlphaAt(0, 0))
}

func TestUninitializedLayerIsNoop(t *testing.T) {
	r := NewRenderer(mask.New())
	assert.NotPanics(t, func() {
		r.BeginStroke(geometry.Point2D{X: 5, Y: 5})
		r.StrokeTo(geometry.Point2D{X: 10, Y: 10})
	})
	assert.False(t, r.EndStroke())
}
