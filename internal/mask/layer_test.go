package mask

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var red = color.RGBA{R: 255, A: 255}

// disc returns full coverage for a circle of radius r centered at (cx, cy),
// as a rectangle plus coverage buffer suitable for Blend.
func disc(cx, cy, r int) (image.Rectangle, []uint8) {
	rect := image.Rect(cx-r, cy-r, cx+r+1, cy+r+1)
	cov := make([]uint8, rect.Dx()*rect.Dy())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				cov[(y-rect.Min.Y)*rect.Dx()+(x-rect.Min.X)] = 255
			}
		}
	}
	return rect, cov
}

func TestInitializeRejectsEmpty(t *testing.T) {
	l := New()
	assert.Error(t, l.Initialize(0, 10))
	assert.False(t, l.Initialized())
}

func TestUninitializedIsNoop(t *testing.T) {
	l := New()
	rect, cov := disc(5, 5, 3)
	l.Blend(rect, cov, rect.Dx(), red, 1)
	l.Clear()
	assert.Equal(t, uint8(0), l.AlphaAt(5, 5))
	assert.True(t, l.IsEmpty())

	_, err := l.Snapshot()
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = l.ComposeForExport(10, 10)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestBlendSourceOver(t *testing.T) {
	l := New()
	require.NoError(t, l.Initialize(20, 20))
	rect, cov := disc(10, 10, 4)

	l.Blend(rect, cov, rect.Dx(), red, 0.5)
	first := l.AlphaAt(10, 10)
	assert.InDelta(t, 128, int(first), 1)

	l.Blend(rect, cov, rect.Dx(), red, 0.5)
	second := l.AlphaAt(10, 10)
	assert.Greater(t, second, first, "later strokes accumulate")
	assert.InDelta(t, 191, int(second), 2)

	assert.Equal(t, uint8(0), l.AlphaAt(0, 0))
	assert.False(t, l.IsEmpty())
}

func TestBlendClipsToLayer(t *testing.T) {
	l := New()
	require.NoError(t, l.Initialize(10, 10))
	rect, cov := disc(0, 0, 5)
	assert.NotPanics(t, func() { l.Blend(rect, cov, rect.Dx(), red, 1) })
	assert.Equal(t, uint8(255), l.AlphaAt(0, 0))
	assert.Equal(t, uint8(0), l.AlphaAt(-1, 0))
}

func TestClear(t *testing.T) {
	l := New()
	require.NoError(t, l.Initialize(10, 10))
	rect, cov := disc(5, 5, 2)
	l.Blend(rect, cov, rect.Dx(), red, 1)
	l.Clear()
	assert.True(t, l.IsEmpty())
}

func TestSnapshotRestore(t *testing.T) {
	l := New()
	require.NoError(t, l.Initialize(32, 24))
	rect, cov := disc(8, 8, 3)
	l.Blend(rect, cov, rect.Dx(), red, 1)

	snap, err := l.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 32, snap.Width)
	assert.Equal(t, 24, snap.Height)

	l.Clear()
	require.NoError(t, l.Restore(snap))
	assert.Equal(t, uint8(255), l.AlphaAt(8, 8))
	assert.Equal(t, uint8(0), l.AlphaAt(20, 20))
}

func TestRestoreCorruptKeepsLastGood(t *testing.T) {
	l := New()
	require.NoError(t, l.Initialize(16, 16))
	rect, cov := disc(8, 8, 2)
	l.Blend(rect, cov, rect.Dx(), red, 1)

	err := l.Restore(Snapshot{Width: 16, Height: 16, PNG: []byte("not a png")})
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
	assert.Equal(t, uint8(255), l.AlphaAt(8, 8))
}

func TestRestoreScalesToLayer(t *testing.T) {
	small := New()
	require.NoError(t, small.Initialize(10, 10))
	small.Blend(image.Rect(0, 0, 10, 10), fullCoverage(10, 10), 10, red, 1)
	snap, err := small.Snapshot()
	require.NoError(t, err)

	big := New()
	require.NoError(t, big.Initialize(40, 40))
	require.NoError(t, big.Restore(snap))
	assert.Equal(t, image.Rect(0, 0, 40, 40), big.Bounds())
	assert.Equal(t, uint8(255), big.AlphaAt(20, 20))
}

func TestRestoreAdoptsSizeWhenUninitialized(t *testing.T) {
	src := New()
	require.NoError(t, src.Initialize(12, 7))
	snap, err := src.Snapshot()
	require.NoError(t, err)

	l := New()
	require.NoError(t, l.Restore(snap))
	assert.Equal(t, image.Rect(0, 0, 12, 7), l.Bounds())
}

func TestComposeForExportScalesDab(t *testing.T) {
	l := New()
	require.NoError(t, l.Initialize(100, 80))
	rect, cov := disc(30, 40, 10)
	l.Blend(rect, cov, rect.Dx(), red, 1)

	out, err := l.ComposeForExport(200, 160)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 200, 160), out.Bounds())

	alpha := func(x, y int) uint8 { return out.RGBAAt(x, y).A }
	assert.Equal(t, uint8(255), alpha(60, 80))
	assert.Greater(t, alpha(60+17, 80), uint8(200), "inside 2r")
	assert.Greater(t, alpha(60, 80-17), uint8(200), "inside 2r")
	assert.Equal(t, uint8(0), alpha(60+24, 80), "outside 2r")
	assert.Equal(t, uint8(0), alpha(60, 80+24), "outside 2r")
}

func TestComposeForExportSameSizeCopies(t *testing.T) {
	l := New()
	require.NoError(t, l.Initialize(10, 10))
	out, err := l.ComposeForExport(10, 10)
	require.NoError(t, err)
	out.Pix[3] = 255
	assert.Equal(t, uint8(0), l.AlphaAt(0, 0), "export must not alias the layer")
}

func fullCoverage(w, h int) []uint8 {
	cov := make([]uint8, w*h)
	for i := range cov {
		cov[i] = 255
	}
	return cov
}
