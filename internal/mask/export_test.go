package mask

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeForInpaint(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 1))
	// Opaque red, half-transparent premultiplied green, untouched.
	src.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	src.SetRGBA(1, 0, color.RGBA{G: 64, A: 128})
	src.SetRGBA(2, 0, color.RGBA{})

	out := NormalizeForInpaint(src)
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, out.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 128, G: 128, B: 128, A: 255}, out.RGBAAt(1, 0))
	assert.Equal(t, color.RGBA{A: 255}, out.RGBAAt(2, 0))
}

func TestNormalizeForInpaintGenericImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 7, 6))
	src.SetNRGBA(5, 5, color.NRGBA{R: 10, G: 200, B: 30, A: 255})

	out := NormalizeForInpaint(src)
	assert.Equal(t, image.Rect(0, 0, 2, 1), out.Bounds())
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, out.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{A: 255}, out.RGBAAt(1, 0))
}

func TestExportForInpaint(t *testing.T) {
	l := New()
	require.NoError(t, l.Initialize(10, 10))
	rect, cov := disc(5, 5, 2)
	l.Blend(rect, cov, rect.Dx(), color.RGBA{R: 255, G: 51, B: 51, A: 255}, 1)

	out, err := l.ExportForInpaint(10, 10)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, out.RGBAAt(5, 5))
	assert.Equal(t, color.RGBA{A: 255}, out.RGBAAt(0, 0))
}

func TestSnapshotDataURL(t *testing.T) {
	l := New()
	require.NoError(t, l.Initialize(4, 3))
	snap, err := l.Snapshot()
	require.NoError(t, err)

	back, err := SnapshotFromDataURL(snap.DataURL())
	require.NoError(t, err)
	assert.Equal(t, snap, back)

	_, err = SnapshotFromDataURL("data:image/jpeg;base64,AAAA")
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
}
