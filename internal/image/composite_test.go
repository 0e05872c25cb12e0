package image

import (
	"image"
	"image/color"
	"testing"

	"magic-eraser/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompositeNormal(t *testing.T) {
	dst := solid(2, 1, color.RGBA{B: 255, A: 255})
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})

	Composite(dst, src, BlendNormal, 1)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, dst.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, dst.RGBAAt(1, 0), "transparent source keeps background")
}

func TestCompositeMultiply(t *testing.T) {
	dst := solid(1, 1, color.RGBA{R: 255, G: 128, B: 0, A: 255})
	src := solid(1, 1, color.RGBA{R: 128, G: 255, B: 255, A: 255})
	Composite(dst, src, BlendMultiply, 1)
	got := dst.RGBAAt(0, 0)
	assert.InDelta(t, 128, int(got.R), 1)
	assert.InDelta(t, 128, int(got.G), 1)
	assert.Equal(t, uint8(0), got.B)
}

func TestCompositeOpacity(t *testing.T) {
	dst := solid(1, 1, color.RGBA{A: 255})
	src := solid(1, 1, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	Composite(dst, src, BlendNormal, 0.5)
	assert.InDelta(t, 128, int(dst.RGBAAt(0, 0).R), 1)
}

func TestParseBlendMode(t *testing.T) {
	m, err := ParseBlendMode("overlay")
	require.NoError(t, err)
	assert.Equal(t, BlendOverlay, m)
	_, err = ParseBlendMode("dodge")
	assert.Error(t, err)
}

func TestCoverRect(t *testing.T) {
	// Wider source: fit height, crop sides.
	r := CoverRect(geometry.NewSize(200, 100), geometry.NewSize(100, 100))
	assert.Equal(t, geometry.NewRect(-50, 0, 200, 100), r)

	// Taller source: fit width, crop top and bottom.
	r = CoverRect(geometry.NewSize(100, 400), geometry.NewSize(100, 100))
	assert.Equal(t, geometry.NewRect(0, -150, 100, 400), r)
}

func TestCoverAndThumbnail(t *testing.T) {
	src := solid(40, 20, color.RGBA{G: 200, A: 255})
	out := Cover(src, 10, 10)
	assert.Equal(t, image.Rect(0, 0, 10, 10), out.Bounds())
	assert.Equal(t, uint8(255), out.RGBAAt(5, 5).A)

	th := Thumbnail(src, 8)
	assert.Equal(t, image.Rect(0, 0, 8, 4), th.Bounds())
}
