package image

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestDecodePNG(t *testing.T) {
	data, err := EncodePNG(solid(8, 6, color.RGBA{R: 10, G: 20, B: 30, A: 255}))
	require.NoError(t, err)

	a, err := Decode("photo.png", data)
	require.NoError(t, err)
	assert.Equal(t, 8, a.Width())
	assert.Equal(t, 6, a.Height())
	assert.Equal(t, "png", a.Format)
	assert.Len(t, a.ID, 26)
	assert.True(t, strings.HasPrefix(a.DataURL(), "data:image/png;base64,"))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode("junk.png", []byte("not an image"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	data, err := EncodePNG(solid(3, 3, color.RGBA{A: 255}))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "x.png")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	a, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "x.png", a.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestIDsAreUnique(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
}

func TestToRGBA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(2, 2, 4, 4))
	src.SetNRGBA(2, 2, color.NRGBA{R: 255, A: 255})
	out := ToRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 2, 2), out.Bounds())
	assert.Equal(t, color.RGBA{R: 255, A: 255}, out.RGBAAt(0, 0))

	same := solid(1, 1, color.RGBA{A: 255})
	assert.Same(t, same, ToRGBA(same))
}

func TestIsSupportedFormat(t *testing.T) {
	assert.True(t, IsSupportedFormat("a/b/C.WEBP"))
	assert.True(t, IsSupportedFormat("scan.tif"))
	assert.False(t, IsSupportedFormat("notes.txt"))
}

func TestPixelAtOutOfBounds(t *testing.T) {
	a := &Asset{Image: solid(2, 2, color.RGBA{G: 255, A: 255})}
	assert.Equal(t, color.Color(color.Black), a.PixelAt(5, 5))
	r, g, _, _ := a.PixelAt(1, 1).RGBA()
	assert.Equal(t, uint32(0), r)
	assert.Equal(t, uint32(0xffff), g)
}
