package background

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eimage "magic-eraser/internal/image"
)

var (
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 200, A: 255}
)

// halfCutout keeps the left half of the image as subject.
type halfCutout struct {
	err error
}

func (h halfCutout) RemoveBackground(_ context.Context, src *eimage.Asset) (*eimage.Asset, error) {
	if h.err != nil {
		return nil, h.err
	}
	w, ht := src.Width(), src.Height()
	img := image.NewRGBA(image.Rect(0, 0, w, ht))
	draw.Draw(img, image.Rect(0, 0, w/2, ht), &image.Uniform{C: red}, image.Point{}, draw.Src)
	return eimage.FromImage("cutout.png", img)
}

func solidAsset(t *testing.T, w, h int, c color.RGBA) *eimage.Asset {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Rect, &image.Uniform{C: c}, image.Point{}, draw.Src)
	a, err := eimage.FromImage("photo.png", img)
	require.NoError(t, err)
	return a
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestBlurRadius(t *testing.T) {
	tests := []struct {
		intensity float64
		want      float64
	}{
		{0, 0},
		{DefaultBlurIntensity, 4},
		{50, 10},
		{100, 20},
		{150, 20},
		{-5, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, BlurRadius(tt.intensity), 1e-9, "intensity %v", tt.intensity)
	}
}

func TestRemove(t *testing.T) {
	e := New(halfCutout{})
	out, err := e.Remove(context.Background(), solidAsset(t, 20, 10, green))
	require.NoError(t, err)

	assert.Equal(t, red, rgbaAt(out.Image, 2, 5))
	assert.Zero(t, rgbaAt(out.Image, 18, 5).A)
}

func TestReplaceWithColor(t *testing.T) {
	e := New(halfCutout{})
	out, err := e.Replace(context.Background(), solidAsset(t, 20, 10, green), Replacement{Color: "#0000ff"})
	require.NoError(t, err)

	assert.Equal(t, red, rgbaAt(out.Image, 2, 5))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, rgbaAt(out.Image, 18, 5))
}

func TestReplaceWithImage(t *testing.T) {
	bg := image.NewRGBA(image.Rect(0, 0, 5, 5))
	draw.Draw(bg, bg.Rect, &image.Uniform{C: color.RGBA{R: 10, G: 20, B: 30, A: 255}}, image.Point{}, draw.Src)

	out, err := ApplyReplacement(mustCutout(t, 20, 10), Replacement{Background: bg, Blend: eimage.BlendMultiply})
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 20, 10), out.Bounds())
	assert.Equal(t, color.RGBA{R: 10, A: 255}, out.RGBAAt(2, 5))
	assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 255}, out.RGBAAt(18, 5))
}

func TestReplacementNeedsBackground(t *testing.T) {
	_, err := ApplyReplacement(mustCutout(t, 4, 4), Replacement{})
	assert.Error(t, err)

	_, err = ApplyReplacement(mustCutout(t, 4, 4), Replacement{Color: "blue"})
	assert.Error(t, err)
}

func TestBlurKeepsSubjectSharp(t *testing.T) {
	e := New(halfCutout{})
	out, err := e.Blur(context.Background(), solidAsset(t, 40, 20, green), 50)
	require.NoError(t, err)

	assert.Equal(t, red, rgbaAt(out.Image, 5, 10))
	// A uniform background is unchanged by blurring.
	bg := rgbaAt(out.Image, 35, 10)
	assert.InDelta(t, 200, int(bg.G), 1)
	assert.Equal(t, uint8(255), bg.A)
}

func TestGaussianBlurSmallRadiusCopies(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 3))
	src.SetRGBA(1, 1, red)

	out := GaussianBlur(src, 0.1)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, out.NRGBAAt(1, 1))
	assert.Zero(t, out.NRGBAAt(0, 0).A)
}

func TestGaussianBlurSpreads(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 21, 21))
	draw.Draw(src, src.Rect, &image.Uniform{C: color.RGBA{A: 255}}, image.Point{}, draw.Src)
	src.SetRGBA(10, 10, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	out := GaussianBlur(src, 2)
	center := out.NRGBAAt(10, 10).R
	near := out.NRGBAAt(11, 10).R
	assert.Less(t, center, uint8(255))
	assert.Greater(t, near, uint8(0))
	assert.Zero(t, out.NRGBAAt(0, 0).R)
}

func TestRemoverErrorPropagates(t *testing.T) {
	boom := errors.New("server down")
	_, err := New(halfCutout{err: boom}).Blur(context.Background(), solidAsset(t, 4, 4, green), 20)
	assert.ErrorIs(t, err, boom)
}

func mustCutout(t *testing.T, w, h int) image.Image {
	t.Helper()
	a, err := halfCutout{}.RemoveBackground(context.Background(), solidAsset(t, w, h, green))
	require.NoError(t, err)
	return a.Image
}
