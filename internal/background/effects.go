// Package background implements background removal, blur and replacement
// on top of an IOPaint background remover.
package background

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/sirupsen/logrus"

	eimage "magic-eraser/internal/image"
	"magic-eraser/internal/inpaint"
	"magic-eraser/pkg/colorutil"
	"magic-eraser/pkg/geometry"
)

// Replacement describes what to put behind the subject.
type Replacement struct {
	Color      string      // hex color, used when Background is nil
	Background image.Image // fitted with object-cover semantics
	Blend      eimage.BlendMode
}

// Effects applies background operations to images.
type Effects struct {
	remover inpaint.BackgroundRemover
	log     *logrus.Entry
}

// New creates Effects backed by remover.
func New(remover inpaint.BackgroundRemover) *Effects {
	return &Effects{
		remover: remover,
		log:     logrus.WithField("component", "background"),
	}
}

// Remove returns the subject of src on a transparent background.
func (e *Effects) Remove(ctx context.Context, src *eimage.Asset) (*eimage.Asset, error) {
	cutout, err := e.remover.RemoveBackground(ctx, src)
	if err != nil {
		return nil, err
	}
	return fitTo(cutout, src)
}

// Blur keeps the subject sharp over a blurred copy of src.
func (e *Effects) Blur(ctx context.Context, src *eimage.Asset, intensity float64) (*eimage.Asset, error) {
	cutout, err := e.Remove(ctx, src)
	if err != nil {
		return nil, err
	}
	out := ApplyBlur(src.Image, cutout.Image, intensity)
	e.log.WithFields(logrus.Fields{"image": src.Name, "intensity": intensity}).Debug("Background blurred")
	return eimage.FromImage(src.Name, out)
}

// Replace puts the subject of src in front of a new background.
func (e *Effects) Replace(ctx context.Context, src *eimage.Asset, r Replacement) (*eimage.Asset, error) {
	cutout, err := e.Remove(ctx, src)
	if err != nil {
		return nil, err
	}
	out, err := ApplyReplacement(cutout.Image, r)
	if err != nil {
		return nil, err
	}
	e.log.WithFields(logrus.Fields{"image": src.Name, "blend": r.Blend}).Debug("Background replaced")
	return eimage.FromImage(src.Name, out)
}

// ApplyBlur composites cutout over original blurred by intensity percent.
// It needs no server and is used to adjust the blur interactively.
func ApplyBlur(original, cutout image.Image, intensity float64) *image.RGBA {
	blurred := GaussianBlur(original, BlurRadius(intensity))
	dst := image.NewRGBA(blurred.Rect)
	draw.Draw(dst, dst.Rect, blurred, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Rect, cutout, cutout.Bounds().Min, draw.Over)
	return dst
}

// ApplyReplacement composites cutout over a color or image background.
func ApplyReplacement(cutout image.Image, r Replacement) (*image.RGBA, error) {
	b := cutout.Bounds()
	var dst *image.RGBA
	switch {
	case r.Background != nil:
		dst = eimage.Cover(r.Background, b.Dx(), b.Dy())
	case r.Color != "":
		c, err := colorutil.ParseHex(r.Color)
		if err != nil {
			return nil, fmt.Errorf("invalid background color: %w", err)
		}
		dst = solid(b.Dx(), b.Dy(), c)
	default:
		return nil, errors.New("replacement needs a color or a background image")
	}
	eimage.Composite(dst, cutout, r.Blend, 1)
	return dst, nil
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Rect, &image.Uniform{C: c}, image.Point{}, draw.Src)
	return dst
}

// fitTo resizes a cutout that came back at a different size than src.
func fitTo(cutout, src *eimage.Asset) (*eimage.Asset, error) {
	if cutout.Size() == src.Size() {
		return cutout, nil
	}
	size := geometry.SizeOf(src.Image.Bounds())
	return eimage.FromImage(cutout.Name, eimage.Resize(cutout.Image, int(size.Width), int(size.Height)))
}
