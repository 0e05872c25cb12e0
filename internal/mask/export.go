package mask

import (
	"image"
	"image/draw"

	"magic-eraser/pkg/colorutil"
)

// NormalizeForInpaint converts a painted mask into the inpainting wire
// format: an opaque black image of the same size where every painted pixel
// becomes white at that pixel's alpha. Paint color is discarded.
func NormalizeForInpaint(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, image.NewUniform(colorutil.Black), image.Point{}, draw.Src)

	rgba, fast := src.(*image.RGBA)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			var a uint8
			if fast {
				a = rgba.Pix[rgba.PixOffset(b.Min.X+x, b.Min.Y+y)+3]
			} else {
				_, _, _, a32 := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
				a = uint8(a32 >> 8)
			}
			if a == 0 {
				continue
			}
			i := dst.PixOffset(x, y)
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2] = a, a, a
		}
	}
	return dst
}

// ExportForInpaint scales the mask to width×height and normalizes it.
func (l *Layer) ExportForInpaint(width, height int) (*image.RGBA, error) {
	scaled, err := l.ComposeForExport(width, height)
	if err != nil {
		return nil, err
	}
	return NormalizeForInpaint(scaled), nil
}
