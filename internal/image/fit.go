package image

import (
	"image"
	"image/draw"

	"magic-eraser/pkg/geometry"

	xdraw "golang.org/x/image/draw"
)

// CoverRect returns where an image of size src must be drawn so that it
// covers dst completely, preserving aspect ratio and centering the overflow.
func CoverRect(src, dst geometry.Size) geometry.Rect {
	if src.IsEmpty() || dst.IsEmpty() {
		return geometry.Rect{Width: dst.Width, Height: dst.Height}
	}
	srcAspect := src.Width / src.Height
	dstAspect := dst.Width / dst.Height
	if srcAspect > dstAspect {
		w := dst.Height * srcAspect
		return geometry.NewRect((dst.Width-w)/2, 0, w, dst.Height)
	}
	h := dst.Width / srcAspect
	return geometry.NewRect(0, (dst.Height-h)/2, dst.Width, h)
}

// Cover scales img to fill a width×height canvas, cropping overflow.
func Cover(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	r := CoverRect(geometry.SizeOf(img.Bounds()), geometry.NewSize(float64(width), float64(height))).Bounds()
	xdraw.CatmullRom.Scale(dst, r, img, img.Bounds(), draw.Src, nil)
	return dst
}

// Thumbnail scales img down so its longer side is at most maxSide.
func Thumbnail(img image.Image, maxSide int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxSide || h > maxSide {
		if w >= h {
			h = max(1, h*maxSide/w)
			w = maxSide
		} else {
			w = max(1, w*maxSide/h)
			h = maxSide
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Rect, img, b, draw.Src, nil)
	return dst
}

// Resize scales img to exactly width×height.
func Resize(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Rect, img, img.Bounds(), draw.Src, nil)
	return dst
}
