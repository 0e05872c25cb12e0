package background

import (
	"image"
	"image/draw"

	"gocv.io/x/gocv"
)

const (
	// DefaultBlurIntensity is the blur strength in percent.
	DefaultBlurIntensity = 20
	// MaxBlurRadius is the blur radius in pixels at 100% intensity.
	MaxBlurRadius = 20
)

// BlurRadius converts an intensity percentage to a blur radius in pixels.
func BlurRadius(intensity float64) float64 {
	intensity = max(0, min(intensity, 100))
	return intensity / 100 * MaxBlurRadius
}

// GaussianBlur blurs img with a standard deviation of radius pixels.
func GaussianBlur(img image.Image, radius float64) *image.NRGBA {
	b := img.Bounds()
	src := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(src, src.Rect, img, b.Min, draw.Src)
	if radius < 0.5 || src.Rect.Empty() {
		return src
	}

	mat := rgbaToMat(src)
	defer mat.Close()
	blurred := gocv.NewMat()
	defer blurred.Close()

	// A zero kernel size lets OpenCV derive it from sigma.
	gocv.GaussianBlur(mat, &blurred, image.Point{}, radius, radius, gocv.BorderReflect101)
	return matToNRGBA(blurred)
}
