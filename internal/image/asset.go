// Package image provides source image loading, encoding and compositing.
package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"magic-eraser/pkg/geometry"

	"github.com/oklog/ulid/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Asset is a decoded source image. It is immutable once created.
type Asset struct {
	ID     string      // ULID assigned at load
	Name   string      // File name or caller label
	Format string      // Decoder name ("png", "jpeg", ...)
	Data   []byte      // Encoded bytes as loaded
	Image  image.Image // Decoded pixels
}

// NewID returns a fresh sortable identifier for images and projects.
func NewID() string {
	return ulid.Make().String()
}

// Decode decodes encoded image bytes into an Asset.
func Decode(name string, data []byte) (*Asset, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", name, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("image %s has no pixels", name)
	}
	return &Asset{
		ID:     NewID(),
		Name:   name,
		Format: format,
		Data:   data,
		Image:  img,
	}, nil
}

// Load reads and decodes an image file.
func Load(path string) (*Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return Decode(filepath.Base(path), data)
}

// FromImage wraps already-decoded pixels, such as an inpainting result.
func FromImage(name string, img image.Image) (*Asset, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return nil, err
	}
	return &Asset{ID: NewID(), Name: name, Format: "png", Data: data, Image: img}, nil
}

// Width returns the image width in pixels.
func (a *Asset) Width() int {
	if a == nil || a.Image == nil {
		return 0
	}
	return a.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (a *Asset) Height() int {
	if a == nil || a.Image == nil {
		return 0
	}
	return a.Image.Bounds().Dy()
}

// Size returns the image dimensions.
func (a *Asset) Size() geometry.Size {
	return geometry.NewSize(float64(a.Width()), float64(a.Height()))
}

// MIMEType returns the media type of the encoded data.
func (a *Asset) MIMEType() string {
	return MIMEType(a.Format)
}

// DataURL returns the encoded bytes as a base64 data URL.
func (a *Asset) DataURL() string {
	return DataURL(a.MIMEType(), a.Data)
}

// PixelAt returns the color at the specified pixel coordinates.
func (a *Asset) PixelAt(x, y int) color.Color {
	if a.Image == nil {
		return color.Black
	}
	p := image.Point{X: x, Y: y}.Add(a.Image.Bounds().Min)
	if !p.In(a.Image.Bounds()) {
		return color.Black
	}
	return a.Image.At(p.X, p.Y)
}

// MIMEType maps a decoder name to a media type.
func MIMEType(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "bmp":
		return "image/bmp"
	case "tiff":
		return "image/tiff"
	default:
		return "image/png"
	}
}

// DataURL formats bytes as a base64 data URL.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ToRGBA returns img as a zero-origin *image.RGBA, copying unless it
// already is one.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}

// SupportedFormats returns the list of supported image extensions.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".webp", ".bmp", ".gif", ".tiff", ".tif"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
