package mask

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"
)

// Snapshot is an opaque, immutable copy of a mask, stored PNG-encoded.
type Snapshot struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	PNG    []byte `json:"png"`
}

// IsZero reports whether the snapshot holds no data.
func (s Snapshot) IsZero() bool {
	return len(s.PNG) == 0
}

// DataURL returns the snapshot as a data:image/png;base64 URL.
func (s Snapshot) DataURL() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(s.PNG)
}

// SnapshotFromDataURL parses a PNG data URL produced by DataURL.
func SnapshotFromDataURL(url string) (Snapshot, error) {
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(url, prefix) {
		return Snapshot{}, fmt.Errorf("%w: not a png data url", ErrCorruptSnapshot)
	}
	data, err := base64.StdEncoding.DecodeString(url[len(prefix):])
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return Snapshot{Width: cfg.Width, Height: cfg.Height, PNG: data}, nil
}

var snapshotEncoder = png.Encoder{CompressionLevel: png.BestSpeed}

// Snapshot captures the current pixels.
func (l *Layer) Snapshot() (Snapshot, error) {
	if l.img == nil {
		return Snapshot{}, ErrNotInitialized
	}
	var buf bytes.Buffer
	if err := snapshotEncoder.Encode(&buf, l.img); err != nil {
		return Snapshot{}, fmt.Errorf("failed to encode mask snapshot: %w", err)
	}
	b := l.img.Bounds()
	return Snapshot{Width: b.Dx(), Height: b.Dy(), PNG: buf.Bytes()}, nil
}

// Restore replaces the layer contents with a snapshot. A snapshot of a
// different size is scaled to the layer. On a decode failure the layer is
// left untouched and the error wraps ErrCorruptSnapshot. An uninitialized
// layer adopts the snapshot's size.
func (l *Layer) Restore(s Snapshot) error {
	decoded, err := png.Decode(bytes.NewReader(s.PNG))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	width, height := decoded.Bounds().Dx(), decoded.Bounds().Dy()
	if l.img != nil {
		width, height = l.img.Rect.Dx(), l.img.Rect.Dy()
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: empty image", ErrCorruptSnapshot)
	}
	l.img = scaleRGBA(decoded, width, height)
	return nil
}

// Decode returns the snapshot pixels as a new image.
func (s Snapshot) Decode() (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(s.PNG))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return img, nil
}
