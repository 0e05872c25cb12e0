// Package canvas provides overlay types for the editor canvas.
package canvas

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"magic-eraser/pkg/colorutil"
)

var (
	busyShade  = color.RGBA{R: 0, G: 0, B: 0, A: 110}
	badgeShade = color.RGBA{R: 0, G: 0, B: 0, A: 150}
	checkLight = color.RGBA{R: 58, G: 58, B: 62, A: 255}
	checkDark  = color.RGBA{R: 44, G: 44, B: 48, A: 255}
)

// Overlay is the transient decoration drawn on top of the rendered image.
type Overlay struct {
	// Cursor is the pointer position in canvas widget coordinates.
	Cursor image.Point
	// ShowCursor draws the brush outline at Cursor.
	ShowCursor bool
	// CursorRadius is the on-screen brush radius.
	CursorRadius float64
	// Busy dims the canvas while a request is in flight.
	Busy bool
	// Scale is the view zoom, shown as a percentage badge when non-zero.
	Scale float64
}

// Draw renders the overlay onto output.
func (o Overlay) Draw(output *image.RGBA) {
	if o.ShowCursor && o.CursorRadius > 0 {
		cx, cy := float64(o.Cursor.X), float64(o.Cursor.Y)
		drawRing(output, cx, cy, o.CursorRadius+1, 1, colorutil.Black)
		drawRing(output, cx, cy, o.CursorRadius, 1, colorutil.White)
	}
	if o.Busy {
		fillRect(output, output.Bounds(), busyShade)
	}
	if o.Scale > 0 {
		o.drawZoomBadge(output)
	}
}

func (o Overlay) drawZoomBadge(output *image.RGBA) {
	const scale, pad = 2, 4
	label := fmt.Sprintf("%d%%", int(math.Round(o.Scale*100)))
	w, h := textSize(label, scale)
	b := output.Bounds()
	x := b.Max.X - w - 3*pad
	y := b.Max.Y - h - 3*pad
	fillRect(output, image.Rect(x-pad, y-pad, x+w+pad, y+h+pad), badgeShade)
	drawText(output, label, x, y, colorutil.White, scale)
}
