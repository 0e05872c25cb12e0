// Package canvas provides drawing primitives for the editor canvas.
package canvas

import (
	"image"
	"image/color"
	"math"
)

// digitPatterns contains 3x5 pixel patterns for digits 0-9.
// Each digit is represented as 5 rows of 3 bits.
var digitPatterns = [10][5]uint8{
	{0b111, 0b101, 0b101, 0b101, 0b111}, // 0
	{0b010, 0b110, 0b010, 0b010, 0b111}, // 1
	{0b111, 0b001, 0b111, 0b100, 0b111}, // 2
	{0b111, 0b001, 0b111, 0b001, 0b111}, // 3
	{0b101, 0b101, 0b111, 0b001, 0b001}, // 4
	{0b111, 0b100, 0b111, 0b001, 0b111}, // 5
	{0b111, 0b100, 0b111, 0b101, 0b111}, // 6
	{0b111, 0b001, 0b001, 0b001, 0b001}, // 7
	{0b111, 0b101, 0b111, 0b101, 0b111}, // 8
	{0b111, 0b101, 0b111, 0b001, 0b111}, // 9
}

// symbolPatterns covers the non-digit characters used by canvas badges.
var symbolPatterns = map[rune][5]uint8{
	'%': {0b101, 0b001, 0b010, 0b100, 0b101},
	'.': {0b000, 0b000, 0b000, 0b000, 0b010},
	'-': {0b000, 0b000, 0b111, 0b000, 0b000},
	' ': {0b000, 0b000, 0b000, 0b000, 0b000},
}

// charPattern returns the 3x5 pixel pattern for a character.
// Returns a zero pattern for unsupported characters.
func charPattern(ch rune) [5]uint8 {
	if ch >= '0' && ch <= '9' {
		return digitPatterns[ch-'0']
	}
	if pattern, ok := symbolPatterns[ch]; ok {
		return pattern
	}
	return [5]uint8{}
}

// textSize returns the pixel size of label drawn at the given scale.
func textSize(label string, scale int) (w, h int) {
	n := len([]rune(label))
	if n == 0 {
		return 0, 0
	}
	return n*3*scale + (n-1)*scale, 5 * scale
}

// drawText draws label with its top-left corner at (x, y). Each font
// pixel becomes a scale x scale block.
func drawText(output *image.RGBA, label string, x, y int, col color.RGBA, scale int) {
	if scale < 1 {
		scale = 1
	}
	bounds := output.Bounds()
	i := 0
	for _, ch := range label {
		pattern := charPattern(ch)
		charX := x + i*(4*scale)
		i++
		for row := 0; row < 5; row++ {
			for c := 0; c < 3; c++ {
				if pattern[row]&(1<<(2-c)) == 0 {
					continue
				}
				for dy := 0; dy < scale; dy++ {
					for dx := 0; dx < scale; dx++ {
						px := charX + c*scale + dx
						py := y + row*scale + dy
						if image.Pt(px, py).In(bounds) {
							output.SetRGBA(px, py, col)
						}
					}
				}
			}
		}
	}
}

// drawRing draws a circle outline of the given thickness centered at
// (cx, cy).
func drawRing(output *image.RGBA, cx, cy, r, thickness float64, col color.RGBA) {
	if r <= 0 {
		return
	}
	bounds := output.Bounds()
	outer := r + thickness/2
	inner := math.Max(r-thickness/2, 0)

	minX := int(math.Floor(cx - outer))
	maxX := int(math.Ceil(cx + outer))
	minY := int(math.Floor(cy - outer))
	maxY := int(math.Ceil(cy + outer))

	outer2 := outer * outer
	inner2 := inner * inner
	for y := minY; y <= maxY; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := minX; x <= maxX; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			d2 := dx*dx + dy*dy
			if d2 <= outer2 && d2 >= inner2 {
				output.SetRGBA(x, y, col)
			}
		}
	}
}

// fillRect blends col over r using its alpha.
func fillRect(output *image.RGBA, r image.Rectangle, col color.RGBA) {
	r = r.Intersect(output.Bounds())
	a := uint32(col.A)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := output.PixOffset(x, y)
			p := output.Pix[i : i+4 : i+4]
			p[0] = uint8((uint32(col.R)*a + uint32(p[0])*(255-a)) / 255)
			p[1] = uint8((uint32(col.G)*a + uint32(p[1])*(255-a)) / 255)
			p[2] = uint8((uint32(col.B)*a + uint32(p[2])*(255-a)) / 255)
			p[3] = uint8(a + uint32(p[3])*(255-a)/255)
		}
	}
}

// drawCheckerboard fills output with the transparency checkerboard shown
// behind images.
func drawCheckerboard(output *image.RGBA, cell int, light, dark color.RGBA) {
	if cell < 1 {
		cell = 1
	}
	b := output.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if ((x-b.Min.X)/cell+(y-b.Min.Y)/cell)%2 == 0 {
				output.SetRGBA(x, y, light)
			} else {
				output.SetRGBA(x, y, dark)
			}
		}
	}
}
