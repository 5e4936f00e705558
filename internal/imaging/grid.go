package imaging

import (
	"image"
	"image/color"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// LabelSpace is the margin added above and left of the image for grid labels.
const LabelSpace = 30

var (
	gridLineColor = color.Gray{Y: 128}
	labelColor    = color.Black
	outlineColor  = color.White
)

// DrawGrid returns a copy of img on a white canvas enlarged by LabelSpace on
// the top and left, with a line every gridSize pixels and the cell index
// printed in the margin.
func DrawGrid(img image.Image, gridSize int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx()+LabelSpace, b.Dy()+LabelSpace
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(LabelSpace, LabelSpace, w, h), img, b.Min, draw.Over)
	if gridSize <= 0 {
		return out
	}

	for x := LabelSpace; x < w; x += gridSize {
		for y := LabelSpace; y < h; y++ {
			out.Set(x, y, gridLineColor)
		}
		drawTextWithOutline(out, strconv.Itoa((x-LabelSpace)/gridSize), x-5, 5+basicfont.Face7x13.Ascent)
	}
	for y := LabelSpace; y < h; y += gridSize {
		for x := LabelSpace; x < w; x++ {
			out.Set(x, y, gridLineColor)
		}
		drawTextWithOutline(out, strconv.Itoa((y-LabelSpace)/gridSize), 5, y-10+basicfont.Face7x13.Ascent)
	}
	return out
}

// drawTextWithOutline draws text with its baseline at (x, y).
func drawTextWithOutline(img *image.RGBA, text string, x, y int) {
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			drawText(img, text, x+dx, y+dy, outlineColor)
		}
	}
	drawText(img, text, x, y, labelColor)
}

func drawText(img *image.RGBA, text string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
