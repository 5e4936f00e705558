// Package imaging turns raw device screenshots into the compact JPEG payload
// sent alongside each decision request.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png" // register PNG decoder

	"golang.org/x/image/draw"
)

// Default bounds applied to prepared screenshots.
const (
	DefaultMaxLong  = 2048
	DefaultMaxShort = 768
	DefaultQuality  = 85
)

// Options controls Prepare.
type Options struct {
	MaxLong  int // Bound for the longer edge (0 = DefaultMaxLong)
	MaxShort int // Bound for the shorter edge (0 = DefaultMaxShort)
	Quality  int // JPEG quality 1-100 (0 = DefaultQuality)
	GridSize int // Grid cell size in pixels; 0 disables the overlay
}

func (o Options) withDefaults() Options {
	if o.MaxLong <= 0 {
		o.MaxLong = DefaultMaxLong
	}
	if o.MaxShort <= 0 {
		o.MaxShort = DefaultMaxShort
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = DefaultQuality
	}
	return o
}

// Prepared is a resized, flattened JPEG screenshot.
type Prepared struct {
	JPEG   []byte
	Base64 string
	Width  int
	Height int
}

// DataURL returns the image as an inline data URL.
func (p *Prepared) DataURL() string {
	return "data:image/jpeg;base64," + p.Base64
}

// FitSize computes the output dimensions for an image of w×h. Landscape images
// bound the width by maxLong, derive the height, clamp it to maxShort and
// re-derive the width; portrait and square images do the same with the axes
// swapped. Images are never upscaled and never collapse below 1px.
func FitSize(w, h, maxLong, maxShort int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	var nw, nh int
	if w > h {
		nw = minInt(w, maxLong)
		nh = minInt(nw*h/w, maxShort)
		nw = nh * w / h
	} else {
		nh = minInt(h, maxLong)
		nw = minInt(nh*w/h, maxShort)
		nh = nw * h / w
	}
	return maxInt(nw, 1), maxInt(nh, 1)
}

// Flatten composites img onto an opaque white background.
func Flatten(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Over)
	return out
}

// Prepare decodes a PNG or JPEG screenshot, optionally overlays a labelled
// grid, flattens transparency onto white, resizes it within the configured
// bounds and encodes it as base64 JPEG.
func Prepare(raw []byte, opts Options) (*Prepared, error) {
	opts = opts.withDefaults()
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	if opts.GridSize > 0 {
		img = DrawGrid(img, opts.GridSize)
	}
	flat := Flatten(img)

	w, h := FitSize(flat.Bounds().Dx(), flat.Bounds().Dy(), opts.MaxLong, opts.MaxShort)
	var out image.Image = flat
	if w != flat.Bounds().Dx() || h != flat.Bounds().Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), flat, flat.Bounds(), draw.Src, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return &Prepared{
		JPEG:   buf.Bytes(),
		Base64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:  w,
		Height: h,
	}, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
