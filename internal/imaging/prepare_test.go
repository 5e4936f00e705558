package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"strings"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestFitSize_NeverExceedsBounds(t *testing.T) {
	sizes := [][2]int{
		{1080, 2400}, {2400, 1080}, {1000, 1000}, {4000, 100}, {100, 4000},
		{300, 200}, {1, 1}, {5000, 3}, {3, 5000}, {2048, 768},
	}
	for _, s := range sizes {
		w, h := FitSize(s[0], s[1], 2048, 768)
		long, short := w, h
		if h > w {
			long, short = h, w
		}
		if long > 2048 || short > 768 {
			t.Errorf("FitSize(%d,%d) = %dx%d exceeds bounds", s[0], s[1], w, h)
		}
		if w > s[0] || h > s[1] {
			t.Errorf("FitSize(%d,%d) = %dx%d upscaled", s[0], s[1], w, h)
		}
		if w < 1 || h < 1 {
			t.Errorf("FitSize(%d,%d) = %dx%d collapsed", s[0], s[1], w, h)
		}
	}
}

func TestFitSize_PreservesAspect(t *testing.T) {
	sizes := [][2]int{{1080, 2400}, {2400, 1080}, {1000, 1000}, {1920, 1080}}
	for _, s := range sizes {
		w, h := FitSize(s[0], s[1], 2048, 768)
		want := float64(s[0]) / float64(s[1])
		got := float64(w) / float64(h)
		if math.Abs(got-want)/want > 0.01 {
			t.Errorf("FitSize(%d,%d) = %dx%d, ratio %.3f want %.3f", s[0], s[1], w, h, got, want)
		}
	}
}

func TestFitSize_Portrait(t *testing.T) {
	w, h := FitSize(1080, 2400, 2048, 768)
	if w != 768 {
		t.Errorf("expected width 768, got %d", w)
	}
	if h != 1706 {
		t.Errorf("expected height 1706, got %d", h)
	}
}

func TestFitSize_SmallUnchanged(t *testing.T) {
	w, h := FitSize(300, 200, 2048, 768)
	if w != 300 || h != 200 {
		t.Errorf("expected 300x200, got %dx%d", w, h)
	}
}

func TestFitSize_Degenerate(t *testing.T) {
	w, h := FitSize(0, 10, 2048, 768)
	if w != 0 || h != 0 {
		t.Errorf("expected 0x0 for empty input, got %dx%d", w, h)
	}
}

func TestFlatten_TransparentBecomesWhite(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.NRGBA{R: 255, A: 255})
	out := Flatten(img)
	if got := out.RGBAAt(0, 0); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("transparent pixel = %v, want white", got)
	}
	if got := out.RGBAAt(1, 1); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("opaque pixel = %v, want red", got)
	}
}

func TestPrepare_ResizesAndEncodes(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1080, 2400))
	raw := encodePNG(t, src)

	p, err := Prepare(raw, Options{})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if p.Width != 768 || p.Height != 1706 {
		t.Errorf("unexpected size %dx%d", p.Width, p.Height)
	}
	decoded, err := base64.StdEncoding.DecodeString(p.Base64)
	if err != nil {
		t.Fatalf("base64: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(decoded))
	if err != nil {
		t.Fatalf("payload is not JPEG: %v", err)
	}
	if cfg.Width != p.Width || cfg.Height != p.Height {
		t.Errorf("JPEG is %dx%d, want %dx%d", cfg.Width, cfg.Height, p.Width, p.Height)
	}
	if !strings.HasPrefix(p.DataURL(), "data:image/jpeg;base64,") {
		t.Errorf("unexpected data URL prefix: %q", p.DataURL()[:30])
	}
}

func TestPrepare_WithGrid(t *testing.T) {
	raw := encodePNG(t, image.NewRGBA(image.Rect(0, 0, 200, 100)))
	p, err := Prepare(raw, Options{GridSize: 50})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if p.Width != 200+LabelSpace || p.Height != 100+LabelSpace {
		t.Errorf("unexpected size %dx%d", p.Width, p.Height)
	}
}

func TestPrepare_InvalidInput(t *testing.T) {
	if _, err := Prepare([]byte("not an image"), Options{}); err == nil {
		t.Error("expected decode error")
	}
}
