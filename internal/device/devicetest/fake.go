// Package devicetest provides an in-memory device session for tests.
package devicetest

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"time"

	"github.com/beevik/etree"

	"github.com/mj1618/ai-testing-tool/internal/device"
	"github.com/mj1618/ai-testing-tool/internal/model"
)

// Point is a recorded tap.
type Point struct{ X, Y int }

// SwipeCall is a recorded swipe.
type SwipeCall struct {
	StartX, StartY, EndX, EndY int
	Duration                   time.Duration
}

// Fake is a device.Session over a fixed hierarchy document. Taps and clicks
// move focus to the touched node; SendKeys sets the node's text attribute.
// XPath locators are evaluated with etree's path subset.
type Fake struct {
	mu  sync.Mutex
	doc *etree.Document

	ScreenshotData []byte

	// Injected failures.
	PageSourceErr error
	ScreenshotErr error
	TapErr        error
	PingErr       error

	// Recorded calls.
	Taps          []Point
	Swipes        []SwipeCall
	Clicks        []string
	Keys          []string
	KeyboardHides int
	Pings         int
	Quits         int
}

// NewFake returns a session serving source and a blank 100×200 screenshot.
func NewFake(source string) (*Fake, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(source); err != nil {
		return nil, err
	}
	return &Fake{doc: doc, ScreenshotData: PNG(100, 200)}, nil
}

// MustFake is NewFake that panics on a malformed document.
func MustFake(source string) *Fake {
	f, err := NewFake(source)
	if err != nil {
		panic(err)
	}
	return f
}

// PNG returns an opaque gray PNG of the given size.
func PNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.Gray{Y: 200})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// Interactions counts every call that would change device state.
func (f *Fake) Interactions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Taps) + len(f.Swipes) + len(f.Clicks) + len(f.Keys) + f.KeyboardHides
}

// Factory returns a device.Factory that always hands out f.
func (f *Fake) Factory() device.Factory {
	return device.FactoryFunc(func(ctx context.Context, opts device.Options) (device.Session, error) {
		return f, nil
	})
}

func (f *Fake) PageSource() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PageSourceErr != nil {
		return "", f.PageSourceErr
	}
	return f.doc.WriteToString()
}

func (f *Fake) Screenshot() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ScreenshotData, f.ScreenshotErr
}

func (f *Fake) Tap(x, y int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Taps = append(f.Taps, Point{x, y})
	if f.TapErr != nil {
		return f.TapErr
	}
	if el := f.hit(f.doc.Root(), x, y); el != nil {
		f.focus(el)
	}
	return nil
}

// hit returns the deepest element whose bounds contain (x, y).
func (f *Fake) hit(el *etree.Element, x, y int) *etree.Element {
	if el == nil {
		return nil
	}
	for _, child := range el.ChildElements() {
		if found := f.hit(child, x, y); found != nil {
			return found
		}
	}
	b, err := model.ParseBounds(el.SelectAttrValue("bounds", ""))
	if err == nil && b.Contains(x, y) {
		return el
	}
	return nil
}

func (f *Fake) focus(target *etree.Element) {
	for _, el := range f.doc.FindElements("//*[@focused]") {
		el.CreateAttr("focused", "false")
	}
	target.CreateAttr("focused", "true")
}

func (f *Fake) Swipe(startX, startY, endX, endY int, duration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Swipes = append(f.Swipes, SwipeCall{startX, startY, endX, endY, duration})
	return nil
}

func (f *Fake) FindElements(xpath string) ([]device.Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path, err := etree.CompilePath(xpath)
	if err != nil {
		return nil, err
	}
	var out []device.Element
	for _, el := range f.doc.FindElementsPath(path) {
		out = append(out, &fakeElement{f: f, el: el})
	}
	return out, nil
}

func (f *Fake) HideKeyboard() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.KeyboardHides++
	return nil
}

func (f *Fake) Ping() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Pings++
	return f.PingErr
}

func (f *Fake) Quit() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Quits++
	return nil
}

type fakeElement struct {
	f  *Fake
	el *etree.Element
}

func (e *fakeElement) Click() error {
	e.f.mu.Lock()
	defer e.f.mu.Unlock()
	e.f.Clicks = append(e.f.Clicks, e.el.GetPath())
	e.f.focus(e.el)
	return nil
}

func (e *fakeElement) SendKeys(text string) error {
	e.f.mu.Lock()
	defer e.f.mu.Unlock()
	e.f.Keys = append(e.f.Keys, text)
	e.el.CreateAttr("text", text)
	return nil
}
