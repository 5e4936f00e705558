// Package device drives a mobile device through an automation server.
package device

import (
	"context"
	"errors"
	"time"
)

// Session is an open automation session on one device.
type Session interface {
	// PageSource returns the current UI hierarchy document.
	PageSource() (string, error)

	// Screenshot returns the current screen as PNG bytes.
	Screenshot() ([]byte, error)

	Tap(x, y int) error
	Swipe(startX, startY, endX, endY int, duration time.Duration) error

	// FindElements returns the elements matching an XPath locator in
	// document order. No match is not an error.
	FindElements(xpath string) ([]Element, error)

	HideKeyboard() error

	Pinger

	// Quit ends the session. It is safe to call more than once.
	Quit() error
}

// Pinger is the read-only view of a session used by KeepAlive.
type Pinger interface {
	Ping() error
}

// Element is a located UI element.
type Element interface {
	Click() error
	SendKeys(text string) error
}

// Capabilities are the desired capabilities sent when opening a session.
type Capabilities map[string]interface{}

// DefaultCapabilities targets an Android device through UiAutomator2.
func DefaultCapabilities() Capabilities {
	return Capabilities{
		"platformName":             "Android",
		"appium:automationName":    "uiautomator2",
		"appium:language":          "en",
		"appium:locale":            "US",
		"appium:newCommandTimeout": 60,
	}
}

// Options configures a new session.
type Options struct {
	URL          string
	Capabilities Capabilities
	ImplicitWait time.Duration
}

// Factory opens device sessions.
type Factory interface {
	NewSession(ctx context.Context, opts Options) (Session, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(ctx context.Context, opts Options) (Session, error)

func (f FactoryFunc) NewSession(ctx context.Context, opts Options) (Session, error) {
	return f(ctx, opts)
}

// ErrClosed is returned by calls on a session after Quit.
var ErrClosed = errors.New("device session closed")
