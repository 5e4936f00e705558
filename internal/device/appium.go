package device

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tebeka/selenium"
)

const defaultTapHold = 100 * time.Millisecond

// AppiumSession is a Session backed by an Appium server speaking W3C
// WebDriver. Calls are serialized so the keep-alive poller can share it.
type AppiumSession struct {
	mu     sync.Mutex
	wd     selenium.WebDriver
	closed bool
}

// AppiumFactory opens sessions against an Appium server.
type AppiumFactory struct{}

// NewSession connects to opts.URL with the given capabilities.
func (AppiumFactory) NewSession(ctx context.Context, opts Options) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	caps := selenium.Capabilities{}
	for k, v := range opts.Capabilities {
		caps[k] = v
	}
	wd, err := selenium.NewRemote(caps, opts.URL)
	if err != nil {
		return nil, fmt.Errorf("open appium session at %s: %w", opts.URL, err)
	}
	if opts.ImplicitWait > 0 {
		if err := wd.SetImplicitWaitTimeout(opts.ImplicitWait); err != nil {
			_ = wd.Quit()
			return nil, fmt.Errorf("set implicit wait: %w", err)
		}
	}
	return NewAppiumSession(wd), nil
}

// NewAppiumSession wraps an open WebDriver session.
func NewAppiumSession(wd selenium.WebDriver) *AppiumSession {
	return &AppiumSession{wd: wd}
}

func (s *AppiumSession) driver() (selenium.WebDriver, error) {
	if s.closed {
		return nil, ErrClosed
	}
	return s.wd, nil
}

func (s *AppiumSession) PageSource() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wd, err := s.driver()
	if err != nil {
		return "", err
	}
	src, err := wd.PageSource()
	if err != nil {
		return "", fmt.Errorf("page source: %w", err)
	}
	return src, nil
}

func (s *AppiumSession) Screenshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wd, err := s.driver()
	if err != nil {
		return nil, err
	}
	data, err := wd.Screenshot()
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return data, nil
}

// Tap presses and releases a finger at (x, y).
func (s *AppiumSession) Tap(x, y int) error {
	return s.perform("tap",
		selenium.PointerMoveAction(0, selenium.Point{X: x, Y: y}, selenium.FromViewport),
		selenium.PointerDownAction(selenium.LeftButton),
		selenium.PointerPauseAction(defaultTapHold),
		selenium.PointerUpAction(selenium.LeftButton),
	)
}

// Swipe drags a finger from start to end over duration.
func (s *AppiumSession) Swipe(startX, startY, endX, endY int, duration time.Duration) error {
	return s.perform("swipe",
		selenium.PointerMoveAction(0, selenium.Point{X: startX, Y: startY}, selenium.FromViewport),
		selenium.PointerDownAction(selenium.LeftButton),
		selenium.PointerMoveAction(duration, selenium.Point{X: endX, Y: endY}, selenium.FromViewport),
		selenium.PointerUpAction(selenium.LeftButton),
	)
}

func (s *AppiumSession) perform(name string, actions ...selenium.PointerAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wd, err := s.driver()
	if err != nil {
		return err
	}
	wd.StorePointerActions("finger", selenium.TouchPointer, actions...)
	if err := wd.PerformActions(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := wd.ReleaseActions(); err != nil {
		return fmt.Errorf("%s: release actions: %w", name, err)
	}
	return nil
}

func (s *AppiumSession) FindElements(xpath string) ([]Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wd, err := s.driver()
	if err != nil {
		return nil, err
	}
	found, err := wd.FindElements(selenium.ByXPATH, xpath)
	if err != nil {
		// W3C servers report an empty result as "no such element".
		if isNoSuchElement(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find elements %s: %w", xpath, err)
	}
	out := make([]Element, 0, len(found))
	for _, el := range found {
		out = append(out, &appiumElement{s: s, el: el})
	}
	return out, nil
}

func isNoSuchElement(err error) bool {
	if e, ok := err.(*selenium.Error); ok {
		return e.Err == "no such element"
	}
	return false
}

func (s *AppiumSession) HideKeyboard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wd, err := s.driver()
	if err != nil {
		return err
	}
	if _, err := wd.ExecuteScript("mobile: hideKeyboard", nil); err != nil {
		return fmt.Errorf("hide keyboard: %w", err)
	}
	return nil
}

// Ping issues a cheap page-source request to keep the server session alive.
func (s *AppiumSession) Ping() error {
	_, err := s.PageSource()
	return err
}

func (s *AppiumSession) Quit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.wd.Quit(); err != nil {
		return fmt.Errorf("quit session: %w", err)
	}
	return nil
}

type appiumElement struct {
	s  *AppiumSession
	el selenium.WebElement
}

func (e *appiumElement) Click() error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	if e.s.closed {
		return ErrClosed
	}
	if err := e.el.Click(); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return nil
}

func (e *appiumElement) SendKeys(text string) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	if e.s.closed {
		return ErrClosed
	}
	if err := e.el.SendKeys(text); err != nil {
		return fmt.Errorf("send keys: %w", err)
	}
	return nil
}
