package action

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mj1618/ai-testing-tool/internal/device"
	"github.com/mj1618/ai-testing-tool/internal/model"
	"github.com/mj1618/ai-testing-tool/internal/session"
)

// FocusedXPath locates the element holding input focus.
const FocusedXPath = "//*[@focused='true']"

// Capturer records the device state after an action.
type Capturer interface {
	Capture(ctx context.Context, sess device.Session, label string) (*session.State, error)
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Executor performs decisions against one device session.
type Executor struct {
	sess    device.Session
	capture Capturer
	logger  *zap.Logger
	sleep   SleepFunc
}

// Option configures an Executor.
type Option func(*Executor)

// WithSleep replaces the settle and wait timer.
func WithSleep(fn SleepFunc) Option {
	return func(e *Executor) { e.sleep = fn }
}

func NewExecutor(sess device.Session, capture Capturer, logger *zap.Logger, opts ...Option) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Executor{sess: sess, capture: capture, logger: logger, sleep: Sleep}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute parses raw and performs it. The returned error is set only when the
// device session itself failed; every other failure is recorded in the
// outcome and stops the task.
func (e *Executor) Execute(ctx context.Context, raw, label string) (Result, error) {
	req, err := Parse(raw)
	if err != nil {
		fields := req.Fields
		if fields == nil {
			fields = map[string]interface{}{"response": raw}
		}
		e.logger.Warn("unknown action", zap.String("label", label), zap.Error(err))
		return Stopped(newOutcome(fields, ResultUnknownAction), UnknownAction, nil), nil
	}

	switch req.Action {
	case KindTap:
		if missing, err := e.tap(req); err != nil || missing != "" {
			return e.notFound(req, missing, err)
		}
	case KindInput:
		if missing, err := e.input(req); err != nil || missing != "" {
			return e.notFound(req, missing, err)
		}
	case KindSwipe:
		d := time.Duration(req.Duration) * time.Millisecond
		if err := e.sess.Swipe(req.SwipeStartX, req.SwipeStartY, req.SwipeEndX, req.SwipeEndY, d); err != nil {
			return Result{}, fmt.Errorf("swipe: %w", err)
		}
		if err := e.sleep(ctx, d); err != nil {
			return Result{}, err
		}
	case KindWait:
		if err := e.sleep(ctx, time.Duration(req.Timeout)*time.Millisecond); err != nil {
			return Result{}, err
		}
	case KindError, KindFinish:
		state, err := e.capture.Capture(ctx, e.sess, label)
		if err != nil {
			return Result{}, err
		}
		reason := Finished
		if req.Action == KindError {
			reason = Errored
		}
		return Stopped(newOutcome(req.Fields, ResultSuccess), reason, state), nil
	}

	state, err := e.capture.Capture(ctx, e.sess, label)
	if err != nil {
		return Result{}, err
	}
	return Continue(newOutcome(req.Fields, ResultSuccess), state), nil
}

func (e *Executor) notFound(req Request, reason string, err error) (Result, error) {
	if err != nil {
		return Result{}, err
	}
	e.logger.Warn("element not found", zap.String("action", string(req.Action)), zap.String("result", reason))
	return Stopped(newOutcome(req.Fields, reason), ElementNotFound, nil), nil
}

// tap returns a failure reason when the target cannot be resolved.
func (e *Executor) tap(req Request) (string, error) {
	if req.Bounds != "" {
		return "", e.tapBounds(req.Bounds)
	}
	el, err := e.first(req.XPath)
	if err != nil || el == nil {
		return notFoundXPath(req.XPath), err
	}
	if err := el.Click(); err != nil {
		return "", fmt.Errorf("click %s: %w", req.XPath, err)
	}
	return "", nil
}

// input focuses the target, types the value and hides the keyboard.
func (e *Executor) input(req Request) (string, error) {
	missing := notFoundXPath(req.XPath)
	if req.Bounds != "" {
		missing = "can't find element in bounds " + req.Bounds
		if err := e.tapBounds(req.Bounds); err != nil {
			return "", err
		}
	} else {
		el, err := e.first(req.XPath)
		if err != nil || el == nil {
			return missing, err
		}
		if err := el.Click(); err != nil {
			return "", fmt.Errorf("click %s: %w", req.XPath, err)
		}
	}

	focused, err := e.first(FocusedXPath)
	if err != nil || focused == nil {
		return missing, err
	}
	if err := focused.SendKeys(req.Value); err != nil {
		return "", fmt.Errorf("send keys: %w", err)
	}
	if err := e.sess.HideKeyboard(); err != nil {
		e.logger.Debug("hide keyboard", zap.Error(err))
	}
	return "", nil
}

func (e *Executor) tapBounds(bounds string) error {
	b, err := model.ParseBounds(bounds)
	if err != nil {
		return err
	}
	x, y := b.Center()
	if err := e.sess.Tap(x, y); err != nil {
		return fmt.Errorf("tap %d,%d: %w", x, y, err)
	}
	return nil
}

// first returns the first element matching xpath, or nil.
func (e *Executor) first(xpath string) (device.Element, error) {
	els, err := e.sess.FindElements(xpath)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", xpath, err)
	}
	if len(els) == 0 {
		return nil, nil
	}
	return els[0], nil
}

func notFoundXPath(xpath string) string {
	return "can't find element " + xpath
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
