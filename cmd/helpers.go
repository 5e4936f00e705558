package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mj1618/ai-testing-tool/internal/config"
	"github.com/mj1618/ai-testing-tool/internal/device"
	"github.com/mj1618/ai-testing-tool/internal/imaging"
)

// newFactory is replaced in tests.
var newFactory = func() device.Factory { return device.AppiumFactory{} }

// capabilities returns the configured capabilities or the Android defaults.
func capabilities(cfg *config.Config) (device.Capabilities, error) {
	if cfg.Appium.Capabilities == "" {
		return device.DefaultCapabilities(), nil
	}
	caps, err := config.LoadCapabilities(cfg.Appium.Capabilities)
	if err != nil {
		return nil, err
	}
	return device.Capabilities(caps), nil
}

// openSession starts a device session with the configured server and
// capabilities.
func openSession(ctx context.Context, cfg *config.Config) (device.Session, error) {
	caps, err := capabilities(cfg)
	if err != nil {
		return nil, err
	}
	sess, err := newFactory().NewSession(ctx, device.Options{
		URL:          cfg.Appium.URL,
		Capabilities: caps,
		ImplicitWait: cfg.Appium.ImplicitWait,
	})
	if err != nil {
		return nil, fmt.Errorf("open device session at %s: %w", cfg.Appium.URL, err)
	}
	return sess, nil
}

func imagingOptions(cfg *config.Config) imaging.Options {
	return imaging.Options{
		MaxLong:  cfg.Screenshot.MaxLong,
		MaxShort: cfg.Screenshot.MaxShort,
		Quality:  cfg.Screenshot.Quality,
		GridSize: cfg.Screenshot.GridSize,
	}
}

// readInput reads a file, or stdin for "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
