package llm

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mj1618/ai-testing-tool/internal/config"
)

// Decider returns the model's raw reply for one step. Implementations send a
// single request and do not retry or validate the reply.
type Decider interface {
	Decide(ctx context.Context, req Request) (string, error)
}

// DeciderFunc adapts a function to Decider.
type DeciderFunc func(ctx context.Context, req Request) (string, error)

func (f DeciderFunc) Decide(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// NewDecider picks the console decider in debug mode, otherwise the
// configured model provider.
func NewDecider(ctx context.Context, cfg config.ModelConfig, debug bool, in io.Reader, out io.Writer) (Decider, error) {
	if debug {
		return NewConsoleDecider(in, out), nil
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for model provider %q", cfg.Provider)
	}
	switch cfg.Provider {
	case "openai":
		return NewOpenAIDecider(cfg), nil
	case "gemini":
		return NewGeminiDecider(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

// trimReply strips surrounding whitespace from a model reply.
func trimReply(s string) string {
	return strings.TrimSpace(s)
}

// withTimeout bounds a single request when timeout is positive.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
