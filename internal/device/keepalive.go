package device

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultKeepAliveInterval is how often KeepAlive pings the session.
const DefaultKeepAliveInterval = 10 * time.Second

// KeepAlive pings a session periodically so the automation server does not
// expire it during long model calls.
type KeepAlive struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// StartKeepAlive starts polling p every interval until Stop is called, ctx is
// cancelled, or a ping fails. A failed ping ends the poller quietly.
func StartKeepAlive(ctx context.Context, p Pinger, interval time.Duration, logger *zap.Logger) *KeepAlive {
	if interval <= 0 {
		interval = DefaultKeepAliveInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(ctx)
	k := &KeepAlive{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(k.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := p.Ping(); err != nil {
					logger.Debug("keep-alive stopped", zap.Error(err))
					return
				}
			}
		}
	}()
	return k
}

// Stop cancels the poller and waits for it to exit.
func (k *KeepAlive) Stop() {
	k.once.Do(k.cancel)
	<-k.done
}

// Done is closed once the poller has exited.
func (k *KeepAlive) Done() <-chan struct{} {
	return k.done
}
