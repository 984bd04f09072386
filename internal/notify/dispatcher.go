package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Dispatcher delivers events in the background so request handlers never
// wait on a slow webhook.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	logger   zerolog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(n Notifier, timeout time.Duration, logger zerolog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{notifier: n, timeout: timeout, logger: logger}
}

// Dispatch queues delivery and returns at once. Events dispatched after
// Close are dropped with a warning.
func (d *Dispatcher) Dispatch(ev Event) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn().Str("event", ev.Type).Str("id", ev.ID).Msg("dispatcher closed, event dropped")
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.notifier.Notify(ctx, ev); err != nil {
			d.logger.Error().Err(err).Str("event", ev.Type).Str("id", ev.ID).Msg("event delivery failed")
			return
		}
		d.logger.Debug().Str("event", ev.Type).Str("id", ev.ID).Msg("event delivered")
	}()
}

// Close stops accepting events and waits for in-flight deliveries or ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
