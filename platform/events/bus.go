package events

import (
	"context"
	"log/slog"
	"sync"

	"vitelis_backend/platform/logger"
)

// InMemoryBus dispatches events to handlers registered in the same process.
// Subscriptions happen at boot; Publish may be called concurrently afterwards.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *logger.Logger
	wg       sync.WaitGroup
}

var _ Bus = (*InMemoryBus)(nil)

// NewInMemoryBus creates an empty bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return &InMemoryBus{handlers: make(map[string][]Handler), log: log}
}

// Subscribe registers a handler for a specific event type.
func (b *InMemoryBus) Subscribe(eventName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

// Publish runs every handler in its own goroutine. Handler errors and panics
// are logged and never reach the publisher.
func (b *InMemoryBus) Publish(ctx context.Context, event Event) {
	// Detach from request cancellation; handlers outlive the request.
	detached := context.WithoutCancel(ctx)
	for _, h := range b.snapshot(event.EventName()) {
		b.wg.Add(1)
		go func(h Handler) {
			defer b.wg.Done()
			b.run(detached, h, event)
		}(h)
	}
}

// PublishSync runs handlers sequentially and returns the first error.
func (b *InMemoryBus) PublishSync(ctx context.Context, event Event) error {
	for _, h := range b.snapshot(event.EventName()) {
		if err := h.Handle(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// Wait blocks until in-flight asynchronous handlers finish. Used on shutdown.
func (b *InMemoryBus) Wait() {
	b.wg.Wait()
}

func (b *InMemoryBus) snapshot(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Handler(nil), b.handlers[name]...)
}

func (b *InMemoryBus) run(ctx context.Context, h Handler, event Event) {
	defer func() {
		if rec := recover(); rec != nil && b.log != nil {
			b.log.Error("event handler panicked", slog.String("event", event.EventName()), slog.Any("panic", rec))
		}
	}()
	if err := h.Handle(ctx, event); err != nil && b.log != nil {
		b.log.Error("event handler failed", slog.String("event", event.EventName()), slog.String("error", err.Error()))
	}
}
