package eventbus

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"sitesearch/internal/domain"
)

type subscription struct {
	id      uint64
	types   []domain.EventType // empty = every event
	handler domain.EventHandler
}

func (s subscription) matches(t domain.EventType) bool {
	return len(s.types) == 0 || slices.Contains(s.types, t)
}

// Bus is an in-process, goroutine-safe notification bus.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID atomic.Uint64
	logger *slog.Logger
	wg     sync.WaitGroup
	closed atomic.Bool
	sent   atomic.Int64
}

// New creates an event bus. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger}
}

// Publish fans out an event to every matching subscriber.
// Each handler is invoked in its own goroutine. Panicking handlers are recovered.
func (b *Bus) Publish(ctx context.Context, event domain.Event) {
	if b.closed.Load() {
		return
	}
	b.sent.Add(1)

	b.mu.RLock()
	subs := make([]subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.matches(event.Type) {
			subs = append(subs, s)
		}
	}
	b.mu.RUnlock()

	b.logger.Debug("event published", "event", string(event.Type), "subscribers", len(subs))
	for _, sub := range subs {
		b.dispatch(ctx, event, sub)
	}
}

func (b *Bus) dispatch(ctx context.Context, event domain.Event, sub subscription) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("event handler panicked",
					"event", string(event.Type),
					"panic", r,
				)
			}
		}()
		sub.handler(ctx, event)
	}()
}

// Subscribe registers a handler for a specific event type.
// Returns an unsubscribe function.
func (b *Bus) Subscribe(eventType domain.EventType, handler domain.EventHandler) func() {
	return b.add(subscription{types: []domain.EventType{eventType}, handler: handler})
}

// SubscribeTypes registers one handler for several event types.
func (b *Bus) SubscribeTypes(handler domain.EventHandler, types ...domain.EventType) func() {
	if len(types) == 0 {
		return func() {}
	}
	return b.add(subscription{types: slices.Clone(types), handler: handler})
}

// SubscribeAll registers a handler that receives every event.
// Returns an unsubscribe function.
func (b *Bus) SubscribeAll(handler domain.EventHandler) func() {
	return b.add(subscription{handler: handler})
}

func (b *Bus) add(sub subscription) func() {
	sub.id = b.nextID.Add(1)

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.subs = slices.DeleteFunc(b.subs, func(s subscription) bool { return s.id == sub.id })
		})
	}
}

// Flush waits for in-flight handlers without closing the bus.
func (b *Bus) Flush() {
	b.wg.Wait()
}

// Published returns how many events were accepted since creation.
func (b *Bus) Published() int64 {
	return b.sent.Load()
}

// Close prevents new publishes and waits for all in-flight handlers to finish.
// Close is idempotent.
func (b *Bus) Close() {
	if b.closed.Swap(true) {
		return
	}
	b.wg.Wait()
}
