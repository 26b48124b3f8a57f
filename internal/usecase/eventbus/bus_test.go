package eventbus

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sitesearch/internal/domain"
)

func newTestBus() *Bus {
	return New(nil)
}

func newEvent(t domain.EventType) domain.Event {
	return domain.Event{Type: t, Timestamp: time.Now()}
}

func TestPublishSubscribe(t *testing.T) {
	bus := newTestBus()

	var got atomic.Int32
	bus.Subscribe(domain.EventSearchSubmitted, func(_ context.Context, e domain.Event) {
		if e.Type == domain.EventSearchSubmitted {
			got.Add(1)
		}
	})

	bus.Publish(context.Background(), newEvent(domain.EventSearchSubmitted))
	bus.Publish(context.Background(), newEvent(domain.EventSearchEmpty))
	bus.Close() // drain
	if got.Load() != 1 {
		t.Fatalf("expected 1, got %d", got.Load())
	}
}

func TestSubscribeAll(t *testing.T) {
	bus := newTestBus()

	var got atomic.Int32
	bus.SubscribeAll(func(_ context.Context, _ domain.Event) {
		got.Add(1)
	})

	bus.Publish(context.Background(), newEvent(domain.EventHistoryCleared))
	bus.Publish(context.Background(), newEvent(domain.EventBrowserUnavailable))
	bus.Close()

	assert.Equal(t, int32(2), got.Load())
	assert.Equal(t, int64(2), bus.Published())
}

func TestSubscribeTypes(t *testing.T) {
	bus := newTestBus()

	var got atomic.Int32
	bus.SubscribeTypes(func(_ context.Context, _ domain.Event) {
		got.Add(1)
	}, domain.EventEngineChanged, domain.EventFilterChanged)

	bus.Publish(context.Background(), newEvent(domain.EventEngineChanged))
	bus.Publish(context.Background(), newEvent(domain.EventFilterChanged))
	bus.Publish(context.Background(), newEvent(domain.EventFiltersCleared))
	bus.Close()

	assert.Equal(t, int32(2), got.Load())
}

func TestUnsubscribe(t *testing.T) {
	bus := newTestBus()

	var got atomic.Int32
	unsub := bus.Subscribe(domain.EventHistoryRemoved, func(_ context.Context, _ domain.Event) {
		got.Add(1)
	})

	bus.Publish(context.Background(), newEvent(domain.EventHistoryRemoved))
	bus.Flush()
	assert.Equal(t, int32(1), got.Load())

	unsub()
	unsub() // second call is a no-op
	bus.Publish(context.Background(), newEvent(domain.EventHistoryRemoved))
	bus.Close()

	assert.Equal(t, int32(1), got.Load(), "no delivery after unsubscribe")
}

func TestConcurrentPublish(t *testing.T) {
	bus := newTestBus()

	var got atomic.Int32
	bus.Subscribe(domain.EventSearchOpened, func(_ context.Context, _ domain.Event) {
		got.Add(1)
	})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(context.Background(), newEvent(domain.EventSearchOpened))
		}()
	}
	wg.Wait()
	bus.Close()

	if got.Load() != 100 {
		t.Fatalf("expected 100, got %d", got.Load())
	}
}

func TestPanicRecovery(t *testing.T) {
	bus := newTestBus()

	var got atomic.Int32
	bus.Subscribe(domain.EventSearchEmpty, func(_ context.Context, _ domain.Event) {
		panic("boom")
	})
	bus.Subscribe(domain.EventSearchEmpty, func(_ context.Context, _ domain.Event) {
		got.Add(1)
	})

	bus.Publish(context.Background(), newEvent(domain.EventSearchEmpty))
	bus.Close()

	if got.Load() != 1 {
		t.Fatalf("expected 1 (second handler), got %d", got.Load())
	}
}

func TestCloseDrainsAndRejectsNew(t *testing.T) {
	bus := newTestBus()

	var got atomic.Int32
	bus.Subscribe(domain.EventPersistenceFailed, func(_ context.Context, _ domain.Event) {
		time.Sleep(50 * time.Millisecond)
		got.Add(1)
	})

	bus.Publish(context.Background(), newEvent(domain.EventPersistenceFailed))
	bus.Close() // should block until the handler finishes

	if got.Load() != 1 {
		t.Fatalf("expected handler to have run, got %d", got.Load())
	}

	bus.Publish(context.Background(), newEvent(domain.EventPersistenceFailed))
	time.Sleep(20 * time.Millisecond)
	if got.Load() != 1 {
		t.Fatalf("expected no delivery after close, got %d", got.Load())
	}
	bus.Close()
}
