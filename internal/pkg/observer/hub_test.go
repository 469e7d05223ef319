package observer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publish[T any](hub *Hub[T], event T) {
	hub.Enqueue(event)
	hub.Drain()
}

func subscribers[T any](hub *Hub[T]) int {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	return len(hub.subs)
}

func TestHubDeliversToAllSubscribersOnce(t *testing.T) {
	hub := NewHub[int]()
	var a, b []int
	hub.Subscribe(func(v int) { a = append(a, v) })
	hub.Subscribe(func(v int) { b = append(b, v) })

	publish(hub, 1)
	publish(hub, 2)

	assert.Equal(t, []int{1, 2}, a)
	assert.Equal(t, []int{1, 2}, b)
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub[string]()
	var got []string
	unsubscribe := hub.Subscribe(func(v string) { got = append(got, v) })

	publish(hub, "first")
	unsubscribe()
	unsubscribe()
	publish(hub, "second")

	assert.Equal(t, []string{"first"}, got)
	assert.Zero(t, subscribers(hub))
}

func TestHubReentrantPublishIsQueuedInOrder(t *testing.T) {
	hub := NewHub[int]()
	var order []int
	hub.Subscribe(func(v int) {
		order = append(order, v)
		if v == 1 {
			publish(hub, 2)
			order = append(order, -1)
		}
	})
	var second []int
	hub.Subscribe(func(v int) { second = append(second, v) })

	publish(hub, 1)

	// the nested event is delivered only after every listener saw the first one
	assert.Equal(t, []int{1, -1, 2}, order)
	assert.Equal(t, []int{1, 2}, second)
}

func TestHubUnsubscribeDuringDelivery(t *testing.T) {
	hub := NewHub[int]()
	var unsubscribeB func()
	var gotB []int
	hub.Subscribe(func(int) { unsubscribeB() })
	unsubscribeB = hub.Subscribe(func(v int) { gotB = append(gotB, v) })

	publish(hub, 1)
	publish(hub, 2)

	assert.Empty(t, gotB)
}

func TestHubConcurrentPublishDeliversEverything(t *testing.T) {
	hub := NewHub[int]()
	var mu sync.Mutex
	seen := make(map[int]int)
	hub.Subscribe(func(v int) {
		mu.Lock()
		seen[v]++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			publish(hub, v)
		}(i)
	}
	wg.Wait()
	hub.Drain()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 100)
	for v, n := range seen {
		assert.Equalf(t, 1, n, "event %d delivered %d times", v, n)
	}
}

func TestHubRecoversFromPanickingListener(t *testing.T) {
	hub := NewHub[int]()
	var got []int
	hub.Subscribe(func(v int) {
		if v == 1 {
			panic("listener failed")
		}
		got = append(got, v)
	})

	hub.Enqueue(1)
	hub.Enqueue(2)
	require.Panics(t, hub.Drain)

	publish(hub, 3)

	assert.Equal(t, []int{2, 3}, got, "queued and later events are still delivered")
}
