package pubsub

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, s *Subscription[T]) T {
	t.Helper()
	select {
	case v, ok := <-s.C():
		require.True(t, ok, "subscription closed")
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func TestHub_DeliversInOrderToEverySubscriber(t *testing.T) {
	h := NewHub[int](Unbounded)
	a := h.Subscribe()
	b := h.Subscribe()
	defer h.Close()

	for i := 1; i <= 100; i++ {
		h.Publish(i)
	}

	for i := 1; i <= 100; i++ {
		assert.Equal(t, i, receive(t, a))
	}
	for i := 1; i <= 100; i++ {
		assert.Equal(t, i, receive(t, b))
	}
	assert.Equal(t, 2, h.Len())
}

func TestHub_PublishDoesNotBlockOnSlowSubscriber(t *testing.T) {
	h := NewHub[int](Unbounded)
	_ = h.Subscribe() // never read
	fast := h.Subscribe()
	defer h.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			h.Publish(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked")
	}

	assert.Equal(t, 0, receive(t, fast))
}

func TestHub_SubscriberOnlySeesLaterValues(t *testing.T) {
	h := NewHub[string](Unbounded)
	defer h.Close()

	h.Publish("before")
	s := h.Subscribe()
	h.Publish("after")

	assert.Equal(t, "after", receive(t, s))
}

func TestHub_DropOldestKeepsNewest(t *testing.T) {
	h := NewHub[int](DropOldest(2))
	s := h.Subscribe()
	defer h.Close()

	for i := 1; i <= 5; i++ {
		h.Publish(i)
	}

	var got []int
	for {
		select {
		case v := <-s.C():
			got = append(got, v)
			continue
		case <-time.After(100 * time.Millisecond):
		}
		break
	}

	// The pump may already hold one value in hand when the queue overflows.
	require.GreaterOrEqual(t, len(got), 2)
	require.LessOrEqual(t, len(got), 3)
	assert.Equal(t, []int{4, 5}, got[len(got)-2:])
	assert.GreaterOrEqual(t, s.Dropped(), uint64(2))
}

func TestSubscription_CloseUnregisters(t *testing.T) {
	h := NewHub[int](Unbounded)
	s := h.Subscribe()
	require.Equal(t, 1, h.Len())

	s.Close()
	s.Close()

	assert.Equal(t, 0, h.Len())
	_, ok := <-s.C()
	assert.False(t, ok)

	h.Publish(1) // no subscribers, must not panic
}

func TestHub_CloseClosesSubscribers(t *testing.T) {
	h := NewHub[int](Unbounded)
	s := h.Subscribe()
	h.Close()

	_, ok := <-s.C()
	assert.False(t, ok)

	late := h.Subscribe()
	_, ok = <-late.C()
	assert.False(t, ok)
}

func TestHub_ConcurrentPublishers(t *testing.T) {
	h := NewHub[int](Unbounded)
	s := h.Subscribe()
	defer h.Close()

	var wg sync.WaitGroup
	for p := 0; p < 10; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				h.Publish(i)
			}
		}()
	}
	wg.Wait()

	for i := 0; i < 500; i++ {
		receive(t, s)
	}
}

func TestDropOldest_NonPositiveIsUnbounded(t *testing.T) {
	assert.True(t, DropOldest(0).IsUnbounded())
	assert.True(t, DropOldest(-3).IsUnbounded())
	assert.False(t, DropOldest(1).IsUnbounded())
}

func TestHub_CloneGivesEachSubscriberItsOwnValue(t *testing.T) {
	h := NewHub[[]int](Unbounded, func(o *HubOptions[[]int]) {
		o.Clone = func(v []int) []int { return append([]int(nil), v...) }
	})
	a := h.Subscribe()
	b := h.Subscribe()
	c := h.Subscribe()
	defer h.Close()

	h.Publish([]int{1, 2})

	va := receive(t, a)
	va[0] = 99

	assert.Equal(t, []int{1, 2}, receive(t, b))
	assert.Equal(t, []int{1, 2}, receive(t, c))
}
