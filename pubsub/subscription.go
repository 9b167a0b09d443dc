package pubsub

import "sync"

// Subscription is one reader of a Hub.
type Subscription[T any] struct {
	id       string
	hub      *Hub[T]
	capacity int

	mu      sync.Mutex
	queue   []T
	dropped uint64

	signal chan struct{}
	out    chan T
	done   chan struct{}
	once   sync.Once
}

func newSubscription[T any](h *Hub[T], id string, p Policy) *Subscription[T] {
	return &Subscription[T]{
		id:       id,
		hub:      h,
		capacity: p.Capacity,
		signal:   make(chan struct{}, 1),
		out:      make(chan T),
		done:     make(chan struct{}),
	}
}

// ID returns the subscriber's registry key.
func (s *Subscription[T]) ID() string { return s.id }

// C returns the delivery channel. It is closed after Close (or after the
// hub is closed); values still queued at that point are discarded.
func (s *Subscription[T]) C() <-chan T { return s.out }

// Dropped returns how many values the DropOldest policy discarded.
func (s *Subscription[T]) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.dropped
}

// Close unregisters the subscriber. It is idempotent.
func (s *Subscription[T]) Close() {
	s.hub.remove(s.id)
	s.stop()
}

func (s *Subscription[T]) stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *Subscription[T]) enqueue(v T) {
	s.mu.Lock()
	if s.capacity > 0 && len(s.queue) >= s.capacity {
		var zero T
		s.queue[0] = zero
		s.queue = s.queue[1:]
		s.dropped++
	}
	s.queue = append(s.queue, v)
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// pump moves queued values to out, one at a time, in order.
func (s *Subscription[T]) pump() {
	defer close(s.out)

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.signal:
				continue
			case <-s.done:
				return
			}
		}

		v := s.queue[0]
		var zero T
		s.queue[0] = zero
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- v:
		case <-s.done:
			return
		}
	}
}
