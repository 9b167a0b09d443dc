package pubsub

import (
	"sync"

	"github.com/google/uuid"
)

// Policy controls how many undelivered values a subscriber may hold.
type Policy struct {
	// Capacity is the maximum queue length; 0 means unbounded.
	Capacity int
}

// Unbounded queues every value until the subscriber reads it.
var Unbounded = Policy{}

// DropOldest returns a policy that keeps at most n undelivered values.
// n <= 0 yields Unbounded.
func DropOldest(n int) Policy {
	if n <= 0 {
		return Unbounded
	}
	return Policy{Capacity: n}
}

// IsUnbounded reports whether the policy never drops.
func (p Policy) IsUnbounded() bool { return p.Capacity <= 0 }

// Hub fans published values out to all current subscribers. The zero value
// is not usable; construct with NewHub. Methods are safe for concurrent use.
type Hub[T any] struct {
	mu     sync.Mutex
	subs   map[string]*Subscription[T]
	order  []string
	policy Policy
	clone  func(T) T
	closed bool
}

// HubOptions holds optional Hub settings.
type HubOptions[T any] struct {
	// Clone, when set, gives every subscriber but the first its own copy of
	// a published value. Use it for values holding slices or maps.
	Clone func(T) T
}

// NewHub creates a hub whose subscribers use the given policy.
func NewHub[T any](policy Policy, optFns ...func(o *HubOptions[T])) *Hub[T] {
	var opts HubOptions[T]

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Hub[T]{subs: make(map[string]*Subscription[T]), policy: policy, clone: opts.Clone}
}

// Subscribe registers a new subscriber. It only sees values published after
// it was registered. Subscribing to a closed hub returns an already closed
// subscription.
func (h *Hub[T]) Subscribe() *Subscription[T] {
	s := newSubscription(h, uuid.NewString(), h.policy)
	go s.pump()

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		s.stop()
		return s
	}

	h.subs[s.id] = s
	h.order = append(h.order, s.id)

	return s
}

// Publish enqueues v for every subscriber. It never blocks on readers.
// Without a Clone option all subscribers share v.
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	for i, id := range h.order {
		item := v
		if i > 0 && h.clone != nil {
			item = h.clone(v)
		}
		h.subs[id].enqueue(item)
	}
}

// Len returns the number of registered subscribers.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subs)
}

// Close unregisters and closes every subscriber. Later publishes are ignored.
func (h *Hub[T]) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = map[string]*Subscription[T]{}
	h.order = nil
	h.closed = true
	h.mu.Unlock()

	for _, s := range subs {
		s.stop()
	}
}

func (h *Hub[T]) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[id]; !ok {
		return
	}

	delete(h.subs, id)

	for i, sid := range h.order {
		if sid == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}
