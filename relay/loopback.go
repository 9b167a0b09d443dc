package relay

import (
	"context"
	"errors"
	"sync"

	"github.com/hupe1980/wcpairing/core"
	"github.com/hupe1980/wcpairing/logging"
)

// ErrRelayClosed is returned by calls issued after Close.
var ErrRelayClosed = errors.New("relay closed")

// LoopbackOptions configures a Loopback relay.
type LoopbackOptions struct {
	// Peer is returned from Activate as the peer's metadata.
	Peer *core.AppMetadata
	// OnActivate runs before Activate returns. A non-nil error fails the
	// handshake. It receives the caller's context so it can block until
	// cancellation.
	OnActivate func(ctx context.Context, p core.Proposal) error
	// OnDelete runs before Delete returns, like OnActivate.
	OnDelete func(ctx context.Context, topic string, reason core.Reason) error
	// DeletionBuffer sizes the Deletions channel.
	DeletionBuffer int
	// Logger receives debug traces of every call.
	Logger logging.Logger
}

// Loopback is an in-process core.Relay. It records what the client sent so
// tests can assert on it, and lets tests play the remote peer.
type Loopback struct {
	opts LoopbackOptions

	mu         sync.Mutex
	subscribed map[string]bool
	deleted    []string
	pings      []string
	closed     bool

	deletions chan core.RemoteDeletion
	done      chan struct{}
	injecting sync.WaitGroup
}

// NewLoopback creates a Loopback relay with optional overrides.
func NewLoopback(optFns ...func(o *LoopbackOptions)) *Loopback {
	opts := LoopbackOptions{
		DeletionBuffer: 16,
		Logger:         logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Loopback{
		opts:       opts,
		subscribed: make(map[string]bool),
		deletions:  make(chan core.RemoteDeletion, opts.DeletionBuffer),
		done:       make(chan struct{}),
	}
}

// Subscribe marks topic as subscribed.
func (l *Loopback) Subscribe(ctx context.Context, topic string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrRelayClosed
	}
	l.subscribed[topic] = true
	l.opts.Logger.Debug("loopback subscribe", "topic", topic)
	return nil
}

// Unsubscribe clears the subscription for topic.
func (l *Loopback) Unsubscribe(_ context.Context, topic string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrRelayClosed
	}
	delete(l.subscribed, topic)
	l.opts.Logger.Debug("loopback unsubscribe", "topic", topic)
	return nil
}

// Activate completes the handshake, consulting OnActivate first.
func (l *Loopback) Activate(ctx context.Context, p core.Proposal) (*core.AppMetadata, error) {
	if l.isClosed() {
		return nil, ErrRelayClosed
	}
	if l.opts.OnActivate != nil {
		if err := l.opts.OnActivate(ctx, p); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.opts.Logger.Debug("loopback activate", "topic", p.Topic)
	if l.opts.Peer == nil {
		return nil, nil
	}
	md := *l.opts.Peer
	return &md, nil
}

// Delete records the locally initiated teardown, consulting OnDelete first.
func (l *Loopback) Delete(ctx context.Context, topic string, reason core.Reason) error {
	if l.isClosed() {
		return ErrRelayClosed
	}
	if l.opts.OnDelete != nil {
		if err := l.opts.OnDelete(ctx, topic, reason); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deleted = append(l.deleted, topic)
	l.opts.Logger.Debug("loopback delete", "topic", topic, "code", reason.Code)
	return nil
}

// Ping succeeds for subscribed topics.
func (l *Loopback) Ping(ctx context.Context, topic string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrRelayClosed
	}
	if !l.subscribed[topic] {
		return &RPCError{Code: 404, Message: "no subscription for topic " + topic}
	}
	l.pings = append(l.pings, topic)
	return nil
}

// Deletions reports remote deletions injected with InjectRemoteDelete.
func (l *Loopback) Deletions() <-chan core.RemoteDeletion { return l.deletions }

// InjectRemoteDelete simulates the peer deleting topic. It blocks while the
// Deletions buffer is full and returns false once the relay is closed.
func (l *Loopback) InjectRemoteDelete(topic string, code int, message string) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.injecting.Add(1)
	l.mu.Unlock()
	defer l.injecting.Done()

	select {
	case l.deletions <- core.RemoteDeletion{Topic: topic, Code: code, Message: message}:
		return true
	case <-l.done:
		return false
	}
}

// Subscribed reports whether topic currently has a subscription.
func (l *Loopback) Subscribed(topic string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.subscribed[topic]
}

// Deleted returns the topics passed to Delete, in call order.
func (l *Loopback) Deleted() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.deleted...)
}

// Pings returns the topics successfully pinged, in call order.
func (l *Loopback) Pings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.pings...)
}

// Close closes the Deletions channel once pending injections gave up. It is
// idempotent.
func (l *Loopback) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.done)
	l.mu.Unlock()

	l.injecting.Wait()
	close(l.deletions)
	return nil
}

func (l *Loopback) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}
