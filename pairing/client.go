package pairing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hupe1980/wcpairing/core"
	"github.com/hupe1980/wcpairing/logging"
	"github.com/hupe1980/wcpairing/pubsub"
)

// Client implements core.PairingClient on top of a Relay. Public methods are
// safe for concurrent use.
type Client struct {
	relay   core.Relay
	decoder core.URIDecoder
	store   core.PairingStore
	console *logging.ConsoleLogger
	deletes *pubsub.Hub[core.PairingDeleteEvent]

	ownsConsole    bool
	ttl            time.Duration
	cleanupTimeout time.Duration
	expiryInterval time.Duration
	clock          func() time.Time

	ops       chan func()
	done      chan struct{}
	loopDone  chan struct{}
	closeOnce sync.Once
	cleanup   sync.WaitGroup

	// Owned by the coordinator goroutine.
	proposed map[string]struct{}
	closing  map[string]uint64
	closeSeq uint64
}

// New constructs a Client using relay for transport and starts its
// coordinator. Call Close to stop it.
func New(relay core.Relay, optFns ...func(o *Options)) *Client {
	opts := defaultOptions()

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	c := &Client{
		relay:          relay,
		decoder:        opts.Decoder,
		store:          opts.Store,
		console:        opts.Console,
		deletes:        pubsub.NewHub[core.PairingDeleteEvent](opts.DeletePolicy),
		ttl:            opts.PairingTTL,
		cleanupTimeout: opts.CleanupTimeout,
		expiryInterval: opts.ExpiryCheckInterval,
		clock:          opts.Clock,
		ops:            make(chan func()),
		done:           make(chan struct{}),
		loopDone:       make(chan struct{}),
		proposed:       make(map[string]struct{}),
		closing:        make(map[string]uint64),
	}

	if c.console == nil {
		c.console = logging.NewConsoleLogger(func(o *logging.ConsoleOptions) {
			o.Suffix = "[pairing]"
		})
		c.ownsConsole = true
	}

	go c.run()

	return c
}

// Pair decodes uri and runs the pairing handshake. It returns once the
// pairing is Active, or fails with core.ErrMalformedURI, core.ErrAlreadyPaired,
// a *core.TransportError, core.ErrOperationCancelled or core.ErrClientClosed.
func (c *Client) Pair(ctx context.Context, rawURI string) error {
	p, err := c.decoder.Decode(rawURI)
	if err != nil {
		if !errors.Is(err, core.ErrMalformedURI) {
			err = fmt.Errorf("%w: %w", core.ErrMalformedURI, err)
		}
		c.console.Error("pairing uri rejected", "error", err)
		return err
	}

	if p.Expiry.IsZero() {
		if c.ttl > 0 {
			p.Expiry = c.clock().Add(c.ttl)
		}
	} else if !c.clock().Before(p.Expiry) {
		err := &core.URIError{Field: "expiryTimestamp", Value: p.Expiry.Format(time.RFC3339), Err: errors.New("proposal expired")}
		c.console.Error("pairing uri rejected", "topic", p.Topic, "error", err)
		return err
	}

	var reserveErr error
	if err := c.do(func() { reserveErr = c.reserve(p.Topic) }); err != nil {
		return err
	}
	if reserveErr != nil {
		c.console.Warn("pairing refused", "topic", p.Topic, "error", reserveErr)
		return reserveErr
	}

	c.console.Debug("pairing proposed", "topic", p.Topic)

	md, subscribed, err := c.handshake(ctx, p)
	if err != nil {
		c.rollback(ctx, p.Topic, subscribed)
		c.console.Error("pairing handshake failed", "topic", p.Topic, "error", err)
		return err
	}

	pairing := core.Pairing{
		Topic:    p.Topic,
		State:    core.PairingStateActive,
		Relay:    p.Relay,
		Metadata: md,
		Expiry:   p.Expiry,
		Methods:  p.Methods,
	}

	var commitErr error
	if err := c.do(func() { commitErr = c.commit(pairing) }); err != nil {
		c.unsubscribe(ctx, p.Topic)
		return err
	}
	if commitErr != nil {
		c.rollback(ctx, p.Topic, true)
		c.console.Error("pairing not persisted", "topic", p.Topic, "error", commitErr)
		return commitErr
	}

	c.console.Debug("pairing active", "topic", p.Topic)

	return nil
}

// Disconnect deletes the pairing on topic and tells the peer. No
// PairingDeletes event is published for locally initiated deletions.
func (c *Client) Disconnect(ctx context.Context, topic string) error {
	var (
		token     uint64
		lookupErr error
	)
	if err := c.do(func() { token, lookupErr = c.beginClose(topic) }); err != nil {
		return err
	}
	if lookupErr != nil {
		c.console.Warn("disconnect refused", "topic", topic, "error", lookupErr)
		return lookupErr
	}

	if err := c.relay.Delete(ctx, topic, core.UserDisconnected); err != nil {
		err = c.relayError(ctx, "delete", topic, err)
		_ = c.do(func() { c.releaseClose(topic, token) })
		c.console.Error("disconnect failed", "topic", topic, "error", err)
		return err
	}

	var removed bool
	if err := c.do(func() { removed = c.remove(topic, token) }); err != nil {
		// The peer was told already; the coordinator is gone, so finish
		// the teardown here.
		if derr := c.store.Delete(topic); derr != nil && !errors.Is(derr, core.ErrUnknownTopic) {
			c.console.Error("removing pairing failed", "topic", topic, "error", derr)
		}
		c.unsubscribe(ctx, topic)
		return err
	}
	if !removed {
		c.console.Debug("pairing already deleted by peer", "topic", topic)
		return nil
	}

	c.unsubscribe(ctx, topic)
	c.console.Debug("pairing deleted", "topic", topic, "code", core.UserDisconnected.Code)

	return nil
}

// Ping checks the peer on an active pairing is reachable.
func (c *Client) Ping(ctx context.Context, topic string) error {
	if _, err := c.lookup(topic); err != nil {
		return err
	}
	if err := c.relay.Ping(ctx, topic); err != nil {
		err = c.relayError(ctx, "ping", topic, err)
		c.console.Warn("ping failed", "topic", topic, "error", err)
		return err
	}
	c.console.Debug("ping acknowledged", "topic", topic)
	return nil
}

// GetPairings returns a snapshot of the active pairings ordered by topic.
func (c *Client) GetPairings() []core.Pairing {
	list, err := c.store.List()
	if err != nil {
		c.console.Error("listing pairings failed", "error", err)
		return []core.Pairing{}
	}
	out := make([]core.Pairing, 0, len(list))
	for _, p := range list {
		if p.State == core.PairingStateActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Topic < out[j].Topic })
	return out
}

// Logs subscribes to the diagnostic history (see logging.ConsoleLogger).
func (c *Client) Logs() *pubsub.Subscription[[]string] {
	return c.console.Logs()
}

// PairingDeletes subscribes to remote deletions.
func (c *Client) PairingDeletes() *pubsub.Subscription[core.PairingDeleteEvent] {
	return c.deletes.Subscribe()
}

// Console exposes the diagnostic logger, e.g. to change its level.
func (c *Client) Console() *logging.ConsoleLogger {
	return c.console
}

// Close stops the coordinator and ends every subscription. The relay is not
// closed; it belongs to the caller.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		<-c.loopDone
		c.cleanup.Wait()
		c.deletes.Close()
		if c.ownsConsole {
			c.console.Close()
		}
	})
	return nil
}

// handshake subscribes to the topic and activates the pairing. subscribed
// reports whether an unsubscribe is owed on failure.
func (c *Client) handshake(ctx context.Context, p core.Proposal) (md *core.AppMetadata, subscribed bool, err error) {
	if err := c.relay.Subscribe(ctx, p.Topic); err != nil {
		return nil, false, c.relayError(ctx, "subscribe", p.Topic, err)
	}

	md, err = c.relay.Activate(ctx, p)
	if err != nil {
		return nil, true, c.relayError(ctx, "activate", p.Topic, err)
	}

	return md, true, nil
}

// rollback drops the Proposed reservation and, if needed, the relay
// subscription made for it.
func (c *Client) rollback(ctx context.Context, topic string, subscribed bool) {
	_ = c.do(func() { delete(c.proposed, topic) })
	if subscribed {
		c.unsubscribe(ctx, topic)
	}
	c.console.Debug("pairing rolled back", "topic", topic)
}

// unsubscribe is best effort and survives a cancelled caller context.
func (c *Client) unsubscribe(ctx context.Context, topic string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cleanupTimeout)
	defer cancel()
	if err := c.relay.Unsubscribe(ctx, topic); err != nil {
		c.console.Warn("unsubscribe failed", "topic", topic, "error", err)
	}
}

func (c *Client) relayError(ctx context.Context, op, topic string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s %s: %w: %w", op, topic, core.ErrOperationCancelled, ctxErr)
	}
	return core.WrapTransport(op, topic, err)
}

func (c *Client) lookup(topic string) (core.Pairing, error) {
	p, err := c.store.Get(topic)
	if err != nil {
		if errors.Is(err, core.ErrUnknownTopic) {
			return core.Pairing{}, fmt.Errorf("%w: %s", core.ErrUnknownTopic, topic)
		}
		return core.Pairing{}, fmt.Errorf("lookup pairing %s: %w", topic, err)
	}
	return p, nil
}
