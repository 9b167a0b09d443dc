// Package wcpairing provides a high-level façade over the pairing client and
// its collaborators (URI decoder, pairing store, relay and diagnostic log
// stream). Most applications interact with this package by:
//  1. Creating a client via New() (optionally overriding the default
//     in-memory store and loopback relay)
//  2. Pairing with a proposal URI (Pair) and listing pairings (GetPairings)
//  3. Observing the Logs and PairingDeletes streams
//
// All defaults are safe for local development and testing; production
// deployments supply a relay.WebSocketRelay and, if pairings must survive
// restarts, a durable store.
package wcpairing

import (
	"context"
	"log/slog"
	"time"

	"github.com/hupe1980/wcpairing/core"
	"github.com/hupe1980/wcpairing/logging"
	"github.com/hupe1980/wcpairing/pairing"
	"github.com/hupe1980/wcpairing/pubsub"
	"github.com/hupe1980/wcpairing/relay"
	"github.com/hupe1980/wcpairing/store"
	"github.com/hupe1980/wcpairing/uri"
)

// Options configures the WCPairing instance.
type Options struct {
	// Relay carries handshake and deletion signals. Defaults to an
	// in-process relay.Loopback, which is closed together with the client.
	// A caller supplied relay is left open.
	Relay core.Relay

	// Collaborators (default to in-memory implementations if not provided)
	Store   core.PairingStore
	Decoder core.URIDecoder

	// LogSuffix tags every diagnostic line.
	LogSuffix string
	// LoggingLevel is the initial threshold of the log stream.
	LoggingLevel logging.LoggingLevel
	// LogSink receives console output. Defaults to stdout, or to Logger when
	// that is set.
	LogSink logging.Sink
	// Logger routes console output through a caller supplied slog logger.
	// Ignored when LogSink is set.
	Logger *slog.Logger
	// RecordAllLevels makes info, warn and error lines replayable too.
	RecordAllLevels bool

	// SubscriberPolicy applies to both Logs and PairingDeletes subscribers.
	SubscriberPolicy pubsub.Policy

	// ExpiryCheckInterval enables the expiry sweep when > 0.
	ExpiryCheckInterval time.Duration
}

// WCPairing is the high-level façade aggregating the pairing client and its
// services.
type WCPairing struct {
	opts      Options
	client    *pairing.Client
	console   *logging.ConsoleLogger
	ownsRelay bool
}

// New creates a new WCPairing instance with optional overrides. Any unset
// service is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *WCPairing {
	opts := Options{
		Store:            store.NewInMemoryStore(),
		Decoder:          uri.NewDecoder(),
		LogSuffix:        "[pairing]",
		LoggingLevel:     logging.LevelWarn,
		SubscriberPolicy: pubsub.Unbounded,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.LogSink == nil && opts.Logger != nil {
		opts.LogSink = logging.LoggerSink{Logger: logging.NewSlogAdapter(opts.Logger)}
	}

	console := logging.NewConsoleLogger(func(o *logging.ConsoleOptions) {
		o.Suffix = opts.LogSuffix
		o.Level = opts.LoggingLevel
		o.Sink = opts.LogSink
		o.RecordAllLevels = opts.RecordAllLevels
		o.Policy = opts.SubscriberPolicy
	})

	ownsRelay := false
	if opts.Relay == nil {
		opts.Relay = relay.NewLoopback(func(o *relay.LoopbackOptions) { o.Logger = console })
		ownsRelay = true
	}

	client := pairing.New(opts.Relay, func(o *pairing.Options) {
		o.Decoder = opts.Decoder
		o.Store = opts.Store
		o.Console = console
		o.DeletePolicy = opts.SubscriberPolicy
		o.ExpiryCheckInterval = opts.ExpiryCheckInterval
	})

	return &WCPairing{opts: opts, client: client, console: console, ownsRelay: ownsRelay}
}

// Pair runs the pairing handshake for a proposal URI.
func (w *WCPairing) Pair(ctx context.Context, rawURI string) error { return w.client.Pair(ctx, rawURI) }

// Disconnect tears down the pairing on topic.
func (w *WCPairing) Disconnect(ctx context.Context, topic string) error {
	return w.client.Disconnect(ctx, topic)
}

// Ping checks the peer on topic is reachable.
func (w *WCPairing) Ping(ctx context.Context, topic string) error { return w.client.Ping(ctx, topic) }

// GetPairings returns the active pairings.
func (w *WCPairing) GetPairings() []core.Pairing { return w.client.GetPairings() }

// Logs subscribes to diagnostic history snapshots.
func (w *WCPairing) Logs() *pubsub.Subscription[[]string] { return w.client.Logs() }

// PairingDeletes subscribes to peer initiated deletions.
func (w *WCPairing) PairingDeletes() *pubsub.Subscription[core.PairingDeleteEvent] {
	return w.client.PairingDeletes()
}

// SetLogging changes the log stream threshold for subsequent calls.
func (w *WCPairing) SetLogging(level logging.LoggingLevel) { w.console.SetLogging(level) }

// Relay returns the relay in use, e.g. the default *relay.Loopback.
func (w *WCPairing) Relay() core.Relay { return w.opts.Relay }

// Close stops the client, ends all subscriptions and closes the default relay.
func (w *WCPairing) Close() error {
	err := w.client.Close()
	w.console.Close()
	if w.ownsRelay {
		if rerr := w.opts.Relay.Close(); err == nil {
			err = rerr
		}
	}
	return err
}
