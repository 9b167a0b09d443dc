package pairing

import (
	"time"

	"github.com/hupe1980/wcpairing/core"
	"github.com/hupe1980/wcpairing/logging"
	"github.com/hupe1980/wcpairing/pubsub"
	"github.com/hupe1980/wcpairing/store"
	"github.com/hupe1980/wcpairing/uri"
)

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// Decoder turns pairing URIs into proposals.
	Decoder core.URIDecoder
	// Store persists active pairings.
	Store core.PairingStore
	// Console is the diagnostic stream behind Logs. The client also logs
	// through it.
	Console *logging.ConsoleLogger
	// DeletePolicy bounds how far a PairingDeletes subscriber may fall behind.
	DeletePolicy pubsub.Policy
	// ExpiryCheckInterval enables the expiry sweep when > 0.
	ExpiryCheckInterval time.Duration
	// PairingTTL is applied to activated pairings whose URI had no expiry.
	PairingTTL time.Duration
	// CleanupTimeout bounds best-effort relay calls issued after the
	// caller's context is already gone (unsubscribe on rollback).
	CleanupTimeout time.Duration
	// Clock defaults to time.Now.
	Clock func() time.Time
}

func defaultOptions() Options {
	return Options{
		Decoder:        uri.NewDecoder(),
		Store:          store.NewInMemoryStore(),
		DeletePolicy:   pubsub.Unbounded,
		PairingTTL:     core.DefaultPairingTTL,
		CleanupTimeout: 5 * time.Second,
		Clock:          time.Now,
	}
}
