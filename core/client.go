package core

import (
	"context"
	"time"

	"github.com/hupe1980/wcpairing/pubsub"
)

// PairingClient is the contract exposed to higher layers. Pair and
// Disconnect block until the operation resolves or ctx is done; the
// streams returned by Logs and PairingDeletes never fail and never end
// until the subscription or the client is closed.
type PairingClient interface {
	Pair(ctx context.Context, uri string) error
	Disconnect(ctx context.Context, topic string) error
	GetPairings() []Pairing
	Logs() *pubsub.Subscription[[]string]
	PairingDeletes() *pubsub.Subscription[PairingDeleteEvent]
}

// URIDecoder turns a pairing URI into a Proposal. Failures should wrap
// ErrMalformedURI (see URIError).
type URIDecoder interface {
	Decode(uri string) (Proposal, error)
}

// PairingStore persists active pairings. Get and Delete must return an
// error wrapping ErrUnknownTopic for topics that are not stored.
type PairingStore interface {
	Save(p Pairing) error
	Get(topic string) (Pairing, error)
	List() ([]Pairing, error)
	Delete(topic string) error
}

// Relay is the message transport carrying handshake and deletion signals.
// All blocking methods must honour ctx cancellation. Remote deletions are
// reported asynchronously on Deletions; the channel is closed by Close.
type Relay interface {
	Subscribe(ctx context.Context, topic string) error
	Unsubscribe(ctx context.Context, topic string) error
	// Activate completes the handshake for a proposal and returns whatever
	// the peer announced about itself (nil if nothing).
	Activate(ctx context.Context, p Proposal) (*AppMetadata, error)
	Delete(ctx context.Context, topic string, reason Reason) error
	Ping(ctx context.Context, topic string) error
	Deletions() <-chan RemoteDeletion
	Close() error
}

// DefaultPairingTTL bounds an activated pairing whose URI carried no expiry.
const DefaultPairingTTL = 30 * 24 * time.Hour
