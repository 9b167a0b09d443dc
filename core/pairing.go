package core

import (
	"time"
)

// PairingState tracks where a pairing is in its lifecycle:
//
//	None -> Proposed -> Active -> {Deleted, Expired}
//
// Deleted and Expired are terminal. A topic may be reused once the previous
// pairing on it reached a terminal state.
//
// Only Active pairings are ever stored or returned by GetPairings. A
// Proposed topic is tracked by the client until its handshake resolves, and
// reaching Deleted or Expired removes the pairing; the named states exist
// for logging and for callers modelling the lifecycle.
type PairingState int

const (
	// PairingStateNone is the zero value: no pairing exists for the topic.
	PairingStateNone PairingState = iota
	// PairingStateProposed marks a pairing whose handshake is in flight.
	PairingStateProposed
	// PairingStateActive marks a completed handshake.
	PairingStateActive
	// PairingStateDeleted marks a pairing removed locally or by the peer.
	PairingStateDeleted
	// PairingStateExpired marks a pairing removed by the expiry sweep.
	PairingStateExpired
)

// String returns the lower case name of the state.
func (s PairingState) String() string {
	switch s {
	case PairingStateNone:
		return "none"
	case PairingStateProposed:
		return "proposed"
	case PairingStateActive:
		return "active"
	case PairingStateDeleted:
		return "deleted"
	case PairingStateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transitions are possible.
func (s PairingState) IsTerminal() bool {
	return s == PairingStateDeleted || s == PairingStateExpired
}

// RelayProtocol names the relay a pairing is reachable through.
type RelayProtocol struct {
	Protocol string `json:"protocol"`
	Data     string `json:"data,omitempty"`
}

// AppMetadata describes the peer application. It is optional and filled in
// by the relay during activation when the peer announces itself.
type AppMetadata struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url,omitempty"`
	Icons       []string `json:"icons,omitempty"`
}

// Pairing is a logical session between two peers identified by Topic. Stored
// pairings are always in PairingStateActive.
type Pairing struct {
	Topic    string        `json:"topic"`
	State    PairingState  `json:"state"`
	Relay    RelayProtocol `json:"relay"`
	Metadata *AppMetadata  `json:"metadata,omitempty"`
	Expiry   time.Time     `json:"expiry"`
	Methods  []string      `json:"methods,omitempty"`
}

// Clone returns a deep copy safe for independent mutation.
func (p Pairing) Clone() Pairing {
	c := p
	if p.Metadata != nil {
		md := *p.Metadata
		md.Icons = append([]string(nil), p.Metadata.Icons...)
		c.Metadata = &md
	}
	if p.Methods != nil {
		c.Methods = append([]string(nil), p.Methods...)
	}
	return c
}

// IsExpired reports whether the pairing's expiry lies at or before now.
// A zero Expiry never expires.
func (p Pairing) IsExpired(now time.Time) bool {
	return !p.Expiry.IsZero() && !now.Before(p.Expiry)
}

// Proposal is a decoded pairing URI produced by the initiating peer.
type Proposal struct {
	Topic   string
	Version int
	SymKey  string
	Relay   RelayProtocol
	Methods []string
	// Expiry is zero when the URI did not carry an expiryTimestamp.
	Expiry time.Time
}

// PairingDeleteEvent is published when the peer deletes a pairing. It is
// ordinary payload, never an error.
type PairingDeleteEvent struct {
	Topic   string `json:"topic"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RemoteDeletion is reported by a Relay when the peer tears down a pairing.
type RemoteDeletion struct {
	Topic   string
	Code    int
	Message string
}

// Reason is the payload sent alongside a locally initiated delete.
type Reason struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// UserDisconnected is the reason sent when Disconnect tears down a pairing.
var UserDisconnected = Reason{Code: 6000, Message: "User disconnected."}
