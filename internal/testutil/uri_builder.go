package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/hupe1980/wcpairing/core"
	"github.com/hupe1980/wcpairing/uri"
)

// ProposalBuilder helps construct pairing proposals and their URIs with
// fluent chaining for tests.
// Example:
//
//	raw := NewProposalBuilder("topic-1").Methods("wc_sessionPropose").URI()
type ProposalBuilder struct {
	p core.Proposal
}

// NewProposalBuilder starts a valid version 2 proposal on topic with a
// random symmetric key and the irn relay protocol.
func NewProposalBuilder(topic string) *ProposalBuilder {
	return &ProposalBuilder{p: core.Proposal{
		Topic:   topic,
		Version: uri.Version,
		SymKey:  RandomSymKey(),
		Relay:   core.RelayProtocol{Protocol: "irn"},
	}}
}

// Methods sets the methods the proposer supports (chainable).
func (b *ProposalBuilder) Methods(m ...string) *ProposalBuilder {
	b.p.Methods = append(b.p.Methods, m...)
	return b
}

// Expiry sets the proposal expiry (chainable).
func (b *ProposalBuilder) Expiry(t time.Time) *ProposalBuilder {
	b.p.Expiry = t.UTC().Truncate(time.Second)
	return b
}

// Build returns the proposal.
func (b *ProposalBuilder) Build() core.Proposal { return b.p }

// URI returns the encoded pairing URI.
func (b *ProposalBuilder) URI() string { return uri.Encode(b.p) }

// PairingURI is shorthand for NewProposalBuilder(topic).URI().
func PairingURI(topic string) string { return NewProposalBuilder(topic).URI() }

// RandomSymKey returns 32 random bytes hex encoded.
func RandomSymKey() string {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}
