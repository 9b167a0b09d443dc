// Package uri decodes and encodes pairing proposal URIs of the form
//
//	wc:<topic>@<version>?relay-protocol=<protocol>&symKey=<hex>[&relay-data=<data>][&methods=<m1,m2>][&expiryTimestamp=<unix>]
//
// Decoder implements core.URIDecoder. Only version 2 is accepted.
package uri

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/wcpairing/core"
)

const (
	// Scheme is the URI scheme of pairing proposals.
	Scheme = "wc"
	// Version is the only supported protocol version.
	Version = 2

	symKeyLen = 32
)

// Decoder parses pairing URIs.
type Decoder struct{}

// NewDecoder returns a Decoder.
func NewDecoder() *Decoder { return &Decoder{} }

// Decode parses raw into a Proposal. Every failure is a *core.URIError.
func (Decoder) Decode(raw string) (core.Proposal, error) {
	return Parse(raw)
}

// Parse is the function form of Decoder.Decode.
func Parse(raw string) (core.Proposal, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return core.Proposal{}, &core.URIError{Field: "uri", Err: err}
	}
	if u.Scheme != Scheme {
		return core.Proposal{}, &core.URIError{Field: "scheme", Value: u.Scheme}
	}

	// "wc:topic@2" has no authority, so everything before '?' lands in Opaque.
	topic, version, ok := strings.Cut(u.Opaque, "@")
	if !ok || topic == "" {
		return core.Proposal{}, &core.URIError{Field: "topic", Value: u.Opaque}
	}

	v, err := strconv.Atoi(version)
	if err != nil {
		return core.Proposal{}, &core.URIError{Field: "version", Value: version, Err: err}
	}
	if v != Version {
		return core.Proposal{}, &core.URIError{Field: "version", Value: version}
	}

	q := u.Query()

	protocol := q.Get("relay-protocol")
	if protocol == "" {
		return core.Proposal{}, &core.URIError{Field: "relay-protocol"}
	}

	symKey := q.Get("symKey")
	if b, err := hex.DecodeString(symKey); err != nil || len(b) != symKeyLen {
		return core.Proposal{}, &core.URIError{Field: "symKey", Value: symKey, Err: err}
	}

	p := core.Proposal{
		Topic:   topic,
		Version: v,
		SymKey:  symKey,
		Relay:   core.RelayProtocol{Protocol: protocol, Data: q.Get("relay-data")},
		Methods: parseMethods(q.Get("methods")),
	}

	if ts := q.Get("expiryTimestamp"); ts != "" {
		secs, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			return core.Proposal{}, &core.URIError{Field: "expiryTimestamp", Value: ts, Err: err}
		}
		p.Expiry = time.Unix(secs, 0).UTC()
	}

	return p, nil
}

// Encode renders p as a pairing URI.
func Encode(p core.Proposal) string {
	q := url.Values{}
	q.Set("relay-protocol", p.Relay.Protocol)
	if p.Relay.Data != "" {
		q.Set("relay-data", p.Relay.Data)
	}
	q.Set("symKey", p.SymKey)
	if len(p.Methods) > 0 {
		q.Set("methods", strings.Join(p.Methods, ","))
	}
	if !p.Expiry.IsZero() {
		q.Set("expiryTimestamp", strconv.FormatInt(p.Expiry.Unix(), 10))
	}

	version := p.Version
	if version == 0 {
		version = Version
	}

	return fmt.Sprintf("%s:%s@%d?%s", Scheme, p.Topic, version, q.Encode())
}

// parseMethods accepts "a,b" as well as the bracketed "[a],[b]" form.
func parseMethods(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, m := range strings.Split(s, ",") {
		m = strings.Trim(strings.TrimSpace(m), "[]")
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}
