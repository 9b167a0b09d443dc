package core

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedURI is returned when a pairing URI cannot be decoded.
	ErrMalformedURI = errors.New("malformed pairing uri")
	// ErrAlreadyPaired is returned when the proposal's topic is already proposed or active.
	ErrAlreadyPaired = errors.New("topic already paired")
	// ErrUnknownTopic is returned when no active pairing exists for a topic.
	ErrUnknownTopic = errors.New("unknown pairing topic")
	// ErrTransportFailure marks every error originating in the relay.
	ErrTransportFailure = errors.New("relay transport failure")
	// ErrOperationCancelled is returned when the caller abandons an in-flight operation.
	ErrOperationCancelled = errors.New("operation cancelled")
	// ErrClientClosed is returned by operations issued after Close.
	ErrClientClosed = errors.New("pairing client closed")
)

// URIError describes why a pairing URI was rejected. It unwraps to
// ErrMalformedURI so callers only need errors.Is.
type URIError struct {
	Field string // offending component: "scheme", "topic", "version", "symKey", ...
	Value string
	Err   error // optional underlying parse error
}

func (e *URIError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s", ErrMalformedURI, e.Field)
	if e.Value != "" {
		msg += fmt.Sprintf(" %q", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *URIError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedURI}
	}
	return []error{ErrMalformedURI, e.Err}
}

// TransportError wraps a failure reported by the relay collaborator.
type TransportError struct {
	Op    string // "subscribe", "activate", "delete", "ping", "unsubscribe"
	Topic string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("relay %s %s: %v", e.Op, e.Topic, e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransportFailure, e.Err} }

// WrapTransport builds a TransportError. A nil err yields nil.
func WrapTransport(op, topic string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Op: op, Topic: topic, Err: err}
}
