// Package pairing implements core.PairingClient.
//
// A Client owns one coordinator goroutine that applies every change to the
// pairing set: reserving a topic for a handshake, activating it, rolling it
// back, removing it on disconnect, remote deletion or expiry. Callers never
// mutate the set themselves; they submit a transition and wait for it to be
// applied. Relay I/O runs in the caller's goroutine between transitions, so
// independent handshakes proceed in parallel while the set stays consistent.
//
// Cancelling the context passed to Pair or Disconnect abandons the relay call
// and rolls back whatever the operation had reserved; a cancelled Pair never
// leaves a Proposed entry behind.
package pairing
