// Package core provides the foundational domain types and contracts of the
// pairing client. It defines:
//
//   - Pairing, PairingState and the lifecycle None -> Proposed -> Active -> {Deleted, Expired}
//   - Proposal, the decoded form of a pairing URI
//   - PairingDeleteEvent, the payload of peer initiated deletions
//   - PairingClient, the contract exposed to higher layers
//   - URIDecoder, PairingStore and Relay, the collaborators it consumes
//   - Error kinds shared by every implementation
//
// The package keeps implementation concerns (transport, persistence,
// coordination) out of scope, exposing small interfaces so backends can be
// swapped without touching callers.
package core
