// Package store houses concrete implementations of core.PairingStore. The
// interface itself lives in core so the client depends only on the contract.
//
// Add durable backends in sub-packages without changing any calling code;
// only the wiring layer decides which implementation to instantiate.
package store
