// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing pairing URIs, proposals and pairings. They
// are not intended for production usage.
package testutil
