// Package pubsub implements the multicast channels used by the pairing
// client (log history snapshots and pairing delete events).
//
// A Hub keeps an explicit registry of subscribers. Publishing never blocks:
// every subscriber owns a private queue drained by its own goroutine into
// the channel returned by Subscription.C, so a slow reader only ever delays
// itself. Delivery per subscriber is in publish order; nothing is promised
// about the relative timing of two different subscribers.
//
// How much a subscriber may fall behind is governed by its Policy. The
// default, Unbounded, queues without limit. DropOldest(n) keeps at most n
// undelivered values and discards the oldest when a new one arrives, which
// suits snapshot streams where the newest value supersedes the rest.
package pubsub
