// Package relay provides core.Relay implementations.
//
//   - Loopback is an in-process relay for tests and demos. The peer side is
//     simulated through hooks and InjectRemoteDelete.
//   - WebSocketRelay speaks JSON-RPC 2.0 over a websocket connection to a
//     relay server. Frames are encoded with a Codec: JSONCodec (text frames,
//     default) or CBORCodec (binary frames).
//
// Relays only move signals. Retries, backoff and encryption are out of scope.
package relay
