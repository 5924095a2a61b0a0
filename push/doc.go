// Package push implements the real-time event-streaming client: a
// long-lived websocket connection to the push endpoint carrying a
// Bayeux-style publish/subscribe envelope protocol.
//
// The package is layered leaves-first:
//
//   - Transport: one bidirectional message-stream connection. Dials,
//     sends, receives raw JSON frames, and guarantees the socket is
//     closed exactly once on every exit path.
//   - Envelope: one message unit of the wire protocol. A received frame
//     is either a single envelope object or a batch (JSON array); batches
//     are demultiplexed and non-object entries are skipped.
//   - Session: the handshake/subscribe/stream state machine. It performs
//     the protocol handshake (carrying the bearer credential in the ext
//     extension), subscribes the requested channels with the server-
//     assigned session id, then enters an unbounded receive loop.
//   - Stream: a cancellable channel-backed iterator of domain Events.
//     The stream has no defined end under normal operation; it terminates
//     only on transport failure or caller cancellation. Cancelling the
//     context closes the connection, which releases the server-side
//     subscription; no explicit unsubscribe message is sent.
//
// The session never retries or reconnects. Transport failures are fatal
// to the session and surface as classified transport errors; retry policy
// belongs to the caller.
//
// Concurrency model: one session owns one connection and one receive
// loop. Send calls (handshake, subscribe) are strictly sequenced before
// the receive loop starts, so no locking guards the connection. Events
// are delivered over an unbuffered channel: the caller processes one
// event before the next receive is issued, which is the only
// backpressure mechanism by design of the protocol.
package push
