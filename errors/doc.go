// Package errors provides the standardized error handling patterns used by
// the groupme-cli core packages. It defines an error taxonomy matching the
// failure domains of the system, standard error variables, and helper
// functions for consistent error wrapping and classification.
//
// # Error Classification
//
//   - Transport: network/socket/TLS failures on the push connection or an
//     abrupt close. Fatal to the current session; never retried by the core.
//   - Protocol: malformed or unexpected handshake/subscribe replies on the
//     publish/subscribe protocol. Fatal.
//   - Fetch: the REST call underlying a pagination step failed. Propagated
//     to the caller per page; aborts the current pagination call.
//   - Invalid: invalid input or configuration. Do not retry.
//
// Retry and backoff policy deliberately lives outside the core packages:
// CLI/web glue may consult IsTransport/IsFetch and apply pkg/retry.
//
// # Quick Start
//
// Wrap errors at package boundaries with context following the pattern
// "component.method: action failed: %w":
//
//	if err := conn.WriteJSON(msg); err != nil {
//	    return errors.WrapTransport(err, "transport", "Send", "write frame")
//	}
//
// Classify errors at the call site:
//
//	if errors.IsFetch(err) {
//	    // surface per-page failure, abort the walk
//	}
package errors
