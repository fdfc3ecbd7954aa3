// Package store adapts a Redis-compatible key-value store to four operations:
// put, get, delete and list-keys.
//
// The adapter owns a single client for the process lifetime. It is opened and
// checked with PING once in New; afterwards every operation is one round trip.
// Failures are reported as:
//   - ErrStoreUnavailable when the startup liveness check fails.
//   - *OperationError (matching ErrOperationFailed) for any operation failure.
//
// A missing key is not an error: Get reports found=false and Delete succeeds.
package store
