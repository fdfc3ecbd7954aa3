// Package memory persists the local agent's conversation in the key-value
// store it operates on.
//
// Persistence model:
//   - Only text messages are stored (role + text) as one JSON array under a
//     single key. Tool blocks are transient.
package memory
