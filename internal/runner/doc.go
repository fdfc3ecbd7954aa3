// Package runner coordinates message exchange with the Anthropic Messages API
// and dispatches tool calls through a tools.Dispatcher.
//
// Invariant:
//   - every tool_use in a response gets exactly one tool_result, in order,
//     returned to the caller to be sent back as the next user message.
//
// Flow:
//
//	user(text) -> assistant(tool_use) -> user(tool_result) -> assistant(text)
package runner
