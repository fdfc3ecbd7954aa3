package tools

import (
	"encoding/json"
	"errors"
)

// Error codes carried by ToolError.
const (
	CodeInvalidInput   = "ERR_INVALID_INPUT"
	CodeStoreOperation = "ERR_STORE_OPERATION"
	CodeUnknownTool    = "ERR_UNKNOWN_TOOL"
)

// ToolError is the single error kind returned across the dispatcher boundary.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error returns a compact, single-line JSON string to keep tool results small.
func (e ToolError) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// AsToolError converts err into a ToolError. Errors that are not already
// ToolErrors are reported under CodeStoreOperation with their message.
func AsToolError(err error) ToolError {
	var te ToolError
	if errors.As(err, &te) {
		return te
	}
	return ToolError{Code: CodeStoreOperation, Message: err.Error()}
}

func invalidInput(msg string) ToolError {
	return ToolError{Code: CodeInvalidInput, Message: msg}
}
