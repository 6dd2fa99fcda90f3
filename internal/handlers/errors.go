package handlers

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// JSON-RPC error codes used for protocol-level rejections.
const (
	CodeMethodNotFound = mcp.METHOD_NOT_FOUND
	CodeInvalidParams  = mcp.INVALID_PARAMS
)

// ProtocolError rejects a request before any remote call is made: an unknown
// tool or arguments that don't match the tool's schema. It is reported to the
// client as a JSON-RPC error, never as a tool result.
type ProtocolError struct {
	Code    int
	Message string
}

func (e *ProtocolError) Error() string {
	return e.Message
}

func methodNotFound(name string) *ProtocolError {
	return &ProtocolError{
		Code:    CodeMethodNotFound,
		Message: fmt.Sprintf("unknown tool: %s", name),
	}
}

func invalidParams(err error) *ProtocolError {
	return &ProtocolError{
		Code:    CodeInvalidParams,
		Message: err.Error(),
	}
}

// AsProtocolError returns the *ProtocolError in err's chain, if any.
func AsProtocolError(err error) (*ProtocolError, bool) {
	var perr *ProtocolError
	if errors.As(err, &perr) {
		return perr, true
	}
	return nil, false
}
