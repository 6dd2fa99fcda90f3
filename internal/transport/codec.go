package transport

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"github.com/sourcegraph/jsonrpc2"
	"go.uber.org/zap"
)

// lineCodec reads and writes one JSON-RPC object per line. A line that isn't
// a JSON-RPC message is answered with an error carrying a null id and then
// skipped, so a single bad frame doesn't end the session.
type lineCodec struct {
	// out receives rejection replies. Handlers run on the read loop, so
	// nothing else is writing while ReadObject is.
	out    io.Writer
	logger *zap.Logger
}

// rejection is a JSON-RPC error response whose id could not be determined.
type rejection struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Error   *jsonrpc2.Error `json:"error"`
}

func (c *lineCodec) WriteObject(stream io.Writer, obj any) error {
	return json.NewEncoder(stream).Encode(obj)
}

func (c *lineCodec) ReadObject(stream *bufio.Reader, v any) error {
	for {
		line, readErr := stream.ReadBytes('\n')

		frame := bytes.TrimSpace(line)
		if len(frame) == 0 {
			if readErr != nil {
				return readErr
			}
			continue
		}

		err := json.Unmarshal(frame, v)
		if err == nil {
			return nil
		}

		// Drop whatever the failed decode left behind.
		reflect.ValueOf(v).Elem().SetZero()

		if err := c.reject(frame, err); err != nil {
			return err
		}

		if readErr != nil {
			return readErr
		}
	}
}

func (c *lineCodec) reject(frame []byte, cause error) error {
	rpcErr := &jsonrpc2.Error{
		Code:    jsonrpc2.CodeInvalidRequest,
		Message: fmt.Sprintf("invalid request: %s", cause),
	}
	if !json.Valid(frame) {
		rpcErr = &jsonrpc2.Error{
			Code:    jsonrpc2.CodeParseError,
			Message: fmt.Sprintf("parse error: %s", cause),
		}
	}

	c.logger.Warn("rejected malformed frame", zap.Int64("code", rpcErr.Code), zap.Error(cause))

	if err := json.NewEncoder(c.out).Encode(rejection{JSONRPC: "2.0", Error: rpcErr}); err != nil {
		return fmt.Errorf("failed to write rejection: %w", err)
	}
	return nil
}
