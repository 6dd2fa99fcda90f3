// Package logquery turns the untyped arguments of a get_logs tool call into a
// typed Query. Nothing past this package ever sees the raw argument map.
package logquery

import (
	"encoding/json"
	"fmt"
	"math"
)

// Argument names as they appear in the tool's input schema.
const (
	ArgFrom  = "from"
	ArgTo    = "to"
	ArgLine  = "line"
	ArgTopic = "topic"
	ArgQuery = "query"
)

// Defaults applied to optional arguments.
const (
	DefaultLine  int64 = 10
	DefaultTopic       = ""
	DefaultQuery       = ""
)

// Query is a validated log query. From and To are unix seconds; no ordering
// between them is enforced, the remote service decides what to do with it.
type Query struct {
	From  int64  `json:"from"`
	To    int64  `json:"to"`
	Line  int64  `json:"line"`
	Topic string `json:"topic"`
	Query string `json:"query"`
}

// ValidationError reports arguments that don't match the tool's schema.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid argument %q: %s", e.Field, e.Message)
}

// Validate checks raw tool-call arguments and returns a fully populated Query.
// The arguments must be a JSON object with numeric "from" and "to"; "line",
// "topic" and "query" are optional and fall back to their defaults when absent
// or null.
func Validate(raw any) (Query, error) {
	if raw == nil {
		return Query{}, &ValidationError{Message: "arguments are required and must include numeric \"from\" and \"to\" fields"}
	}

	args, ok := raw.(map[string]any)
	if !ok {
		return Query{}, &ValidationError{Message: fmt.Sprintf("arguments must be an object, got %T", raw)}
	}

	from, err := requiredNumber(args, ArgFrom)
	if err != nil {
		return Query{}, err
	}

	to, err := requiredNumber(args, ArgTo)
	if err != nil {
		return Query{}, err
	}

	line, err := optionalNumber(args, ArgLine, DefaultLine)
	if err != nil {
		return Query{}, err
	}

	topic, err := optionalString(args, ArgTopic, DefaultTopic)
	if err != nil {
		return Query{}, err
	}

	query, err := optionalString(args, ArgQuery, DefaultQuery)
	if err != nil {
		return Query{}, err
	}

	return Query{
		From:  from,
		To:    to,
		Line:  line,
		Topic: topic,
		Query: query,
	}, nil
}

func requiredNumber(args map[string]any, name string) (int64, error) {
	value, found := args[name]
	if !found || value == nil {
		return 0, &ValidationError{Field: name, Message: "is required and must be a number"}
	}

	n, ok := toInt64(value)
	if !ok {
		return 0, numberError(name, value)
	}

	return n, nil
}

func optionalNumber(args map[string]any, name string, def int64) (int64, error) {
	value, found := args[name]
	if !found || value == nil {
		return def, nil
	}

	n, ok := toInt64(value)
	if !ok {
		return 0, numberError(name, value)
	}

	return n, nil
}

func numberError(name string, value any) *ValidationError {
	switch value.(type) {
	case float64, float32, json.Number, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return &ValidationError{Field: name, Message: fmt.Sprintf("must be a finite number within the int64 range, got %v", value)}
	default:
		return &ValidationError{Field: name, Message: fmt.Sprintf("must be a number, got %T", value)}
	}
}

func optionalString(args map[string]any, name string, def string) (string, error) {
	value, found := args[name]
	if !found || value == nil {
		return def, nil
	}

	s, ok := value.(string)
	if !ok {
		return "", &ValidationError{Field: name, Message: fmt.Sprintf("must be a string, got %T", value)}
	}

	return s, nil
}

// toInt64 accepts the shapes a JSON number can take after decoding, plus any
// Go integer type. Fractions are truncated toward zero; values outside the
// int64 range are rejected.
func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case float64:
		return floatToInt64(v)
	case float32:
		return floatToInt64(float64(v))
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return uintToInt64(uint64(v))
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return uintToInt64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt64(f)
	default:
		return 0, false
	}
}

func floatToInt64(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 can't hold.
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func uintToInt64(u uint64) (int64, bool) {
	if u > math.MaxInt64 {
		return 0, false
	}
	return int64(u), true
}
