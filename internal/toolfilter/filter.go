// Package toolfilter hides tools the operator has switched off. A disabled
// tool is left out of tools/list and treated as unknown by tools/call.
package toolfilter

import (
	"slices"
	"strings"

	"github.com/patrickdappollonio/mcp-sls-logs/internal/env"
)

// EnvKeys are consulted, in order, when no explicit list is configured.
var EnvKeys = []string{"SLS_DISABLED_TOOLS", "DISABLED_TOOLS"}

// Filter matches tool names against a disabled list, ignoring case. The zero
// value and a nil *Filter disable nothing.
type Filter struct {
	disabled []string
}

// New creates a Filter from a comma or whitespace separated list. An empty
// value falls back to the first non-empty variable in EnvKeys.
func New(value string) *Filter {
	if strings.TrimSpace(value) == "" {
		value = env.FirstDefault("", EnvKeys...)
	}

	return &Filter{disabled: Parse(value)}
}

// FromList creates a Filter from names that are already split.
func FromList(names []string) *Filter {
	return &Filter{disabled: slices.Clone(names)}
}

// IsDisabled reports whether name is on the disabled list.
func (f *Filter) IsDisabled(name string) bool {
	if f == nil || name == "" {
		return false
	}

	return slices.ContainsFunc(f.disabled, func(d string) bool {
		return strings.EqualFold(d, name)
	})
}

// Disabled returns a copy of the disabled list.
func (f *Filter) Disabled() []string {
	if f == nil {
		return nil
	}
	return slices.Clone(f.disabled)
}

// Parse splits value on commas and whitespace, dropping empty entries.
func Parse(value string) []string {
	if value == "" {
		return nil
	}

	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}
