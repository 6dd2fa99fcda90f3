// Package env reads settings from environment variables that may be known
// under more than one name, such as SLS_ACCESS_KEY_ID and the generic
// ALIBABA_CLOUD_ACCESS_KEY_ID.
package env

import (
	"os"
	"strings"
)

// Lookup returns the first variable in keys holding a non-blank value, along
// with the name it was found under. Values are trimmed of surrounding
// whitespace.
func Lookup(keys ...string) (key, value string, ok bool) {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return k, v, true
		}
	}

	return "", "", false
}

// FirstDefault returns the value of the first variable in keys that is set,
// otherwise defaultValue.
func FirstDefault(defaultValue string, keys ...string) string {
	if _, value, ok := Lookup(keys...); ok {
		return value
	}

	return defaultValue
}
