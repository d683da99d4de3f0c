package tools

import (
	"fmt"
	"slices"
	"strings"
)

// ArgumentError reports a tool argument that is missing or unusable.
type ArgumentError struct {
	Name   string
	Reason string
}

func (e *ArgumentError) Error() string {
	return e.Reason
}

// GetString is a helper to extract a string parameter with a default value
func GetString(params map[string]any, key, defaultValue string) string {
	if val, ok := params[key]; ok {
		if str, ok := val.(string); ok && str != "" {
			return str
		}
	}
	return defaultValue
}

// RequireString extracts a required string parameter. The value is returned
// as given; an empty string counts as present.
func RequireString(params map[string]any, key string) (string, error) {
	val, ok := params[key]
	if !ok || val == nil {
		return "", &ArgumentError{Name: key, Reason: fmt.Sprintf("missing required argument: %s", key)}
	}
	str, ok := val.(string)
	if !ok {
		return "", &ArgumentError{Name: key, Reason: fmt.Sprintf("argument %s must be a string, got %T", key, val)}
	}
	return str, nil
}

// OptionalEnum extracts an optional string parameter constrained to values,
// substituting defaultValue when it is absent or empty.
func OptionalEnum(params map[string]any, key, defaultValue string, values []string) (string, error) {
	if val, ok := params[key]; ok && val != nil {
		if _, isString := val.(string); !isString {
			return "", &ArgumentError{Name: key, Reason: fmt.Sprintf("argument %s must be a string, got %T", key, val)}
		}
	}
	str := GetString(params, key, defaultValue)
	if !slices.Contains(values, str) {
		return "", &ArgumentError{
			Name:   key,
			Reason: fmt.Sprintf("invalid %s %q: must be one of %s", key, str, strings.Join(values, ", ")),
		}
	}
	return str, nil
}
