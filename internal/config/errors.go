package config

import (
	"fmt"
	"strings"
)

// SetupHint is appended to configuration errors the user can fix interactively
const SetupHint = "Try running `zev --setup`."

// Error is a configuration error naming the offending key
type Error struct {
	Key     string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// MissingKey reports a required setting that is not present
func MissingKey(key string) *Error {
	return &Error{
		Key:     key,
		Message: fmt.Sprintf("%s must be set. %s", key, SetupHint),
	}
}

// InvalidProvider reports an LLM_PROVIDER value outside the supported set
func InvalidProvider(value string) *Error {
	names := make([]string, len(Providers))
	for i, p := range Providers {
		names[i] = string(p)
	}
	return &Error{
		Key: KeyLLMProvider,
		Message: fmt.Sprintf("Invalid LLM provider: %q (expected one of: %s). %s",
			value, strings.Join(names, ", "), SetupHint),
	}
}
