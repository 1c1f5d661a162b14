package llm

import (
	"errors"
	"strings"
)

// ErrExhausted is the terminal error returned when every configured attempt
// has failed. It always wraps the last underlying provider error.
var ErrExhausted = errors.New("all model attempts exhausted")

// transientSignatures are error fragments that indicate a retry against the
// fallback model is worthwhile. Anything else aborts immediately.
var transientSignatures = []string{
	"rate limit",
	"rate_limit",
	"timeout",
	"overloaded",
	"capacity",
	"unavailable",
	"try again",
	"too many requests",
	"429",
	"503",
	"504",
}

// IsTransient reports whether the error matches a known-transient provider
// failure signature.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range transientSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}
