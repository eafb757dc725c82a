// Package credential validates and masks the Google API keys that
// authenticate LLM calls. The check is advisory input validation: a key
// that passes may still be rejected by the provider.
package credential

import (
	"errors"
	"strings"
)

// KeyPrefix is the literal prefix of Google API keys.
const KeyPrefix = "AIza"

// MinKeyLength is the shortest key accepted.
const MinKeyLength = 30

var (
	// ErrEmpty is returned for an empty or whitespace-only key.
	ErrEmpty = errors.New("API key cannot be empty")

	// ErrInvalidPrefix is returned when the key lacks the Google prefix.
	ErrInvalidPrefix = errors.New("Invalid API key format. Google API keys should start with 'AIza'") //nolint:staticcheck // user-facing text

	// ErrTooShort is returned for keys below MinKeyLength.
	ErrTooShort = errors.New("API key seems too short. Please check your key") //nolint:staticcheck // user-facing text

	// ErrMissing is returned when an LLM operation has neither a session key
	// nor a server key to authenticate with.
	ErrMissing = errors.New("no API key configured. Set a key for this session or configure the server key")

	// ErrRejected is returned when the provider refuses the key (401/403).
	ErrRejected = errors.New("API key was rejected by the provider")
)

// Error is the CredentialError of the pipeline: a missing, malformed or
// rejected key.
// It blocks LLM-dependent operations and is never retried.
type Error struct {
	Masked string // masked key, empty when no key was supplied
	Err    error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsCredentialError reports whether err is (or wraps) a credential error.
func IsCredentialError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

// Validate checks key format. Surrounding whitespace is ignored.
func Validate(key string) error {
	key = strings.TrimSpace(key)
	switch {
	case key == "":
		return &Error{Err: ErrEmpty}
	case !strings.HasPrefix(key, KeyPrefix):
		return &Error{Masked: Mask(key), Err: ErrInvalidPrefix}
	case len(key) < MinKeyLength:
		return &Error{Masked: Mask(key), Err: ErrTooShort}
	}
	return nil
}

// Mask renders a key safe for display and logs: the first 8 and last 4
// characters around "...". Keys too short to mask that way are fully hidden.
func Mask(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if len(key) <= 12 {
		return strings.Repeat("*", len(key))
	}
	return key[:8] + "..." + key[len(key)-4:]
}

// Resolve picks the key an LLM call authenticates with: the session key when
// set, otherwise the server key. With neither it returns ErrMissing.
func Resolve(sessionKey, serverKey string) (string, error) {
	if k := strings.TrimSpace(sessionKey); k != "" {
		return k, nil
	}
	if k := strings.TrimSpace(serverKey); k != "" {
		return k, nil
	}
	return "", &Error{Err: ErrMissing}
}
