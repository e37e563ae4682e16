// Package errors defines the error taxonomy of the resolution pipeline.
// ResolveError carries a type tag so callers can distinguish rate limits
// and unreliable packs from plain provider failures.
package errors

import (
	"errors"
	"fmt"
)

// ResolveError represents errors raised while resolving a pack.
type ResolveError struct {
	Type    string
	Message string
	Cause   error
}

func (e *ResolveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *ResolveError) Unwrap() error {
	return e.Cause
}

// Error type constants
const (
	ErrorTypeParse          = "PARSE_FAILED"
	ErrorTypeProvider       = "PROVIDER_FAILED"
	ErrorTypeRateLimit      = "RATE_LIMITED"
	ErrorTypeNotFound       = "NOT_FOUND"
	ErrorTypeUnreliablePack = "UNRELIABLE_PACK"
)

// NewParseError reports malformed torrent metadata; the source is
// unusable and the caller moves to the next one.
func NewParseError(message string, cause error) *ResolveError {
	return &ResolveError{Type: ErrorTypeParse, Message: message, Cause: cause}
}

// NewProviderError reports a network or HTTP failure other than rate
// limiting.
func NewProviderError(provider, message string, cause error) *ResolveError {
	return &ResolveError{Type: ErrorTypeProvider, Message: fmt.Sprintf("[%s] %s", provider, message), Cause: cause}
}

// NewRateLimitError reports an exhausted retry budget against a
// provider returning HTTP 429. It is distinct from a provider failure
// so callers defer the pack instead of discarding it.
func NewRateLimitError(provider string, cause error) *ResolveError {
	return &ResolveError{Type: ErrorTypeRateLimit, Message: fmt.Sprintf("[%s] rate limited", provider), Cause: cause}
}

// NewNotFoundError reports that the requested target is absent from an
// otherwise valid pack. This is a normal outcome, not a fault.
func NewNotFoundError(message string) *ResolveError {
	return &ResolveError{Type: ErrorTypeNotFound, Message: message}
}

// NewUnreliablePackError reports a fetched pack in which not a single
// file yielded structured metadata. Callers may use it to deprioritize
// the source.
func NewUnreliablePackError(infoHash string) *ResolveError {
	return &ResolveError{Type: ErrorTypeUnreliablePack, Message: fmt.Sprintf("no parseable files in pack %s", infoHash)}
}

func isType(err error, errorType string) bool {
	var re *ResolveError
	if errors.As(err, &re) {
		return re.Type == errorType
	}
	return false
}

// IsRateLimit reports whether err is a rate-limit error.
func IsRateLimit(err error) bool { return isType(err, ErrorTypeRateLimit) }

// IsNotFound reports whether err is a not-found outcome.
func IsNotFound(err error) bool { return isType(err, ErrorTypeNotFound) }

// IsUnreliablePack reports whether err marks a pack without any
// parseable structure.
func IsUnreliablePack(err error) bool { return isType(err, ErrorTypeUnreliablePack) }

// IsParse reports whether err is a metadata parse failure.
func IsParse(err error) bool { return isType(err, ErrorTypeParse) }
