// Package constants defines timeout values and retry limits used
// throughout the application.
package constants

import "time"

const (
	// Per-provider timeouts for external fetches
	DebridTimeout = 30 * time.Second
	MirrorTimeout = 8 * time.Second

	// Rate-limit backoff: base delay doubled per attempt, capped at
	// MaxRateLimitRetries retries before the error is surfaced.
	RateLimitBaseDelay  = 1 * time.Second
	MaxRateLimitRetries = 3
)
