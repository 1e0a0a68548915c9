// Package ratelimit provides the shared send-rate gates for outbound
// notifications and the run-locks the scheduler takes before a job.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrRateLimited is retryable: the caller should back off for RetryAfter
// and try again instead of marking the send failed.
var ErrRateLimited = errors.New("rate_limit_exceeded")

// Result reports one Allow decision.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter is a token bucket keyed by caller-chosen string. rate is tokens
// per second, burst the bucket capacity.
type Limiter interface {
	Allow(ctx context.Context, key string, rate float64, burst int) (Result, error)
}

// Channel budgets. SMS is the hard gate from the provider contract; the
// generic budget covers email and WhatsApp.
const (
	SMSKey   = "notify:sms"
	SMSRate  = 1.0 / 60.0
	SMSBurst = 1

	GenericKey   = "notify:generic"
	GenericRate  = 10.0 / 60.0
	GenericBurst = 10
)
