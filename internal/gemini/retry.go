package gemini

import (
	"net/http"
	"time"
)

// RetryPolicy bounds how often and how patiently a single analysis call is
// retried. MaxRetries counts attempts, not re-attempts: a policy with
// MaxRetries=3 performs at most three HTTP calls.
type RetryPolicy struct {
	MaxRetries  int
	BackoffBase time.Duration
	MaxBackoff  time.Duration
}

// DefaultRetryPolicy matches the budget used for per-chunk analysis calls.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:  3,
		BackoffBase: time.Second,
		MaxBackoff:  30 * time.Second,
	}
}

// backoffFor returns the delay before attempt i (0-indexed): base * 2^i,
// capped at MaxBackoff.
func (p RetryPolicy) backoffFor(attempt int) time.Duration {
	backoff := p.BackoffBase << uint(attempt)
	if p.MaxBackoff > 0 && backoff > p.MaxBackoff {
		return p.MaxBackoff
	}
	return backoff
}

// shouldRetry reports whether an HTTP status is a classified-transient
// condition. Rate limiting and server-side errors are worth retrying; every
// other non-OK status is permanent.
func shouldRetry(statusCode int) bool {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return true
	case statusCode >= 500 && statusCode <= 599:
		return true
	default:
		return false
	}
}
