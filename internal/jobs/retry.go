package job

import (
	"math"
	"math/rand"
	"time"
)

// RetryPolicy decides when a failed post is attempted again and when it is
// given up on.
type RetryPolicy struct {
	MaxAttempts int
	Initial     time.Duration
	Max         time.Duration
	// Jitter returns a value in [0, n). Defaults to math/rand.
	Jitter func(n int64) int64
}

// Exhausted reports whether a post that has failed attempts times should be
// retired. MaxAttempts <= 0 retries forever.
func (p RetryPolicy) Exhausted(attempts int) bool {
	return p.MaxAttempts > 0 && attempts >= p.MaxAttempts
}

// Backoff returns the delay before the next attempt: exponential in attempt,
// capped at Max, with the upper half jittered.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	base := p.Initial
	if base <= 0 {
		base = time.Second
	}
	if attempt <= 0 {
		return base
	}

	exp := float64(base) * math.Pow(2, float64(attempt-1))
	var wait time.Duration
	if exp >= float64(math.MaxInt64) {
		wait = time.Duration(math.MaxInt64)
	} else {
		wait = time.Duration(exp)
	}
	if p.Max > 0 && wait > p.Max {
		wait = p.Max
	}

	half := int64(wait / 2)
	if half <= 0 {
		return wait
	}
	jitter := p.Jitter
	if jitter == nil {
		jitter = rand.Int63n
	}
	return time.Duration(half + jitter(half))
}
