package llm

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	"decoyforge/internal/logging"
	"decoyforge/internal/metrics"
)

// RetryPolicy controls the retry and rate-limit behavior of a Retrier.
type RetryPolicy struct {
	MaxRetries     int
	BackoffBase    time.Duration
	BackoffMax     time.Duration
	RequestsPerSec float64
	Burst          int
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.BackoffBase <= 0 {
		p.BackoffBase = time.Second
	}
	if p.BackoffMax <= 0 {
		p.BackoffMax = 30 * time.Second
	}
	return p
}

// Retrier wraps a Client with client-side rate limiting and exponential
// backoff with full jitter on transient failures. Fatal failures surface
// immediately.
type Retrier struct {
	inner   Client
	policy  RetryPolicy
	limiter *rate.Limiter
	sleep   func(context.Context, time.Duration) error
}

// NewRetrier wraps inner with the given policy. RequestsPerSec <= 0 disables
// rate limiting.
func NewRetrier(inner Client, policy RetryPolicy) *Retrier {
	r := &Retrier{
		inner:  inner,
		policy: policy.withDefaults(),
		sleep:  sleepCtx,
	}
	if policy.RequestsPerSec > 0 {
		burst := policy.Burst
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(policy.RequestsPerSec), burst)
	}
	return r
}

func (r *Retrier) Name() string { return r.inner.Name() }

// Complete runs the request with retries. Each attempt waits for the rate
// limiter first so retries cannot stampede the provider.
func (r *Retrier) Complete(ctx context.Context, req Request) (*Response, error) {
	var lastErr error
	for attempt := 0; attempt <= r.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.backoff(attempt)
			logging.Provider("[%s] transient failure, retrying in %v (attempt %d/%d): %v",
				r.inner.Name(), delay, attempt, r.policy.MaxRetries, lastErr)
			if err := r.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		start := time.Now()
		resp, err := r.inner.Complete(ctx, req)
		metrics.ProviderLatency.Observe(time.Since(start).Seconds())
		if err == nil {
			return resp, nil
		}
		if !IsTransient(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// backoff computes exponential backoff with full jitter for the given
// attempt number (1-based).
func (r *Retrier) backoff(attempt int) time.Duration {
	d := r.policy.BackoffBase << uint(attempt-1)
	if d > r.policy.BackoffMax || d <= 0 {
		d = r.policy.BackoffMax
	}
	return time.Duration(rand.Int63n(int64(d)) + 1)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
