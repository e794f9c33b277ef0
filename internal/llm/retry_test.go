package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient fails a fixed number of times before succeeding.
type fakeClient struct {
	failures int
	failWith error
	calls    int
}

func (f *fakeClient) Name() string { return "fake" }

func (f *fakeClient) Complete(ctx context.Context, req Request) (*Response, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.failWith
	}
	return &Response{Text: "ok", Model: "fake-1"}, nil
}

func noSleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

func transientErr() error {
	return &ProviderError{Provider: "fake", Kind: KindRateLimit, Message: "slow down", Transient: true}
}

func TestRetrierRecoversFromTransientFailures(t *testing.T) {
	fake := &fakeClient{failures: 2, failWith: transientErr()}
	r := NewRetrier(fake, RetryPolicy{MaxRetries: 4})
	r.sleep = noSleep

	resp, err := r.Complete(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
	assert.Equal(t, 3, fake.calls)
}

func TestRetrierFatalErrorNotRetried(t *testing.T) {
	fatal := &ProviderError{Provider: "fake", Kind: KindAuth, Message: "bad key"}
	fake := &fakeClient{failures: 10, failWith: fatal}
	r := NewRetrier(fake, RetryPolicy{MaxRetries: 4})
	r.sleep = noSleep

	_, err := r.Complete(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.Equal(t, 1, fake.calls)
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindAuth, pe.Kind)
}

func TestRetrierExhaustsBudget(t *testing.T) {
	fake := &fakeClient{failures: 10, failWith: transientErr()}
	r := NewRetrier(fake, RetryPolicy{MaxRetries: 3})
	r.sleep = noSleep

	_, err := r.Complete(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.Equal(t, 4, fake.calls) // initial attempt + 3 retries
	assert.ErrorContains(t, err, "max retries exceeded")
	assert.True(t, IsTransient(err)) // the last transient cause stays unwrappable
}

func TestRetrierHonorsCancellation(t *testing.T) {
	fake := &fakeClient{failures: 10, failWith: transientErr()}
	r := NewRetrier(fake, RetryPolicy{MaxRetries: 5})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.sleep = sleepCtx // real sleep, must bail on canceled ctx

	_, err := r.Complete(ctx, Request{Prompt: "p"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, fake.calls, 1)
}

func TestRetrierBackoffBounds(t *testing.T) {
	r := NewRetrier(&fakeClient{}, RetryPolicy{
		BackoffBase: time.Second,
		BackoffMax:  4 * time.Second,
	})

	for attempt := 1; attempt <= 10; attempt++ {
		for i := 0; i < 50; i++ {
			d := r.backoff(attempt)
			assert.Greater(t, d, time.Duration(0))
			assert.LessOrEqual(t, d, 4*time.Second)
		}
	}
}

func TestRetryPolicyDefaults(t *testing.T) {
	p := RetryPolicy{MaxRetries: -1}.withDefaults()
	assert.Equal(t, 0, p.MaxRetries)
	assert.Equal(t, time.Second, p.BackoffBase)
	assert.Equal(t, 30*time.Second, p.BackoffMax)
}
