package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider retries transient failures of the provider it wraps with
// jittered exponential backoff.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var resp *Response
	err := r.do(ctx, func() (err error) {
		resp, err = r.inner.Generate(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (r *RetryProvider) Transcribe(ctx context.Context, audio []byte, filename string) (*Transcription, error) {
	var out *Transcription
	err := r.do(ctx, func() (err error) {
		out, err = transcribe(ctx, r.inner, audio, filename)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *RetryProvider) do(ctx context.Context, call func() error) error {
	attempts := max(r.config.MaxAttempts, 1)
	retriedInvalid := false

	var err error
	for attempt := range attempts {
		if err = call(); err == nil {
			return nil
		}

		var invalid *ErrInvalidResponse
		switch {
		case !retryable(err):
			return err
		case errors.As(err, &invalid):
			// A model that produced malformed JSON twice will keep doing it.
			if retriedInvalid {
				return err
			}
			retriedInvalid = true
		}

		if attempt == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.backoff(attempt, err)):
		}
	}
	return err
}

// retryable reports whether another attempt could succeed. Unknown errors
// are usually network trouble and count as transient.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, ErrTranscriptionUnsupported) {
		return false
	}
	var (
		maxTok   *ErrMaxTokensExceeded
		rejected *ErrRequestRejected
	)
	return !errors.As(err, &maxTok) && !errors.As(err, &rejected)
}

// backoff is the wait before attempt+1. A rate limit's Retry-After wins;
// otherwise InitialWait*Multiplier^attempt capped at MaxWait, ±20%.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	wait := min(float64(r.config.InitialWait)*math.Pow(r.config.Multiplier, float64(attempt)), float64(r.config.MaxWait))
	wait *= 1 + 0.2*(2*rand.Float64()-1)
	return time.Duration(max(wait, 0))
}
