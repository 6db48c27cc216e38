package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/avast/retry-go/v4"
)

// RetryProvider retries transient provider failures with capped
// exponential backoff.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps p so that rate limits, outages and network errors are
// retried up to cfg.MaxAttempts times in total.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	// A malformed structured reply is worth one more try, not more.
	invalidSeen := false
	retryable := func(err error) bool {
		var invalid *ErrInvalidResponse
		if errors.As(err, &invalid) {
			if invalidSeen {
				return false
			}
			invalidSeen = true
			return true
		}
		return isTransient(err)
	}

	return retry.DoWithData(
		func() (*Response, error) { return r.inner.Generate(ctx, req) },
		retry.Context(ctx),
		retry.Attempts(uint(r.config.MaxAttempts)),
		retry.RetryIf(retryable),
		retry.DelayType(func(n uint, err error, _ *retry.Config) time.Duration {
			return r.backoff(int(n)-1, err)
		}),
		retry.LastErrorOnly(true),
	)
}

func (r *RetryProvider) ModelID() string { return r.inner.ModelID() }

func (r *RetryProvider) Name() string { return ProviderName(r.inner) }

// isTransient reports whether asking again could give a different result.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var (
		blocked *ErrBlocked
		maxTok  *ErrMaxTokensExceeded
	)
	// A refusal repeats itself and a truncated reply needs a larger budget.
	if errors.As(err, &blocked) || errors.As(err, &maxTok) {
		return false
	}
	return true
}

// backoff is the wait after the given zero-based failed attempt. A rate
// limit with a Retry-After hint wins over the computed delay.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(max(attempt, 0)))
	wait = min(wait, float64(r.config.MaxWait))
	// ±20% jitter
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(max(wait, 0))
}
