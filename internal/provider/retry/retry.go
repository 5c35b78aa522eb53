// Package retry decorates a provider with exponential backoff for retryable
// failures and an optional client-side request rate limit.
package retry

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/Cyclone1070/reactagent/internal/provider"
	"golang.org/x/time/rate"
)

// Policy configures retry behaviour.
type Policy struct {
	MaxRetries        int // attempts after the first
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
	Jitter            bool
}

// DefaultPolicy returns two retries starting at one second.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:        2,
		BaseDelay:         time.Second,
		MaxDelay:          time.Minute,
		BackoffMultiplier: 2.0,
		Jitter:            true,
	}
}

// Delay returns the wait before retry attempt n (0-indexed).
func (p Policy) Delay(attempt int) time.Duration {
	mult := p.BackoffMultiplier
	if mult <= 0 {
		mult = 2.0
	}
	delay := math.Min(float64(p.BaseDelay)*math.Pow(mult, float64(attempt)), float64(p.MaxDelay))
	if p.Jitter {
		// [0.5, 1.5)
		delay *= 0.5 + rand.Float64()
	}
	return time.Duration(delay)
}

// Provider wraps another provider.
type Provider struct {
	next    provider.Provider
	policy  Policy
	limiter *rate.Limiter
	sleep   func(ctx context.Context, d time.Duration) error
}

// New wraps next. requestsPerMinute <= 0 disables throttling.
func New(next provider.Provider, policy Policy, requestsPerMinute int) *Provider {
	if next == nil {
		panic("next provider is required")
	}
	p := &Provider{next: next, policy: policy, sleep: sleepCtx}
	if requestsPerMinute > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1)
	}
	return p
}

// Model forwards to the wrapped provider when it reports one.
func (p *Provider) Model() string {
	return provider.ModelName(p.next)
}

// Generate calls the wrapped provider, retrying retryable errors.
func (p *Provider) Generate(ctx context.Context, messages []provider.Message) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= p.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := p.policy.Delay(attempt - 1)
			if after := provider.GetRetryAfter(lastErr); after != nil {
				if *after > p.policy.MaxDelay {
					return "", lastErr
				}
				delay = *after
			}
			slog.Warn("provider call failed, retrying", "attempt", attempt, "delay", delay, "error", lastErr)
			if err := p.sleep(ctx, delay); err != nil {
				return "", err
			}
		}

		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}

		text, err := p.next.Generate(ctx, messages)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !provider.IsRetryable(err) || ctx.Err() != nil {
			return "", err
		}
	}
	return "", lastErr
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
