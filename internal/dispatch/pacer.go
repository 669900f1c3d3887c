package dispatch

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Pacer is consulted between deliveries to respect the endpoint's rate limit.
// Pause must return promptly with ctx.Err() once ctx is done.
type Pacer interface {
	Pause(ctx context.Context) error
}

// FixedPacer waits the same interval between every pair of messages.
type FixedPacer struct {
	Interval time.Duration
}

func (p FixedPacer) Pause(ctx context.Context) error {
	if p.Interval <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.Interval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// TokenBucketPacer allows short bursts while holding the long-run rate.
type TokenBucketPacer struct {
	limiter *rate.Limiter
}

func NewTokenBucketPacer(perSec float64, burst int) *TokenBucketPacer {
	if perSec <= 0 {
		perSec = 1
	}
	if burst <= 0 {
		burst = 1
	}
	l := rate.NewLimiter(rate.Limit(perSec), burst)
	// The first message goes out without waiting; drain the bucket so the
	// first pause is paced like the rest.
	l.AllowN(time.Now(), burst)
	return &TokenBucketPacer{limiter: l}
}

func (p *TokenBucketPacer) Pause(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// NoPacer sends back to back. Used by tests and trusted endpoints.
type NoPacer struct{}

func (NoPacer) Pause(ctx context.Context) error { return ctx.Err() }

// NewPacer builds the strategy named by the PACING setting.
func NewPacer(kind string, interval time.Duration, perSec float64, burst int) (Pacer, error) {
	switch kind {
	case "", "fixed":
		return FixedPacer{Interval: interval}, nil
	case "token_bucket":
		return NewTokenBucketPacer(perSec, burst), nil
	case "none":
		return NoPacer{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPacing, kind)
}
