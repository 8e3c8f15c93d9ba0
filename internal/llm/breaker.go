package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerSettings configures BreakerProvider. Zero values pick defaults.
type BreakerSettings struct {
	// ConsecutiveFailures trips the breaker. Default 5.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open. Default 30s.
	OpenTimeout time.Duration
	// OnStateChange is called on every transition.
	OnStateChange func(name string, from, to gobreaker.State)
}

// BreakerProvider fails fast once the wrapped provider keeps erroring,
// so callers fall back immediately instead of waiting on every request.
type BreakerProvider struct {
	provider Provider
	cb       *gobreaker.CircuitBreaker
}

// NewBreakerProvider wraps provider with a circuit breaker.
func NewBreakerProvider(provider Provider, s BreakerSettings) *BreakerProvider {
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 5
	}
	if s.OpenTimeout == 0 {
		s.OpenTimeout = 30 * time.Second
	}
	threshold := s.ConsecutiveFailures

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        provider.Name(),
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Rate limiting is handled by RetryProvider and cancellation is the
		// caller's doing; neither says the provider is down.
		IsSuccessful: func(err error) bool {
			return err == nil || IsRateLimited(err) ||
				errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: s.OnStateChange,
	})
	return &BreakerProvider{provider: provider, cb: cb}
}

func (b *BreakerProvider) Name() string {
	return b.provider.Name()
}

// State reports the breaker state.
func (b *BreakerProvider) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.provider.Complete(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return out.(*CompletionResponse), nil
}
