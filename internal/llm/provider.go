package llm

import "context"

// Provider defines the interface for LLM providers.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}

// Wrap applies the standard middleware stack used by the CLI: retry on
// rate limiting, a circuit breaker and a client-side request limiter.
// Middleware is applied innermost first, so the limiter gates every
// attempt the retry loop makes.
func Wrap(p Provider, rpm int, breaker BreakerSettings) Provider {
	if rpm > 0 {
		p = NewRateLimitedProvider(p, rpm)
	}
	p = NewBreakerProvider(p, breaker)
	return NewRetryProvider(p, DefaultRetryPolicy())
}
