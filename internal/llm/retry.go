package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/cenkalti/backoff/v5"
	"github.com/sashabaranov/go-openai"
)

// RetryPolicy controls how RetryProvider backs off on rate limiting.
type RetryPolicy struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryPolicy retries up to 5 times starting at 15s, doubling to a 2m cap.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:     5,
		InitialBackoff: 15 * time.Second,
		MaxBackoff:     2 * time.Minute,
	}
}

// RetryProvider retries rate limited and overloaded calls with exponential backoff.
// Any other error is returned immediately.
type RetryProvider struct {
	provider Provider
	policy   RetryPolicy
}

// NewRetryProvider wraps provider with the given retry policy.
func NewRetryProvider(provider Provider, policy RetryPolicy) *RetryProvider {
	return &RetryProvider{provider: provider, policy: policy}
}

func (r *RetryProvider) Name() string {
	return r.provider.Name()
}

func (r *RetryProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.policy.InitialBackoff
	b.MaxInterval = r.policy.MaxBackoff
	b.Multiplier = 2

	resp, err := backoff.Retry(ctx, func() (*CompletionResponse, error) {
		resp, err := r.provider.Complete(ctx, req)
		if err != nil && !IsRetryable(err) {
			return nil, backoff.Permanent(err)
		}
		return resp, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(r.policy.MaxRetries+1)),
		backoff.WithMaxElapsedTime(0),
	)
	if err == nil {
		return resp, nil
	}

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return nil, perm.Unwrap()
	}
	if IsRetryable(err) {
		return nil, fmt.Errorf("rate limited after %d retries: %w", r.policy.MaxRetries, err)
	}
	return nil, err
}

// StatusCode extracts the HTTP status of a provider error, or 0 when err
// carries none.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	var anthErr *anthropic.Error
	if errors.As(err, &anthErr) {
		return anthErr.StatusCode
	}
	return 0
}

// IsRateLimited reports whether err is a provider 429 response.
func IsRateLimited(err error) bool {
	return err != nil && StatusCode(err) == http.StatusTooManyRequests
}

// IsRetryable reports whether err is a rate limit or a transient server
// side failure (5xx, including Anthropic's 529 overloaded).
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	code := StatusCode(err)
	return code == http.StatusTooManyRequests || code >= 500
}
