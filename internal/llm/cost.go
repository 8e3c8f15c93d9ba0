package llm

import (
	"context"
	"sync"
)

// modelPricing holds per-model pricing in USD per 1M tokens.
type modelPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// priceTable maps model identifiers to their pricing.
var priceTable = map[string]modelPricing{
	// Anthropic models
	"claude-sonnet-4-5-20250929": {InputPerMillion: 3.00, OutputPerMillion: 15.00},
	"claude-haiku-4-5-20251001":  {InputPerMillion: 0.80, OutputPerMillion: 4.00},

	// OpenAI models
	"gpt-4o":      {InputPerMillion: 2.50, OutputPerMillion: 10.00},
	"gpt-4o-mini": {InputPerMillion: 0.15, OutputPerMillion: 0.60},

	// Google models
	"gemini-2.0-flash": {InputPerMillion: 0.10, OutputPerMillion: 0.40},
	"gemini-1.5-pro":   {InputPerMillion: 1.25, OutputPerMillion: 5.00},
}

// EstimateCost returns the estimated cost in USD for the given model and token counts.
// Returns 0 if the model is not found in the price table.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	pricing, ok := priceTable[model]
	if !ok {
		return 0
	}

	inputCost := float64(inputTokens) / 1_000_000.0 * pricing.InputPerMillion
	outputCost := float64(outputTokens) / 1_000_000.0 * pricing.OutputPerMillion
	return inputCost + outputCost
}

// Usage accumulates token counts across calls.
type Usage struct {
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	CostUSD      float64
}

// MeteredProvider records token usage and estimated cost of every call.
type MeteredProvider struct {
	provider Provider
	model    string

	mu    sync.Mutex
	usage Usage
}

// NewMeteredProvider wraps provider. model is used for pricing when the
// response does not report one.
func NewMeteredProvider(provider Provider, model string) *MeteredProvider {
	return &MeteredProvider{provider: provider, model: model}
}

func (m *MeteredProvider) Name() string {
	return m.provider.Name()
}

func (m *MeteredProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	resp, err := m.provider.Complete(ctx, req)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage.Calls++
	if err != nil {
		m.usage.Failures++
		return nil, err
	}

	model := resp.Model
	if _, ok := priceTable[model]; !ok {
		model = m.model
	}
	m.usage.InputTokens += resp.InputTokens
	m.usage.OutputTokens += resp.OutputTokens
	m.usage.CostUSD += EstimateCost(model, resp.InputTokens, resp.OutputTokens)
	return resp, nil
}

// Usage returns a snapshot of the accumulated usage.
func (m *MeteredProvider) Usage() Usage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usage
}
