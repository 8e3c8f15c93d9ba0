// Package llmtest provides a scriptable llm.Provider for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/ziadkadry99/ideaflow/internal/llm"
)

// MockProvider records calls and answers them with Respond, or with
// Response/Err when Respond is nil.
type MockProvider struct {
	mu       sync.Mutex
	Calls    []llm.CompletionRequest
	Response *llm.CompletionResponse
	Err      error
	Respond  func(req llm.CompletionRequest) (*llm.CompletionResponse, error)
	ProvName string
}

// NewMockProvider returns a mock that answers every call with "mock response".
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		ProvName: name,
		Response: &llm.CompletionResponse{
			Content:      "mock response",
			InputTokens:  10,
			OutputTokens: 20,
			Model:        "mock-model",
			FinishReason: "stop",
		},
	}
}

// Text builds a successful response with the given content.
func Text(content string) *llm.CompletionResponse {
	return &llm.CompletionResponse{Content: content, InputTokens: 10, OutputTokens: 20, Model: "mock-model", FinishReason: "stop"}
}

func (m *MockProvider) Name() string {
	return m.ProvName
}

func (m *MockProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)
	if m.Respond != nil {
		return m.Respond(req)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

// CallCount returns the number of calls recorded so far.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
