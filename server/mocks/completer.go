package mocks

import (
	"context"
	"sync"

	"github.com/teilomillet/aiengine/server/gateway"
)

// MockCompleter implements gateway.Completer and records the prompts it receives.
type MockCompleter struct {
	CompleteFunc func(ctx context.Context, prompt string) gateway.Result

	mu      sync.Mutex
	prompts []string
}

// NewMockCompleter returns a completer answering with fn. A nil fn answers
// every prompt in mock mode.
func NewMockCompleter(fn func(ctx context.Context, prompt string) gateway.Result) *MockCompleter {
	return &MockCompleter{CompleteFunc: fn}
}

// Complete implements gateway.Completer.
func (m *MockCompleter) Complete(ctx context.Context, prompt string) gateway.Result {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return gateway.Result{Kind: gateway.KindMock, Text: gateway.MockResponse(prompt)}
}

// Prompts returns a copy of every prompt received so far.
func (m *MockCompleter) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Calls returns how many prompts were received.
func (m *MockCompleter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}
