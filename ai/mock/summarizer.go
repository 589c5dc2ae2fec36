package mock

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
)

// Call records the arguments of one Summarize invocation.
type Call struct {
	Text         string
	Instructions string
}

// MockSummarizer is a test double for ai.Summarizer.
// It allows custom behavior injection via function fields.
type MockSummarizer struct {
	// SummarizeFunc is called by Summarize if set.
	// If nil, uses default deterministic behavior.
	SummarizeFunc func(ctx context.Context, text, instructions string) (string, error)

	mu    sync.Mutex
	calls []Call
}

// NewMockSummarizer creates a mock summarizer with default deterministic behavior.
func NewMockSummarizer() *MockSummarizer {
	return &MockSummarizer{}
}

// WithSummarizeFunc sets SummarizeFunc and returns the mock for chaining.
func (m *MockSummarizer) WithSummarizeFunc(fn func(ctx context.Context, text, instructions string) (string, error)) *MockSummarizer {
	m.SummarizeFunc = fn
	return m
}

// Summarize records the call and returns SummarizeFunc's result, or a
// deterministic summary of the form "summary-xxxxxxxx".
func (m *MockSummarizer) Summarize(ctx context.Context, text, instructions string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Text: text, Instructions: instructions})
	fn := m.SummarizeFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, text, instructions)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	h := fnv.New32a()
	h.Write([]byte(instructions))
	h.Write([]byte(text))
	return fmt.Sprintf("summary-%08x", h.Sum32()), nil
}

// CallCount returns the number of times Summarize was called.
func (m *MockSummarizer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of the recorded calls in invocation order.
func (m *MockSummarizer) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// Reset clears the recorded calls and custom functions.
func (m *MockSummarizer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.SummarizeFunc = nil
}
