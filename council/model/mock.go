package model

import (
	"context"
	"sync"
)

// MockClient is a test implementation of Client.
//
// Responses are scripted per model name; each call consumes the next
// scripted completion for that model, repeating the last one once the
// script is exhausted. Errors can be injected per model. Every call is
// recorded regardless of outcome.
//
// Example:
//
//	mock := &MockClient{
//	    Responses: map[string][]Completion{
//	        "openai/gpt-5.2-pro": {{Content: "answer"}, {Content: "ranking"}},
//	    },
//	    Errs: map[string]error{"x-ai/grok-4": errors.New("boom")},
//	}
type MockClient struct {
	// Responses maps model name to the sequence of completions to return.
	Responses map[string][]Completion

	// Errs maps model name to an error returned instead of a completion.
	Errs map[string]error

	mu    sync.Mutex
	calls []MockCall
	index map[string]int
}

// MockCall records a single Complete invocation.
type MockCall struct {
	Model    string
	Messages []Message
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, modelName string, messages []Message) (Completion, error) {
	if ctx.Err() != nil {
		return Completion{}, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{Model: modelName, Messages: messages})

	if err, ok := m.Errs[modelName]; ok && err != nil {
		return Completion{}, err
	}

	script := m.Responses[modelName]
	if len(script) == 0 {
		return Completion{}, nil
	}

	if m.index == nil {
		m.index = make(map[string]int)
	}
	idx := m.index[modelName]
	if idx >= len(script) {
		idx = len(script) - 1
	} else {
		m.index[modelName]++
	}
	return script[idx], nil
}

// Calls returns a copy of the recorded call history.
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsFor returns the recorded calls issued to one model, in order.
func (m *MockClient) CallsFor(modelName string) []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []MockCall
	for _, c := range m.calls {
		if c.Model == modelName {
			out = append(out, c)
		}
	}
	return out
}

// CallCount returns the total number of Complete invocations.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Reset clears the call history and scripted-response positions.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.index = nil
}
