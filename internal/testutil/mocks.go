package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/openverdict/tribunal/internal/llm"
)

// MockLLM is a role-keyed mock reasoning client. Responses are selected by
// the explicit role parameter, never by inspecting prompt text.
type MockLLM struct {
	ModelTag  string
	Responses map[llm.Role]string
	Errors    map[llm.Role]error

	mu    sync.Mutex
	calls []llm.Role
}

// NewMockLLM creates a mock client with no canned responses.
func NewMockLLM(model string) *MockLLM {
	return &MockLLM{
		ModelTag:  model,
		Responses: make(map[llm.Role]string),
		Errors:    make(map[llm.Role]error),
	}
}

// Respond sets the canned completion content for a role.
func (m *MockLLM) Respond(role llm.Role, content string) *MockLLM {
	m.Responses[role] = content
	return m
}

// Fail makes calls for a role return err.
func (m *MockLLM) Fail(role llm.Role, err error) *MockLLM {
	m.Errors[role] = err
	return m
}

// Complete implements llm.Client.
func (m *MockLLM) Complete(ctx context.Context, role llm.Role, req llm.Request) (*llm.Completion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.calls = append(m.calls, role)
	m.mu.Unlock()

	if err, ok := m.Errors[role]; ok {
		return nil, err
	}

	content, ok := m.Responses[role]
	if !ok {
		return nil, fmt.Errorf("mock has no response for role %s", role)
	}

	return &llm.Completion{Content: content, Model: m.ModelTag}, nil
}

// Model implements llm.Client.
func (m *MockLLM) Model() string {
	return m.ModelTag
}

// Calls returns the roles called so far, in order.
func (m *MockLLM) Calls() []llm.Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.Role, len(m.calls))
	copy(out, m.calls)
	return out
}
