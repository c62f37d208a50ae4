package llm

import (
	"context"
	"sync"

	"github.com/Harshitk-cp/soulbench/internal/domain"
)

// MockClient is a configurable chat client for testing. Set Response/Err
// for a fixed reply, or RespondFunc to script replies per request. Calls
// are recorded for assertions; all fields are safe for concurrent use
// through the embedded mutex.
type MockClient struct {
	mu sync.Mutex

	Response string
	Err      error

	// RespondFunc, when set, takes precedence over Response/Err. idx is
	// the zero-based call number.
	RespondFunc func(idx int, req domain.ChatRequest) (string, error)

	Calls []domain.ChatRequest
}

func NewMockClient() *MockClient {
	return &MockClient{Response: `{"judgement": "agree", "reasoning": "mock"}`}
}

func (c *MockClient) Complete(ctx context.Context, req domain.ChatRequest) (string, error) {
	c.mu.Lock()
	idx := len(c.Calls)
	c.Calls = append(c.Calls, req)
	fn := c.RespondFunc
	resp, err := c.Response, c.Err
	c.mu.Unlock()

	if fn != nil {
		return fn(idx, req)
	}
	if err != nil {
		return "", err
	}
	return resp, nil
}

// CallCount returns the number of completed Complete calls.
func (c *MockClient) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Calls)
}

// LastCall returns the most recent request, or a zero request if none.
func (c *MockClient) LastCall() domain.ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Calls) == 0 {
		return domain.ChatRequest{}
	}
	return c.Calls[len(c.Calls)-1]
}

// Reset clears recorded calls and restores the default response.
func (c *MockClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = nil
	c.Response = `{"judgement": "agree", "reasoning": "mock"}`
	c.Err = nil
	c.RespondFunc = nil
}
