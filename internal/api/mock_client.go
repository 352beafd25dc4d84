package api

import (
	"context"
	"sync"

	"github.com/diogo/agui/internal/models"
)

// MockClient is a mock implementation of QueryClientInterface for testing
type MockClient struct {
	// Mock return values
	QueryVal    *models.QueryResult
	QueryErr    error
	EndpointVal string
	// QueryFunc, when set, takes precedence over QueryVal/QueryErr
	QueryFunc func(ctx context.Context, text string) (*models.QueryResult, error)

	mu          sync.Mutex
	closed      bool
	queryCalls  int
	lastPrompt  string
	closeCalled bool
}

// Ensure MockClient implements QueryClientInterface
var _ QueryClientInterface = (*MockClient)(nil)

// NewMockClient returns a mock that answers every query with reply
func NewMockClient(reply string) *MockClient {
	return &MockClient{
		QueryVal:    &models.QueryResult{Text: reply, StatusCode: 200},
		EndpointVal: models.DefaultEndpoint,
	}
}

func (m *MockClient) Query(ctx context.Context, text string) (*models.QueryResult, error) {
	m.mu.Lock()
	m.queryCalls++
	m.lastPrompt = text
	fn := m.QueryFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, text)
	}
	return m.QueryVal, m.QueryErr
}

func (m *MockClient) Endpoint() string {
	return m.EndpointVal
}

func (m *MockClient) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.closeCalled = true
}

func (m *MockClient) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// QueryCalls returns how many times Query was called
func (m *MockClient) QueryCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queryCalls
}

// LastPrompt returns the text of the most recent query
func (m *MockClient) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPrompt
}

// CloseCalled reports whether Close was called
func (m *MockClient) CloseCalled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCalled
}
