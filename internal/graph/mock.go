package graph

import (
	"context"
	"sync"
	"time"

	"github.com/leductinjl/backend/internal/types"
)

// MockCall represents a recorded query execution on the mock graph client.
type MockCall struct {
	Method    string
	Cypher    string
	Params    map[string]any
	Timestamp time.Time
}

// MockClient is a mock implementation of Client for testing.
// It provides configurable responses and tracks all executed queries
// for verification.
type MockClient struct {
	mu sync.RWMutex

	connected    bool
	healthStatus types.HealthStatus
	calls        []MockCall

	// Configurable responses. Results are consumed in FIFO order; when
	// the queue is empty an empty QueryResult is returned.
	queuedResults []QueryResult
	writeError    error
	readError     error
	connectError  error
}

// NewMockClient creates a new mock graph client for testing.
func NewMockClient() *MockClient {
	return &MockClient{
		healthStatus: types.Healthy("mock graph client"),
	}
}

// Connect records the call and simulates connection.
func (m *MockClient) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("Connect", "", nil)
	if m.connectError != nil {
		return m.connectError
	}
	m.connected = true
	return nil
}

// Close simulates disconnection.
func (m *MockClient) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connected = false
	return nil
}

// Health returns the configured health status.
func (m *MockClient) Health(ctx context.Context) types.HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected {
		return types.Unhealthy("not connected")
	}
	return m.healthStatus
}

// ExecuteRead records the query and returns the next queued result.
func (m *MockClient) ExecuteRead(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("ExecuteRead", cypher, params)
	if m.readError != nil {
		return QueryResult{}, m.readError
	}
	return m.nextResult(), nil
}

// ExecuteWrite records the query and returns the next queued result.
func (m *MockClient) ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("ExecuteWrite", cypher, params)
	if m.writeError != nil {
		return QueryResult{}, m.writeError
	}
	return m.nextResult(), nil
}

func (m *MockClient) record(method, cypher string, params map[string]any) {
	m.calls = append(m.calls, MockCall{
		Method:    method,
		Cypher:    cypher,
		Params:    params,
		Timestamp: time.Now(),
	})
}

func (m *MockClient) nextResult() QueryResult {
	if len(m.queuedResults) == 0 {
		return QueryResult{}
	}
	result := m.queuedResults[0]
	m.queuedResults = m.queuedResults[1:]
	return result
}

// QueueResult appends a result to be returned by the next execution.
func (m *MockClient) QueueResult(result QueryResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queuedResults = append(m.queuedResults, result)
}

// SetWriteError configures ExecuteWrite to fail with the given error.
func (m *MockClient) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeError = err
}

// SetReadError configures ExecuteRead to fail with the given error.
func (m *MockClient) SetReadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readError = err
}

// SetConnectError configures Connect to fail with the given error.
func (m *MockClient) SetConnectError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectError = err
}

// Calls returns a copy of all recorded calls.
func (m *MockClient) Calls() []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	calls := make([]MockCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallsTo returns the recorded calls for the given method.
func (m *MockClient) CallsTo(method string) []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var calls []MockCall
	for _, c := range m.calls {
		if c.Method == method {
			calls = append(calls, c)
		}
	}
	return calls
}

// Reset clears recorded calls and queued results.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.queuedResults = nil
	m.writeError = nil
	m.readError = nil
}
