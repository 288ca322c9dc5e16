package driver

import (
	"context"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// MockDriver serves canned results keyed by query text. It is safe for
// concurrent use so it can sit behind the reasoning fan-out.
type MockDriver struct {
	mu sync.Mutex

	Results map[string]neo4j.EagerResult
	Errors  map[string]error
	// Err fails every query when set.
	Err error
	// Hook runs before each query is answered.
	Hook func(ctx context.Context, query string) error

	calls  map[string]int
	params map[string][]map[string]interface{}
}

func NewMockDriver() *MockDriver {
	return &MockDriver{
		Results: make(map[string]neo4j.EagerResult),
		Errors:  make(map[string]error),
	}
}

// On registers the rows returned for query.
func (m *MockDriver) On(query string, keys []string, rows ...[]interface{}) *MockDriver {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := make([]*neo4j.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, &neo4j.Record{Keys: keys, Values: row})
	}
	m.Results[query] = neo4j.EagerResult{Keys: keys, Records: records}
	return m
}

// Fail makes query return err.
func (m *MockDriver) Fail(query string, err error) *MockDriver {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[query] = err
	return m
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
		m.params = make(map[string][]map[string]interface{})
	}
	m.calls[query]++
	m.params[query] = append(m.params[query], params)
	hook := m.Hook
	m.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, query); err != nil {
			return neo4j.EagerResult{}, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	if err, ok := m.Errors[query]; ok {
		return neo4j.EagerResult{}, err
	}
	return m.Results[query], nil
}

// Calls reports how many times query ran.
func (m *MockDriver) Calls(query string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[query]
}

// TotalCalls reports how many queries ran in all.
func (m *MockDriver) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// LastParams returns the parameters of the most recent run of query.
func (m *MockDriver) LastParams(query string) map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.params[query]
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1]
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}
