package sheets

import (
	"context"
	"sync"

	"github.com/maggierui/listing-scanner-sub000/internal/model"
)

// MockExporter is a test double for the service.ResultExporter interface.
type MockExporter struct {
	mu       sync.Mutex
	Err      error
	Location string
	Calls    [][]model.Listing
	Labels   []string
}

// Export records the invocation and returns the scripted result.
func (m *MockExporter) Export(_ context.Context, listings []model.Listing, label string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, listings)
	m.Labels = append(m.Labels, label)

	if m.Err != nil {
		return "", m.Err
	}
	if m.Location != "" {
		return m.Location, nil
	}
	return "mock://spreadsheet", nil
}

// CallCount returns how many times Export was invoked.
func (m *MockExporter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
