package ebay

import (
	"context"
	"sync"

	"github.com/maggierui/listing-scanner-sub000/internal/service"
)

// MockClient is a scripted MarketplaceClient for tests.
type MockClient struct {
	// SearchResults maps phrase to the items a search returns.
	SearchResults map[string][]service.ItemSummary
	// SellerInventory maps seller username to that seller's own listings.
	SellerInventory map[string][]service.ItemSummary
	// SearchErr / SellerErr force failures when set; SearchErrs fails only
	// the named phrases.
	SearchErr  error
	SellerErr  error
	SearchErrs map[string]error

	// OnSearch, when set, runs before each search returns. Tests use it to
	// block a scan mid-flight.
	OnSearch func(phrase string)

	// SellerCalls counts SellerItems invocations per seller.
	SellerCalls map[string]int
	searchCalls int
	mu          sync.Mutex
}

// NewMockClient creates an empty mock.
func NewMockClient() *MockClient {
	return &MockClient{
		SearchResults:   make(map[string][]service.ItemSummary),
		SellerInventory: make(map[string][]service.ItemSummary),
		SellerCalls:     make(map[string]int),
	}
}

// SearchItems returns the scripted results for phrase.
func (m *MockClient) SearchItems(_ context.Context, phrase string, limit int) ([]service.ItemSummary, error) {
	m.mu.Lock()
	onSearch := m.OnSearch
	m.searchCalls++
	m.mu.Unlock()

	if onSearch != nil {
		onSearch(phrase)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	if err := m.SearchErrs[phrase]; err != nil {
		return nil, err
	}

	items := m.SearchResults[phrase]
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// SellerItems returns the scripted inventory for seller.
func (m *MockClient) SellerItems(_ context.Context, seller string, limit int) ([]service.ItemSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SellerCalls[seller]++
	if m.SellerErr != nil {
		return nil, m.SellerErr
	}

	items := m.SellerInventory[seller]
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// CallCount reports the total number of scripted calls made.
func (m *MockClient) CallCount() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := int64(m.searchCalls)
	for _, n := range m.SellerCalls {
		total += int64(n)
	}
	return total
}

// StaticTokenSource returns a fixed token, for tests.
type StaticTokenSource struct {
	AccessToken string
	Err         error
}

// Token implements service.TokenSource.
func (s *StaticTokenSource) Token(_ context.Context) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return s.AccessToken, nil
}
