// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/maggierui/listing-scanner-sub000/internal/model"
)

// Storage defines the contract for the result ledger.
type Storage interface {
	// Saved search operations
	SaveSearch(ctx context.Context, search *model.SavedSearch) (int64, error)
	GetSearch(ctx context.Context, id int64) (*model.SavedSearch, error)
	ListSearches(ctx context.Context) ([]model.SavedSearch, error)
	DeleteSearch(ctx context.Context, id int64) error

	// Listing operations
	UpsertListing(ctx context.Context, listing *model.Listing) error
	SaveScanResults(ctx context.Context, searchID int64, listings []model.Listing) error
	ExistingResultsForSearch(ctx context.Context, searchID int64, withinDays int) ([]model.Listing, error)
	AllResultsForSearch(ctx context.Context, searchID int64) ([]model.Listing, error)
	RecentItemIDs(ctx context.Context, days int) (map[string]bool, error)
	MarkStaleInactive(ctx context.Context, olderThanDays int) (int64, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction over the ledger.
type Transaction interface {
	Commit() error
	Rollback() error

	UpsertListing(ctx context.Context, listing *model.Listing) error
	RecordResult(ctx context.Context, searchID int64, itemID string) error
}

// ItemSummary is one listing as returned by the marketplace search and
// seller-inventory endpoints.
type ItemSummary struct {
	ItemID        string
	Title         string
	Condition     string
	Currency      string
	URL           string
	Seller        string
	Price         float64
	FeedbackScore int
}

// MarketplaceClient defines the contract for the rate-limited marketplace
// fetch client.
type MarketplaceClient interface {
	// SearchItems runs a keyword query capped at limit results.
	SearchItems(ctx context.Context, phrase string, limit int) ([]ItemSummary, error)
	// SellerItems returns up to limit of one seller's own listings.
	SellerItems(ctx context.Context, seller string, limit int) ([]ItemSummary, error)
	// CallCount reports how many API calls this process has made. Advisory only.
	CallCount() int64
}

// TokenSource exchanges stored credentials for a bearer token. It is
// re-invoked once per scan; no caching is assumed.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// ResultExporter receives the final aggregated listing list after a
// non-empty scan completes. Failures are logged, never propagated.
type ResultExporter interface {
	Export(ctx context.Context, listings []model.Listing, label string) (location string, err error)
}

// Limiter paces outbound marketplace calls. Wait blocks until a call may
// proceed or the context is canceled.
type Limiter interface {
	Wait(ctx context.Context) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
