package model

import "time"

// Listing is one marketplace listing the scanner has ever recorded,
// deduplicated by its marketplace item id.
type Listing struct {
	FirstFoundAt time.Time
	LastSeenAt   time.Time
	ItemID       string
	Title        string
	Currency     string
	URL          string
	Seller       string
	Price        float64
	IsActive     bool
}

// SearchResult is the edge between a saved search and a listing it surfaced.
type SearchResult struct {
	FoundAt  time.Time
	ItemID   string
	SearchID int64
}
