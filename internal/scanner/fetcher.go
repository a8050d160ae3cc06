package scanner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maggierui/listing-scanner-sub000/internal/common"
	"github.com/maggierui/listing-scanner-sub000/internal/ebay"
	"github.com/maggierui/listing-scanner-sub000/internal/model"
	"github.com/maggierui/listing-scanner-sub000/internal/service"
)

// searchResultCap bounds how many candidate items one phrase search requests.
const searchResultCap = 200

// ScanParams are the validated inputs of one scan.
type ScanParams struct {
	SearchPhrases     []string
	TypicalPhrases    []string
	ConditionCodes    []string
	FeedbackThreshold int
	SearchID          int64
	DedupWindowDays   int
}

// Validate rejects malformed scan parameters before any state mutation.
func (p *ScanParams) Validate() error {
	if len(p.SearchPhrases) == 0 {
		return fmt.Errorf("at least one search phrase is required")
	}
	if len(p.TypicalPhrases) == 0 {
		return fmt.Errorf("at least one typical phrase is required")
	}
	if p.FeedbackThreshold <= 0 {
		return fmt.Errorf("feedback threshold must be positive, got %d", p.FeedbackThreshold)
	}
	if len(p.ConditionCodes) == 0 {
		return fmt.Errorf("at least one condition code is required")
	}
	if p.SearchID <= 0 {
		return fmt.Errorf("a saved search id is required")
	}
	return nil
}

// sellerGroup collects one search phrase's candidate items for one seller.
type sellerGroup struct {
	seller        string
	firstItem     service.ItemSummary
	feedbackScore int
	itemCount     int
}

// Fetcher retrieves and qualifies candidate listings for one search phrase.
type Fetcher struct {
	client    service.MarketplaceClient
	qualifier *Qualifier
	logger    *slog.Logger
}

// NewFetcher creates a phrase listing fetcher.
func NewFetcher(client service.MarketplaceClient, qualifier *Qualifier) *Fetcher {
	return &Fetcher{
		client:    client,
		qualifier: qualifier,
		logger:    slog.Default().With("component", "fetcher"),
	}
}

// FetchForPhrase runs one bounded search, prefilters by condition, groups
// candidates by seller, qualifies each distinct seller once, and returns one
// representative listing per qualifying seller.
func (f *Fetcher) FetchForPhrase(ctx context.Context, phrase string, params ScanParams) ([]model.Listing, model.ScanStats, error) {
	var stats model.ScanStats

	items, err := f.client.SearchItems(ctx, phrase, searchResultCap)
	if err != nil {
		return nil, stats, common.NewExternalServiceError(fmt.Sprintf("search %q", phrase), err)
	}

	stats.ItemsFetched = len(items)
	if len(items) == 0 {
		return nil, stats, nil
	}

	whitelist := make(map[string]bool, len(params.ConditionCodes))
	for _, code := range params.ConditionCodes {
		whitelist[code] = true
	}

	groups := f.groupBySeller(items, whitelist, &stats)

	// Assessments are memoized for the duration of this fetch cycle only.
	assessed := make(map[string]model.SellerAssessment, len(groups))

	var listings []model.Listing
	for _, group := range groups {
		// The feedback ceiling is the cheapest filter; it must fire before
		// any inventory-sampling call.
		if group.feedbackScore >= params.FeedbackThreshold {
			stats.SellersSkippedByFeedback++
			f.logger.Debug("Skipping high-feedback seller",
				"seller", group.seller,
				"feedback", group.feedbackScore,
				"threshold", params.FeedbackThreshold)
			continue
		}

		assessment, ok := assessed[group.seller]
		if !ok {
			assessment = f.qualifier.AssessSeller(ctx, group.seller, params.TypicalPhrases)
			assessed[group.seller] = assessment
			stats.SellersAssessed++
		}

		if assessment.Exclude {
			stats.SellersExcluded++
			continue
		}

		// One representative item per qualifying seller per phrase; the
		// remainder of the seller's matching listings is dropped.
		listings = append(listings, toListing(group.firstItem))
		if group.itemCount > 1 {
			f.logger.Debug("Dropping extra listings for qualifying seller",
				"seller", group.seller,
				"dropped", group.itemCount-1)
		}
	}

	f.logger.Info("Phrase fetch completed",
		"phrase", phrase,
		"candidates", stats.ItemsFetched,
		"qualifying", len(listings))

	return listings, stats, nil
}

// groupBySeller prefilters candidates by condition and buckets the survivors
// by exact seller username, preserving first-seen order.
func (f *Fetcher) groupBySeller(items []service.ItemSummary, whitelist map[string]bool, stats *model.ScanStats) []*sellerGroup {
	var order []*sellerGroup
	bySeller := make(map[string]*sellerGroup)

	for _, item := range items {
		code, known := ebay.ResolveCondition(item.Condition)
		if !known || !whitelist[code] {
			stats.DroppedCondition++
			continue
		}

		if item.Seller == "" {
			stats.DroppedMissingSeller++
			continue
		}

		group, ok := bySeller[item.Seller]
		if !ok {
			group = &sellerGroup{
				seller:        item.Seller,
				firstItem:     item,
				feedbackScore: item.FeedbackScore,
			}
			bySeller[item.Seller] = group
			order = append(order, group)
		}
		group.itemCount++
	}

	return order
}

func toListing(item service.ItemSummary) model.Listing {
	return model.Listing{
		ItemID:   item.ItemID,
		Title:    item.Title,
		Currency: item.Currency,
		URL:      item.URL,
		Seller:   item.Seller,
		Price:    item.Price,
		IsActive: true,
	}
}
