package scanner

import (
	"context"
	"log/slog"
	"strings"

	"github.com/maggierui/listing-scanner-sub000/internal/common"
	"github.com/maggierui/listing-scanner-sub000/internal/model"
	"github.com/maggierui/listing-scanner-sub000/internal/service"
)

const (
	// sellerSampleLimit caps how much of a seller's inventory is examined,
	// even when the seller lists more.
	sellerSampleLimit = 100

	// specialistRatioCeiling is the qualification threshold: a seller whose
	// sampled inventory exceeds this percentage of niche matches is a
	// specialist and out of scope. A 0% seller is also out of scope; only
	// the narrow band in between qualifies.
	specialistRatioCeiling = 20.0
)

// Qualifier renders include/exclude verdicts on sellers by sampling their
// inventory against the typical phrases.
type Qualifier struct {
	client service.MarketplaceClient
	logger *slog.Logger
}

// NewQualifier creates a seller qualifier backed by the given client.
func NewQualifier(client service.MarketplaceClient) *Qualifier {
	return &Qualifier{
		client: client,
		logger: slog.Default().With("component", "qualifier"),
	}
}

// AssessSeller samples up to 100 of the seller's own listings and decides
// whether the seller is in scope. Any sampling failure resolves to a
// fail-safe exclusion with Err set, distinct from a ratio-based exclusion.
func (q *Qualifier) AssessSeller(ctx context.Context, seller string, typicalPhrases []string) model.SellerAssessment {
	assessment := model.SellerAssessment{Seller: seller}

	items, err := q.client.SellerItems(ctx, seller, sellerSampleLimit)
	if err != nil {
		assessment.Exclude = true
		assessment.Err = common.NewExternalServiceError("seller inventory sample", err)
		q.logger.Warn("Seller sampling failed, excluding",
			"seller", seller,
			"error", err)
		return assessment
	}

	assessment.SampleSize = len(items)
	assessment.MatchCount = countMatches(items, typicalPhrases)

	if assessment.SampleSize > 0 {
		assessment.Ratio = float64(assessment.MatchCount) / float64(assessment.SampleSize) * 100
	}
	assessment.Exclude = assessment.Ratio > specialistRatioCeiling || assessment.Ratio == 0

	q.logger.Debug("Assessed seller",
		"seller", seller,
		"sample_size", assessment.SampleSize,
		"matches", assessment.MatchCount,
		"ratio", assessment.Ratio,
		"exclude", assessment.Exclude)

	return assessment
}

// countMatches counts sampled titles containing any typical phrase,
// case-insensitively.
func countMatches(items []service.ItemSummary, typicalPhrases []string) int {
	phrases := make([]string, len(typicalPhrases))
	for i, p := range typicalPhrases {
		phrases[i] = strings.ToLower(p)
	}

	count := 0
	for _, item := range items {
		title := strings.ToLower(item.Title)
		for _, phrase := range phrases {
			if strings.Contains(title, phrase) {
				count++
				break
			}
		}
	}
	return count
}
