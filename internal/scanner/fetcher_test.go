package scanner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maggierui/listing-scanner-sub000/internal/common"
	"github.com/maggierui/listing-scanner-sub000/internal/ebay"
	"github.com/maggierui/listing-scanner-sub000/internal/service"
)

func testParams() ScanParams {
	return ScanParams{
		SearchPhrases:     []string{"jewelry lot"},
		TypicalPhrases:    []string{"jewelry", "necklace"},
		ConditionCodes:    []string{"USED"},
		FeedbackThreshold: 5000,
		SearchID:          1,
	}
}

func newTestFetcher(client *ebay.MockClient) *Fetcher {
	return NewFetcher(client, NewQualifier(client))
}

func TestFetchForPhraseScenario(t *testing.T) {
	// Three candidates from three distinct sellers: A is skipped on
	// feedback alone, B qualifies, C is a specialist.
	client := ebay.NewMockClient()
	client.SearchResults["jewelry lot"] = []service.ItemSummary{
		{ItemID: "v1|1|0", Title: "Jewelry lot A", Condition: "Used", Seller: "sellerA", FeedbackScore: 6000},
		{ItemID: "v1|2|0", Title: "Jewelry lot B", Condition: "Used", Seller: "sellerB", FeedbackScore: 300},
		{ItemID: "v1|3|0", Title: "Jewelry lot C", Condition: "Used", Seller: "sellerC", FeedbackScore: 800},
	}
	client.SellerInventory["sellerB"] = inventory(40, 5)  // 12.5% -> included
	client.SellerInventory["sellerC"] = inventory(50, 20) // 40% -> excluded

	f := newTestFetcher(client)
	listings, stats, err := f.FetchForPhrase(context.Background(), "jewelry lot", testParams())
	require.NoError(t, err)

	require.Len(t, listings, 1)
	assert.Equal(t, "v1|2|0", listings[0].ItemID)
	assert.Equal(t, "sellerB", listings[0].Seller)
	assert.True(t, listings[0].IsActive)

	// The feedback short-circuit must fire before any sampling call.
	assert.Zero(t, client.SellerCalls["sellerA"])
	assert.Equal(t, 1, client.SellerCalls["sellerB"])
	assert.Equal(t, 1, client.SellerCalls["sellerC"])

	assert.Equal(t, 3, stats.ItemsFetched)
	assert.Equal(t, 1, stats.SellersSkippedByFeedback)
	assert.Equal(t, 2, stats.SellersAssessed)
	assert.Equal(t, 1, stats.SellersExcluded)
}

func TestFetchForPhraseEmptyResult(t *testing.T) {
	client := ebay.NewMockClient()

	f := newTestFetcher(client)
	listings, stats, err := f.FetchForPhrase(context.Background(), "jewelry lot", testParams())

	require.NoError(t, err)
	assert.Empty(t, listings)
	assert.Zero(t, stats.ItemsFetched)
}

func TestFetchForPhraseConditionFiltering(t *testing.T) {
	client := ebay.NewMockClient()
	client.SearchResults["jewelry lot"] = []service.ItemSummary{
		{ItemID: "v1|1|0", Title: "Lot 1", Condition: "Brand New", Seller: "sellerB", FeedbackScore: 100},
		{ItemID: "v1|2|0", Title: "Lot 2", Condition: "Slightly loved", Seller: "sellerB", FeedbackScore: 100},
		{ItemID: "v1|3|0", Title: "Lot 3", Condition: "Pre-owned", Seller: "sellerB", FeedbackScore: 100},
	}
	client.SellerInventory["sellerB"] = inventory(40, 5)

	f := newTestFetcher(client)
	listings, stats, err := f.FetchForPhrase(context.Background(), "jewelry lot", testParams())
	require.NoError(t, err)

	// Whitelist allows USED only: "Brand New" filtered, unknown variant
	// dropped, "Pre-owned" survives.
	assert.Equal(t, 2, stats.DroppedCondition)
	require.Len(t, listings, 1)
	assert.Equal(t, "v1|3|0", listings[0].ItemID)
}

func TestFetchForPhraseMissingSellerDropped(t *testing.T) {
	client := ebay.NewMockClient()
	client.SearchResults["jewelry lot"] = []service.ItemSummary{
		{ItemID: "v1|1|0", Title: "Lot 1", Condition: "Used", Seller: "", FeedbackScore: 100},
	}

	f := newTestFetcher(client)
	listings, stats, err := f.FetchForPhrase(context.Background(), "jewelry lot", testParams())
	require.NoError(t, err)

	assert.Empty(t, listings)
	assert.Equal(t, 1, stats.DroppedMissingSeller)
}

func TestFetchForPhraseOneRepresentativePerSeller(t *testing.T) {
	client := ebay.NewMockClient()
	client.SearchResults["jewelry lot"] = []service.ItemSummary{
		{ItemID: "v1|1|0", Title: "Lot 1", Condition: "Used", Seller: "sellerB", FeedbackScore: 100},
		{ItemID: "v1|2|0", Title: "Lot 2", Condition: "Used", Seller: "sellerB", FeedbackScore: 100},
		{ItemID: "v1|3|0", Title: "Lot 3", Condition: "Used", Seller: "sellerB", FeedbackScore: 100},
	}
	client.SellerInventory["sellerB"] = inventory(40, 5)

	f := newTestFetcher(client)
	listings, _, err := f.FetchForPhrase(context.Background(), "jewelry lot", testParams())
	require.NoError(t, err)

	// One sentinel item per qualifying seller, the first seen in the batch,
	// and exactly one assessment for the whole group.
	require.Len(t, listings, 1)
	assert.Equal(t, "v1|1|0", listings[0].ItemID)
	assert.Equal(t, 1, client.SellerCalls["sellerB"])
}

func TestFetchForPhraseSearchFailure(t *testing.T) {
	client := ebay.NewMockClient()
	client.SearchErr = errors.New("gateway timeout")

	f := newTestFetcher(client)
	_, _, err := f.FetchForPhrase(context.Background(), "jewelry lot", testParams())

	require.Error(t, err)
	var extErr *common.ExternalServiceError
	assert.True(t, errors.As(err, &extErr))
}

func TestScanParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ScanParams)
		wantErr bool
	}{
		{name: "valid", mutate: func(_ *ScanParams) {}, wantErr: false},
		{name: "no search phrases", mutate: func(p *ScanParams) { p.SearchPhrases = nil }, wantErr: true},
		{name: "no typical phrases", mutate: func(p *ScanParams) { p.TypicalPhrases = nil }, wantErr: true},
		{name: "zero threshold", mutate: func(p *ScanParams) { p.FeedbackThreshold = 0 }, wantErr: true},
		{name: "negative threshold", mutate: func(p *ScanParams) { p.FeedbackThreshold = -5 }, wantErr: true},
		{name: "no condition codes", mutate: func(p *ScanParams) { p.ConditionCodes = nil }, wantErr: true},
		{name: "missing search id", mutate: func(p *ScanParams) { p.SearchID = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := testParams()
			tt.mutate(&params)

			err := params.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
