package scanner

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maggierui/listing-scanner-sub000/internal/ebay"
	"github.com/maggierui/listing-scanner-sub000/internal/service"
)

// inventory builds a seller sample with matching of its titles containing a
// typical phrase.
func inventory(total, matching int) []service.ItemSummary {
	items := make([]service.ItemSummary, 0, total)
	for i := 0; i < matching; i++ {
		items = append(items, service.ItemSummary{
			ItemID: fmt.Sprintf("v1|m%d|0", i),
			Title:  fmt.Sprintf("Vintage Jewelry box %d", i),
		})
	}
	for i := matching; i < total; i++ {
		items = append(items, service.ItemSummary{
			ItemID: fmt.Sprintf("v1|o%d|0", i),
			Title:  fmt.Sprintf("Garden hose reel %d", i),
		})
	}
	return items
}

func TestAssessSeller(t *testing.T) {
	typical := []string{"jewelry", "necklace"}

	tests := []struct {
		name        string
		sample      []service.ItemSummary
		wantRatio   float64
		wantExclude bool
	}{
		{
			name:        "casual seller in the included band",
			sample:      inventory(40, 5),
			wantRatio:   12.5,
			wantExclude: false,
		},
		{
			name:        "specialist above the ceiling",
			sample:      inventory(50, 20),
			wantRatio:   40,
			wantExclude: true,
		},
		{
			name:        "no niche overlap",
			sample:      inventory(30, 0),
			wantRatio:   0,
			wantExclude: true,
		},
		{
			name:        "empty sample",
			sample:      nil,
			wantRatio:   0,
			wantExclude: true,
		},
		{
			name:        "exactly at the ceiling is included",
			sample:      inventory(50, 10),
			wantRatio:   20,
			wantExclude: false,
		},
		{
			name:        "just above the ceiling is excluded",
			sample:      inventory(100, 21),
			wantRatio:   21,
			wantExclude: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := ebay.NewMockClient()
			client.SellerInventory["seller1"] = tt.sample

			q := NewQualifier(client)
			assessment := q.AssessSeller(context.Background(), "seller1", typical)

			assert.Equal(t, "seller1", assessment.Seller)
			assert.Equal(t, len(tt.sample), assessment.SampleSize)
			assert.InDelta(t, tt.wantRatio, assessment.Ratio, 0.001)
			assert.Equal(t, tt.wantExclude, assessment.Exclude)
			assert.NoError(t, assessment.Err)

			assert.GreaterOrEqual(t, assessment.Ratio, 0.0)
			assert.LessOrEqual(t, assessment.Ratio, 100.0)
		})
	}
}

func TestAssessSellerMatchingIsCaseInsensitive(t *testing.T) {
	client := ebay.NewMockClient()
	client.SellerInventory["seller1"] = []service.ItemSummary{
		{ItemID: "v1|1|0", Title: "ANTIQUE JEWELRY LOT"},
		{ItemID: "v1|2|0", Title: "costume jewelry mix"},
		{ItemID: "v1|3|0", Title: "Lawn mower blade"},
		{ItemID: "v1|4|0", Title: "Sterling Necklace"},
		{ItemID: "v1|5|0", Title: "Tool chest"},
		{ItemID: "v1|6|0", Title: "Book collection"},
		{ItemID: "v1|7|0", Title: "Dining chairs"},
		{ItemID: "v1|8|0", Title: "Record player"},
		{ItemID: "v1|9|0", Title: "Table lamp"},
		{ItemID: "v1|10|0", Title: "Winter coat"},
	}

	q := NewQualifier(client)
	assessment := q.AssessSeller(context.Background(), "seller1", []string{"Jewelry", "necklace"})

	assert.Equal(t, 3, assessment.MatchCount)
	assert.InDelta(t, 30.0, assessment.Ratio, 0.001)
	assert.True(t, assessment.Exclude)
}

func TestAssessSellerSamplingFailure(t *testing.T) {
	client := ebay.NewMockClient()
	client.SellerErr = errors.New("connection reset")

	q := NewQualifier(client)
	assessment := q.AssessSeller(context.Background(), "seller1", []string{"jewelry"})

	require.True(t, assessment.Exclude, "sampling failure must fail safe")
	require.Error(t, assessment.Err)
	assert.Zero(t, assessment.SampleSize)
	assert.Zero(t, assessment.Ratio)
}
