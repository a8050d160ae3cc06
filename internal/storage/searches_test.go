package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/maggierui/listing-scanner-sub000/internal/common"
	"github.com/maggierui/listing-scanner-sub000/internal/model"
)

func TestSaveAndGetSearch(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	search := &model.SavedSearch{
		Name:              "estate jewelry",
		SearchPhrases:     []string{"jewelry lot", "estate jewelry"},
		TypicalPhrases:    []string{"jewelry", "necklace", "brooch"},
		FeedbackThreshold: 5000,
		ConditionCodes:    []string{"USED", "NEW_OTHER"},
	}

	id, err := s.SaveSearch(ctx, search)
	if err != nil {
		t.Fatalf("SaveSearch failed: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}

	got, err := s.GetSearch(ctx, id)
	if err != nil {
		t.Fatalf("GetSearch failed: %v", err)
	}

	if got.Name != search.Name {
		t.Errorf("name = %q, want %q", got.Name, search.Name)
	}
	if len(got.SearchPhrases) != 2 || got.SearchPhrases[0] != "jewelry lot" {
		t.Errorf("search phrases round-trip failed: %v", got.SearchPhrases)
	}
	if len(got.TypicalPhrases) != 3 {
		t.Errorf("typical phrases round-trip failed: %v", got.TypicalPhrases)
	}
	if got.FeedbackThreshold != 5000 {
		t.Errorf("feedback threshold = %d, want 5000", got.FeedbackThreshold)
	}
	if len(got.ConditionCodes) != 2 {
		t.Errorf("condition codes round-trip failed: %v", got.ConditionCodes)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}
}

func TestGetSearchNotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.GetSearch(context.Background(), 999)
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListSearchesNewestFirst(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	older := &model.SavedSearch{
		Name:              "first",
		SearchPhrases:     []string{"a"},
		TypicalPhrases:    []string{"b"},
		FeedbackThreshold: 100,
		ConditionCodes:    []string{"USED"},
		CreatedAt:         time.Now().UTC().Add(-time.Hour),
	}
	newer := &model.SavedSearch{
		Name:              "second",
		SearchPhrases:     []string{"a"},
		TypicalPhrases:    []string{"b"},
		FeedbackThreshold: 100,
		ConditionCodes:    []string{"USED"},
	}

	if _, err := s.SaveSearch(ctx, older); err != nil {
		t.Fatalf("save older failed: %v", err)
	}
	if _, err := s.SaveSearch(ctx, newer); err != nil {
		t.Fatalf("save newer failed: %v", err)
	}

	searches, err := s.ListSearches(ctx)
	if err != nil {
		t.Fatalf("ListSearches failed: %v", err)
	}

	if len(searches) != 2 {
		t.Fatalf("expected 2 searches, got %d", len(searches))
	}
	if searches[0].Name != "second" {
		t.Errorf("expected newest first, got %q", searches[0].Name)
	}
}

func TestSaveSearchValidation(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		search *model.SavedSearch
	}{
		{name: "nil search", search: nil},
		{name: "missing name", search: &model.SavedSearch{
			SearchPhrases:     []string{"a"},
			TypicalPhrases:    []string{"b"},
			FeedbackThreshold: 1,
			ConditionCodes:    []string{"USED"},
		}},
		{name: "no search phrases", search: &model.SavedSearch{
			Name:              "x",
			TypicalPhrases:    []string{"b"},
			FeedbackThreshold: 1,
			ConditionCodes:    []string{"USED"},
		}},
		{name: "no typical phrases", search: &model.SavedSearch{
			Name:              "x",
			SearchPhrases:     []string{"a"},
			FeedbackThreshold: 1,
			ConditionCodes:    []string{"USED"},
		}},
		{name: "zero threshold", search: &model.SavedSearch{
			Name:           "x",
			SearchPhrases:  []string{"a"},
			TypicalPhrases: []string{"b"},
			ConditionCodes: []string{"USED"},
		}},
		{name: "no condition codes", search: &model.SavedSearch{
			Name:              "x",
			SearchPhrases:     []string{"a"},
			TypicalPhrases:    []string{"b"},
			FeedbackThreshold: 1,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.SaveSearch(ctx, tt.search); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestDeleteSearch(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	searchID := testSearch(t, s, "jewelry")
	listing := testListing("v1|100|0", time.Now().UTC())
	if err := s.SaveScanResults(ctx, searchID, []model.Listing{listing}); err != nil {
		t.Fatalf("save results failed: %v", err)
	}

	if err := s.DeleteSearch(ctx, searchID); err != nil {
		t.Fatalf("DeleteSearch failed: %v", err)
	}

	if _, err := s.GetSearch(ctx, searchID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if got := countRows(t, s, "search_results"); got != 0 {
		t.Errorf("expected mappings removed with the search, got %d", got)
	}
	// Listing history is preserved.
	if got := countRows(t, s, "listings"); got != 1 {
		t.Errorf("expected listing row to survive search deletion, got %d", got)
	}

	if err := s.DeleteSearch(ctx, searchID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}

	version, err := s.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if version != ExpectedSchemaVersion {
		t.Errorf("schema version = %d, want %d", version, ExpectedSchemaVersion)
	}
}
