// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"testing"

	"github.com/maggierui/listing-scanner-sub000/internal/model"
	"github.com/maggierui/listing-scanner-sub000/internal/storage"
)

// SetupTestDB creates a migrated in-memory ledger with automatic cleanup.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	s, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { _ = s.Close() })

	return s
}

// SeedSearch saves a saved search with workable defaults and returns its id.
func SeedSearch(t *testing.T, s *storage.SQLiteStorage) int64 {
	t.Helper()

	id, err := s.SaveSearch(context.Background(), &model.SavedSearch{
		Name:              "estate jewelry",
		SearchPhrases:     []string{"jewelry lot"},
		TypicalPhrases:    []string{"jewelry", "necklace"},
		FeedbackThreshold: 5000,
		ConditionCodes:    []string{"USED", "NEW_OTHER"},
	})
	if err != nil {
		t.Fatalf("failed to seed search: %v", err)
	}
	return id
}
