// Package model defines the core domain types shared across the application.
package model

import (
	"fmt"
	"time"
)

// SavedSearch is a named, user-authored scan recipe. It is immutable once
// created except by full replacement.
type SavedSearch struct {
	CreatedAt         time.Time
	Name              string
	SearchPhrases     []string
	TypicalPhrases    []string
	ConditionCodes    []string
	ID                int64
	FeedbackThreshold int
}

// Validate checks that the search holds a runnable set of scan parameters.
func (s *SavedSearch) Validate() error {
	if len(s.SearchPhrases) == 0 {
		return fmt.Errorf("at least one search phrase is required")
	}
	if len(s.TypicalPhrases) == 0 {
		return fmt.Errorf("at least one typical phrase is required")
	}
	if s.FeedbackThreshold <= 0 {
		return fmt.Errorf("feedback threshold must be positive, got %d", s.FeedbackThreshold)
	}
	if len(s.ConditionCodes) == 0 {
		return fmt.Errorf("at least one condition code is required")
	}
	return nil
}
