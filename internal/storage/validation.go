package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/maggierui/listing-scanner-sub000/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidID     = errors.New("id must be positive")
	ErrInvalidWindow = errors.New("day window must be positive")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateID ensures a surrogate id is positive.
func validateID(id int64, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidID, paramName)
	}
	return nil
}

// validateDays ensures a trailing-window day count is positive.
func validateDays(days int, paramName string) error {
	if days <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidWindow, paramName)
	}
	return nil
}

// validateSearch validates a saved search before persisting it.
func validateSearch(search *model.SavedSearch) error {
	if search == nil {
		return fmt.Errorf("%w: search", ErrNilParameter)
	}
	if err := validateString(search.Name, "search.Name"); err != nil {
		return err
	}
	return search.Validate()
}

// validateListing validates a listing before persisting it.
func validateListing(listing *model.Listing) error {
	if listing == nil {
		return fmt.Errorf("%w: listing", ErrNilParameter)
	}
	if err := validateString(listing.ItemID, "listing.ItemID"); err != nil {
		return err
	}
	if err := validateString(listing.Title, "listing.Title"); err != nil {
		return err
	}
	return nil
}
