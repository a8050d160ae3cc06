package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/maggierui/listing-scanner-sub000/internal/common"
	"github.com/maggierui/listing-scanner-sub000/internal/model"
)

// UpsertListing inserts a listing or, when the item id already exists,
// advances last_seen_at and reactivates it. first_found_at is never touched
// on conflict, and last_seen_at never moves backwards, so
// last_seen_at >= first_found_at holds no matter what timestamp a
// rediscovery carries.
func (s *SQLiteStorage) UpsertListing(ctx context.Context, listing *model.Listing) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateListing(listing); err != nil {
		return err
	}

	if err := s.upsertListingTx(ctx, s.db, listing); err != nil {
		return common.NewPersistenceError("upsert listing", err)
	}
	return nil
}

func (s *SQLiteStorage) upsertListingTx(ctx context.Context, q queryable, listing *model.Listing) error {
	now := time.Now().UTC()

	firstFound := listing.FirstFoundAt
	if firstFound.IsZero() {
		firstFound = now
	}
	lastSeen := listing.LastSeenAt
	if lastSeen.IsZero() {
		lastSeen = now
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO listings (item_id, title, price, currency, url, seller, first_found_at, last_seen_at, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(item_id) DO UPDATE SET
			title = excluded.title,
			price = excluded.price,
			currency = excluded.currency,
			url = excluded.url,
			seller = excluded.seller,
			last_seen_at = MAX(excluded.last_seen_at, listings.last_seen_at),
			is_active = 1
	`, listing.ItemID, listing.Title, listing.Price, listing.Currency,
		listing.URL, listing.Seller, firstFound, lastSeen)
	return err
}

func (s *SQLiteStorage) recordResultTx(ctx context.Context, q queryable, searchID int64, itemID string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO search_results (search_id, item_id, found_at)
		VALUES (?, ?, ?)
		ON CONFLICT(search_id, item_id) DO NOTHING
	`, searchID, itemID, time.Now().UTC())
	return err
}

// SaveScanResults persists a scan's qualifying listings for one search. Each
// listing's upsert and its result mapping execute in a single transaction so
// an item and its mapping are never left inconsistent.
func (s *SQLiteStorage) SaveScanResults(ctx context.Context, searchID int64, listings []model.Listing) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(searchID, "searchID"); err != nil {
		return err
	}
	if len(listings) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.NewPersistenceError("save scan results", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range listings {
		listing := &listings[i]
		if err := validateListing(listing); err != nil {
			return err
		}
		if err := s.upsertListingTx(ctx, tx, listing); err != nil {
			return common.NewPersistenceError("save scan results", err)
		}
		if err := s.recordResultTx(ctx, tx, searchID, listing.ItemID); err != nil {
			return common.NewPersistenceError("save scan results", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return common.NewPersistenceError("save scan results", err)
	}
	return nil
}

// ExistingResultsForSearch returns active listings mapped to the search
// whose last_seen_at falls within the trailing window, newest first.
func (s *SQLiteStorage) ExistingResultsForSearch(ctx context.Context, searchID int64, withinDays int) ([]model.Listing, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(searchID, "searchID"); err != nil {
		return nil, err
	}
	if err := validateDays(withinDays, "withinDays"); err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -withinDays)

	return s.queryListings(ctx, `
		SELECT l.item_id, l.title, l.price, l.currency, l.url, l.seller,
		       l.first_found_at, l.last_seen_at, l.is_active
		FROM listings l
		JOIN search_results r ON l.item_id = r.item_id
		WHERE r.search_id = ? AND l.is_active = 1 AND l.last_seen_at >= ?
		ORDER BY l.last_seen_at DESC
	`, searchID, cutoff)
}

// AllResultsForSearch returns all active listings mapped to the search,
// newest first by discovery time.
func (s *SQLiteStorage) AllResultsForSearch(ctx context.Context, searchID int64) ([]model.Listing, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(searchID, "searchID"); err != nil {
		return nil, err
	}

	return s.queryListings(ctx, `
		SELECT l.item_id, l.title, l.price, l.currency, l.url, l.seller,
		       l.first_found_at, l.last_seen_at, l.is_active
		FROM listings l
		JOIN search_results r ON l.item_id = r.item_id
		WHERE r.search_id = ? AND l.is_active = 1
		ORDER BY l.first_found_at DESC
	`, searchID)
}

// RecentItemIDs returns the ids of listings seen within the trailing window,
// used to skip re-evaluating recently captured items.
func (s *SQLiteStorage) RecentItemIDs(ctx context.Context, days int) (map[string]bool, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateDays(days, "days"); err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id FROM listings WHERE last_seen_at >= ?
	`, cutoff)
	if err != nil {
		return nil, common.NewPersistenceError("recent item ids", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, common.NewPersistenceError("recent item ids", err)
		}
		ids[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, common.NewPersistenceError("recent item ids", err)
	}

	return ids, nil
}

// MarkStaleInactive flips is_active off for listings absent from search
// results longer than the cutoff and returns how many were affected. Rows
// are never deleted.
func (s *SQLiteStorage) MarkStaleInactive(ctx context.Context, olderThanDays int) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateDays(olderThanDays, "olderThanDays"); err != nil {
		return 0, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays)

	result, err := s.db.ExecContext(ctx, `
		UPDATE listings SET is_active = 0
		WHERE is_active = 1 AND last_seen_at < ?
	`, cutoff)
	if err != nil {
		return 0, common.NewPersistenceError("mark stale inactive", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, common.NewPersistenceError("mark stale inactive", err)
	}

	return affected, nil
}

func (s *SQLiteStorage) queryListings(ctx context.Context, query string, args ...any) ([]model.Listing, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewPersistenceError("query listings", err)
	}
	defer func() { _ = rows.Close() }()

	var listings []model.Listing
	for rows.Next() {
		var (
			listing  model.Listing
			currency sql.NullString
			url      sql.NullString
			seller   sql.NullString
		)
		err := rows.Scan(
			&listing.ItemID,
			&listing.Title,
			&listing.Price,
			&currency,
			&url,
			&seller,
			&listing.FirstFoundAt,
			&listing.LastSeenAt,
			&listing.IsActive,
		)
		if err != nil {
			return nil, common.NewPersistenceError("query listings", err)
		}

		listing.Currency = currency.String
		listing.URL = url.String
		listing.Seller = seller.String

		listings = append(listings, listing)
	}

	if err := rows.Err(); err != nil {
		return nil, common.NewPersistenceError("query listings", err)
	}

	return listings, nil
}
