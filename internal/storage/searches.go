package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/maggierui/listing-scanner-sub000/internal/common"
	"github.com/maggierui/listing-scanner-sub000/internal/model"
)

// SaveSearch persists a new saved search and returns its id.
func (s *SQLiteStorage) SaveSearch(ctx context.Context, search *model.SavedSearch) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateSearch(search); err != nil {
		return 0, err
	}

	searchPhrases, err := json.Marshal(search.SearchPhrases)
	if err != nil {
		return 0, fmt.Errorf("failed to encode search phrases: %w", err)
	}
	typicalPhrases, err := json.Marshal(search.TypicalPhrases)
	if err != nil {
		return 0, fmt.Errorf("failed to encode typical phrases: %w", err)
	}
	conditionCodes, err := json.Marshal(search.ConditionCodes)
	if err != nil {
		return 0, fmt.Errorf("failed to encode condition codes: %w", err)
	}

	createdAt := search.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO saved_searches (name, search_phrases, typical_phrases, feedback_threshold, condition_codes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, search.Name, string(searchPhrases), string(typicalPhrases), search.FeedbackThreshold, string(conditionCodes), createdAt)
	if err != nil {
		return 0, common.NewPersistenceError("save search", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, common.NewPersistenceError("save search", err)
	}

	search.ID = id
	search.CreatedAt = createdAt
	return id, nil
}

// GetSearch retrieves a saved search by id.
func (s *SQLiteStorage) GetSearch(ctx context.Context, id int64) (*model.SavedSearch, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, search_phrases, typical_phrases, feedback_threshold, condition_codes, created_at
		FROM saved_searches
		WHERE id = ?
	`, id)

	search, err := scanSearch(row)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.NewPersistenceError("get search", err)
	}

	return search, nil
}

// ListSearches returns all saved searches, newest first.
func (s *SQLiteStorage) ListSearches(ctx context.Context) ([]model.SavedSearch, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, search_phrases, typical_phrases, feedback_threshold, condition_codes, created_at
		FROM saved_searches
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, common.NewPersistenceError("list searches", err)
	}
	defer func() { _ = rows.Close() }()

	var searches []model.SavedSearch
	for rows.Next() {
		search, scanErr := scanSearch(rows)
		if scanErr != nil {
			return nil, common.NewPersistenceError("list searches", scanErr)
		}
		searches = append(searches, *search)
	}

	if err := rows.Err(); err != nil {
		return nil, common.NewPersistenceError("list searches", err)
	}

	return searches, nil
}

// DeleteSearch removes a saved search and its result mappings. Listings
// themselves are never deleted.
func (s *SQLiteStorage) DeleteSearch(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.NewPersistenceError("delete search", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM search_results WHERE search_id = ?`, id); err != nil {
		return common.NewPersistenceError("delete search", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM saved_searches WHERE id = ?`, id)
	if err != nil {
		return common.NewPersistenceError("delete search", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return common.NewPersistenceError("delete search", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return common.NewPersistenceError("delete search", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSearch(row rowScanner) (*model.SavedSearch, error) {
	var (
		search         model.SavedSearch
		searchPhrases  string
		typicalPhrases string
		conditionCodes string
	)

	err := row.Scan(
		&search.ID,
		&search.Name,
		&searchPhrases,
		&typicalPhrases,
		&search.FeedbackThreshold,
		&conditionCodes,
		&search.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(searchPhrases), &search.SearchPhrases); err != nil {
		return nil, fmt.Errorf("failed to decode search phrases: %w", err)
	}
	if err := json.Unmarshal([]byte(typicalPhrases), &search.TypicalPhrases); err != nil {
		return nil, fmt.Errorf("failed to decode typical phrases: %w", err)
	}
	if err := json.Unmarshal([]byte(conditionCodes), &search.ConditionCodes); err != nil {
		return nil, fmt.Errorf("failed to decode condition codes: %w", err)
	}

	return &search, nil
}
