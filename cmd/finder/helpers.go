package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/maggierui/listing-scanner-sub000/internal/config"
	"github.com/maggierui/listing-scanner-sub000/internal/ebay"
	"github.com/maggierui/listing-scanner-sub000/internal/storage"
)

// initStorage opens the database and brings the schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/finder/finder.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initMarketplaceClient wires the Browse API client with its token source
// and rate limiter from configuration.
func initMarketplaceClient() (*ebay.Client, *ebay.ClientCredentialsSource, error) {
	oauthCfg, err := config.LoadEbayConfig()
	if err != nil {
		return nil, nil, err
	}

	tokens, err := ebay.NewTokenSource(*oauthCfg)
	if err != nil {
		return nil, nil, err
	}

	limiter := ebay.NewRateLimiter(viper.GetInt("ebay.calls_per_minute"))

	client, err := ebay.NewClient(ebay.Config{
		BaseURL:    viper.GetString("ebay.base_url"),
		DailyQuota: viper.GetInt64("ebay.daily_quota"),
	}, tokens, limiter)
	if err != nil {
		return nil, nil, err
	}

	return client, tokens, nil
}

// parseConditionCodes validates a comma-separated or repeated flag list of
// canonical condition codes.
func parseConditionCodes(raw []string) ([]string, error) {
	var codes []string
	for _, entry := range raw {
		for _, code := range strings.Split(entry, ",") {
			code = strings.ToUpper(strings.TrimSpace(code))
			if code == "" {
				continue
			}
			if !ebay.IsCanonicalCondition(code) {
				return nil, fmt.Errorf("unknown condition code %q (valid: NEW, NEW_OTHER, REFURBISHED, USED, FOR_PARTS)", code)
			}
			codes = append(codes, code)
		}
	}
	return codes, nil
}
