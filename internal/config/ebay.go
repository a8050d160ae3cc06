package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/maggierui/listing-scanner-sub000/internal/ebay"
)

// LoadEbayConfig loads the marketplace OAuth credentials. Precedence: Viper
// configuration (config file or FINDER_ env vars), then direct EBAY_*
// environment variables.
func LoadEbayConfig() (*ebay.OAuthConfig, error) {
	config := ebay.OAuthConfig{
		ClientID:     viper.GetString("ebay.client_id"),
		ClientSecret: viper.GetString("ebay.client_secret"),
		TokenURL:     viper.GetString("ebay.token_url"),
	}

	if config.ClientID == "" {
		config.ClientID = os.Getenv("EBAY_CLIENT_ID")
	}
	if config.ClientSecret == "" {
		config.ClientSecret = os.Getenv("EBAY_CLIENT_SECRET")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
