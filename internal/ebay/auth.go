package ebay

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/clientcredentials"
)

// DefaultTokenURL is the production OAuth2 client-credentials endpoint.
const DefaultTokenURL = "https://api.ebay.com/identity/v1/oauth2/token"

// OAuthConfig holds the application credentials for the marketplace's
// client-credentials grant.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// Validate ensures all required fields are present.
func (c *OAuthConfig) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("ebay client ID is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("ebay client secret is required")
	}
	return nil
}

// ClientCredentialsSource exchanges stored credentials for a bearer token on
// every invocation. No token is cached across scans.
type ClientCredentialsSource struct {
	cfg *clientcredentials.Config
}

// NewTokenSource creates a token source backed by the OAuth2
// client-credentials grant.
func NewTokenSource(cfg OAuthConfig) (*ClientCredentialsSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"https://api.ebay.com/oauth/api_scope"}
	}

	return &ClientCredentialsSource{
		cfg: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     tokenURL,
			Scopes:       scopes,
		},
	}, nil
}

// Token exchanges the credentials for a fresh bearer token.
func (s *ClientCredentialsSource) Token(ctx context.Context) (string, error) {
	token, err := s.cfg.TokenSource(ctx).Token()
	if err != nil {
		return "", fmt.Errorf("failed to exchange credentials for token: %w", err)
	}
	return token.AccessToken, nil
}
