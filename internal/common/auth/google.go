// internal/common/auth/google.go
package auth

import (
	"context"

	"pos-onboarding-workers/internal/common/config"
	"pos-onboarding-workers/internal/common/errors"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const CloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// NewGoogleTokenSource returns bearer tokens for Document AI and Discovery
// Engine. A configured access token wins over Application Default Credentials.
func NewGoogleTokenSource(ctx context.Context, cfg config.GoogleConfig) (oauth2.TokenSource, error) {
	if cfg.AccessToken != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.AccessToken,
			TokenType:   "Bearer",
		}), nil
	}

	ts, err := google.DefaultTokenSource(ctx, CloudPlatformScope)
	if err != nil {
		return nil, errors.NewAuthenticationError("google application default credentials: " + err.Error())
	}
	return ts, nil
}
