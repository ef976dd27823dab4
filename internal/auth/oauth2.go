package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fivetwenty-io/gitlab-client/internal/constants"
	"golang.org/x/oauth2"
)

// Static errors for err113 compliance.
var (
	ErrPasswordGrantFailed = errors.New("password grant failed")
	ErrEmptyAccessToken    = errors.New("token endpoint returned an empty access token")
)

// PasswordGrantConfig configures the resource owner password grant.
type PasswordGrantConfig struct {
	// BaseURL is the instance URL; the token endpoint is <BaseURL>/oauth/token.
	BaseURL      string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	// HTTPClient is used for the token request when set.
	HTTPClient *http.Client
}

// TokenURL returns the token endpoint for baseURL.
func TokenURL(baseURL string) string {
	return strings.TrimSuffix(baseURL, "/") + "/oauth/token"
}

// PasswordGrant exchanges username and password for an OAuth2 credential.
// The exchange happens once; the resulting credential is never refreshed.
func PasswordGrant(ctx context.Context, config *PasswordGrantConfig) (Credential, error) {
	oauthConfig := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  TokenURL(config.BaseURL),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	if config.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, config.HTTPClient)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.ShortHTTPTimeout)
	defer cancel()

	token, err := oauthConfig.PasswordCredentialsToken(ctx, config.Username, config.Password)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: %w", ErrPasswordGrantFailed, err)
	}

	if token.AccessToken == "" {
		return Credential{}, ErrEmptyAccessToken
	}

	return FromOAuth2Token(token), nil
}
