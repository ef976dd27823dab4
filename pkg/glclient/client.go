// Package glclient provides the main entry point for creating GitLab API clients
package glclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fivetwenty-io/gitlab-client/internal/client"
	"github.com/fivetwenty-io/gitlab-client/pkg/gitlab"
	"github.com/go-playground/validator/v10"
)

// Static errors for err113 compliance.
var (
	ErrInvalidConfig = errors.New("invalid client configuration")
)

const apiSuffix = "/api/v4"

//nolint:gochecknoglobals // validator caches struct metadata and is safe for concurrent use
var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func configValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})

	return validate
}

// New creates a new GitLab API client. The config's BaseURL is normalized in
// place before validation.
func New(ctx context.Context, config *gitlab.Config) (gitlab.Client, error) {
	if config == nil {
		return nil, gitlab.ErrConfigRequired
	}

	if strings.TrimSpace(config.BaseURL) == "" {
		return nil, gitlab.ErrBaseURLRequired
	}

	config.BaseURL = NormalizeBaseURL(config.BaseURL)

	err := ValidateConfig(config)
	if err != nil {
		return nil, err
	}

	glClient, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return glClient, nil
}

// NormalizeBaseURL adds https:// when no scheme is present and strips a
// trailing slash and "/api/v4" suffix.
func NormalizeBaseURL(baseURL string) string {
	normalized := strings.TrimSpace(baseURL)
	if !strings.HasPrefix(normalized, "http://") && !strings.HasPrefix(normalized, "https://") {
		normalized = "https://" + normalized
	}

	normalized = strings.TrimRight(normalized, "/")
	normalized = strings.TrimSuffix(normalized, apiSuffix)

	return strings.TrimRight(normalized, "/")
}

// ValidateConfig checks field constraints and that a credential is present.
func ValidateConfig(config *gitlab.Config) error {
	err := configValidator().Struct(config)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]string, 0, len(validationErrors))
			for _, fieldErr := range validationErrors {
				fields = append(fields, fmt.Sprintf("%s (%s)", fieldErr.Field(), fieldErr.Tag()))
			}

			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(fields, ", "))
		}

		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if !config.HasCredential() {
		return gitlab.ErrCredentialRequired
	}

	return nil
}

// NewWithToken creates a client authenticated with a private, project or
// group access token.
func NewWithToken(ctx context.Context, baseURL, token string) (gitlab.Client, error) {
	return New(ctx, &gitlab.Config{
		BaseURL:      baseURL,
		PrivateToken: token,
	})
}

// NewWithOAuth2Token creates a client authenticated with an OAuth2 access token.
func NewWithOAuth2Token(ctx context.Context, baseURL, token string) (gitlab.Client, error) {
	return New(ctx, &gitlab.Config{
		BaseURL:     baseURL,
		OAuth2Token: token,
	})
}

// NewWithPassword exchanges username and password for an OAuth2 token and
// creates a client using it.
func NewWithPassword(ctx context.Context, baseURL, username, password string) (gitlab.Client, error) {
	return New(ctx, &gitlab.Config{
		BaseURL:  baseURL,
		Username: username,
		Password: password,
	})
}
