package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/gitlab-client/internal/constants"
	"github.com/fivetwenty-io/gitlab-client/internal/logging"
	"github.com/fivetwenty-io/gitlab-client/pkg/gitlab"
	"github.com/fivetwenty-io/gitlab-client/pkg/glclient"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// userAgent is sent with every request made by the CLI.
const userAgent = "gitlab-api-cli"

// createClient builds a client from flags, environment and config file.
// --verbose logs every round trip to stderr through zap.
func createClient(ctx context.Context) (gitlab.Client, error) {
	config := loadConfig()
	if config.URL == "" {
		return nil, constants.ErrNoBaseURLConfigured
	}

	glConfig := &gitlab.Config{
		BaseURL:      config.URL,
		PrivateToken: config.Token,
		OAuth2Token:  config.OAuthToken,
		Sudo:         config.Sudo,
		UserAgent:    userAgent,
	}

	if viper.GetBool("verbose") {
		zapLogger, err := zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}

		glConfig.Logger = logging.NewZapLogger(zapLogger)
		glConfig.Debug = true
	}

	client, err := glclient.New(ctx, glConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// apiPath accepts "/projects", "projects" or "/api/v4/projects".
func apiPath(path string) string {
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimPrefix(path, "api/v4/")

	return path
}
