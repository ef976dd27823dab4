package constants

import "errors"

// CLI errors.
var (
	ErrNoBaseURLConfigured = errors.New("no GitLab URL configured, use --url or set GITLAB_API_URL")
	ErrUnknownOutputFormat = errors.New("unknown output format")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
)
