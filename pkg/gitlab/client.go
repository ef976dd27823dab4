package gitlab

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired     = errors.New("config is required")
	ErrBaseURLRequired    = errors.New("GitLab base URL is required")
	ErrCredentialRequired = errors.New("a private token, OAuth2 token or password grant is required")
)

// Client performs one authenticated round trip for an endpoint.
//
// Implementations resolve the endpoint against the API base URL, sign the
// request with the configured credential and return the raw response without
// interpreting its status. Typed decoding lives in Execute, NoAnswer and
// CollectAll so that every endpoint shares one classification path.
type Client interface {
	Do(ctx context.Context, endpoint *Endpoint) (*RawResponse, error)
	BaseURL() string
}

// RawResponse is a response as returned by the transport.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsSuccess reports whether the status code is in the 2xx range.
func (r *RawResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, map[string]interface{}) {}
func (NopLogger) Info(string, map[string]interface{})  {}
func (NopLogger) Warn(string, map[string]interface{})  {}
func (NopLogger) Error(string, map[string]interface{}) {}

// Config represents client configuration for building a gitlab.Client.
//
// # Credentials
//
// Exactly one credential variant must be configured:
//  1. PrivateToken: sent verbatim in the PRIVATE-TOKEN header.
//  2. OAuth2Token: sent as "Authorization: Bearer <token>".
//  3. Username/Password: exchanged once at construction for an OAuth2 access
//     token using the resource owner password grant against
//     "<BaseURL>/oauth/token". OAuth2ClientID and OAuth2ClientSecret identify
//     the OAuth application when the instance requires one.
//
// The credential is fixed for the lifetime of the client and is never
// refreshed; build a new client to rotate it.
//
// # Retries
//
// The client issues exactly one HTTP round trip per request by default.
// RetryMax enables transport-level retries for connection errors and 5xx/429
// responses; callers that want retries on classified API errors should wrap
// calls with Retry or ExecuteWithRetry instead.
type Config struct {
	// BaseURL: instance URL (e.g., "https://gitlab.example.com"). glclient.New
	// adds "https://" when no scheme is present and strips a trailing slash
	// or "/api/v4" suffix.
	BaseURL string `validate:"required,url"`

	// PrivateToken: personal, project or group access token.
	PrivateToken string `validate:"excluded_with=OAuth2Token Username"`
	// OAuth2Token: OAuth2 access token obtained out of band.
	OAuth2Token string `validate:"excluded_with=PrivateToken Username"`
	// OAuth2ClientID: OAuth application ID used with the password grant.
	OAuth2ClientID string
	// OAuth2ClientSecret: OAuth application secret used with the password grant.
	OAuth2ClientSecret string
	// Username: account username for the password grant.
	Username string `validate:"required_with=Password"`
	// Password: account password for the password grant.
	Password string `validate:"required_with=Username"`

	// Sudo: when set, every request is made as this user (admin tokens only).
	Sudo string

	// HTTPTimeout: overall timeout for a single HTTP round trip. Defaults to 30s.
	HTTPTimeout time.Duration `validate:"gte=0"`
	// RetryMax: transport retries for connection errors and 5xx/429 responses. 0 disables.
	RetryMax int `validate:"gte=0"`
	// RetryWaitMin: minimum backoff between transport retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between transport retries.
	RetryWaitMax time.Duration

	// Debug: enables HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// Interceptors: optional hooks run around every round trip.
	Interceptors *InterceptorChain
	// HTTPClient: optional base client whose Transport is reused.
	HTTPClient *http.Client
}

// HasCredential reports whether any credential variant is configured.
func (c *Config) HasCredential() bool {
	return c.PrivateToken != "" || c.OAuth2Token != "" || (c.Username != "" && c.Password != "")
}
