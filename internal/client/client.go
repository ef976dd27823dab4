package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fivetwenty-io/gitlab-client/internal/auth"
	"github.com/fivetwenty-io/gitlab-client/internal/constants"
	"github.com/fivetwenty-io/gitlab-client/internal/http"
	"github.com/fivetwenty-io/gitlab-client/pkg/gitlab"
)

// Static errors for err113 compliance.
var (
	ErrBaseURLRequired    = errors.New("GitLab base URL is required")
	ErrCredentialRequired = errors.New("no credential configured")
)

// Client implements the gitlab.Client interface.
type Client struct {
	httpClient   *http.Client
	credential   auth.Credential
	baseURL      string
	logger       gitlab.Logger
	interceptors *gitlab.InterceptorChain
	sudo         string
}

// createCredential picks the credential variant from config. The password
// grant performs a token exchange and therefore needs ctx.
func createCredential(ctx context.Context, config *gitlab.Config) (auth.Credential, error) {
	switch {
	case config.PrivateToken != "":
		return auth.NewPrivateToken(config.PrivateToken), nil
	case config.OAuth2Token != "":
		return auth.NewOAuth2(config.OAuth2Token), nil
	case config.Username != "" && config.Password != "":
		credential, err := auth.PasswordGrant(ctx, &auth.PasswordGrantConfig{
			BaseURL:      config.BaseURL,
			ClientID:     config.OAuth2ClientID,
			ClientSecret: config.OAuth2ClientSecret,
			Username:     config.Username,
			Password:     config.Password,
			HTTPClient:   config.HTTPClient,
		})
		if err != nil {
			return auth.Credential{}, fmt.Errorf("failed to obtain OAuth2 token: %w", err)
		}

		return credential, nil
	default:
		return auth.Credential{}, ErrCredentialRequired
	}
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *gitlab.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPClient != nil {
		httpOpts = append(httpOpts, http.WithHTTPClient(config.HTTPClient))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.ExtendedRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// New creates a new GitLab API client. config.BaseURL must already be normalized.
func New(ctx context.Context, config *gitlab.Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, ErrBaseURLRequired
	}

	credential, err := createCredential(ctx, config)
	if err != nil {
		return nil, err
	}

	return NewWithCredential(config, credential), nil
}

// NewWithCredential creates a client with an already resolved credential.
func NewWithCredential(config *gitlab.Config, credential auth.Credential) *Client {
	logger := config.Logger
	if logger == nil {
		logger = gitlab.NopLogger{}
	}

	interceptors := config.Interceptors
	if interceptors == nil {
		interceptors = gitlab.NewInterceptorChain()
	}

	var signer http.Signer
	if !credential.IsZero() {
		signer = credential
	}

	return &Client{
		httpClient:   http.NewClient(config.BaseURL, signer, createHTTPClientOptions(config)...),
		credential:   credential,
		baseURL:      config.BaseURL,
		logger:       logger,
		interceptors: interceptors,
		sudo:         config.Sudo,
	}
}

// BaseURL returns the instance URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CredentialKind reports which credential variant the client sends.
func (c *Client) CredentialKind() auth.Kind {
	return c.credential.Kind()
}

// Do performs one round trip for endpoint, running the interceptor chain
// around the transport.
func (c *Client) Do(ctx context.Context, endpoint *gitlab.Endpoint) (*gitlab.RawResponse, error) {
	query := endpoint.Query()
	if c.sudo != "" && !query.Has("sudo") {
		query = query.Add("sudo", c.sudo)
	}

	req := &gitlab.Request{
		Method:   endpoint.Method(),
		Path:     endpoint.Path(),
		Query:    query,
		Metadata: make(map[string]interface{}),
	}

	var contentType string

	if body := endpoint.Body(); body != nil {
		req.Body = body.Data
		contentType = body.ContentType
	}

	err := c.interceptors.ExecuteRequestInterceptors(ctx, req)
	if err != nil {
		// Response interceptors still run so that anything a request
		// interceptor opened, such as a span, is closed.
		_ = c.interceptors.ExecuteResponseInterceptors(req.Context, req, &gitlab.Response{Error: err, NotSent: true})

		return nil, err
	}

	ctx = req.Context
	start := time.Now()

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method:      req.Method,
		Path:        req.Path,
		Query:       req.Query.Encode(),
		Body:        req.Body,
		ContentType: contentType,
		Headers:     req.Headers,
	})

	intercepted := &gitlab.Response{Error: err}
	if resp != nil {
		intercepted.StatusCode = resp.StatusCode
		intercepted.Headers = resp.Headers
		intercepted.Body = resp.Body
	}

	interceptErr := c.interceptors.ExecuteResponseInterceptors(ctx, req, intercepted)

	if err != nil {
		c.logger.Debug("GitLab request failed", map[string]interface{}{
			"endpoint":    endpoint.String(),
			"duration_ms": time.Since(start).Milliseconds(),
		})

		return nil, err
	}

	if interceptErr != nil {
		return nil, interceptErr
	}

	return &gitlab.RawResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Headers,
		Body:       resp.Body,
	}, nil
}
