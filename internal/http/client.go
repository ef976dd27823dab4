package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fivetwenty-io/gitlab-client/internal/auth"
	"github.com/fivetwenty-io/gitlab-client/internal/constants"
	"github.com/fivetwenty-io/gitlab-client/pkg/gitlab"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

// APIPrefix is prepended to every endpoint path.
const APIPrefix = "/api/v4/"

// DefaultUserAgent is sent unless WithUserAgent overrides it.
const DefaultUserAgent = "gitlab-client-go/1.0"

// HeaderRequestID carries a per-request correlation id.
const HeaderRequestID = "X-Request-Id"

// Logger is the logging interface used by the transport.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Signer attaches a credential to outgoing headers.
type Signer interface {
	Sign(header http.Header) error
}

// Request is a prepared API request.
type Request struct {
	Method string
	// Path is relative to /api/v4 and already escaped.
	Path string
	// Query is the encoded query string, without "?".
	Query       string
	Body        []byte
	ContentType string
	Headers     http.Header
}

// Response is a raw API response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Client executes API requests. It never interprets status codes; every
// response that arrives is returned with a nil error.
type Client struct {
	baseURL    string
	signer     Signer
	httpClient *retryablehttp.Client
	logger     Logger
	debug      bool
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig enables transport retries for connection errors, 429 and
// 5xx responses. After the last attempt the final response is returned.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithHTTPClient sends requests through a copy of httpClient, so its
// Transport and Jar are shared while options such as WithTimeout leave the
// caller's client untouched.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			copied := *httpClient
			c.httpClient.HTTPClient = &copied
		}
	}
}

// WithTimeout sets the overall timeout of one round trip.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.HTTPClient.Timeout = timeout
		}
	}
}

// NewClient creates a transport for baseURL. A nil signer sends requests
// without credentials.
func NewClient(baseURL string, signer Signer, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.RetryMax = 0
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	client := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		signer:     signer,
		httpClient: retryClient,
		userAgent:  DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// BaseURL returns the instance URL without the API prefix.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL resolves path and query against the API root.
func (c *Client) URL(path, query string) string {
	full := c.baseURL + APIPrefix + strings.TrimPrefix(path, "/")
	if query != "" {
		full += "?" + query
	}

	return full
}

// Do performs one request.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	fullURL := c.URL(req.Path, req.Query)

	var rawBody interface{}
	if req.Body != nil {
		rawBody = req.Body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, rawBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for name, values := range req.Headers {
		if auth.IsSensitiveHeader(name) {
			continue
		}

		for _, value := range values {
			httpReq.Header.Add(name, value)
		}
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	requestID := uuid.NewString()
	httpReq.Header.Set(HeaderRequestID, requestID)

	if len(req.Body) > 0 {
		contentType := req.ContentType
		if contentType == "" {
			contentType = gitlab.ContentTypeForm
		}

		httpReq.Header.Set("Content-Type", contentType)
	}

	if c.signer != nil {
		err = c.signer.Sign(httpReq.Header)
		if err != nil {
			return nil, err
		}
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":     req.Method,
			"url":        fullURL,
			"request_id": requestID,
		})
	}

	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("HTTP Request Failed", map[string]interface{}{
				"method":     req.Method,
				"url":        fullURL,
				"request_id": requestID,
				"error":      err.Error(),
			})
		}

		return nil, &gitlab.TransportError{Method: req.Method, URL: fullURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &gitlab.TransportError{Method: req.Method, URL: fullURL, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":      req.Method,
			"url":         fullURL,
			"status_code": resp.StatusCode,
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  requestID,
		})
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path, query string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a form body.
func (c *Client) Post(ctx context.Context, path string, body []byte) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request with a form body.
func (c *Client) Put(ctx context.Context, path string, body []byte) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}
