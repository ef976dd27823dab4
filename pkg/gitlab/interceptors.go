package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/fivetwenty-io/gitlab-client/internal/constants"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	metadataStartTime = "start_time"
	metadataSpan      = "span"
)

// Request is the view of an outgoing request seen by interceptors.
// Headers set here are sent with the request; the credential header is
// applied afterwards and cannot be overridden.
type Request struct {
	Method   string
	Path     string
	Query    QueryParams
	Headers  http.Header
	Body     []byte
	Metadata map[string]interface{}
	// Context is the context the round trip runs under. Request interceptors
	// may replace it; later interceptors, the transport and the response
	// interceptors all see the replacement.
	Context context.Context
}

// Response is the view of a completed round trip seen by interceptors.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Error      error
	// NotSent reports that a request interceptor rejected the request, so it
	// never reached the transport. Error holds the rejection.
	NotSent bool
}

// RequestInterceptor is called before a request is sent.
type RequestInterceptor func(ctx context.Context, req *Request) error

// ResponseInterceptor is called after a response is received.
type ResponseInterceptor func(ctx context.Context, req *Request, resp *Response) error

// InterceptorChain manages a chain of interceptors.
type InterceptorChain struct {
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// NewInterceptorChain creates a new interceptor chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{
		requestInterceptors:  make([]RequestInterceptor, 0),
		responseInterceptors: make([]ResponseInterceptor, 0),
	}
}

// AddRequestInterceptor adds a request interceptor to the chain.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, interceptor)
}

// AddResponseInterceptor adds a response interceptor to the chain.
func (c *InterceptorChain) AddResponseInterceptor(interceptor ResponseInterceptor) {
	c.responseInterceptors = append(c.responseInterceptors, interceptor)
}

// ExecuteRequestInterceptors runs all request interceptors. Each one is
// called with req.Context, which starts as ctx.
func (c *InterceptorChain) ExecuteRequestInterceptors(ctx context.Context, req *Request) error {
	if req.Context == nil {
		req.Context = ctx
	}

	for _, interceptor := range c.requestInterceptors {
		err := interceptor(req.Context, req)
		if err != nil {
			return fmt.Errorf("request interceptor failed: %w", err)
		}
	}

	return nil
}

// ExecuteResponseInterceptors runs all response interceptors.
func (c *InterceptorChain) ExecuteResponseInterceptors(ctx context.Context, req *Request, resp *Response) error {
	for _, interceptor := range c.responseInterceptors {
		err := interceptor(ctx, req, resp)
		if err != nil {
			return fmt.Errorf("response interceptor failed: %w", err)
		}
	}

	return nil
}

// Common Interceptors

// LoggingInterceptor logs requests.
func LoggingInterceptor(logger Logger) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		logger.Debug("API Request", map[string]interface{}{
			"method": req.Method,
			"path":   req.Path,
		})

		return nil
	}
}

// LoggingResponseInterceptor logs responses.
func LoggingResponseInterceptor(logger Logger) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		fields := map[string]interface{}{
			"method":      req.Method,
			"path":        req.Path,
			"status_code": resp.StatusCode,
		}

		if resp.Error != nil {
			fields["error"] = resp.Error.Error()
			logger.Error("API Response Error", fields)
		} else {
			logger.Debug("API Response", fields)
		}

		return nil
	}
}

// RateLimitInterceptor blocks until limiter grants a token or ctx is done.
func RateLimitInterceptor(limiter *rate.Limiter) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		err := limiter.Wait(ctx)
		if err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}

		return nil
	}
}

// NewRateLimitInterceptor allows requestsPerSecond with the given burst.
func NewRateLimitInterceptor(requestsPerSecond float64, burst int) RequestInterceptor {
	if burst < 1 {
		burst = 1
	}

	return RateLimitInterceptor(rate.NewLimiter(rate.Limit(requestsPerSecond), burst))
}

// HeaderInterceptor adds custom headers to requests.
func HeaderInterceptor(headers map[string]string) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		for key, value := range headers {
			req.Headers.Set(key, value)
		}

		return nil
	}
}

// TimingInterceptor records the request start time in the metadata.
func TimingInterceptor() RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Metadata == nil {
			req.Metadata = make(map[string]interface{})
		}

		req.Metadata[metadataStartTime] = time.Now()

		return nil
	}
}

func elapsed(req *Request) (time.Duration, bool) {
	if req.Metadata == nil {
		return 0, false
	}

	start, ok := req.Metadata[metadataStartTime].(time.Time)
	if !ok {
		return 0, false
	}

	return time.Since(start), true
}

// PrometheusMetrics exports request counts and latencies.
type PrometheusMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPrometheusMetrics registers the client collectors with registerer.
func NewPrometheusMetrics(registerer prometheus.Registerer) (*PrometheusMetrics, error) {
	metrics := &PrometheusMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gitlab_client",
			Name:      "requests_total",
			Help:      "API requests by method and status code.",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gitlab_client",
			Name:      "request_duration_seconds",
			Help:      "API request latency by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	for _, collector := range []prometheus.Collector{metrics.requests, metrics.duration} {
		err := registerer.Register(collector)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	return metrics, nil
}

// Install adds the metrics interceptors to chain.
func (m *PrometheusMetrics) Install(chain *InterceptorChain) {
	chain.AddRequestInterceptor(TimingInterceptor())
	chain.AddResponseInterceptor(m.ResponseInterceptor())
}

// ResponseInterceptor records one observation per round trip.
func (m *PrometheusMetrics) ResponseInterceptor() ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		code := "error"

		switch {
		case resp.NotSent:
			code = "rejected"
		case resp.Error == nil:
			code = strconv.Itoa(resp.StatusCode)
		}

		m.requests.WithLabelValues(req.Method, code).Inc()

		if latency, ok := elapsed(req); ok {
			m.duration.WithLabelValues(req.Method).Observe(latency.Seconds())
		}

		return nil
	}
}

// TracingInterceptors opens a client span per round trip using tracer. The
// span becomes the parent context of the request and is injected into the
// outgoing headers with propagator, or the global propagator when nil.
func TracingInterceptors(tracer trace.Tracer, propagator ...propagation.TextMapPropagator) (RequestInterceptor, ResponseInterceptor) {
	start := func(ctx context.Context, req *Request) error {
		spanCtx, span := tracer.Start(ctx, "gitlab "+req.Method,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("http.request.method", req.Method),
				attribute.String("gitlab.path", req.Path),
			),
		)

		if req.Metadata == nil {
			req.Metadata = make(map[string]interface{})
		}

		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		req.Metadata[metadataSpan] = span
		req.Context = spanCtx

		textMap := otel.GetTextMapPropagator()
		if len(propagator) > 0 && propagator[0] != nil {
			textMap = propagator[0]
		}

		textMap.Inject(spanCtx, propagation.HeaderCarrier(req.Headers))

		return nil
	}

	finish := func(ctx context.Context, req *Request, resp *Response) error {
		span, ok := req.Metadata[metadataSpan].(trace.Span)
		if !ok {
			return nil
		}

		defer span.End()

		if !resp.NotSent {
			span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
		}

		switch {
		case resp.Error != nil:
			span.RecordError(resp.Error)
			span.SetStatus(codes.Error, resp.Error.Error())
		case resp.StatusCode >= http.StatusBadRequest:
			span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		}

		return nil
	}

	return start, finish
}

// CircuitBreakerConfig configures a CircuitBreaker.
type CircuitBreakerConfig struct {
	Threshold        int           // Number of failures before opening
	Timeout          time.Duration // Time before trying again
	SuccessThreshold int           // Number of successes to close
}

// CircuitBreaker tracks circuit state across requests.
type CircuitBreaker struct {
	mutex       sync.Mutex
	config      *CircuitBreakerConfig
	failures    int
	successes   int
	state       string
	lastFailure time.Time
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(config *CircuitBreakerConfig) *CircuitBreaker {
	if config == nil {
		config = &CircuitBreakerConfig{
			Threshold:        constants.CircuitBreakerThreshold,
			Timeout:          constants.CircuitBreakerTimeout,
			SuccessThreshold: constants.CircuitBreakerSuccessThreshold,
		}
	}

	return &CircuitBreaker{
		config: config,
		state:  constants.StatusClosed,
	}
}

// State returns "closed", "open" or "half-open".
func (b *CircuitBreaker) State() string {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return b.state
}

// Install adds the breaker's interceptors to chain.
func (b *CircuitBreaker) Install(chain *InterceptorChain) {
	chain.AddRequestInterceptor(CircuitBreakerRequestInterceptor(b))
	chain.AddResponseInterceptor(CircuitBreakerResponseInterceptor(b))
}

// CircuitBreakerRequestInterceptor checks circuit state before requests.
func CircuitBreakerRequestInterceptor(breaker *CircuitBreaker) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		breaker.mutex.Lock()
		defer breaker.mutex.Unlock()

		if breaker.state == constants.StatusOpen {
			if time.Since(breaker.lastFailure) <= breaker.config.Timeout {
				return ErrCircuitBreakerOpen
			}

			breaker.state = constants.StatusHalfOpen
			breaker.successes = 0
		}

		return nil
	}
}

// CircuitBreakerResponseInterceptor updates circuit state based on responses.
func CircuitBreakerResponseInterceptor(breaker *CircuitBreaker) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		if resp.NotSent {
			return nil
		}

		breaker.mutex.Lock()
		defer breaker.mutex.Unlock()

		if resp.Error != nil || resp.StatusCode >= http.StatusInternalServerError {
			breaker.failures++
			breaker.lastFailure = time.Now()

			if breaker.failures >= breaker.config.Threshold || breaker.state == constants.StatusHalfOpen {
				breaker.state = constants.StatusOpen
			}

			return nil
		}

		switch breaker.state {
		case constants.StatusHalfOpen:
			breaker.successes++
			if breaker.successes >= breaker.config.SuccessThreshold {
				breaker.state = constants.StatusClosed
				breaker.failures = 0
			}
		case constants.StatusClosed:
			breaker.failures = 0
		}

		return nil
	}
}
