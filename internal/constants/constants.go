package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as token exchange.
	ShortHTTPTimeout = 10 * time.Second

	// HookReadTimeout bounds how long the hook receiver waits for a request body.
	HookReadTimeout = 15 * time.Second
)

// Transport retry limits. The transport performs no retries unless RetryMax is set.
const (
	// DefaultRetryWaitMin is the minimum wait time between transport retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between transport retries.
	DefaultRetryWaitMax = 10 * time.Second

	// ExtendedRetryWaitMax is used for operations that need longer waits.
	ExtendedRetryWaitMax = 30 * time.Second
)

// Backoff parameters for the retry helper layered above the executor.
const (
	// BackoffLimit is the number of attempts made before giving up.
	BackoffLimit = 5

	// BackoffInitial is the delay before the first retry.
	BackoffInitial = 1 * time.Second

	// BackoffScale multiplies the delay after each failed attempt.
	BackoffScale = 2.0
)

// Pagination.
const (
	// MaxPageSize is the largest per_page value the API honors.
	MaxPageSize = 100

	// DefaultMaxPages bounds the number of requests a single offset walk may issue.
	DefaultMaxPages = 10000

	// HeaderPage echoes the page an offset-paginated response belongs to.
	HeaderPage = "X-Page"

	// HeaderTotalPages carries the total page count on offset-paginated responses.
	HeaderTotalPages = "X-Total-Pages"

	// HeaderLink carries RFC 8288 pagination links.
	HeaderLink = "Link"

	// HeaderLinks is an alternate spelling some proxies emit.
	HeaderLinks = "Links"
)

// Concurrency and batching limits.
const (
	// DefaultConcurrencyLimit limits concurrent operations.
	DefaultConcurrencyLimit = 5
)

// Circuit breaker defaults.
const (
	// CircuitBreakerThreshold is the number of failures before opening the circuit.
	CircuitBreakerThreshold = 5

	// CircuitBreakerTimeout is the time before attempting to close the circuit.
	CircuitBreakerTimeout = 60 * time.Second

	// CircuitBreakerSuccessThreshold is the number of successes needed to close the circuit.
	CircuitBreakerSuccessThreshold = 2
)

// Circuit states.
const (
	StatusClosed   = "closed"
	StatusOpen     = "open"
	StatusHalfOpen = "half-open"
)

// Hook receiver limits.
const (
	// MaxHookBodySize is the largest hook payload accepted by the receiver.
	MaxHookBodySize = 25 << 20

	// HookSubjectPrefix prefixes NATS subjects for published hook events.
	HookSubjectPrefix = "gitlab.hooks"
)

// Output formats.
const (
	// FormatJSON is the JSON output format.
	FormatJSON = "json"

	// FormatYAML is the YAML output format.
	FormatYAML = "yaml"

	// FormatTable is the table output format.
	FormatTable = "table"
)

// EnvPrefix prefixes environment variables read by the CLI (GITLAB_API_URL, ...).
const EnvPrefix = "GITLAB_API"

// MaskedSecret replaces secrets in logs and output.
const MaskedSecret = "***"
