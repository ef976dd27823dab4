package hooks

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"net/http"

	"github.com/fivetwenty-io/gitlab-client/internal/constants"
	"github.com/fivetwenty-io/gitlab-client/pkg/gitlab"
)

// Request headers sent by GitLab with every hook delivery.
const (
	HeaderToken     = "X-Gitlab-Token"
	HeaderEvent     = "X-Gitlab-Event"
	HeaderEventUUID = "X-Gitlab-Event-UUID"
	HeaderInstance  = "X-Gitlab-Instance"
)

// HandlerFunc receives every successfully decoded event.
type HandlerFunc func(ctx context.Context, event Event) error

// Handler is an http.Handler that receives GitLab web and system hooks,
// decodes them with ClassifyAndDecode and passes them on.
type Handler struct {
	secret      []byte
	logger      gitlab.Logger
	publisher   Publisher
	onEvent     HandlerFunc
	maxBodySize int64
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithSecretToken requires X-Gitlab-Token to equal token.
func WithSecretToken(token string) HandlerOption {
	return func(h *Handler) {
		h.secret = []byte(token)
	}
}

// WithHandlerLogger sets the logger.
func WithHandlerLogger(logger gitlab.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithPublisher forwards every decoded event to publisher.
func WithPublisher(publisher Publisher) HandlerOption {
	return func(h *Handler) {
		h.publisher = publisher
	}
}

// WithMaxBodySize limits the accepted payload size.
func WithMaxBodySize(size int64) HandlerOption {
	return func(h *Handler) {
		if size > 0 {
			h.maxBodySize = size
		}
	}
}

// NewHandler creates a hook receiver. onEvent may be nil when a publisher
// is the only consumer.
func NewHandler(onEvent HandlerFunc, opts ...HandlerOption) *Handler {
	handler := &Handler{
		logger:      gitlab.NopLogger{},
		onEvent:     onEvent,
		maxBodySize: constants.MaxHookBodySize,
	}

	for _, opt := range opts {
		opt(handler)
	}

	return handler
}

// ServeHTTP handles a single delivery.
//
// Responses: 405 for non-POST, 401 for a wrong token, 413 for oversized
// bodies, 400 for payloads that cannot be decoded, 202 for well formed
// payloads of an unrecognized kind, 503 when publishing fails, 500 when the
// callback fails and 200 otherwise.
func (h *Handler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		writer.Header().Set("Allow", http.MethodPost)
		http.Error(writer, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)

		return
	}

	if !h.authorized(request) {
		h.logger.Warn("Hook token mismatch", map[string]interface{}{
			"remote_addr": request.RemoteAddr,
		})
		http.Error(writer, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)

		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(writer, request.Body, h.maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(writer, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)

			return
		}

		h.logger.Error("Failed to read hook body", map[string]interface{}{"error": err.Error()})
		http.Error(writer, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return
	}

	fields := map[string]interface{}{
		"event":      request.Header.Get(HeaderEvent),
		"event_uuid": request.Header.Get(HeaderEventUUID),
	}

	event, err := ClassifyAndDecode(body)
	if err != nil {
		fields["error"] = err.Error()

		if IsUnrecognized(err) {
			h.logger.Info("Ignoring unrecognized hook", fields)
			writer.WriteHeader(http.StatusAccepted)

			return
		}

		h.logger.Warn("Rejected hook payload", fields)
		http.Error(writer, err.Error(), http.StatusBadRequest)

		return
	}

	fields["family"] = string(event.Family())
	fields["kind"] = event.Kind()
	h.logger.Debug("Hook received", fields)

	ctx := request.Context()

	if h.publisher != nil {
		err = h.publisher.Publish(ctx, event, body)
		if err != nil {
			fields["error"] = err.Error()
			h.logger.Error("Failed to publish hook", fields)
			http.Error(writer, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)

			return
		}
	}

	if h.onEvent != nil {
		err = h.onEvent(ctx, event)
		if err != nil {
			fields["error"] = err.Error()
			h.logger.Error("Hook callback failed", fields)
			http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

			return
		}
	}

	writer.WriteHeader(http.StatusOK)
}

func (h *Handler) authorized(request *http.Request) bool {
	if len(h.secret) == 0 {
		return true
	}

	token := []byte(request.Header.Get(HeaderToken))

	return subtle.ConstantTimeCompare(token, h.secret) == 1
}
