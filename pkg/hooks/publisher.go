package hooks

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/fivetwenty-io/gitlab-client/internal/constants"
	"github.com/nats-io/nats.go"
	"github.com/zeebo/blake3"
)

// Static errors for err113 compliance.
var (
	ErrNATSURLRequired = errors.New("NATS URL is required")
)

// Message headers set on published hooks.
const (
	HeaderFamily = "Gitlab-Hook-Family"
	HeaderKind   = "Gitlab-Hook-Kind"
	// HeaderMsgID lets JetStream drop redelivered payloads.
	HeaderMsgID = "Nats-Msg-Id"
)

// Publisher forwards decoded hooks to another system.
type Publisher interface {
	Publish(ctx context.Context, event Event, raw []byte) error
}

// Conn is the subset of *nats.Conn used by NATSPublisher.
type Conn interface {
	PublishMsg(msg *nats.Msg) error
}

// NATSPublisher publishes the raw payload of every hook to
// "<prefix>.<family>.<kind>", e.g. "gitlab.hooks.web.merge_request".
type NATSPublisher struct {
	conn   Conn
	prefix string
}

// NewNATSPublisher creates a publisher. An empty prefix uses "gitlab.hooks".
func NewNATSPublisher(conn Conn, prefix string) *NATSPublisher {
	if prefix == "" {
		prefix = constants.HookSubjectPrefix
	}

	return &NATSPublisher{conn: conn, prefix: prefix}
}

// NATSConfig configures ConnectNATS.
type NATSConfig struct {
	URL   string
	Name  string
	Token string
	// MaxReconnects: zero keeps the client default; negative retries forever.
	MaxReconnects int
	ReconnectWait time.Duration
}

// ConnectNATS dials a NATS server.
func ConnectNATS(config *NATSConfig) (*nats.Conn, error) {
	if config == nil || config.URL == "" {
		return nil, ErrNATSURLRequired
	}

	var opts []nats.Option

	if config.MaxReconnects != 0 {
		opts = append(opts, nats.MaxReconnects(config.MaxReconnects))
	}

	if config.Name != "" {
		opts = append(opts, nats.Name(config.Name))
	}

	if config.Token != "" {
		opts = append(opts, nats.Token(config.Token))
	}

	if config.ReconnectWait > 0 {
		opts = append(opts, nats.ReconnectWait(config.ReconnectWait))
	}

	conn, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return conn, nil
}

// Subject returns the subject an event is published on.
func (p *NATSPublisher) Subject(event Event) string {
	return Subject(p.prefix, event)
}

// Subject joins prefix, family and kind with dots.
func Subject(prefix string, event Event) string {
	return prefix + "." + string(event.Family()) + "." + event.Kind()
}

// Publish sends raw unchanged. The message id is a digest of the payload so
// that a hook GitLab delivers twice is stored once by JetStream.
func (p *NATSPublisher) Publish(ctx context.Context, event Event, raw []byte) error {
	err := ctx.Err()
	if err != nil {
		return err
	}

	digest := blake3.Sum256(raw)

	msg := nats.NewMsg(p.Subject(event))
	msg.Data = raw
	msg.Header.Set(HeaderFamily, string(event.Family()))
	msg.Header.Set(HeaderKind, event.Kind())
	msg.Header.Set(HeaderMsgID, hex.EncodeToString(digest[:]))

	err = p.conn.PublishMsg(msg)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", msg.Subject, err)
	}

	return nil
}
