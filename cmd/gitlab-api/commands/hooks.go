package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fivetwenty-io/gitlab-client/internal/constants"
	"github.com/fivetwenty-io/gitlab-client/internal/logging"
	"github.com/fivetwenty-io/gitlab-client/pkg/hooks"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tidwall/jsonc"
)

const shutdownTimeout = constants.HookReadTimeout

// NewHooksCommand creates the hooks command group.
func NewHooksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hooks",
		Aliases: []string{"hook"},
		Short:   "Decode and receive webhooks and system hooks",
	}

	cmd.AddCommand(newHooksClassifyCommand())
	cmd.AddCommand(newHooksServeCommand())

	return cmd
}

// classification is the output of "hooks classify".
type classification struct {
	Family hooks.Family `json:"family" yaml:"family"`
	Kind   string       `json:"kind"   yaml:"kind"`
	Event  hooks.Event  `json:"event"  yaml:"event"`
}

func readPayload(cmd *cobra.Command, source string) ([]byte, error) {
	if source == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read payload: %w", err)
		}

		return data, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	return data, nil
}

func newHooksClassifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "classify FILE",
		Short: "Decode a hook payload",
		Long: `Decode a webhook or system hook payload and print its family, kind and
decoded fields. FILE may contain comments (JSONC); use "-" to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readPayload(cmd, args[0])
			if err != nil {
				return err
			}

			event, err := hooks.ClassifyAndDecode(jsonc.ToJSON(data))
			if err != nil {
				return err
			}

			return render(cmd.Context(), cmd.OutOrStdout(), classification{
				Family: event.Family(),
				Kind:   event.Kind(),
				Event:  event,
			})
		},
	}
}

type serveOptions struct {
	listen        string
	path          string
	secret        string
	natsURL       string
	subjectPrefix string
	logFormat     string
}

func newHooksServeCommand() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a hook receiver",
		Long: `Listen for GitLab webhooks and system hooks, check X-Gitlab-Token and log
every decoded event. With --nats-url each payload is also published to
<prefix>.<family>.<kind>, e.g. gitlab.hooks.web.merge_request.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.secret == "" {
				opts.secret = viper.GetString("hook_secret")
			}

			if opts.natsURL == "" {
				opts.natsURL = viper.GetString("nats_url")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serveHooks(ctx, cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.listen, "listen", ":8080", "address to listen on")
	cmd.Flags().StringVar(&opts.path, "path", "/hooks", "URL path that receives hooks")
	cmd.Flags().StringVar(&opts.secret, "secret", "", "required X-Gitlab-Token value")
	cmd.Flags().StringVar(&opts.natsURL, "nats-url", "", "publish decoded hooks to this NATS server")
	cmd.Flags().StringVar(&opts.subjectPrefix, "subject-prefix", constants.HookSubjectPrefix, "NATS subject prefix")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", "text", "log format (text, json)")

	return cmd
}

func newSlogLogger(out io.Writer, format string) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if viper.GetBool("verbose") {
		handlerOpts.Level = slog.LevelDebug
	}

	if format == constants.FormatJSON {
		return slog.New(slog.NewJSONHandler(out, handlerOpts))
	}

	return slog.New(slog.NewTextHandler(out, handlerOpts))
}

// newHookHandler wires the receiver, logging every event and publishing to
// NATS when a connection is given.
func newHookHandler(logger *slog.Logger, opts *serveOptions, conn hooks.Conn) *hooks.Handler {
	handlerOpts := []hooks.HandlerOption{
		hooks.WithHandlerLogger(logging.NewSlogLogger(logger)),
		hooks.WithSecretToken(opts.secret),
	}

	if conn != nil {
		handlerOpts = append(handlerOpts, hooks.WithPublisher(hooks.NewNATSPublisher(conn, opts.subjectPrefix)))
	}

	onEvent := func(ctx context.Context, event hooks.Event) error {
		logger.InfoContext(ctx, "Hook received",
			slog.String("family", string(event.Family())),
			slog.String("kind", event.Kind()),
		)

		return nil
	}

	return hooks.NewHandler(onEvent, handlerOpts...)
}

func serveHooks(ctx context.Context, logOut io.Writer, opts *serveOptions) error {
	logger := newSlogLogger(logOut, opts.logFormat)

	var conn hooks.Conn

	if opts.natsURL != "" {
		natsConn, err := hooks.ConnectNATS(&hooks.NATSConfig{
			URL:           opts.natsURL,
			Name:          "gitlab-api hooks",
			MaxReconnects: -1,
		})
		if err != nil {
			return err
		}
		defer natsConn.Close()

		conn = natsConn

		logger.Info("Publishing hooks to NATS", slog.String("url", opts.natsURL), slog.String("prefix", opts.subjectPrefix))
	}

	if opts.secret == "" {
		logger.Warn("No hook secret configured; accepting unauthenticated deliveries")
	}

	mux := http.NewServeMux()
	mux.Handle(opts.path, newHookHandler(logger, opts, conn))

	server := &http.Server{
		Addr:              opts.listen,
		Handler:           mux,
		ReadHeaderTimeout: constants.HookReadTimeout,
		ReadTimeout:       constants.HookReadTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("Hook receiver listening", slog.String("addr", opts.listen), slog.String("path", opts.path))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("hook receiver failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	logger.Info("Shutting down hook receiver")

	err := server.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("failed to shut down hook receiver: %w", err)
	}

	return nil
}
