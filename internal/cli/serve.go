package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/automate"
	"github.com/aretw0/automate/internal/config"
	httpAdapter "github.com/aretw0/automate/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server.
const shutdownTimeout = 5 * time.Second

// ServeOptions contains the configuration for the serve command.
type ServeOptions struct {
	ConfigPath string
	Addr       string
	Debug      bool
	Out        io.Writer
}

// RunServe exposes one conversation over HTTP until ctx is cancelled.
func RunServe(ctx context.Context, opts ServeOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.Addr != "" {
		cfg.HTTP.Addr = opts.Addr
	}
	logger := createLogger(cfg.LogLevel, opts.Debug)

	stack, err := buildStack(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	if err := stack.Assistant.Welcome(ctx); err != nil {
		return err
	}

	handler := httpAdapter.NewHandler(stack.Assistant.Session(), stack.Assistant.Transcript(),
		httpAdapter.WithLogger(logger),
		httpAdapter.WithVersion(automate.Version),
		httpAdapter.WithMetrics(promhttp.HandlerFor(stack.Metrics, promhttp.HandlerOpts{})),
	)
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage(opts.Out, "Starting automate server on %s", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		printSystemMessage(opts.Out, "Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		printSystemMessage(opts.Out, "Server stopped gracefully")
		return nil
	}
}
