package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/aretw0/automate"
	"github.com/aretw0/automate/internal/config"
	"github.com/aretw0/automate/pkg/adapters/mcp"
	"github.com/aretw0/automate/pkg/worker"
)

// MCPOptions contains the configuration for the mcp command.
type MCPOptions struct {
	ConfigPath string
	Transport  string
	Port       int
	Debug      bool
}

// RunMCP serves the action registry and the agent as MCP tools.
func RunMCP(ctx context.Context, opts MCPOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	logger := createLogger(cfg.LogLevel, opts.Debug)

	stack, err := buildStack(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	srv := mcp.NewServer(stack.Assistant.Registry(), stack.Assistant.Agent(), automate.Version,
		mcp.WithLogger(logger),
		mcp.WithWorkerOptions(worker.WithLogger(logger)),
	)

	switch opts.Transport {
	case "", "stdio":
		// Stdout carries JSON-RPC.
		log.SetOutput(os.Stderr)
		logger.Info("Starting automate MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		logger.Info("Starting automate MCP server (SSE)", "port", opts.Port)
		if err := srv.ServeSSE(ctx, opts.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("MCP server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio, sse)", opts.Transport)
	}
}
