package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/automate/internal/logging"
	"github.com/aretw0/automate/pkg/chat"
	"github.com/aretw0/automate/pkg/domain"
	"github.com/aretw0/automate/pkg/ports"
	"github.com/aretw0/automate/pkg/registry"
	"github.com/aretw0/automate/pkg/worker"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const actionsURI = "automate://actions"

// Server exposes the action registry and the agent as an MCP Server.
type Server struct {
	registry   *registry.Registry
	agent      ports.Agent
	logger     *slog.Logger
	workerOpts []worker.Option
	mcpServer  *server.MCPServer
}

// Option configures the server.
type Option func(*Server)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithWorkerOptions applies options to the tasks started by the ask tool.
func WithWorkerOptions(opts ...worker.Option) Option {
	return func(s *Server) {
		s.workerOpts = append(s.workerOpts, opts...)
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(reg *registry.Registry, agent ports.Agent, version string, opts ...Option) *Server {
	s := &Server{
		registry:  reg,
		agent:     agent,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("automate-mcp", strings.TrimSpace(version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx ends.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: list_actions
	s.mcpServer.AddTool(mcp.NewTool("list_actions",
		mcp.WithDescription("List the registered automation actions and their inputs."),
		mcp.WithString("query", mcp.Description("Case-insensitive filter on name and description (optional)")),
	), s.handleListActions)

	// TOOL: run_action
	s.mcpServer.AddTool(mcp.NewTool("run_action",
		mcp.WithDescription("Run a registered action to completion."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Action name")),
		mcp.WithString("inputs", mcp.Description("JSON object of action inputs (optional)")),
	), s.handleRunAction)

	// TOOL: ask
	s.mcpServer.AddTool(mcp.NewTool("ask",
		mcp.WithDescription("Send a natural-language request to the agent and return the conversation it produced."),
		mcp.WithString("text", mcp.Required(), mcp.Description("User request")),
	), s.handleAsk)
}

func (s *Server) handleListActions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := request.GetString("query", "")
	infos := make([]domain.ActionInfo, 0)
	for _, def := range s.registry.Search(query) {
		infos = append(infos, def.Info())
	}
	jsonBytes, err := json.Marshal(infos)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleRunAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	inputs := map[string]any{}
	if raw := request.GetString("inputs", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &inputs); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("inputs must be a JSON object: %v", err)), nil
		}
	}

	result, err := s.registry.Execute(ctx, name, inputs)
	if err != nil {
		s.logger.Warn("MCP run_action failed", "action", name, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", name, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprint(result)), nil
}

func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	clean, err := chat.SanitizeInput(text)
	if err != nil {
		s.logger.Warn("MCP ask: Input rejected", "error", err, "size", len(text))
		return mcp.NewToolResultError(fmt.Sprintf("input rejected: %v", err)), nil
	}

	collector := &collector{}
	opts := append([]worker.Option{worker.WithErrorPolicy(worker.SwallowErrors)}, s.workerOpts...)
	task := worker.NewTask(s.agent, collector, clean, opts...)
	if err := task.Start(ctx); err != nil {
		return nil, err
	}
	taskErr := task.Wait()

	reply := collector.String()
	if taskErr != nil {
		return mcp.NewToolResultError(strings.TrimSpace(reply + "\n\n" + taskErr.Error())), nil
	}
	return mcp.NewToolResultText(reply), nil
}

func (s *Server) registerResources() {
	// EXPOSE: automate://actions
	s.mcpServer.AddResource(mcp.NewResource(actionsURI, "Registered Actions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.registry.Infos())
		if err != nil {
			return nil, fmt.Errorf("failed to encode actions: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      actionsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

// collector gathers the messages of one ask call.
type collector struct {
	mu    sync.Mutex
	parts []string
}

func (c *collector) NewConversation(ctx context.Context, msg domain.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.parts = append(c.parts, msg.Text)
	return nil
}

func (c *collector) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.parts, "\n\n")
}
