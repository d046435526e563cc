package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/automate/internal/logging"
	"github.com/aretw0/automate/pkg/chat"
	"github.com/aretw0/automate/pkg/domain"
	"github.com/aretw0/automate/pkg/schema"
	"github.com/aretw0/automate/pkg/worker"
	"github.com/go-chi/chi/v5"
)

// Chat routes user input for one conversation.
type Chat interface {
	HandleInput(ctx context.Context, text string) (chat.Response, error)
	Suggest(query string) []domain.ActionInfo
}

// Transcript is the readable side of the conversation sink.
type Transcript interface {
	Messages() []domain.Message
	Subscribe() (<-chan domain.Message, func())
}

// Server exposes a chat session over HTTP.
type Server struct {
	Chat       Chat
	Transcript Transcript
	Logger     *slog.Logger
	Version    string
	Metrics    http.Handler
}

// Option configures the server.
type Option func(*Server)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// WithMetrics mounts h at GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// MessageRequest is the body of POST /messages.
type MessageRequest struct {
	Text string `json:"text"`
}

// MessageResponse reports how a message was handled.
type MessageResponse struct {
	Outcome     string              `json:"outcome"`
	TaskID      string              `json:"task_id,omitempty"`
	Action      string              `json:"action,omitempty"`
	Suggestions []domain.ActionInfo `json:"suggestions,omitempty"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

// NewHandler creates the HTTP handler for a chat session.
func NewHandler(c Chat, transcript Transcript, opts ...Option) http.Handler {
	s := &Server{
		Chat:       c,
		Transcript: transcript,
		Logger:     logging.NewNop(),
		Version:    "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/actions", s.ListActions)
	r.Post("/messages", s.PostMessage)
	r.Get("/transcript", s.GetTranscript)
	r.Get("/events", s.SubscribeEvents)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "automate-http",
		"version": strings.TrimSpace(s.Version),
	})
}

// ListActions handles the GET /actions request. The optional q parameter filters like the "/" picker.
func (s *Server) ListActions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Chat.Suggest(r.URL.Query().Get("q")))
}

// PostMessage handles the POST /messages request.
func (s *Server) PostMessage(w http.ResponseWriter, r *http.Request) {
	var body MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	resp, err := s.Chat.HandleInput(r.Context(), body.Text)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.Logger.Error("PostMessage failed", "error", err)
		} else {
			s.Logger.Warn("PostMessage rejected", "error", err)
		}
		s.writeError(w, status, err)
		return
	}

	out := MessageResponse{}
	status := http.StatusOK
	switch resp.Outcome {
	case chat.OutcomeIgnored:
		out.Outcome = "ignored"
	case chat.OutcomeSuggestions:
		out.Outcome = "suggestions"
		out.Suggestions = resp.Suggestions
	case chat.OutcomeCommand:
		out.Outcome = "command"
		out.Action = resp.Action.Name()
		status = http.StatusAccepted
	case chat.OutcomeSubmitted:
		out.Outcome = "submitted"
		out.TaskID = resp.Task.ID()
		status = http.StatusAccepted
	}
	s.writeJSON(w, status, out)
}

// GetTranscript handles the GET /transcript request.
func (s *Server) GetTranscript(w http.ResponseWriter, r *http.Request) {
	msgs := s.Transcript.Messages()
	if msgs == nil {
		msgs = []domain.Message{}
	}
	s.writeJSON(w, http.StatusOK, msgs)
}

// SubscribeEvents handles the GET /events request (SSE). Every new transcript
// message is sent as one JSON data event.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Transcript.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Debug("SSE client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				s.Logger.Error("SSE encode failed", "error", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func statusFor(err error) int {
	var (
		verr    *schema.ValidationError
		exprErr *domain.ExpressionError
	)
	switch {
	case errors.Is(err, domain.ErrActionNotFound):
		return http.StatusNotFound
	case errors.Is(err, worker.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, chat.ErrInputTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, chat.ErrInvalidUTF8),
		errors.Is(err, chat.ErrInvalidCommand),
		errors.As(err, &verr),
		errors.As(err, &exprErr):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	resp := ErrorResponse{Error: err.Error()}
	var aggr *schema.AggregateError
	if errors.As(err, &aggr) {
		resp.Fields = schema.Fields(aggr)
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "error", err)
	}
}
