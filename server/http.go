package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/lexandro/fileassistant/agent"
	"github.com/lexandro/fileassistant/metrics"
)

// SessionCookie names the cookie that keys per-browser pending deletions.
const SessionCookie = "fileassist_session"

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse wraps whatever the agent replied: text, a path list or metadata.
type ChatResponse struct {
	Response any `json:"response"`
}

// HTTPServer serves the chat endpoint plus health, status, reindex and metrics.
type HTTPServer struct {
	agent     *agent.Agent
	sessions  *agent.Sessions
	roots     []string
	startTime time.Time
	logger    *slog.Logger
}

// NewHTTPServer creates the HTTP surface for an agent.
func NewHTTPServer(a *agent.Agent, roots []string, logger *slog.Logger) *HTTPServer {
	return &HTTPServer{
		agent:     a,
		sessions:  agent.NewSessions(),
		roots:     roots,
		startTime: time.Now(),
		logger:    logger,
	}
}

// Handler returns the HTTP handler for the server.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /reindex", s.handleReindex)
	mux.Handle("GET /metrics", metrics.Handler())

	return metrics.Middleware(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("http server shutting down")
		return httpServer.Shutdown(shutdownCtx)
	}
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusResponse struct {
	Files       int       `json:"files"`
	Roots       []string  `json:"roots"`
	LastRebuild time.Time `json:"last_rebuild,omitzero"`
	Sessions    int       `json:"sessions"`
	Uptime      string    `json:"uptime"`
}

func (s *HTTPServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	idx := s.agent.Index()
	writeJSON(w, http.StatusOK, statusResponse{
		Files:       idx.Len(),
		Roots:       s.roots,
		LastRebuild: idx.BuiltAt(),
		Sessions:    s.sessions.Len(),
		Uptime:      time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *HTTPServer) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body: " + err.Error()})
		return
	}

	session := s.sessions.Get(s.sessionID(w, r))
	reply := s.agent.HandlePrompt(r.Context(), session, req.Message)
	writeJSON(w, http.StatusOK, ChatResponse{Response: reply})
}

func (s *HTTPServer) handleReindex(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	count, err := s.agent.Reindex(r.Context())
	if err != nil {
		s.logger.Error("reindex failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"files":   count,
		"elapsed": time.Since(start).Round(time.Millisecond).String(),
	})
}

// sessionID returns the caller's session id, issuing a new cookie when absent.
func (s *HTTPServer) sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
