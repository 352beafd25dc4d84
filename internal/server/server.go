package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/diogo/agui/internal/logger"
	"github.com/diogo/agui/internal/models"
)

// StatusMessage is served on GET /
const StatusMessage = "AG-UI Backend is Running"

// DefaultAddr matches the client's default endpoint
const DefaultAddr = "localhost:8000"

// DefaultAllowedOrigin is the web UI dev server
const DefaultAllowedOrigin = "http://localhost:5173"

const maxBodyBytes = 1 << 20

// Config configures a Server
type Config struct {
	Addr           string
	AllowedOrigins []string
	Responders     Chain
}

// Server answers queries through a responder chain
type Server struct {
	addr    string
	origins map[string]struct{}
	chain   Chain
	handler http.Handler
}

// New builds a server. An empty chain falls back to echo.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.AllowedOrigins == nil {
		cfg.AllowedOrigins = []string{DefaultAllowedOrigin}
	}
	if len(cfg.Responders) == 0 {
		cfg.Responders = Chain{EchoResponder{}}
	}

	s := &Server{
		addr:    cfg.Addr,
		origins: make(map[string]struct{}, len(cfg.AllowedOrigins)),
		chain:   cfg.Responders,
	}
	for _, o := range cfg.AllowedOrigins {
		s.origins[o] = struct{}{}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/query", s.handleQuery)
	s.handler = s.withCORS(mux)
	return s
}

// Addr returns the listen address
func (s *Server) Addr() string { return s.addr }

// Handler returns the HTTP handler, for embedding or tests
func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	logger.Info("backend listening", "addr", ln.Addr().String(), "responders", strings.Join(s.chain.Names(), ","))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("backend shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if _, ok := s.origins[origin]; ok && origin != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
			h.Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
		return
	}
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "Method Not Allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": StatusMessage})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "Method Not Allowed"})
		return
	}

	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set("X-Request-ID", requestID)
	log := logger.With("request_id", requestID)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		log.Warn("failed to read query body", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "failed to read body"})
		return
	}

	text, detail := parseMessage(body)
	if detail != "" {
		log.Debug("rejected query", "detail", detail)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": detail})
		return
	}

	started := time.Now()
	reply, name, err := s.chain.Respond(r.Context(), strings.TrimSpace(text))
	if err != nil {
		log.Warn("responder failed", "responder", name, "error", err)
		writeJSON(w, http.StatusOK, models.QueryResponse{Error: err.Error()})
		return
	}

	log.Debug("query answered", "responder", name, "elapsed", time.Since(started))
	writeJSON(w, http.StatusOK, models.QueryResponse{Response: reply})
}

// parseMessage extracts the message field, returning a detail string
// describing why the body was rejected
func parseMessage(body []byte) (string, string) {
	if !gjson.ValidBytes(body) {
		return "", "body must be valid JSON"
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return "", "body must be a JSON object"
	}
	field := root.Get(models.RequestField)
	if !field.Exists() {
		return "", fmt.Sprintf("field %q is required", models.RequestField)
	}
	if field.Type != gjson.String {
		return "", fmt.Sprintf("field %q must be a string", models.RequestField)
	}
	return field.String(), ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to encode response", "error", err)
	}
}
