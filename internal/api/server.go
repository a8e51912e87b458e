package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pbaille/memo/internal/assistant"
	"github.com/pbaille/memo/internal/auth"
	"github.com/pbaille/memo/internal/metrics"
)

// Server handles HTTP requests for the memo assistant API
type Server struct {
	engine    *assistant.Engine
	tokens    *auth.Tokens
	login     *auth.Upstream
	uploadDir string
	addr      string
	logger    *zap.Logger
}

// Options are the optional collaborators of a Server
type Options struct {
	Addr      string
	UploadDir string
	Tokens    *auth.Tokens
	// Login is nil when no account service is configured.
	Login *auth.Upstream
}

// New creates a new API server
func New(engine *assistant.Engine, opts Options, logger *zap.Logger) *Server {
	if opts.Tokens == nil {
		opts.Tokens = auth.NewTokens("", 0)
	}
	if opts.UploadDir == "" {
		opts.UploadDir = "uploads"
	}
	return &Server{
		engine:    engine,
		tokens:    opts.Tokens,
		login:     opts.Login,
		uploadDir: opts.UploadDir,
		addr:      opts.Addr,
		logger:    logger,
	}
}

// Handler returns the routed handler with CORS and metrics applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Pipeline
	mux.HandleFunc("POST /transcribe", s.transcribe)
	mux.HandleFunc("POST /process", s.process)
	mux.HandleFunc("POST /classify", s.classify)

	// Memos
	mux.HandleFunc("POST /save_memo", s.saveMemo)
	mux.HandleFunc("POST /save_and_list_memos", s.saveAndListMemos)
	mux.HandleFunc("POST /confirm_delete", s.confirmDelete)

	// Accounts
	mux.HandleFunc("POST /api/login", s.handleLogin)

	// Health check
	mux.HandleFunc("GET /health", s.health)
	mux.Handle("GET /metrics", metrics.Handler())

	return withCORS(s.withMetrics(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withMetrics records the latency of every request by route pattern.
func (s *Server) withMetrics(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		elapsed := time.Since(start)
		metrics.RecordHTTPRequestDuration(r.Method, path, strconv.Itoa(rec.status), elapsed)
		s.logger.Debug("Request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed),
		)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// userID picks the authenticated user when a bearer token is sent, and the
// id claimed in the request otherwise. It writes a 401 and returns false
// for a bad token.
func (s *Server) userID(w http.ResponseWriter, r *http.Request, claimed int64) (int64, bool) {
	token := auth.ExtractToken(r)
	if token == "" || !s.tokens.Enabled() {
		return claimed, true
	}
	id, err := s.tokens.Parse(token)
	if err != nil {
		s.logger.Warn("Rejected bearer token", zap.Error(err))
		writeError(w, http.StatusUnauthorized, "invalid token")
		return 0, false
	}
	return id, true
}

// ID accepts a JSON number or a numeric string.
type ID int64

func (id *ID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return errors.New("id must be an integer")
	}
	*id = ID(n)
	return nil
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
