package serve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/marcus/modalkit/internal/store"
)

// ServeConfig holds the configuration for the HTTP server.
type ServeConfig struct {
	// Addr is host:port; port 0 picks a free port.
	Addr       string
	Token      string
	CORSOrigin string
	// OnListen, if set, receives the base URL once the listener is open.
	OnListen func(url string)
}

// DialogStore is the subset of the store the server uses.
type DialogStore interface {
	Get(name string) (*store.Definition, error)
	List() ([]store.Definition, error)
	Search(query string) ([]store.SearchResult, error)
	Put(def *store.Definition) error
	Delete(name string) error
}

// Server is the modalkit serve HTTP server.
type Server struct {
	store      DialogStore
	baseDir    string
	instanceID string
	config     ServeConfig
	mux        *http.ServeMux
	http       *http.Server
}

// NewServer creates a Server and registers all routes. An empty baseDir
// skips port file registration.
func NewServer(st DialogStore, baseDir string, config ServeConfig) *Server {
	s := &Server{
		store:   st,
		baseDir: baseDir,
		config:  config,
		mux:     http.NewServeMux(),
	}
	if id, err := GenerateInstanceID(); err == nil {
		s.instanceID = id
	}
	s.registerRoutes()
	return s
}

// Handler returns the mux wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)

	// Final order (outermost to innermost):
	//   recovery -> logging -> CORS -> auth -> handler
	h = s.authMiddleware(h)
	h = s.corsMiddleware(h)
	h = s.loggingMiddleware(h)
	h = s.recoveryMiddleware(h)

	return h
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.config.Addr, err)
	}

	tcp := ln.Addr().(*net.TCPAddr)
	info := &PortInfo{
		Host:       hostOf(s.config.Addr),
		Port:       tcp.Port,
		PID:        os.Getpid(),
		StartedAt:  time.Now().UTC(),
		InstanceID: s.instanceID,
	}
	if s.baseDir != "" {
		if err := WritePortFile(s.baseDir, info); err != nil {
			ln.Close()
			return err
		}
		defer DeletePortFile(s.baseDir)
	}

	s.http = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	slog.Info("serving dialogs", "url", info.URL(), "instance", s.instanceID)
	if s.config.OnListen != nil {
		s.config.OnListen(info.URL())
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server. It is a no-op before start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func hostOf(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return ""
	}
	return host
}

// ============================================================================
// Route Registration
// ============================================================================

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /dialogs", s.handleListDialogs)
	s.mux.HandleFunc("GET /dialogs/{name}", s.handleGetContent)
	s.mux.HandleFunc("GET /v1/dialogs/{name}", s.handleGetDialog)
	s.mux.HandleFunc("PUT /v1/dialogs/{name}", s.handlePutDialog)
	s.mux.HandleFunc("DELETE /v1/dialogs/{name}", s.handleDeleteDialog)
}

// ============================================================================
// Middleware
// ============================================================================

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.code = code
	sr.ResponseWriter.WriteHeader(code)
}

// recoveryMiddleware catches panics, logs the stack trace, and returns a 500
// error envelope.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				WriteError(w, ErrInternal, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request with method, path, status code, and
// duration.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sr, r)
		slog.Info("req",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sr.code,
			"dur", time.Since(start).String(),
		)
	})
}

// corsMiddleware answers preflight requests and sets CORS headers when an
// origin is configured. Dialog pages fetched from a browser need this.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if s.config.CORSOrigin == "" || origin == "" ||
			(s.config.CORSOrigin != "*" && s.config.CORSOrigin != origin) {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,PUT,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authMiddleware requires the Bearer token on writes when one is configured.
// Reads stay public so dialogs can fetch content without credentials.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.Token == "" || r.Method == http.MethodGet || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			WriteError(w, ErrUnauthorized, "missing authorization header", http.StatusUnauthorized)
			return
		}
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			WriteError(w, ErrUnauthorized, "invalid authorization format", http.StatusUnauthorized)
			return
		}
		if token != s.config.Token {
			WriteError(w, ErrUnauthorized, "invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
