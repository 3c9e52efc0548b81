// Package api - Thin, deterministic API layer
// The API is ONLY responsible for: input ingestion, engine orchestration, output serialization.
// The API NEVER performs billing logic.
package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"isp-billing/core/catalog"
	"isp-billing/core/snapshot"
	"isp-billing/internal/errors"
	"isp-billing/internal/logging"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 4 << 20

// Options configures a Server
type Options struct {
	Version string

	// Catalog serves requests that omit plans; nil requires inline plans
	Catalog catalog.Provider

	// Snapshots serves requests that give an owner_id; nil requires inline
	// snapshots
	Snapshots snapshot.Provider

	// ExcludeFreeTier applies when a request does not set the flag
	ExcludeFreeTier bool
}

// Server is the API server
type Server struct {
	handler *Handler
	mux     *http.ServeMux
	version string
	log     *zap.Logger
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	s := &Server{
		handler: NewHandler(opts),
		mux:     http.NewServeMux(),
		version: opts.Version,
		log:     logging.Named("api"),
	}
	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Core endpoints
	s.mux.HandleFunc("POST /v1/classify", s.handle(s.handler.Classify))
	s.mux.HandleFunc("POST /v1/recommend", s.handle(s.handler.Recommend))
	s.mux.HandleFunc("POST /v1/cost", s.handle(s.handler.Cost))
	s.mux.HandleFunc("POST /v1/evaluate", s.handle(s.handler.Evaluate))
	s.mux.HandleFunc("GET /v1/plans", s.handle(s.handler.Plans))

	// Supporting endpoints
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)

	s.mux.HandleFunc("/", s.handle(func(r *http.Request) (interface{}, error) {
		return nil, errors.NotFound("route", r.Method+" "+r.URL.Path)
	}))
}

type requestIDKey struct{}

// RequestIDFrom returns the request ID assigned by the server
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// handlerFunc is an endpoint: it reads the request and returns data or an error
type handlerFunc func(r *http.Request) (interface{}, error)

func (s *Server) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := RequestIDFrom(r.Context())
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

		data, err := fn(r)
		if err != nil {
			status := StatusFor(err)
			fields := []zap.Field{logging.RequestID(id), zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err)}
			if status >= http.StatusInternalServerError {
				s.log.Error("request failed", fields...)
			} else {
				s.log.Info("request rejected", fields...)
			}
			s.writeError(w, id, err, status)
			return
		}

		s.log.Debug("request served",
			logging.RequestID(id),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
		s.writeJSON(w, Response{RequestID: id, Data: data}, http.StatusOK)
	}
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, Response{
		RequestID: RequestIDFrom(r.Context()),
		Data: map[string]interface{}{
			"status":  "healthy",
			"version": s.version,
			"time":    time.Now().UTC().Format(time.RFC3339),
		},
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, Response{
		RequestID: RequestIDFrom(r.Context()),
		Data: map[string]string{
			"version":     s.version,
			"engine":      "isp-billing",
			"api_version": "v1",
		},
	}, http.StatusOK)
}

// StatusFor maps an error's type to an HTTP status
func StatusFor(err error) int {
	var mbe *http.MaxBytesError
	if stderrors.As(err, &mbe) {
		return http.StatusRequestEntityTooLarge
	}
	switch errors.TypeOf(err) {
	case errors.TypeInput, errors.TypeParsing:
		return http.StatusBadRequest
	case errors.TypeNotFound:
		return http.StatusNotFound
	case errors.TypeInvalidPlanData, errors.TypeNoPlansAvailable:
		return http.StatusUnprocessableEntity
	case errors.TypeProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warn("failed to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, requestID string, err error, status int) {
	code := string(errors.TypeOf(err))
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	if status == http.StatusRequestEntityTooLarge {
		code = string(errors.TypeInput)
	}
	s.writeJSON(w, Response{
		RequestID: requestID,
		Error:     &ErrorBody{Code: code, Message: message},
	}, status)
}

// ServeHTTP implements http.Handler. Every request gets a fresh request ID,
// echoed in the X-Request-ID header.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	w.Header().Set("X-Request-ID", id)
	ctx := context.WithValue(r.Context(), requestIDKey{}, id)
	s.mux.ServeHTTP(w, r.WithContext(ctx))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr), zap.String("version", s.version))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
