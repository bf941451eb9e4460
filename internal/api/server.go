// File path: internal/api/server.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/itzdazk/lms-ai-pay-sub000/internal/common"
	ctxbuilder "github.com/itzdazk/lms-ai-pay-sub000/internal/context"
)

// Server exposes the context-assembly engine over HTTP.
type Server struct {
	router  chi.Router
	builder ctxbuilder.Builder
}

// NewServer wires the API routes around a context builder.
func NewServer(builder ctxbuilder.Builder) (*Server, error) {
	if builder == nil {
		return nil, fmt.Errorf("context builder required")
	}
	srv := &Server{router: chi.NewRouter(), builder: builder}
	srv.routes()
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	logger.Info("api: configuring routes")
	s.router.Use(requestID)
	s.router.Use(logRequests)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/context", s.handleBuildContext)
		r.Get("/courses/search", s.handleCourseSearch)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
