package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/rubiojr/agentscope/pkg/log"
	"github.com/rubiojr/agentscope/pkg/search"
)

var logger = log.ForService("api")

// Server exposes the discovery engine over HTTP. The engine can be swapped at
// runtime (e.g. on configuration reload); requests in flight keep the service
// they started with.
type Server struct {
	mu      sync.RWMutex
	service *search.Service
}

func NewServer(service *search.Service) *Server {
	return &Server{service: service}
}

// SetService replaces the engine used by subsequent requests.
func (s *Server) SetService(service *search.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.service = service
}

// Service returns the engine currently in use.
func (s *Server) Service() *search.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.service
}

// Handler returns the API routes wrapped in the request-id and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return RequestIDMiddleware(CorsMiddleware(mux))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Errorf("encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	response := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.writeJSON(w, status, response)
}
