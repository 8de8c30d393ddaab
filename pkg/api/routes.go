package api

import (
	"net/http"
)

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// API routes with method-specific routing
	mux.HandleFunc("GET /api/agents", s.HandleSearchAgents)
	mux.HandleFunc("GET /api/agents/stream", s.HandleStreamAgents)
	mux.HandleFunc("GET /api/agents/{id}", s.HandleGetAgent)
	mux.HandleFunc("GET /api/reputation", s.HandleReputation)
	mux.HandleFunc("GET /health", s.HandleHealth)
}
