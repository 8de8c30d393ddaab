package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/rubiojr/agentscope/pkg/core"
	"github.com/rubiojr/agentscope/pkg/search"
	"github.com/rubiojr/agentscope/pkg/version"
)

func (s *Server) HandleGetAgent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "Invalid path", "Agent id is required")
		return
	}

	agent, err := s.Service().GetAgent(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, "Agent lookup failed", err)
		return
	}

	s.writeJSON(w, http.StatusOK, agent)
}

func (s *Server) HandleSearchAgents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params, err := search.ParseSearchParams(query)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid parameters", err.Error())
		return
	}
	pageSize, cursor, err := search.ParsePage(query)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid parameters", err.Error())
		return
	}

	result, err := s.Service().SearchAgents(r.Context(), &params, pageSize, cursor)
	if err != nil {
		s.writeServiceError(w, "Search failed", err)
		return
	}

	s.writeJSON(w, http.StatusOK, newAgentsResponse(result))
}

func (s *Server) HandleReputation(w http.ResponseWriter, r *http.Request) {
	q, err := search.ParseReputationQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid parameters", err.Error())
		return
	}

	result, err := s.Service().SearchAgentsByReputation(r.Context(), q)
	if err != nil {
		s.writeServiceError(w, "Reputation search failed", err)
		return
	}

	s.writeJSON(w, http.StatusOK, newAgentsResponse(result))
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.APIVersion(),
		Source:    s.Service().Configured(),
	}

	s.writeJSON(w, http.StatusOK, health)
}

// writeServiceError maps engine errors to HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, title string, err error) {
	s.writeError(w, statusFor(err), title, err.Error())
}

func statusFor(err error) int {
	var searchErr *core.SearchError
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrNoSource):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrInvalidCursor):
		return http.StatusBadRequest
	case errors.As(err, &searchErr):
		return http.StatusBadGateway
	default:
		logger.Errorf("request failed: %v", err)
		return http.StatusInternalServerError
	}
}
