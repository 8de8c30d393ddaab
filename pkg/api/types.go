package api

import (
	"time"

	"github.com/rubiojr/agentscope/pkg/core"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// AgentsResponse is one page of agents.
type AgentsResponse struct {
	Items      []core.AgentSummary `json:"items"`
	NextCursor string              `json:"nextCursor,omitempty"`
	Count      int                 `json:"count"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Source    bool      `json:"source"`
}

// Stream message types.
const (
	MessageInit  = "init"
	MessagePage  = "page"
	MessageDone  = "done"
	MessageError = "error"
)

// StreamMessage is a frame of the agent stream. Init carries the page size,
// page frames carry one page of results, done carries totals.
type StreamMessage struct {
	Type       string              `json:"type"`
	Page       int                 `json:"page,omitempty"`
	PageSize   int                 `json:"pageSize,omitempty"`
	Items      []core.AgentSummary `json:"items,omitempty"`
	Count      int                 `json:"count"`
	NextCursor string              `json:"nextCursor,omitempty"`
	Total      int                 `json:"total,omitempty"`
	Error      string              `json:"error,omitempty"`
}

func newAgentsResponse(r *core.SearchResult) AgentsResponse {
	return AgentsResponse{
		Items:      r.Items,
		NextCursor: r.NextCursor,
		Count:      len(r.Items),
	}
}
