package core

import "context"

// IndexedSource is the external, paginated agent store the discovery engine
// queries. Implementations apply whichever search criteria they can evaluate
// natively and ignore the rest; callers must not assume filtering is complete.
//
// Implementations must be safe for concurrent use and must return results in a
// stable order so offsets address the same records across calls.
type IndexedSource interface {
	// GetByID returns the agent with the given id, or nil and no error when the
	// source does not know it. Ids are either "chainId:agentId" or a bare agent id.
	GetByID(ctx context.Context, id string) (*AgentSummary, error)

	// Search returns up to limit agents starting at offset, in the source's
	// native order.
	Search(ctx context.Context, params SearchParams, limit, offset int) ([]AgentSummary, error)

	// SearchByReputation returns up to limit nested agent records starting at
	// offset, ordered by orderBy in orderDirection ("asc" or "desc").
	SearchByReputation(ctx context.Context, criteria ReputationCriteria, limit, offset int, orderBy, orderDirection string) ([]AgentRecord, error)
}
