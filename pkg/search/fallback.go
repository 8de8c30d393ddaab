package search

import (
	"context"
	"fmt"

	"github.com/rubiojr/agentscope/pkg/core"
)

// ChainReader loads an agent straight from its registry contract. The engine
// consults it when the indexed source does not know an agent.
type ChainReader interface {
	LoadAgent(ctx context.Context, agentID string) (*core.AgentSummary, error)
}

// UnsupportedChainReader is the default ChainReader: direct chain access is not
// implemented, so every load fails with core.ErrNotSupported.
type UnsupportedChainReader struct{}

func (UnsupportedChainReader) LoadAgent(_ context.Context, agentID string) (*core.AgentSummary, error) {
	return nil, fmt.Errorf("loading agent %s from chain: %w", agentID, core.ErrNotSupported)
}
