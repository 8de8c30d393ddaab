package integration_tests

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/rubiojr/agentscope/pkg/core"
	"github.com/rubiojr/agentscope/pkg/storage"
)

// CreateTestMirror opens a mirror in a temp dir and loads dump into it.
func CreateTestMirror(t *testing.T, dump *storage.Dump) *storage.Index {
	t.Helper()
	ix, err := storage.Open(filepath.Join(t.TempDir(), "agents.db"))
	if err != nil {
		t.Fatalf("Failed to open mirror: %v", err)
	}
	t.Cleanup(func() {
		if err := ix.Close(); err != nil {
			t.Logf("Warning: failed to close mirror: %v", err)
		}
	})
	if err := ix.Load(context.Background(), dump); err != nil {
		t.Fatalf("Failed to load dump: %v", err)
	}
	return ix
}

// GenerateAgents builds n agents on chainID. Even agents expose an MCP
// endpoint with the "search" tool, odd agents an A2A endpoint. Creation times
// increase with the agent number.
func GenerateAgents(chainID int64, n int) []core.AgentRecord {
	agents := make([]core.AgentRecord, 0, n)
	for i := 1; i <= n; i++ {
		reg := &core.Registration{
			Name:   fmt.Sprintf("Agent %03d", i),
			Active: core.Bool(i%3 != 0),
		}
		if i%2 == 0 {
			reg.MCPEndpoint = fmt.Sprintf("https://agent%d.example/mcp", i)
			reg.MCPTools = []string{"search", fmt.Sprintf("tool-%d", i)}
		} else {
			reg.A2AEndpoint = fmt.Sprintf("https://agent%d.example/a2a", i)
			reg.A2ASkills = []string{"chat"}
		}
		agents = append(agents, core.AgentRecord{
			ChainID:      core.FlexIntOf(chainID),
			AgentID:      fmt.Sprint(i),
			Owner:        fmt.Sprintf("0x%040X", i),
			CreatedAt:    int64(i * 10),
			Registration: reg,
		})
	}
	return agents
}

// GenerateFeedback gives agent i on chainID a single review scoring i.
func GenerateFeedback(chainID int64, n int) []storage.Feedback {
	feedback := make([]storage.Feedback, 0, n)
	for i := 1; i <= n; i++ {
		feedback = append(feedback, storage.Feedback{
			ID:       fmt.Sprintf("fb-%d-%d", chainID, i),
			ChainID:  core.FlexIntOf(chainID),
			AgentID:  fmt.Sprint(i),
			Reviewer: "0xREVIEWER",
			Score:    float64(i),
			Tag1:     "quality",
		})
	}
	return feedback
}
