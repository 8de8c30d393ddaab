package integration_tests

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/rubiojr/agentscope/pkg/core"
	"github.com/rubiojr/agentscope/pkg/db"
	"github.com/rubiojr/agentscope/pkg/search"
	"github.com/rubiojr/agentscope/pkg/storage"
)

// TestOpenUpgradesPartialSchema simulates a mirror created before the feedback
// table existed: agents stored under the first migration must survive the
// upgrade and become searchable by reputation.
func TestOpenUpgradesPartialSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "agents.db")

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	manager := db.NewMigrationManager(conn)
	if err := manager.EnsureMigrationsTable(); err != nil {
		t.Fatalf("Failed to create migrations table: %v", err)
	}
	available, err := manager.GetAvailableMigrations()
	if err != nil {
		t.Fatalf("Failed to list migrations: %v", err)
	}
	if len(available) < 2 {
		t.Fatalf("Expected at least 2 migrations, got %d", len(available))
	}
	if err := manager.ApplyMigration(available[0]); err != nil {
		t.Fatalf("Failed to apply first migration: %v", err)
	}
	if _, err := conn.Exec(`INSERT INTO agents (chain_id, agent_id, name, mcp_endpoint, has_registration, created_at)
		VALUES (84532, '9', 'Legacy', 'https://legacy.example/mcp', 1, 5)`); err != nil {
		t.Fatalf("Failed to insert legacy agent: %v", err)
	}
	pending, err := manager.GetPendingMigrations()
	if err != nil {
		t.Fatalf("Failed to list pending migrations: %v", err)
	}
	if len(pending) != len(available)-1 {
		t.Errorf("Expected %d pending migrations, got %d", len(available)-1, len(pending))
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("Failed to close database: %v", err)
	}

	ix, err := storage.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open mirror: %v", err)
	}
	defer func() {
		if err := ix.Close(); err != nil {
			t.Logf("Warning: failed to close mirror: %v", err)
		}
	}()

	ctx := context.Background()
	service := search.NewService(ix)

	agent, err := service.GetAgent(ctx, "84532:9")
	if err != nil {
		t.Fatalf("Legacy agent lost after upgrade: %v", err)
	}
	if agent.Name != "Legacy" || !agent.MCP {
		t.Errorf("Unexpected legacy agent: %+v", agent)
	}

	err = ix.AddFeedback(ctx, []storage.Feedback{{
		ID: "late", ChainID: core.FlexIntOf(84532), AgentID: "9", Reviewer: "0xAB", Score: 42,
	}})
	if err != nil {
		t.Fatalf("Failed to add feedback after upgrade: %v", err)
	}

	result, err := service.SearchAgentsByReputation(ctx, core.ReputationQuery{
		ReputationCriteria: core.ReputationCriteria{Reviewers: []string{"0xab"}},
	})
	if err != nil {
		t.Fatalf("Reputation search failed: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("Expected 1 agent, got %d", len(result.Items))
	}
	if score, ok := result.Items[0].AverageScore(); !ok || score != 42 {
		t.Errorf("Expected score 42, got %v (%v)", score, ok)
	}
}

// TestReopenIsIdempotent checks that opening an up to date mirror applies
// nothing and keeps its data.
func TestReopenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "agents.db")
	ctx := context.Background()

	for i := range 3 {
		ix, err := storage.Open(dbPath)
		if err != nil {
			t.Fatalf("Open #%d failed: %v", i, err)
		}
		if i == 0 {
			if err := ix.UpsertAgents(ctx, GenerateAgents(1, 4)); err != nil {
				t.Fatalf("Failed to store agents: %v", err)
			}
		}
		stats, err := ix.Stats(ctx)
		if err != nil {
			t.Fatalf("Stats failed: %v", err)
		}
		if stats.Agents != 4 {
			t.Errorf("Open #%d: expected 4 agents, got %d", i, stats.Agents)
		}
		if err := ix.Close(); err != nil {
			t.Fatalf("Close #%d failed: %v", i, err)
		}
	}
}
