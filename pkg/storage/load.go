package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/rubiojr/agentscope/pkg/core"
)

// Feedback is a single reputation entry left by a reviewer for an agent.
type Feedback struct {
	ID         string       `json:"id"`
	ChainID    core.FlexInt `json:"chainId"`
	AgentID    string       `json:"agentId"`
	Reviewer   string       `json:"reviewer"`
	Score      float64      `json:"score"`
	Tag1       string       `json:"tag1,omitempty"`
	Tag2       string       `json:"tag2,omitempty"`
	Capability string       `json:"capability,omitempty"`
	Skill      string       `json:"skill,omitempty"`
	Task       string       `json:"task,omitempty"`
	IsRevoked  bool         `json:"isRevoked"`
	CreatedAt  int64        `json:"createdAt,omitempty"`
}

// Dump is an export of the remote index, as loaded by the import command.
type Dump struct {
	Agents   []core.AgentRecord `json:"agents"`
	Feedback []Feedback         `json:"feedback"`
}

// Stats summarizes the contents of the mirror.
type Stats struct {
	Agents   int
	Feedback int
	Chains   int
}

// ReadDump decodes a JSON dump.
func ReadDump(r io.Reader) (*Dump, error) {
	var d Dump
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decoding dump: %w", err)
	}
	return &d, nil
}

// OpenDump reads a dump file. Files ending in .zst are zstd-decompressed.
func OpenDump(path string) (*Dump, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dump: %w", err)
	}
	defer f.Close()

	if !strings.HasSuffix(path, ".zst") {
		return ReadDump(f)
	}

	decoder, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer decoder.Close()
	return ReadDump(decoder)
}

// Load stores every agent and feedback entry of the dump in a single transaction.
func (ix *Index) Load(ctx context.Context, d *Dump) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				logger.Warnf("failed to rollback load transaction: %v", err)
			}
		}
	}()

	for i := range d.Agents {
		if err := upsertAgent(ctx, tx, &d.Agents[i]); err != nil {
			return err
		}
	}
	for i := range d.Feedback {
		if err := upsertFeedback(ctx, tx, &d.Feedback[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load: %w", err)
	}
	committed = true

	logger.Infof("loaded %d agents and %d feedback entries", len(d.Agents), len(d.Feedback))
	return nil
}

// UpsertAgents stores agent records, replacing existing rows with the same key.
func (ix *Index) UpsertAgents(ctx context.Context, agents []core.AgentRecord) error {
	return ix.Load(ctx, &Dump{Agents: agents})
}

// AddFeedback stores feedback entries, replacing existing rows with the same id.
func (ix *Index) AddFeedback(ctx context.Context, entries []Feedback) error {
	return ix.Load(ctx, &Dump{Feedback: entries})
}

func upsertAgent(ctx context.Context, tx *sql.Tx, rec *core.AgentRecord) error {
	if rec.AgentID == "" {
		return fmt.Errorf("agent record %q has no agent id", rec.ID)
	}

	hasRegistration := rec.Registration != nil
	reg := rec.Registration
	if reg == nil {
		reg = &core.Registration{}
	}

	lists := make([]string, 0, 6)
	for _, l := range [][]string{
		core.NormalizeAddresses(rec.Operators),
		reg.SupportedTrusts, reg.A2ASkills, reg.MCPTools, reg.MCPPrompts, reg.MCPResources,
	} {
		encoded, err := encodeList(l)
		if err != nil {
			return err
		}
		lists = append(lists, encoded)
	}

	_, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO agents (
			chain_id, agent_id, name, description, image, owner, operators,
			mcp_endpoint, a2a_endpoint, ens, did, wallet_address,
			supported_trusts, a2a_skills, mcp_tools, mcp_prompts, mcp_resources,
			active, x402support, has_registration, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ChainID.Int64(), rec.AgentID, reg.Name, reg.Description, reg.Image,
		core.NormalizeAddress(rec.Owner), lists[0],
		strings.TrimSpace(reg.MCPEndpoint), strings.TrimSpace(reg.A2AEndpoint),
		core.NormalizeAddress(reg.ENS), reg.DID, core.NormalizeAddress(reg.AgentWallet),
		lists[1], lists[2], lists[3], lists[4], lists[5],
		nullableBool(reg.Active), nullableBool(reg.X402Support), hasRegistration,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("storing agent %s:%s: %w", rec.ChainID, rec.AgentID, err)
	}
	return nil
}

func upsertFeedback(ctx context.Context, tx *sql.Tx, f *Feedback) error {
	if f.ID == "" {
		return fmt.Errorf("feedback for agent %s has no id", f.AgentID)
	}
	_, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO feedback (
			id, chain_id, agent_id, reviewer, score, tag1, tag2, capability, skill, task, is_revoked, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.ChainID.Int64(), f.AgentID, core.NormalizeAddress(f.Reviewer), f.Score,
		f.Tag1, f.Tag2, f.Capability, f.Skill, f.Task, f.IsRevoked, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("storing feedback %s: %w", f.ID, err)
	}
	return nil
}

// Stats counts agents, feedback entries and distinct chains in the mirror.
func (ix *Index) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := ix.db.QueryRowContext(ctx, `SELECT
			(SELECT COUNT(*) FROM agents),
			(SELECT COUNT(*) FROM feedback),
			(SELECT COUNT(DISTINCT chain_id) FROM agents)`).Scan(&s.Agents, &s.Feedback, &s.Chains)
	if err != nil {
		return s, fmt.Errorf("counting rows: %w", err)
	}
	return s, nil
}

func encodeList(l []string) (string, error) {
	if l == nil {
		l = []string{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return "", fmt.Errorf("encoding list: %w", err)
	}
	return string(b), nil
}

func nullableBool(b *bool) any {
	if b == nil {
		return nil
	}
	return boolInt(*b)
}
