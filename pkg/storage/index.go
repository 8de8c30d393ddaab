// Package storage implements core.IndexedSource over a SQLite mirror of the
// agent index.
//
// The mirror holds agent registrations and feedback as exported from the remote
// indexer (see Load). Filtered searches evaluate the protocol flags, identity
// links and chains in SQL. The name substring and the list criteria are left to
// the discovery engine, which matches names with full Unicode case folding that
// SQLite's LIKE cannot reproduce.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/rubiojr/agentscope/pkg/core"
	"github.com/rubiojr/agentscope/pkg/db"
	"github.com/rubiojr/agentscope/pkg/log"
)

var logger = log.ForService("storage")

// agentColumns must stay in sync with scanRecord.
const agentColumns = `a.chain_id, a.agent_id, a.name, a.description, a.image, a.owner, a.operators,
	a.mcp_endpoint, a.a2a_endpoint, a.ens, a.did, a.wallet_address,
	a.supported_trusts, a.a2a_skills, a.mcp_tools, a.mcp_prompts, a.mcp_resources,
	a.active, a.x402support, a.has_registration, a.created_at, a.updated_at`

// maxPrealloc bounds result slice preallocation; limit is caller controlled.
const maxPrealloc = 256

// Index is a SQLite-backed agent index. It is safe for concurrent use.
type Index struct {
	db   *sql.DB
	path string
}

var _ core.IndexedSource = (*Index)(nil)

// Open opens (creating if needed) the mirror database at dbPath and applies
// pending schema migrations.
func Open(dbPath string) (*Index, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
		"PRAGMA cache_size = -64000", // 64MB cache
		"PRAGMA temp_store = memory",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}

	if err := db.InitializeDatabase(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &Index{db: conn, path: dbPath}, nil
}

func (ix *Index) Close() error {
	return ix.db.Close()
}

// Path returns the database file backing the index.
func (ix *Index) Path() string {
	return ix.path
}

// GetByID returns the agent identified by "chainId:agentId". A bare agent id
// matches on any chain, preferring the lowest chain id.
func (ix *Index) GetByID(ctx context.Context, id string) (*core.AgentSummary, error) {
	chainID, agentID, hasChain := core.ParseAgentKey(id)

	query := `SELECT ` + agentColumns + ` FROM agents a WHERE a.agent_id = ?`
	args := []any{agentID}
	if hasChain {
		query += ` AND a.chain_id = ?`
		args = append(args, chainID)
	}
	query += ` ORDER BY a.chain_id ASC LIMIT 1`

	rec, err := scanRecord(ix.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading agent %s: %w", id, err)
	}

	summary := rec.Summary()
	return &summary, nil
}

// Search returns agents ordered by creation time, newest first. The name and the
// list criteria (trusts, skills, tools, prompts, resources) are not evaluated here.
func (ix *Index) Search(ctx context.Context, params core.SearchParams, limit, offset int) ([]core.AgentSummary, error) {
	where, args := searchConditions(&params)

	query := `SELECT ` + agentColumns + ` FROM agents a`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY a.created_at DESC, a.chain_id ASC, a.agent_id ASC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := ix.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying agents: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Warnf("failed to close rows: %v", err)
		}
	}()

	agents := make([]core.AgentSummary, 0, min(limit, maxPrealloc))
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning agent: %w", err)
		}
		agents = append(agents, rec.Summary())
	}
	return agents, rows.Err()
}

func searchConditions(p *core.SearchParams) ([]string, []any) {
	var where []string
	var args []any

	if p.MCP != nil {
		where = append(where, endpointCondition("a.mcp_endpoint", *p.MCP))
	}
	if p.A2A != nil {
		where = append(where, endpointCondition("a.a2a_endpoint", *p.A2A))
	}
	if p.Active != nil {
		where = append(where, `COALESCE(a.active, 0) = ?`)
		args = append(args, boolInt(*p.Active))
	}
	if p.X402Support != nil {
		where = append(where, `COALESCE(a.x402support, 0) = ?`)
		args = append(args, boolInt(*p.X402Support))
	}
	if p.ENS != "" {
		where = append(where, `a.ens = ?`)
		args = append(args, core.NormalizeAddress(p.ENS))
	}
	if p.WalletAddress != "" {
		where = append(where, `a.wallet_address = ?`)
		args = append(args, core.NormalizeAddress(p.WalletAddress))
	}
	if p.DID != "" {
		where = append(where, `a.did = ?`)
		args = append(args, p.DID)
	}
	if len(p.Chains) > 0 {
		where = append(where, `a.chain_id IN (`+placeholders(len(p.Chains))+`)`)
		for _, c := range p.Chains {
			args = append(args, c)
		}
	}
	return where, args
}

func endpointCondition(column string, present bool) string {
	if present {
		return "TRIM(" + column + ") != ''"
	}
	return "TRIM(" + column + ") = ''"
}

// likePattern builds a substring LIKE pattern, escaping LIKE wildcards in s.
// SQLite's LIKE is case-insensitive for ASCII.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one agentColumns row, plus any extra destinations appended
// by the caller, into an AgentRecord.
func scanRecord(row rowScanner, extra ...any) (core.AgentRecord, error) {
	var rec core.AgentRecord
	var reg core.Registration
	var chainID int64
	var operators, trusts, skills, tools, prompts, resources string
	var active, x402 sql.NullInt64
	var hasRegistration bool

	dest := []any{
		&chainID, &rec.AgentID, &reg.Name, &reg.Description, &reg.Image, &rec.Owner, &operators,
		&reg.MCPEndpoint, &reg.A2AEndpoint, &reg.ENS, &reg.DID, &reg.AgentWallet,
		&trusts, &skills, &tools, &prompts, &resources,
		&active, &x402, &hasRegistration, &rec.CreatedAt, &rec.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return rec, err
	}

	lists := []struct {
		raw string
		dst *[]string
	}{
		{operators, &rec.Operators},
		{trusts, &reg.SupportedTrusts},
		{skills, &reg.A2ASkills},
		{tools, &reg.MCPTools},
		{prompts, &reg.MCPPrompts},
		{resources, &reg.MCPResources},
	}
	for _, l := range lists {
		if err := decodeList(l.raw, l.dst); err != nil {
			return rec, fmt.Errorf("agent %d:%s: %w", chainID, rec.AgentID, err)
		}
	}

	if active.Valid {
		reg.Active = core.Bool(active.Int64 != 0)
	}
	if x402.Valid {
		reg.X402Support = core.Bool(x402.Int64 != 0)
	}

	rec.ChainID = core.FlexIntOf(chainID)
	rec.ID = core.FormatAgentKey(chainID, rec.AgentID)
	if hasRegistration {
		rec.Registration = &reg
	}
	return rec, nil
}

func decodeList(raw string, dst *[]string) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decoding list %q: %w", raw, err)
	}
	return nil
}
