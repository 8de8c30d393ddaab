package subgraph

import (
	"encoding/json"

	"github.com/rubiojr/agentscope/pkg/core"
)

const agentsQuery = `query Agents($first: Int!, $skip: Int!, $where: Agent_filter, $orderBy: Agent_orderBy, $orderDirection: OrderDirection) {
  agents(first: $first, skip: $skip, where: $where, orderBy: $orderBy, orderDirection: $orderDirection) {
    id
    chainId
    agentId
    owner
    operators
    createdAt
    updatedAt
    totalFeedback
    averageScore
    registrationFile {
      name
      description
      image
      active
      x402support
      supportedTrusts
      mcpEndpoint
      a2aEndpoint
      ens
      did
      agentWallet
      mcpTools
      mcpPrompts
      mcpResources
      a2aSkills
    }
  }
}`

// agentNode is an agent as returned by the subgraph. BigInt and BigDecimal
// scalars arrive as strings, hence json.Number.
type agentNode struct {
	ID               string             `json:"id"`
	ChainID          core.FlexInt       `json:"chainId"`
	AgentID          string             `json:"agentId"`
	Owner            string             `json:"owner"`
	Operators        []string           `json:"operators"`
	CreatedAt        json.Number        `json:"createdAt"`
	UpdatedAt        json.Number        `json:"updatedAt"`
	TotalFeedback    json.Number        `json:"totalFeedback"`
	AverageScore     json.Number        `json:"averageScore"`
	RegistrationFile *core.Registration `json:"registrationFile"`
}

// record converts the node, falling back to chainID when the subgraph does not
// report one.
func (n *agentNode) record(chainID int64) core.AgentRecord {
	rec := core.AgentRecord{
		ID:           n.ID,
		ChainID:      n.ChainID,
		AgentID:      n.AgentID,
		Owner:        n.Owner,
		Operators:    n.Operators,
		Registration: n.RegistrationFile,
	}
	if rec.ChainID == "" {
		rec.ChainID = core.FlexIntOf(chainID)
	}
	if rec.ID == "" {
		rec.ID = core.FormatAgentKey(rec.ChainID.Int64(), rec.AgentID)
	}
	if v, err := n.CreatedAt.Int64(); err == nil {
		rec.CreatedAt = v
	}
	if v, err := n.UpdatedAt.Int64(); err == nil {
		rec.UpdatedAt = v
	}
	if v, err := n.TotalFeedback.Int64(); err == nil {
		rec.TotalFeedback = int(v)
	}
	if v, err := n.AverageScore.Float64(); err == nil {
		rec.AverageScore = core.Float(v)
	}
	return rec
}

// sortAliases maps friendly sort names to subgraph fields. Other names pass
// through unchanged.
var sortAliases = map[string]string{
	"score":    "averageScore",
	"feedback": "totalFeedback",
}

func orderField(name string) string {
	if f, ok := sortAliases[name]; ok {
		return f
	}
	return name
}

// searchFilter builds the where argument for a filtered search. Only criteria
// that cannot exclude an agent the residual filter would keep are included. The
// name is never sent: the indexer's case-insensitive match does not apply full
// Unicode case folding ("straße" against "STRASSE").
func searchFilter(p *core.SearchParams) map[string]any {
	where := map[string]any{}
	reg := map[string]any{}

	// Negative flags are left out: agents without a registration file count as
	// inactive and endpoint-less, and a nested filter would drop them.
	if p.MCP != nil && *p.MCP {
		reg["mcpEndpoint_not"] = nil
	}
	if p.A2A != nil && *p.A2A {
		reg["a2aEndpoint_not"] = nil
	}
	if p.Active != nil && *p.Active {
		reg["active"] = true
	}
	if p.X402Support != nil && *p.X402Support {
		reg["x402support"] = true
	}
	if p.ENS != "" {
		reg["ens_contains_nocase"] = core.NormalizeAddress(p.ENS)
	}
	if p.WalletAddress != "" {
		reg["agentWallet_contains_nocase"] = core.NormalizeAddress(p.WalletAddress)
	}
	if p.DID != "" {
		reg["did"] = p.DID
	}

	if len(reg) > 0 {
		where["registrationFile_"] = reg
	}
	return where
}

// reputationFilter builds the where argument for a reputation search. It
// reports false when the criteria cannot match any agent on chainID.
func reputationFilter(c *core.ReputationCriteria, chainID int64) (map[string]any, bool) {
	var clauses []map[string]any

	if len(c.Agents) > 0 {
		var keys, bare []string
		for _, id := range c.Agents {
			cid, agentID, hasChain := core.ParseAgentKey(id)
			switch {
			case !hasChain:
				bare = append(bare, agentID)
			case cid == chainID:
				keys = append(keys, agentID)
			}
		}
		ids := append(bare, keys...)
		if len(ids) == 0 {
			return nil, false
		}
		clauses = append(clauses, map[string]any{"agentId_in": ids})
	}

	if len(c.Names) > 0 {
		var or []map[string]any
		for _, name := range c.Names {
			or = append(or, map[string]any{
				"registrationFile_": map[string]any{"name_contains_nocase": name},
			})
		}
		clauses = append(clauses, anyOf(or))
	}

	if fb := feedbackFilter(c); fb != nil {
		clauses = append(clauses, map[string]any{"feedback_": fb})
	}

	if c.MinAverageScore != nil {
		clauses = append(clauses, map[string]any{"averageScore_gte": *c.MinAverageScore})
	}

	switch len(clauses) {
	case 0:
		return map[string]any{}, true
	case 1:
		return clauses[0], true
	default:
		return map[string]any{"and": clauses}, true
	}
}

func feedbackFilter(c *core.ReputationCriteria) map[string]any {
	fb := map[string]any{}
	if len(c.Reviewers) > 0 {
		fb["reviewer_in"] = core.NormalizeAddresses(c.Reviewers)
	}
	if len(c.Capabilities) > 0 {
		fb["capability_in"] = c.Capabilities
	}
	if len(c.Skills) > 0 {
		fb["skill_in"] = c.Skills
	}
	if len(c.Tasks) > 0 {
		fb["task_in"] = c.Tasks
	}
	if len(c.Tags) > 0 {
		fb["or"] = []map[string]any{
			{"tag1_in": c.Tags},
			{"tag2_in": c.Tags},
		}
	}
	if len(fb) == 0 {
		return nil
	}
	if !c.IncludeRevoked {
		fb["isRevoked"] = false
	}
	return fb
}

func anyOf(clauses []map[string]any) map[string]any {
	if len(clauses) == 1 {
		return clauses[0]
	}
	return map[string]any{"or": clauses}
}
