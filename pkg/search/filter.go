package search

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/rubiojr/agentscope/pkg/core"
)

// Filter returns the agents matching params, preserving order. The result is
// never nil.
func Filter(agents []core.AgentSummary, params *core.SearchParams) []core.AgentSummary {
	out := make([]core.AgentSummary, 0, len(agents))
	if params == nil {
		return append(out, agents...)
	}
	folder := cases.Fold()
	for i := range agents {
		if matches(folder, &agents[i], params) {
			out = append(out, agents[i])
		}
	}
	return out
}

// Matches reports whether agent satisfies every criterion present in params.
// It is the residual predicate applied after every source fetch, whether or not
// the source could evaluate the criteria itself.
func Matches(agent *core.AgentSummary, params *core.SearchParams) bool {
	if params == nil {
		return true
	}
	return matches(cases.Fold(), agent, params)
}

func matches(folder cases.Caser, agent *core.AgentSummary, p *core.SearchParams) bool {
	if p.Name != "" {
		if !strings.Contains(folder.String(agent.Name), folder.String(p.Name)) {
			return false
		}
	}

	if !boolMatches(p.MCP, agent.MCP) ||
		!boolMatches(p.A2A, agent.A2A) ||
		!boolMatches(p.Active, agent.Active) ||
		!boolMatches(p.X402Support, agent.X402Support) {
		return false
	}

	if p.ENS != "" && !core.SameAddress(agent.ENS, p.ENS) {
		return false
	}
	if p.WalletAddress != "" && !core.SameAddress(agent.WalletAddress, p.WalletAddress) {
		return false
	}
	if p.DID != "" && agent.DID != p.DID {
		return false
	}

	if !anyPresent(p.SupportedTrust, agent.SupportedTrusts) ||
		!anyPresent(p.A2ASkills, agent.A2ASkills) ||
		!anyPresent(p.MCPTools, agent.MCPTools) ||
		!anyPresent(p.MCPPrompts, agent.MCPPrompts) ||
		!anyPresent(p.MCPResources, agent.MCPResources) {
		return false
	}

	if len(p.Chains) > 0 && !slices.Contains(p.Chains, agent.ChainID) {
		return false
	}
	return true
}

func boolMatches(want *bool, got bool) bool {
	return want == nil || *want == got
}

// anyPresent is true when wanted is empty or shares at least one element with have.
func anyPresent(wanted, have []string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}
