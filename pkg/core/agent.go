package core

// ExtraAverageScore is the Extras key holding an agent's average feedback score.
const ExtraAverageScore = "averageScore"

// AgentSummary is the flat, normalized shape every discovery operation returns.
//
// An agent is identified by the pair (ChainID, AgentID): agent ids are only unique
// within a chain. Address-like fields (ENS, WalletAddress, Owners, Operators) always
// hold values in the canonical form produced by NormalizeAddress, so they can be
// compared with plain string equality.
//
// The capability lists are ordered as the source returned them; membership is tested
// by exact string match.
type AgentSummary struct {
	ChainID     int64  `json:"chainId"`
	AgentID     string `json:"agentId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`

	Owners    []string `json:"owners"`
	Operators []string `json:"operators"`

	// MCP and A2A report whether the agent registered an endpoint for the protocol.
	MCP bool `json:"mcp"`
	A2A bool `json:"a2a"`

	ENS           string `json:"ens,omitempty"`
	DID           string `json:"did,omitempty"`
	WalletAddress string `json:"walletAddress,omitempty"`

	SupportedTrusts []string `json:"supportedTrusts"`
	A2ASkills       []string `json:"a2aSkills"`
	MCPTools        []string `json:"mcpTools"`
	MCPPrompts      []string `json:"mcpPrompts"`
	MCPResources    []string `json:"mcpResources"`

	Active      bool `json:"active"`
	X402Support bool `json:"x402support"`

	// Extras carries source-specific values that are not part of the fixed shape,
	// e.g. ExtraAverageScore for reputation searches.
	Extras map[string]any `json:"extras"`
}

// Key returns the chain-scoped identifier "chainId:agentId".
func (a *AgentSummary) Key() string {
	return FormatAgentKey(a.ChainID, a.AgentID)
}

// AverageScore returns the average feedback score stored in Extras, if any.
func (a *AgentSummary) AverageScore() (float64, bool) {
	if a.Extras == nil {
		return 0, false
	}
	v, ok := a.Extras[ExtraAverageScore].(float64)
	return v, ok
}

// Normalize puts the address-like fields in canonical form and replaces nil
// collections with empty ones. It is idempotent.
func (a *AgentSummary) Normalize() {
	a.ENS = NormalizeAddress(a.ENS)
	a.WalletAddress = NormalizeAddress(a.WalletAddress)
	a.Owners = NormalizeAddresses(a.Owners)
	a.Operators = NormalizeAddresses(a.Operators)
	a.SupportedTrusts = nonNil(a.SupportedTrusts)
	a.A2ASkills = nonNil(a.A2ASkills)
	a.MCPTools = nonNil(a.MCPTools)
	a.MCPPrompts = nonNil(a.MCPPrompts)
	a.MCPResources = nonNil(a.MCPResources)
	if a.Extras == nil {
		a.Extras = make(map[string]any)
	}
}

// SearchResult is one page of discovery results.
type SearchResult struct {
	Items []AgentSummary `json:"items"`
	// NextCursor is empty when no further page is expected.
	NextCursor string `json:"nextCursor,omitempty"`
}

// HasMore reports whether a cursor for a following page was issued.
func (r *SearchResult) HasMore() bool {
	return r.NextCursor != ""
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
