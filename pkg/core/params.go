package core

// SearchParams holds the criteria of a filtered agent search.
//
// Every field is optional. Empty strings, nil booleans and empty lists impose no
// constraint. A non-empty list matches when any of its elements matches. All
// present fields must hold at the same time.
type SearchParams struct {
	// Name matches as a case-insensitive substring of the agent name.
	Name string

	MCP         *bool
	A2A         *bool
	Active      *bool
	X402Support *bool

	// ENS and WalletAddress compare in normalized form.
	ENS           string
	WalletAddress string
	DID           string

	SupportedTrust []string
	A2ASkills      []string
	MCPTools       []string
	MCPPrompts     []string
	MCPResources   []string

	Chains []int64
}

// IsEmpty reports whether no criterion is set.
func (p *SearchParams) IsEmpty() bool {
	return p.Name == "" &&
		p.MCP == nil && p.A2A == nil && p.Active == nil && p.X402Support == nil &&
		p.ENS == "" && p.WalletAddress == "" && p.DID == "" &&
		len(p.SupportedTrust) == 0 && len(p.A2ASkills) == 0 &&
		len(p.MCPTools) == 0 && len(p.MCPPrompts) == 0 && len(p.MCPResources) == 0 &&
		len(p.Chains) == 0
}

// ReputationCriteria are the filters of a reputation search understood by the
// indexed source. Feedback-related lists (Tags, Reviewers, Capabilities, Skills,
// Tasks) select agents that received at least one matching feedback entry.
type ReputationCriteria struct {
	Agents       []string
	Tags         []string
	Reviewers    []string
	Capabilities []string
	Skills       []string
	Tasks        []string
	Names        []string

	// MinAverageScore excludes agents whose average score is below it, or unknown.
	MinAverageScore *float64

	// IncludeRevoked counts revoked feedback when matching and averaging.
	IncludeRevoked bool
}

// ReputationQuery is a complete reputation search request: criteria plus paging
// and sorting. Zero First and nil Sort select the defaults.
type ReputationQuery struct {
	ReputationCriteria

	First int
	Skip  int
	// Sort entries have the form "field:direction"; only the first one is used.
	Sort []string
}

// Bool returns a pointer to b. It is a convenience for filling SearchParams.
func Bool(b bool) *bool {
	return &b
}

// Float returns a pointer to f.
func Float(f float64) *float64 {
	return &f
}
