package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rubiojr/agentscope/pkg/core"
)

// ParseSearchParams parses HTTP query parameters into core.SearchParams.
//
// Supported parameters:
//   - name: Name substring
//   - mcp, a2a, active, x402support: Boolean flags (true/false/1/0)
//   - ens, walletAddress, did: Identity links
//   - supportedTrust, a2aSkill, mcpTool, mcpPrompt, mcpResource: Lists, repeated
//     or comma-separated
//   - chain: Chain ids, repeated or comma-separated
//
// Malformed booleans or chain ids return an error naming the parameter.
//
// Example:
//
//	params, err := ParseSearchParams(r.URL.Query())
//	if err != nil {
//		// respond 400
//	}
func ParseSearchParams(queryParams map[string][]string) (core.SearchParams, error) {
	var params core.SearchParams

	params.Name = first(queryParams, "name")
	params.ENS = first(queryParams, "ens")
	params.WalletAddress = first(queryParams, "walletAddress")
	params.DID = first(queryParams, "did")

	flags := []struct {
		key string
		dst **bool
	}{
		{"mcp", &params.MCP},
		{"a2a", &params.A2A},
		{"active", &params.Active},
		{"x402support", &params.X402Support},
	}
	for _, f := range flags {
		v, err := parseBool(queryParams, f.key)
		if err != nil {
			return params, err
		}
		*f.dst = v
	}

	params.SupportedTrust = list(queryParams, "supportedTrust")
	params.A2ASkills = list(queryParams, "a2aSkill")
	params.MCPTools = list(queryParams, "mcpTool")
	params.MCPPrompts = list(queryParams, "mcpPrompt")
	params.MCPResources = list(queryParams, "mcpResource")

	for _, c := range list(queryParams, "chain") {
		id, err := strconv.ParseInt(c, 10, 64)
		if err != nil {
			return params, fmt.Errorf("invalid chain %q: %w", c, err)
		}
		params.Chains = append(params.Chains, id)
	}

	return params, nil
}

// ParsePage extracts the page size ("limit", defaults to DefaultPageSize, at most
// MaxPageSize) and the
// cursor ("cursor") from HTTP query parameters. The cursor is validated but
// returned in its encoded form.
func ParsePage(queryParams map[string][]string) (int, string, error) {
	pageSize := DefaultPageSize
	if limitStr := first(queryParams, "limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			return 0, "", fmt.Errorf("invalid limit %q", limitStr)
		}
		if parsed > MaxPageSize {
			return 0, "", fmt.Errorf("limit %d exceeds maximum of %d", parsed, MaxPageSize)
		}
		pageSize = parsed
	}

	cursor := first(queryParams, "cursor")
	if _, err := DecodeCursor(cursor); err != nil {
		return 0, "", err
	}
	return pageSize, cursor, nil
}

// ParseReputationQuery parses HTTP query parameters into a core.ReputationQuery.
//
// Supported parameters:
//   - agent, tag, reviewer, capability, skill, task, name: Lists, repeated or
//     comma-separated
//   - min_average_score: Float
//   - include_revoked: Boolean
//   - first, skip: Paging (defaults 50 and 0, first at most MaxPageSize)
//   - sort: "field:direction", repeated; only the first is honoured
func ParseReputationQuery(queryParams map[string][]string) (core.ReputationQuery, error) {
	q := core.ReputationQuery{
		ReputationCriteria: core.ReputationCriteria{
			Agents:       list(queryParams, "agent"),
			Tags:         list(queryParams, "tag"),
			Reviewers:    list(queryParams, "reviewer"),
			Capabilities: list(queryParams, "capability"),
			Skills:       list(queryParams, "skill"),
			Tasks:        list(queryParams, "task"),
			Names:        list(queryParams, "name"),
		},
		First: DefaultFirst,
	}

	if s := first(queryParams, "min_average_score"); s != "" {
		score, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return q, fmt.Errorf("invalid min_average_score %q: %w", s, err)
		}
		q.MinAverageScore = &score
	}

	revoked, err := parseBool(queryParams, "include_revoked")
	if err != nil {
		return q, err
	}
	q.IncludeRevoked = revoked != nil && *revoked

	if s := first(queryParams, "first"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return q, fmt.Errorf("invalid first %q", s)
		}
		if n > MaxPageSize {
			return q, fmt.Errorf("first %d exceeds maximum of %d", n, MaxPageSize)
		}
		q.First = n
	}
	if s := first(queryParams, "skip"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return q, fmt.Errorf("invalid skip %q", s)
		}
		q.Skip = n
	}

	for _, s := range queryParams["sort"] {
		if s = strings.TrimSpace(s); s != "" {
			q.Sort = append(q.Sort, s)
		}
	}

	return q, nil
}

func first(queryParams map[string][]string, key string) string {
	if v := queryParams[key]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

// list collects every value of key, splitting comma-separated entries and
// dropping empty ones.
func list(queryParams map[string][]string, key string) []string {
	var out []string
	for _, raw := range queryParams[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func parseBool(queryParams map[string][]string, key string) (*bool, error) {
	s := first(queryParams, key)
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return &b, nil
}
