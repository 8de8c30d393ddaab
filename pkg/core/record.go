package core

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// AgentRecord is the nested record returned by reputation queries. Descriptive
// data lives in the registration sub-record, which may be missing altogether when
// the agent never published a registration file.
type AgentRecord struct {
	ID            string        `json:"id"`
	ChainID       FlexInt       `json:"chainId"`
	AgentID       string        `json:"agentId"`
	Owner         string        `json:"owner,omitempty"`
	Operators     []string      `json:"operators,omitempty"`
	CreatedAt     int64         `json:"createdAt,omitempty"`
	UpdatedAt     int64         `json:"updatedAt,omitempty"`
	TotalFeedback int           `json:"totalFeedback,omitempty"`
	AverageScore  *float64      `json:"averageScore"`
	Registration  *Registration `json:"registrationFile,omitempty"`
}

// Registration is the agent's registration file as indexed by the source.
type Registration struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Image           string   `json:"image,omitempty"`
	Active          *bool    `json:"active"`
	X402Support     *bool    `json:"x402support"`
	SupportedTrusts []string `json:"supportedTrusts,omitempty"`
	MCPEndpoint     string   `json:"mcpEndpoint,omitempty"`
	A2AEndpoint     string   `json:"a2aEndpoint,omitempty"`
	ENS             string   `json:"ens,omitempty"`
	DID             string   `json:"did,omitempty"`
	AgentWallet     string   `json:"agentWallet,omitempty"`
	MCPTools        []string `json:"mcpTools,omitempty"`
	MCPPrompts      []string `json:"mcpPrompts,omitempty"`
	MCPResources    []string `json:"mcpResources,omitempty"`
	A2ASkills       []string `json:"a2aSkills,omitempty"`
}

// Summary flattens the record into an AgentSummary.
//
// Missing values take their zero form: chain id 0 when unparseable, empty lists,
// false flags. The protocol flags derive from endpoint presence. The single owner
// becomes a one-element Owners list. The average score is copied into Extras only
// when the source provided one.
func (r *AgentRecord) Summary() AgentSummary {
	s := AgentSummary{
		ChainID:   r.ChainID.Int64(),
		AgentID:   r.AgentID,
		Owners:    []string{},
		Operators: NormalizeAddresses(r.Operators),
		Extras:    make(map[string]any),
	}
	if owner := NormalizeAddress(r.Owner); owner != "" {
		s.Owners = []string{owner}
	}
	if r.AverageScore != nil {
		s.Extras[ExtraAverageScore] = *r.AverageScore
	}

	reg := r.Registration
	if reg == nil {
		reg = &Registration{}
	}
	s.Name = reg.Name
	s.Description = reg.Description
	s.Image = reg.Image
	s.MCP = strings.TrimSpace(reg.MCPEndpoint) != ""
	s.A2A = strings.TrimSpace(reg.A2AEndpoint) != ""
	s.ENS = NormalizeAddress(reg.ENS)
	s.DID = reg.DID
	s.WalletAddress = NormalizeAddress(reg.AgentWallet)
	s.SupportedTrusts = copyList(reg.SupportedTrusts)
	s.A2ASkills = copyList(reg.A2ASkills)
	s.MCPTools = copyList(reg.MCPTools)
	s.MCPPrompts = copyList(reg.MCPPrompts)
	s.MCPResources = copyList(reg.MCPResources)
	s.Active = reg.Active != nil && *reg.Active
	s.X402Support = reg.X402Support != nil && *reg.X402Support
	return s
}

func copyList(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// FlexInt is an integer that decodes from either a JSON number or a JSON string,
// as indexers commonly encode big integers as strings. The raw text is kept and
// parsed on demand; values that do not parse read as 0.
type FlexInt string

// Int64 returns the parsed value, or 0 when the raw text is not an integer.
func (f FlexInt) Int64() int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(string(f)), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// FlexIntOf formats n as a FlexInt.
func FlexIntOf(n int64) FlexInt {
	return FlexInt(strconv.FormatInt(n, 10))
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexInt(s)
		return nil
	}
	*f = FlexInt(data)
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}
