// Package subgraph implements core.IndexedSource against a remote agent
// subgraph served over GraphQL.
//
// A subgraph indexes a single chain. Criteria the GraphQL filter language can
// express without excluding agents the engine would keep are pushed into the
// query's where argument; the rest (capability lists, negative flags) are left
// to the engine's residual filter.
package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rubiojr/agentscope/pkg/core"
	"github.com/rubiojr/agentscope/pkg/log"
	"github.com/rubiojr/agentscope/pkg/version"
)

var logger = log.ForService("subgraph")

const DefaultTimeout = 30 * time.Second

// Config configures a subgraph client.
type Config struct {
	// URL is the GraphQL endpoint.
	URL string
	// ChainID is the chain indexed by the subgraph.
	ChainID int64
	Timeout time.Duration
	// APIKey is sent as a bearer token when set.
	APIKey string
}

// Client queries a remote agent subgraph. It is safe for concurrent use.
type Client struct {
	url     string
	chainID int64
	apiKey  string
	client  *http.Client
}

var _ core.IndexedSource = (*Client)(nil)

// New returns a client for cfg.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("subgraph url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:     cfg.URL,
		chainID: cfg.ChainID,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// ChainID returns the chain served by the subgraph.
func (c *Client) ChainID() int64 {
	return c.chainID
}

// GetByID looks an agent up by "chainId:agentId" or bare agent id. Ids keyed to
// another chain are never found.
func (c *Client) GetByID(ctx context.Context, id string) (*core.AgentSummary, error) {
	chainID, agentID, hasChain := core.ParseAgentKey(id)
	if hasChain && chainID != c.chainID {
		return nil, nil
	}

	var data struct {
		Agents []agentNode `json:"agents"`
	}
	vars := map[string]any{
		"first": 1,
		"skip":  0,
		"where": map[string]any{"agentId": agentID},
	}
	if err := c.query(ctx, agentsQuery, vars, &data); err != nil {
		return nil, fmt.Errorf("loading agent %s: %w", id, err)
	}
	if len(data.Agents) == 0 {
		return nil, nil
	}

	rec := data.Agents[0].record(c.chainID)
	summary := rec.Summary()
	return &summary, nil
}

// Search returns agents newest first.
func (c *Client) Search(ctx context.Context, params core.SearchParams, limit, offset int) ([]core.AgentSummary, error) {
	if len(params.Chains) > 0 && !containsChain(params.Chains, c.chainID) {
		return []core.AgentSummary{}, nil
	}

	var data struct {
		Agents []agentNode `json:"agents"`
	}
	vars := map[string]any{
		"first":          limit,
		"skip":           offset,
		"where":          searchFilter(&params),
		"orderBy":        "createdAt",
		"orderDirection": "desc",
	}
	if err := c.query(ctx, agentsQuery, vars, &data); err != nil {
		return nil, fmt.Errorf("searching agents: %w", err)
	}

	agents := make([]core.AgentSummary, 0, len(data.Agents))
	for i := range data.Agents {
		rec := data.Agents[i].record(c.chainID)
		agents = append(agents, rec.Summary())
	}
	return agents, nil
}

// SearchByReputation returns nested agent records with their feedback statistics.
func (c *Client) SearchByReputation(ctx context.Context, criteria core.ReputationCriteria, limit, offset int, orderBy, orderDirection string) ([]core.AgentRecord, error) {
	where, ok := reputationFilter(&criteria, c.chainID)
	if !ok {
		return []core.AgentRecord{}, nil
	}

	var data struct {
		Agents []agentNode `json:"agents"`
	}
	vars := map[string]any{
		"first":          limit,
		"skip":           offset,
		"where":          where,
		"orderBy":        orderField(orderBy),
		"orderDirection": strings.ToLower(orderDirection),
	}
	if err := c.query(ctx, agentsQuery, vars, &data); err != nil {
		return nil, fmt.Errorf("searching reputation: %w", err)
	}

	records := make([]core.AgentRecord, 0, len(data.Agents))
	for i := range data.Agents {
		records = append(records, data.Agents[i].record(c.chainID))
	}
	return records, nil
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

func (c *Client) query(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "agentscope/"+version.Version)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	logger.Debugf("POST %s %v", c.url, vars)
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warnf("failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("subgraph request failed with status %d", resp.StatusCode)
	}

	var gr gqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if len(gr.Errors) > 0 {
		msgs := make([]string, len(gr.Errors))
		for i, e := range gr.Errors {
			msgs[i] = e.Message
		}
		return fmt.Errorf("subgraph error: %s", strings.Join(msgs, "; "))
	}
	if len(gr.Data) == 0 || string(gr.Data) == "null" {
		return fmt.Errorf("subgraph returned no data")
	}

	if err := json.Unmarshal(gr.Data, out); err != nil {
		return fmt.Errorf("decoding data: %w", err)
	}
	return nil
}

func containsChain(chains []int64, id int64) bool {
	for _, c := range chains {
		if c == id {
			return true
		}
	}
	return false
}
