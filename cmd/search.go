package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/agentscope/pkg/core"
	"github.com/rubiojr/agentscope/pkg/search"
)

// searchFlags maps CLI flags to the query parameters understood by
// search.ParseSearchParams.
var searchFlags = []struct {
	flag  string
	param string
	usage string
	list  bool
}{
	{"name", "name", "Case-insensitive substring of the agent name", false},
	{"mcp", "mcp", "Require (true) or exclude (false) an MCP endpoint", false},
	{"a2a", "a2a", "Require (true) or exclude (false) an A2A endpoint", false},
	{"active", "active", "Filter on the active flag (true/false)", false},
	{"x402", "x402support", "Filter on x402 payment support (true/false)", false},
	{"ens", "ens", "ENS name", false},
	{"wallet", "walletAddress", "Agent wallet address", false},
	{"did", "did", "Decentralized identifier (exact match)", false},
	{"trust", "supportedTrust", "Supported trust model (any of)", true},
	{"skill", "a2aSkill", "A2A skill (any of)", true},
	{"tool", "mcpTool", "MCP tool (any of)", true},
	{"prompt", "mcpPrompt", "MCP prompt (any of)", true},
	{"resource", "mcpResource", "MCP resource (any of)", true},
	{"chain", "chain", "Chain id (any of)", true},
}

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Page size (defaults to search.page_size)",
		},
		&cli.StringFlag{
			Name:  "cursor",
			Usage: "Cursor returned by a previous page",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print JSON instead of formatted output",
		},
	}
	for _, f := range searchFlags {
		if f.list {
			flags = append(flags, &cli.StringSliceFlag{Name: f.flag, Usage: f.usage})
		} else {
			flags = append(flags, &cli.StringFlag{Name: f.flag, Usage: f.usage})
		}
	}

	return &cli.Command{
		Name:  "search",
		Usage: "Search agents by capabilities and identity",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			params, err := searchParamsFromFlags(c)
			if err != nil {
				return err
			}
			return searchAgents(ctx, c.String("config"), &params, c.Int("limit"), c.String("cursor"), c.Bool("json"))
		},
	}
}

func searchParamsFromFlags(c *cli.Command) (core.SearchParams, error) {
	query := make(map[string][]string)
	for _, f := range searchFlags {
		if !c.IsSet(f.flag) {
			continue
		}
		if f.list {
			query[f.param] = c.StringSlice(f.flag)
		} else {
			query[f.param] = []string{c.String(f.flag)}
		}
	}
	return search.ParseSearchParams(query)
}

func searchAgents(ctx context.Context, configPath string, params *core.SearchParams, limit int, cursor string, asJSON bool) error {
	service, cfg, closeFn, err := loadService(configPath)
	defer closeFn()
	if err != nil {
		return err
	}
	if limit <= 0 {
		limit = cfg.Search.PageSize
	}

	result, err := service.SearchAgents(ctx, params, limit, cursor)
	if err != nil {
		return err
	}

	if asJSON {
		return writeJSON(os.Stdout, result)
	}
	title := "Agents"
	if cursor != "" {
		title = fmt.Sprintf("Agents from offset %s", cursor)
	}
	fmt.Print(renderResult(title, result))
	return nil
}
