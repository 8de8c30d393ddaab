package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/agentscope/pkg/core"
	"github.com/rubiojr/agentscope/pkg/search"
)

// reputationListFlags lists the list-valued criteria of the reputation command.
var reputationListFlags = []struct {
	flag  string
	usage string
}{
	{"agent", "Agent id, chainId:agentId or bare (any of)"},
	{"tag", "Feedback tag (any of)"},
	{"reviewer", "Reviewer address (any of)"},
	{"capability", "Reviewed capability (any of)"},
	{"skill", "Reviewed skill (any of)"},
	{"task", "Reviewed task (any of)"},
	{"name", "Agent name substring (any of)"},
}

// ReputationCommand creates the reputation command
func ReputationCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.FloatFlag{
			Name:  "min-score",
			Usage: "Minimum average feedback score",
		},
		&cli.BoolFlag{
			Name:  "include-revoked",
			Usage: "Count revoked feedback",
		},
		&cli.IntFlag{
			Name:  "first",
			Usage: "Page size",
			Value: search.DefaultFirst,
		},
		&cli.IntFlag{
			Name:  "skip",
			Usage: "Records to skip (the cursor of a previous page)",
		},
		&cli.StringSliceFlag{
			Name:  "sort",
			Usage: "Sort as field:direction, e.g. score:desc (only the first is used)",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print JSON instead of formatted output",
		},
	}
	for _, f := range reputationListFlags {
		flags = append(flags, &cli.StringSliceFlag{Name: f.flag, Usage: f.usage})
	}

	return &cli.Command{
		Name:  "reputation",
		Usage: "Search agents by feedback and reputation",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			return reputationSearch(ctx, c.String("config"), reputationQueryFromFlags(c), c.Bool("json"))
		},
	}
}

func reputationQueryFromFlags(c *cli.Command) core.ReputationQuery {
	q := core.ReputationQuery{
		ReputationCriteria: core.ReputationCriteria{
			Agents:         c.StringSlice("agent"),
			Tags:           c.StringSlice("tag"),
			Reviewers:      c.StringSlice("reviewer"),
			Capabilities:   c.StringSlice("capability"),
			Skills:         c.StringSlice("skill"),
			Tasks:          c.StringSlice("task"),
			Names:          c.StringSlice("name"),
			IncludeRevoked: c.Bool("include-revoked"),
		},
		First: c.Int("first"),
		Skip:  c.Int("skip"),
		Sort:  c.StringSlice("sort"),
	}
	if c.IsSet("min-score") {
		q.MinAverageScore = core.Float(c.Float("min-score"))
	}
	return q
}

func reputationSearch(ctx context.Context, configPath string, q core.ReputationQuery, asJSON bool) error {
	service, _, closeFn, err := loadService(configPath)
	defer closeFn()
	if err != nil {
		return err
	}

	result, err := service.SearchAgentsByReputation(ctx, q)
	if err != nil {
		return err
	}

	if asJSON {
		return writeJSON(os.Stdout, result)
	}
	orderBy, direction := search.ParseSort(q.Sort)
	title := fmt.Sprintf("Agents by %s %s", orderBy, direction)
	if q.Skip > 0 {
		title += ", skipping " + strconv.Itoa(q.Skip)
	}
	fmt.Print(renderResult(title, result))
	return nil
}
