package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/agentscope/pkg/config"
	"github.com/rubiojr/agentscope/pkg/storage"
)

func databaseFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "database",
		Usage: "Agent mirror database (defaults to source.database)",
	}
}

// StatsCommand creates the stats command
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show agent mirror statistics",
		Flags: []cli.Flag{databaseFlag()},
		Action: func(ctx context.Context, c *cli.Command) error {
			return showStats(ctx, c.String("config"), c.String("database"))
		},
	}
}

// mirrorPath resolves the mirror database, preferring an explicit override.
func mirrorPath(configPath, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return "", fmt.Errorf("loading config: %w", err)
	}
	if cfg.Source.Database != "" {
		return cfg.Source.Database, nil
	}
	return config.GetDefaultDBPath()
}

// showStats displays mirror statistics
func showStats(ctx context.Context, configPath, database string) error {
	path, err := mirrorPath(configPath, database)
	if err != nil {
		return err
	}

	ix, err := storage.Open(path)
	if err != nil {
		return fmt.Errorf("opening agent mirror: %w", err)
	}
	defer func() {
		if err := ix.Close(); err != nil {
			logger.Warnf("failed to close agent mirror: %v", err)
		}
	}()

	stats, err := ix.Stats(ctx)
	if err != nil {
		return fmt.Errorf("getting stats: %w", err)
	}

	fmt.Print(renderStats(ix.Path(), stats))
	return nil
}
