package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/agentscope/pkg/storage"
)

// ImportCommand creates the import command
func ImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Load an agent index dump into the local mirror",
		ArgsUsage: "<dump.json[.zst]>",
		Flags:     []cli.Flag{databaseFlag()},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one dump file")
			}
			return importDump(ctx, c.String("config"), c.String("database"), c.Args().First())
		},
	}
}

// importDump loads the dump at dumpPath into the mirror database
func importDump(ctx context.Context, configPath, database, dumpPath string) error {
	path, err := mirrorPath(configPath, database)
	if err != nil {
		return err
	}

	dump, err := storage.OpenDump(dumpPath)
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

	if err := ix.Load(ctx, dump); err != nil {
		return fmt.Errorf("importing %s: %w", dumpPath, err)
	}

	fmt.Printf("Imported %d agents and %d feedback entries from %s\n", len(dump.Agents), len(dump.Feedback), dumpPath)
	stats, err := ix.Stats(ctx)
	if err != nil {
		return fmt.Errorf("getting stats: %w", err)
	}
	fmt.Print(renderStats(ix.Path(), stats))
	return nil
}
