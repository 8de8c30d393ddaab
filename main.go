package main

import (
	"context"
	stdlog "log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/agentscope/cmd"
	"github.com/rubiojr/agentscope/pkg/config"
	"github.com/rubiojr/agentscope/pkg/log"
)

func main() {
	app := &cli.Command{
		Name:  "agentscope",
		Usage: "Discover on-chain AI agents by capability, identity and reputation",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
				Value: false,
			},
			&cli.StringFlag{
				Name:  "debug-services",
				Usage: "Comma-separated services to debug (e.g. search,subgraph)",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Configuration file path",
				Value: getDefaultConfigPathOrExit(),
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if c.Bool("debug") {
				log.SetGlobalDebug(true)
			}
			log.ParseDebugServices(c.String("debug-services"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmd.InitCommand(),
			cmd.GetCommand(),
			cmd.SearchCommand(),
			cmd.ReputationCommand(),
			cmd.ImportCommand(),
			cmd.StatsCommand(),
			cmd.MigrateCommand(),
			cmd.ServeCommand(),
			cmd.VersionCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		stdlog.Fatal(err)
	}
}

func getDefaultConfigPathOrExit() string {
	path, err := config.GetDefaultConfigPath()
	if err != nil {
		stdlog.Fatalf("Failed to get default config path: %v", err)
	}
	return path
}
