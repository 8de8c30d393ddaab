package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// GetCommand creates the get command
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Show a single agent",
		ArgsUsage: "<chainId:agentId | agentId>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print JSON instead of formatted output",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one agent id")
			}
			return getAgent(ctx, c.String("config"), c.Args().First(), c.Bool("json"))
		},
	}
}

func getAgent(ctx context.Context, configPath, id string, asJSON bool) error {
	service, _, closeFn, err := loadService(configPath)
	defer closeFn()
	if err != nil {
		return err
	}

	agent, err := service.GetAgent(ctx, id)
	if err != nil {
		return err
	}

	if asJSON {
		return writeJSON(os.Stdout, agent)
	}
	fmt.Println(renderAgent(agent))
	return nil
}
