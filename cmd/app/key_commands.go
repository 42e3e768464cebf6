package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/fieldvault/cmd/app/commands"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "generate-key",
			Usage: "Generate a new field encryption key",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunGenerateKey(commands.DefaultIO().Writer)
			},
		},
		{
			Name:      "mask-value",
			Usage:     "Mask a taxpayer identification number for safe display",
			ArgsUsage: "<value>",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunMaskValue(commands.DefaultIO().Writer, cmd.Args().First())
			},
		},
	}
}
