package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/orgsync/internal/orgsync"
)

type StatusCmd struct {
	flags *Flags

	repo string
}

// NewStatusCmd creates a new status command
func NewStatusCmd(flags *Flags) *StatusCmd {
	return &StatusCmd{flags: flags}
}

// Register adds the status command to the application
func (cmd *StatusCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "status",
		Usage:     "Show drift between the document, GitHub, and the snapshot",
		UsageText: "orgsync status [options] <file>",
		Description: `Classifies every linked heading against the base snapshot and lists
pending creations, one-sided changes, and conflicts. Nothing is
mutated; it is safe to run at any time.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "repo",
				Usage:       "override the repository (owner/repo)",
				Destination: &cmd.repo,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *StatusCmd) run(ctx context.Context, c *cli.Command) error {
	file, err := fileArg(c)
	if err != nil {
		return err
	}
	printer, err := cmd.flags.Printer()
	if err != nil {
		return err
	}

	report, err := cmd.flags.App.Status(ctx, orgsync.StatusOptions{
		File:  file,
		Repo:  cmd.repo,
		Token: cmd.flags.Token,
	})
	if err != nil {
		return err
	}
	return printer.Status(*report)
}
