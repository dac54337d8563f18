package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/orgsync/internal/core/reconcile"
)

type PushCmd struct {
	flags *Flags

	repo     string
	dryRun   bool
	override bool
}

// NewPushCmd creates a new push command
func NewPushCmd(flags *Flags) *PushCmd {
	return &PushCmd{flags: flags}
}

// Register adds the push command to the application
func (cmd *PushCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "push",
		Usage:     "Send local changes to GitHub without touching the document",
		UsageText: "orgsync push [options] <file>",
		Description: `Creates issues for unlinked headings and pushes locally changed fields.
Remote-side changes are detected but held back; a later sync still sees
them.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "repo",
				Usage:       "override the repository (owner/repo)",
				Destination: &cmd.repo,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Aliases:     []string{"n"},
				Usage:       "plan only, mutate nothing",
				Destination: &cmd.dryRun,
			},
			&cli.BoolFlag{
				Name:        "override",
				Usage:       "resolve conflicts with the local values",
				Destination: &cmd.override,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *PushCmd) run(ctx context.Context, c *cli.Command) error {
	return runReconcile(ctx, c, cmd.flags, reconcile.PushOnly, cmd.repo, cmd.dryRun, cmd.override)
}
