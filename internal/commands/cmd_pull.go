package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/orgsync/internal/core/reconcile"
)

type PullCmd struct {
	flags *Flags

	repo   string
	dryRun bool
}

// NewPullCmd creates a new pull command
func NewPullCmd(flags *Flags) *PullCmd {
	return &PullCmd{flags: flags}
}

// Register adds the pull command to the application
func (cmd *PullCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "pull",
		Usage:     "Write remote changes into the document without pushing",
		UsageText: "orgsync pull [options] <file>",
		Description: `Pulls remotely changed state, assignees, and labels into the document.
Unlinked headings are skipped and nothing is sent to GitHub; local edits
stay pending for a later push or sync.`,
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
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *PullCmd) run(ctx context.Context, c *cli.Command) error {
	return runReconcile(ctx, c, cmd.flags, reconcile.PullOnly, cmd.repo, cmd.dryRun, false)
}
