package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/orgsync/internal/core/reconcile"
	"github.com/hay-kot/orgsync/internal/orgsync"
)

type SyncCmd struct {
	flags *Flags

	repo     string
	dryRun   bool
	override bool
}

// NewSyncCmd creates a new sync command
func NewSyncCmd(flags *Flags) *SyncCmd {
	return &SyncCmd{flags: flags}
}

// Register adds the sync command to the application
func (cmd *SyncCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "sync",
		Usage:     "Reconcile an org file with its GitHub issues in both directions",
		UsageText: "orgsync sync [options] <file>",
		Description: `Runs one full three-way merge pass: unlinked headings are created or
linked by title, local edits are pushed, remote edits are pulled, and
label sets are merged.

An item where both sides changed the same field is reported as a
conflict and left untouched. Use --override to force the local values
through.`,
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

func (cmd *SyncCmd) run(ctx context.Context, c *cli.Command) error {
	return runReconcile(ctx, c, cmd.flags, reconcile.Bidirectional, cmd.repo, cmd.dryRun, cmd.override)
}

// runReconcile is shared by sync, push, and pull; the direction is the
// only difference between them.
func runReconcile(ctx context.Context, c *cli.Command, flags *Flags, dir reconcile.Direction, repo string, dryRun, override bool) error {
	file, err := fileArg(c)
	if err != nil {
		return err
	}
	printer, err := flags.Printer()
	if err != nil {
		return err
	}

	report, runErr := flags.App.Reconcile(ctx, orgsync.RunOptions{
		File:      file,
		Repo:      repo,
		Token:     flags.Token,
		DryRun:    dryRun,
		Override:  override,
		Direction: dir,
	})
	if report != nil {
		if err := printer.Sync(*report); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}
	if report != nil && len(report.Conflicts) > 0 {
		return fmt.Errorf("%d item(s) in conflict; rerun with --override to force the local values", len(report.Conflicts))
	}
	return nil
}
