package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/orgsync/internal/orgsync"
)

type UnlinkCmd struct {
	flags *Flags

	repo      string
	closeFlag bool
}

// NewUnlinkCmd creates a new unlink command
func NewUnlinkCmd(flags *Flags) *UnlinkCmd {
	return &UnlinkCmd{flags: flags}
}

// Register adds the unlink command to the application
func (cmd *UnlinkCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "unlink",
		Usage:     "Sever the link between a heading and its issue",
		UsageText: "orgsync unlink [options] <file> <issue-number|title>",
		Description: `Removes the issue properties from the heading and drops the snapshot
entry, so the item stops syncing. The remote issue is left as-is unless
--close is given. This is also how snapshot orphan warnings are
cleared.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "repo",
				Usage:       "override the repository (owner/repo)",
				Destination: &cmd.repo,
			},
			&cli.BoolFlag{
				Name:        "close",
				Usage:       "also close the remote issue",
				Destination: &cmd.closeFlag,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *UnlinkCmd) run(ctx context.Context, c *cli.Command) error {
	file, err := fileArg(c)
	if err != nil {
		return err
	}
	target := c.Args().Get(1)
	if target == "" {
		return fmt.Errorf("missing argument: issue number or title substring")
	}
	printer, err := cmd.flags.Printer()
	if err != nil {
		return err
	}

	report, err := cmd.flags.App.Unlink(ctx, orgsync.UnlinkOptions{
		File:   file,
		Target: target,
		Close:  cmd.closeFlag,
		Repo:   cmd.repo,
		Token:  cmd.flags.Token,
	})
	if err != nil {
		return err
	}
	return printer.Unlink(*report)
}
