package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/orgsync/internal/orgsync"
)

type InitCmd struct {
	flags *Flags

	repo string
}

// NewInitCmd creates a new init command
func NewInitCmd(flags *Flags) *InitCmd {
	return &InitCmd{flags: flags}
}

// Register adds the init command to the application
func (cmd *InitCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "init",
		Usage:     "Prepare an org file for syncing",
		UsageText: "orgsync init [--repo owner/repo] <file>",
		Description: `Writes the #+GH_REPO: keyword into the file and creates an empty
snapshot next to it (<file>.orgsync.json). Running init on an already
initialized file checks that the snapshot still decodes and changes
nothing.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "repo",
				Usage:       "repository to sync against (owner/repo)",
				Destination: &cmd.repo,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *InitCmd) run(ctx context.Context, c *cli.Command) error {
	file, err := fileArg(c)
	if err != nil {
		return err
	}
	printer, err := cmd.flags.Printer()
	if err != nil {
		return err
	}

	report, err := cmd.flags.App.Init(ctx, orgsync.InitOptions{File: file, Repo: cmd.repo})
	if err != nil {
		return err
	}
	return printer.Init(*report)
}
