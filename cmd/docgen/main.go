// Command docgen generates CLI reference documentation from the orgsync
// command definitions. Output is written to docs/cli-reference.md.
package main

import (
	"fmt"
	"os"

	docs "github.com/urfave/cli-docs/v3"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/orgsync/internal/commands"
)

func main() {
	flags := &commands.Flags{}

	root := &cli.Command{
		Name:      "orgsync",
		Usage:     "Keep org-mode task files and GitHub issues in sync",
		UsageText: "orgsync [global options] command [command options] <file>",
		Description: `orgsync reconciles the TODO headings of an org file against the issues
of a GitHub repository using a three-way merge: the file, the issues,
and a snapshot of the last synced state. Independent edits flow in both
directions; real conflicts are reported instead of guessed at.

Start with 'orgsync init --repo owner/repo tasks.org', then run
'orgsync sync tasks.org' whenever either side changed.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error, fatal, panic)",
				Sources: cli.EnvVars("ORGSYNC_LOG_LEVEL"),
				Value:   "warn",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "only log errors",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
				Sources: cli.EnvVars("ORGSYNC_CONFIG"),
				Value:   commands.DefaultConfigPath(),
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "GitHub token (falls back to GITHUB_TOKEN, gh auth token, then the config file)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "machine-readable JSON output",
			},
			&cli.BoolFlag{
				Name:  "sexp",
				Usage: "Emacs-readable s-expression output",
			},
		},
	}

	root = commands.NewInitCmd(flags).Register(root)
	root = commands.NewSyncCmd(flags).Register(root)
	root = commands.NewPushCmd(flags).Register(root)
	root = commands.NewPullCmd(flags).Register(root)
	root = commands.NewStatusCmd(flags).Register(root)
	root = commands.NewUnlinkCmd(flags).Register(root)

	md, err := docs.ToMarkdown(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error generating docs: %v\n", err)
		os.Exit(1)
	}

	outPath := "docs/cli-reference.md"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.WriteFile(outPath, []byte(md), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", outPath, err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", outPath)
}
