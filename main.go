package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/orgsync/internal/commands"
	"github.com/hay-kot/orgsync/internal/core/config"
	"github.com/hay-kot/orgsync/internal/orgsync"
	"github.com/hay-kot/orgsync/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, build() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "orgsync",
		Usage:     "Keep org-mode task files and GitHub issues in sync",
		UsageText: "orgsync [global options] command [command options] <file>",
		Description: `orgsync reconciles the TODO headings of an org file against the issues
of a GitHub repository using a three-way merge: the file, the issues,
and a snapshot of the last synced state. Independent edits flow in both
directions; real conflicts are reported instead of guessed at.

Start with 'orgsync init --repo owner/repo tasks.org', then run
'orgsync sync tasks.org' whenever either side changed.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("ORGSYNC_LOG_LEVEL"),
				Value:       "warn",
				Destination: &flags.LogLevel,
			},
			&cli.BoolFlag{
				Name:        "quiet",
				Aliases:     []string{"q"},
				Usage:       "only log errors",
				Destination: &flags.Quiet,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("ORGSYNC_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "token",
				Usage:       "GitHub token (falls back to GITHUB_TOKEN, gh auth token, then the config file)",
				Destination: &flags.Token,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "machine-readable JSON output",
				Destination: &flags.JSON,
			},
			&cli.BoolFlag{
				Name:        "sexp",
				Usage:       "Emacs-readable s-expression output",
				Destination: &flags.Sexp,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, err := logutils.New(flags.LogLevel, flags.Quiet)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger

			if _, err := flags.Format(); err != nil {
				return ctx, err
			}

			cfg, err := config.Load(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}

			flags.Config = cfg
			flags.App = orgsync.NewApp(cfg, log.With().Str("component", "orgsync").Logger())
			return ctx, nil
		},
	}

	app = commands.NewInitCmd(flags).Register(app)
	app = commands.NewSyncCmd(flags).Register(app)
	app = commands.NewPushCmd(flags).Register(app)
	app = commands.NewPullCmd(flags).Register(app)
	app = commands.NewStatusCmd(flags).Register(app)
	app = commands.NewUnlinkCmd(flags).Register(app)

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
