// Package commands registers the CLI commands over the orgsync service.
package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/orgsync/internal/core/config"
	"github.com/hay-kot/orgsync/internal/orgsync"
	"github.com/hay-kot/orgsync/internal/output"
)

// Flags holds the global flags and the dependencies the Before hook
// builds for every command.
type Flags struct {
	LogLevel   string
	Quiet      bool
	ConfigPath string
	Token      string
	JSON       bool
	Sexp       bool

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// App is the orgsync service for orchestrating operations
	App *orgsync.App
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "orgsync", "config.yaml")
}

// Format picks the output format from the global flags.
func (f *Flags) Format() (output.Format, error) {
	switch {
	case f.JSON && f.Sexp:
		return 0, errors.New("--json and --sexp are mutually exclusive")
	case f.JSON:
		return output.FormatJSON, nil
	case f.Sexp:
		return output.FormatSexp, nil
	default:
		return output.FormatHuman, nil
	}
}

// Printer builds a stdout printer for the selected format.
func (f *Flags) Printer() (*output.Printer, error) {
	format, err := f.Format()
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(format, os.Stdout), nil
}

// fileArg returns the required org file argument.
func fileArg(c *cli.Command) (string, error) {
	file := c.Args().First()
	if file == "" {
		return "", fmt.Errorf("missing argument: path to an org file")
	}
	return file, nil
}
