package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hay-kot/orgsync/pkg/executil"
)

// ResolveToken picks the GitHub credential, in priority order: the
// --token flag, the GITHUB_TOKEN environment variable, a logged-in gh
// CLI, then the config file.
func (c *Config) ResolveToken(ctx context.Context, exec executil.Executor, flagToken string) (string, error) {
	if flagToken != "" {
		return flagToken, nil
	}
	if tok := os.Getenv("GITHUB_TOKEN"); tok != "" {
		return tok, nil
	}
	if tok := ghCLIToken(ctx, exec); tok != "" {
		return tok, nil
	}
	if c.GitHub.Token != "" {
		return c.GitHub.Token, nil
	}
	return "", fmt.Errorf("no GitHub token: pass --token, set GITHUB_TOKEN, log in with gh, or set github.token in the config file")
}

// ghCLIToken asks the gh CLI for its stored token. Any failure (gh not
// installed, not logged in) falls through to the next source.
func ghCLIToken(ctx context.Context, exec executil.Executor) string {
	out, err := exec.Run(ctx, "gh", "auth", "token")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
