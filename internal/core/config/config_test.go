package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/orgsync/internal/core/org"
	"github.com/hay-kot/orgsync/internal/core/reconcile"
	"github.com/hay-kot/orgsync/pkg/executil"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, string(reconcile.RequireOverride), cfg.Sync.StateConflict)
	assert.Equal(t, string(reconcile.RemoteWins), cfg.Sync.AssigneeConflict)
	assert.Empty(t, cfg.Sync.DefaultLabels)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Sync, cfg.Sync)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
github:
  token: tok123
  default_repo: acme/rockets
sync:
  state_conflict: remote-wins
  default_labels:
    - synced
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tok123", cfg.GitHub.Token)
	assert.Equal(t, "acme/rockets", cfg.GitHub.DefaultRepo)
	assert.Equal(t, "remote-wins", cfg.Sync.StateConflict)
	assert.Equal(t, "remote-wins", cfg.Sync.AssigneeConflict, "unset field keeps its default")
	assert.Equal(t, []string{"synced"}, cfg.Sync.DefaultLabels)
}

func TestLoadRejectsUnknownResolution(t *testing.T) {
	path := writeConfig(t, "sync:\n  state_conflict: coin-flip\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state_conflict")
}

func TestLoadRejectsUnionForScalarField(t *testing.T) {
	path := writeConfig(t, "sync:\n  state_conflict: union\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only valid for labels")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "sync: [not a map\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sync.StateConflict = string(reconcile.LocalWins)

	p := cfg.Policy()
	assert.Equal(t, reconcile.LocalWins, p.State)
	assert.Equal(t, reconcile.RemoteWins, p.Assignees)
	assert.Equal(t, reconcile.UnionMerge, p.Labels)
	assert.Equal(t, reconcile.RequireOverride, p.Title)
}

func TestKeywords(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Org.OpenKeywords = []string{"next"}
	cfg.Org.ClosedKeywords = []string{"REJECTED"}

	kw := cfg.Keywords()
	assert.Equal(t, org.StatusTodo, kw["NEXT"])
	assert.Equal(t, org.StatusDone, kw["REJECTED"])
	assert.Equal(t, org.StatusTodo, kw["TODO"])
}

func TestResolveTokenPriority(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.GitHub.Token = "from-config"

	t.Run("flag wins", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "from-env")
		exec := &executil.RecordingExecutor{}
		tok, err := cfg.ResolveToken(ctx, exec, "from-flag")
		require.NoError(t, err)
		assert.Equal(t, "from-flag", tok)
		assert.Empty(t, exec.Commands, "flag token should short-circuit the gh lookup")
	})

	t.Run("env beats gh", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "from-env")
		exec := &executil.RecordingExecutor{
			Outputs: map[string][]byte{"gh": []byte("from-gh\n")},
		}
		tok, err := cfg.ResolveToken(ctx, exec, "")
		require.NoError(t, err)
		assert.Equal(t, "from-env", tok)
	})

	t.Run("gh beats config", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "")
		exec := &executil.RecordingExecutor{
			Outputs: map[string][]byte{"gh": []byte("from-gh\n")},
		}
		tok, err := cfg.ResolveToken(ctx, exec, "")
		require.NoError(t, err)
		assert.Equal(t, "from-gh", tok)
		require.Len(t, exec.Commands, 1)
		assert.Equal(t, []string{"auth", "token"}, exec.Commands[0].Args)
	})

	t.Run("config is the last resort", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "")
		exec := &executil.RecordingExecutor{
			Errors: map[string]error{"gh": assert.AnError},
		}
		tok, err := cfg.ResolveToken(ctx, exec, "")
		require.NoError(t, err)
		assert.Equal(t, "from-config", tok)
	})

	t.Run("nothing configured", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "")
		bare := DefaultConfig()
		exec := &executil.RecordingExecutor{
			Errors: map[string]error{"gh": assert.AnError},
		}
		_, err := bare.ResolveToken(ctx, exec, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no GitHub token")
	})
}
