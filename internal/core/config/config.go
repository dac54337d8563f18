// Package config handles configuration loading and validation for orgsync.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hay-kot/orgsync/internal/core/org"
	"github.com/hay-kot/orgsync/internal/core/reconcile"
)

// Config holds the application configuration.
type Config struct {
	GitHub GitHubConfig `yaml:"github"`
	Sync   SyncConfig   `yaml:"sync"`
	Org    OrgConfig    `yaml:"org"`
}

// GitHubConfig holds credentials and the fallback repository.
type GitHubConfig struct {
	// Token is the lowest-priority credential source; see ResolveToken.
	Token string `yaml:"token"`
	// DefaultRepo ("owner/name") is used when a document carries no
	// #+GH_REPO: keyword.
	DefaultRepo string `yaml:"default_repo"`
}

// SyncConfig tunes conflict resolution. Title, body, and labels are not
// configurable: the document owns the first two and label conflicts
// always merge by union.
type SyncConfig struct {
	StateConflict    string   `yaml:"state_conflict"`
	AssigneeConflict string   `yaml:"assignee_conflict"`
	DefaultLabels    []string `yaml:"default_labels"`
}

// OrgConfig extends the heading keywords the parser recognizes beyond
// the built-in set. Extra open keywords behave like TODO, extra closed
// keywords like DONE.
type OrgConfig struct {
	OpenKeywords   []string `yaml:"open_keywords"`
	ClosedKeywords []string `yaml:"closed_keywords"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Sync: SyncConfig{
			StateConflict:    string(reconcile.RequireOverride),
			AssigneeConflict: string(reconcile.RemoteWins),
		},
	}
}

// Load reads configuration from the given path. A missing file is not an
// error: defaults are returned so the tool works with zero setup.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Sync.StateConflict == "" {
		c.Sync.StateConflict = defaults.Sync.StateConflict
	}
	if c.Sync.AssigneeConflict == "" {
		c.Sync.AssigneeConflict = defaults.Sync.AssigneeConflict
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := validResolution("sync.state_conflict", c.Sync.StateConflict); err != nil {
		return err
	}
	if err := validResolution("sync.assignee_conflict", c.Sync.AssigneeConflict); err != nil {
		return err
	}
	return nil
}

// validResolution accepts the per-field resolutions a scalar field
// supports; union only makes sense for label sets.
func validResolution(key, value string) error {
	res, err := reconcile.ParseResolution(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if res == reconcile.UnionMerge {
		return fmt.Errorf("%s: union is only valid for labels", key)
	}
	return nil
}

// Policy builds the engine's conflict policy from the configured
// resolutions.
func (c *Config) Policy() reconcile.Policy {
	p := reconcile.DefaultPolicy()
	p.State = reconcile.Resolution(c.Sync.StateConflict)
	p.Assignees = reconcile.Resolution(c.Sync.AssigneeConflict)
	return p
}

// Keywords returns the heading keyword set with any configured extras.
func (c *Config) Keywords() org.Keywords {
	return org.DefaultKeywords().Extend(c.Org.OpenKeywords, c.Org.ClosedKeywords)
}
