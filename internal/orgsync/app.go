// Package orgsync wires the reconciliation engine to its collaborators:
// the parsed document, the GitHub client, and the snapshot store.
// Commands consume App instead of cherry-picking raw dependencies.
package orgsync

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/hay-kot/orgsync/internal/core/config"
	"github.com/hay-kot/orgsync/internal/github"
	"github.com/hay-kot/orgsync/pkg/executil"
)

// Remote is the issue tracker surface the services need.
type Remote interface {
	FetchAll(ctx context.Context) ([]github.Issue, error)
	Get(ctx context.Context, number int64) (*github.Issue, error)
	Create(ctx context.Context, req github.CreateRequest) (*github.Issue, error)
	Update(ctx context.Context, number int64, req github.UpdateRequest) (*github.Issue, error)
}

// RemoteFactory builds a Remote for one repository. Tests swap it for a
// fake.
type RemoteFactory func(ctx context.Context, token, repo string) (Remote, error)

// App is the central entry point for all orgsync operations.
type App struct {
	Config *config.Config
	Log    zerolog.Logger
	Exec   executil.Executor

	NewRemote RemoteFactory
}

// NewApp constructs an App talking to the real GitHub API.
func NewApp(cfg *config.Config, log zerolog.Logger) *App {
	return &App{
		Config: cfg,
		Log:    log,
		Exec:   &executil.RealExecutor{},
		NewRemote: func(ctx context.Context, token, repo string) (Remote, error) {
			return github.NewClient(ctx, token, repo)
		},
	}
}
