package orgsync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hay-kot/orgsync/internal/core/org"
	"github.com/hay-kot/orgsync/internal/core/reconcile"
	"github.com/hay-kot/orgsync/internal/core/snapshot"
	"github.com/hay-kot/orgsync/internal/github"
	"github.com/hay-kot/orgsync/internal/output"
)

// ErrNoRepo is returned when no repository can be resolved from the
// flag, the document, or the config.
var ErrNoRepo = errors.New("no repository")

// ErrNotLinked is returned when an unlink target matches no linked
// heading.
var ErrNotLinked = errors.New("not linked")

// RunOptions configures one reconciliation pass.
type RunOptions struct {
	File      string
	Repo      string
	Token     string
	DryRun    bool
	Override  bool
	Direction reconcile.Direction
}

// InitOptions configures document initialization.
type InitOptions struct {
	File string
	Repo string
}

// StatusOptions configures a read-only drift inspection.
type StatusOptions struct {
	File  string
	Repo  string
	Token string
}

// UnlinkOptions selects one linked item to sever.
type UnlinkOptions struct {
	File string
	// Target is an issue number or a case-insensitive title substring.
	Target string
	// Close also closes the remote issue, which needs credentials.
	Close bool
	Repo  string
	Token string
}

// Init prepares a document for syncing: ensures the #+GH_REPO: keyword
// and creates an empty snapshot unless one already exists. Running it
// twice is harmless.
func (a *App) Init(_ context.Context, opts InitOptions) (*output.InitReport, error) {
	doc, err := org.ParseFileWith(opts.File, a.Config.Keywords())
	if err != nil {
		return nil, err
	}

	repo := opts.Repo
	if repo == "" {
		repo = doc.Repo()
	}
	if repo == "" {
		repo = a.Config.GitHub.DefaultRepo
	}
	if repo == "" {
		return nil, fmt.Errorf("%w: pass --repo, add #+GH_REPO: to the file, or set github.default_repo", ErrNoRepo)
	}
	if _, _, err := github.SplitRepo(repo); err != nil {
		return nil, err
	}

	if doc.Repo() != repo {
		doc.SetRepo(repo)
		if err := doc.Save(); err != nil {
			return nil, err
		}
	}

	snapPath := snapshot.PathFor(opts.File)
	if _, err := os.Stat(snapPath); errors.Is(err, os.ErrNotExist) {
		if err := snapshot.New(repo).Save(opts.File); err != nil {
			return nil, err
		}
		a.Log.Info().Str("path", snapPath).Msg("created snapshot")
	} else {
		// An existing snapshot must still decode; a corrupt one is
		// surfaced here instead of failing on the first sync.
		if _, err := snapshot.Load(opts.File); err != nil {
			return nil, err
		}
	}

	return &output.InitReport{
		File:     opts.File,
		Repo:     repo,
		Snapshot: snapPath,
		Items:    len(doc.Items()),
	}, nil
}

// Reconcile runs one full pass: fetch, plan, execute, persist. On a
// partial failure the document and snapshot are still saved so finished
// work is not replayed, and the error reports where the run stopped.
func (a *App) Reconcile(ctx context.Context, opts RunOptions) (*output.SyncReport, error) {
	doc, snap, repo, err := a.open(opts.File, opts.Repo)
	if err != nil {
		return nil, err
	}

	remote, err := a.remote(ctx, opts.Token, repo)
	if err != nil {
		return nil, err
	}

	issues, err := remote.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch issues: %w", err)
	}
	a.Log.Debug().Int("count", len(issues)).Str("repo", repo).Msg("fetched issues")

	actions := reconcile.Plan(doc.Items(), issues, snap, reconcile.Options{
		Policy:        a.Config.Policy(),
		Override:      opts.Override,
		Direction:     opts.Direction,
		DefaultLabels: a.Config.Sync.DefaultLabels,
	})

	ex := &reconcile.Executor{
		Remote: remote,
		Doc:    doc,
		Snap:   snap,
		DryRun: opts.DryRun,
		Log:    a.Log,
	}
	res, execErr := ex.Execute(ctx, actions)

	if !opts.DryRun {
		if err := doc.Save(); err != nil {
			execErr = errors.Join(execErr, fmt.Errorf("save document: %w", err))
		}
		if err := snap.Save(opts.File); err != nil {
			execErr = errors.Join(execErr, fmt.Errorf("save snapshot: %w", err))
		}
	}

	return buildSyncReport(opts, repo, actions, res), execErr
}

// Status reports drift between the three replicas without mutating any
// of them.
func (a *App) Status(ctx context.Context, opts StatusOptions) (*output.StatusReport, error) {
	doc, snap, repo, err := a.open(opts.File, opts.Repo)
	if err != nil {
		return nil, err
	}

	remote, err := a.remote(ctx, opts.Token, repo)
	if err != nil {
		return nil, err
	}
	issues, err := remote.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch issues: %w", err)
	}

	byNumber := make(map[int64]*github.Issue, len(issues))
	for i := range issues {
		byNumber[issues[i].Number] = &issues[i]
	}

	report := &output.StatusReport{File: opts.File, Repo: repo}
	linked := make(map[int64]bool)

	items := doc.Items()
	for i := range items {
		item := &items[i]
		if !item.Linked() {
			report.Unlinked = append(report.Unlinked, item.Title)
			continue
		}
		report.Linked++
		linked[item.Issue] = true

		issue, ok := byNumber[item.Issue]
		if !ok {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("issue #%d linked from %q but not found on GitHub", item.Issue, item.Title))
			continue
		}
		entry, ok := snap.Items[item.Issue]
		if !ok {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("issue #%d (%s) has never been reconciled; sync will adopt the remote values", item.Issue, item.Title))
			continue
		}

		diff := reconcile.ThreeWay(item, issue, entry)
		var local, remoteFields []string
		var conflicts []output.FieldConflict
		for _, fc := range diff.Fields() {
			switch fc.Change {
			case reconcile.LocalChanged:
				local = append(local, fc.Field.String())
			case reconcile.RemoteChanged:
				remoteFields = append(remoteFields, fc.Field.String())
			case reconcile.Conflict:
				detail := reconcile.ConflictDetail(fc.Field, item, issue)
				conflicts = append(conflicts, output.FieldConflict{
					Field:  detail.Field,
					Local:  detail.Local,
					Remote: detail.Remote,
				})
			}
		}

		if len(local) > 0 {
			report.LocalChanged = append(report.LocalChanged,
				output.Drift{Issue: item.Issue, Title: item.Title, Fields: local})
		}
		if len(remoteFields) > 0 {
			report.RemoteChanged = append(report.RemoteChanged,
				output.Drift{Issue: item.Issue, Title: item.Title, Fields: remoteFields})
		}
		if len(conflicts) > 0 {
			report.Conflicts = append(report.Conflicts,
				output.Conflict{Issue: item.Issue, Title: item.Title, Fields: conflicts})
		}
	}

	for number, entry := range snap.Items {
		if !linked[number] {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("issue #%d (%s) is in the snapshot but its heading is gone; run unlink to drop it", number, entry.Title))
		}
	}
	for _, pc := range snap.PendingCreates {
		report.PendingCreates = append(report.PendingCreates, pc.Title)
	}

	return report, nil
}

// Unlink severs the link between one heading and its issue: the issue
// properties come out of the document and the snapshot entry is dropped.
// The remote issue is left open unless close is requested.
func (a *App) Unlink(ctx context.Context, opts UnlinkOptions) (*output.UnlinkReport, error) {
	doc, snap, repo, err := a.open(opts.File, opts.Repo)
	if err != nil {
		return nil, err
	}

	item, err := findLinked(doc.Items(), opts.Target)
	if err != nil {
		// A snapshot orphan has no heading left; a numeric target can
		// still drop its entry.
		if number, perr := strconv.ParseInt(opts.Target, 10, 64); perr == nil {
			if entry, ok := snap.Items[number]; ok {
				snap.Remove(number)
				if serr := snap.Save(opts.File); serr != nil {
					return nil, serr
				}
				a.Log.Info().Int64("issue", number).Msg("dropped orphaned snapshot entry")
				return &output.UnlinkReport{File: opts.File, Issue: number, Title: entry.Title}, nil
			}
		}
		return nil, err
	}
	number := item.Issue

	closed := false
	if opts.Close {
		remote, err := a.remote(ctx, opts.Token, repo)
		if err != nil {
			return nil, err
		}
		open := false
		if _, err := remote.Update(ctx, number, github.UpdateRequest{Open: &open}); err != nil {
			return nil, fmt.Errorf("close issue #%d: %w", number, err)
		}
		closed = true
	}

	if err := doc.RemoveProperty(item.Handle, org.PropIssue); err != nil {
		return nil, err
	}
	if err := doc.RemoveProperty(item.Handle, org.PropURL); err != nil {
		return nil, err
	}
	if err := doc.Save(); err != nil {
		return nil, err
	}

	snap.Remove(number)
	snap.RemovePendingCreate(item.ID)
	if err := snap.Save(opts.File); err != nil {
		return nil, err
	}

	a.Log.Info().Int64("issue", number).Str("title", item.Title).Msg("unlinked issue")
	return &output.UnlinkReport{
		File:   opts.File,
		Issue:  number,
		Title:  item.Title,
		Closed: closed,
	}, nil
}

// open loads the document and snapshot and settles which repository the
// run targets.
func (a *App) open(file, repoFlag string) (*org.Document, *snapshot.Snapshot, string, error) {
	doc, err := org.ParseFileWith(file, a.Config.Keywords())
	if err != nil {
		return nil, nil, "", err
	}

	repo := repoFlag
	if repo == "" {
		repo = doc.Repo()
	}
	if repo == "" {
		repo = a.Config.GitHub.DefaultRepo
	}
	if repo == "" {
		return nil, nil, "", fmt.Errorf("%w: run init, pass --repo, or set github.default_repo", ErrNoRepo)
	}

	snap, err := snapshot.Load(file)
	if err != nil {
		return nil, nil, "", err
	}
	if snap.Repo == "" {
		snap.Repo = repo
	} else if snap.Repo != repo {
		return nil, nil, "", fmt.Errorf("snapshot belongs to %s, not %s; remove %s to start over", snap.Repo, repo, snapshot.PathFor(file))
	}

	return doc, snap, repo, nil
}

func (a *App) remote(ctx context.Context, tokenFlag, repo string) (Remote, error) {
	token, err := a.Config.ResolveToken(ctx, a.Exec, tokenFlag)
	if err != nil {
		return nil, err
	}
	return a.NewRemote(ctx, token, repo)
}

// findLinked resolves a user-supplied target to exactly one linked item.
func findLinked(items []org.Item, target string) (*org.Item, error) {
	if target == "" {
		return nil, errors.New("no target: pass an issue number or a title substring")
	}

	if number, err := strconv.ParseInt(target, 10, 64); err == nil {
		for i := range items {
			if items[i].Issue == number {
				return &items[i], nil
			}
		}
		return nil, fmt.Errorf("%w: no heading links issue #%d", ErrNotLinked, number)
	}

	var matches []*org.Item
	needle := strings.ToLower(target)
	for i := range items {
		if !items[i].Linked() {
			continue
		}
		if strings.Contains(strings.ToLower(items[i].Title), needle) {
			matches = append(matches, &items[i])
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: no linked heading matches %q", ErrNotLinked, target)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%d linked headings match %q; use the issue number", len(matches), target)
	}
}

func buildSyncReport(opts RunOptions, repo string, actions []reconcile.Action, res *reconcile.Result) *output.SyncReport {
	report := &output.SyncReport{
		File:      opts.File,
		Repo:      repo,
		DryRun:    opts.DryRun,
		Created:   res.Created,
		Linked:    res.Linked,
		Pushed:    res.Pushed,
		Pulled:    res.Pulled,
		Unchanged: res.NoOps,
		Warnings:  res.Warnings,
	}

	for i := range actions {
		a := &actions[i]
		switch a.Type {
		case reconcile.ActionNoOp, reconcile.ActionWarn, reconcile.ActionConflict:
			continue
		}
		report.Steps = append(report.Steps, output.Step{
			Kind:  a.Type.String(),
			Issue: a.Number,
			Title: a.Title,
			Push:  a.Push.Fields(),
			Pull:  a.Pull.Fields(),
		})
	}

	for i := range res.Conflicts {
		c := &res.Conflicts[i]
		oc := output.Conflict{Issue: c.Number, Title: c.Title}
		for _, f := range c.Conflicts {
			oc.Fields = append(oc.Fields, output.FieldConflict{
				Field:  f.Field,
				Local:  f.Local,
				Remote: f.Remote,
			})
		}
		report.Conflicts = append(report.Conflicts, oc)
	}

	return report
}
