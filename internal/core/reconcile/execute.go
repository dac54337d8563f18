package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hay-kot/orgsync/internal/core/org"
	"github.com/hay-kot/orgsync/internal/core/snapshot"
	"github.com/hay-kot/orgsync/internal/github"
)

// Remote is the issue tracker surface the executor needs.
type Remote interface {
	Create(ctx context.Context, req github.CreateRequest) (*github.Issue, error)
	Update(ctx context.Context, number int64, req github.UpdateRequest) (*github.Issue, error)
}

// Document is the outline surface the executor needs.
type Document interface {
	SetProperty(h org.Handle, key, value string) error
	SetStatus(h org.Handle, keyword string) error
}

// Result summarizes one executed plan.
type Result struct {
	Created   int
	Linked    int
	Pushed    int
	Pulled    int
	NoOps     int
	Conflicts []Action
	Warnings  []string
}

// Executor applies a plan to the remote, the document, and the snapshot.
// The caller owns persistence: it saves the document and the snapshot
// after Execute returns, including after a partial failure, so finished
// work is never replayed.
type Executor struct {
	Remote Remote
	Doc    Document
	Snap   *snapshot.Snapshot
	DryRun bool
	Log    zerolog.Logger
}

// Execute applies actions in plan order. The first remote or document
// failure aborts the remaining plan; the partial Result is returned
// alongside the error. In dry-run mode nothing is mutated anywhere.
func (e *Executor) Execute(ctx context.Context, actions []Action) (*Result, error) {
	res := &Result{}

	for i := range actions {
		a := &actions[i]
		if err := e.apply(ctx, a, res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (e *Executor) apply(ctx context.Context, a *Action, res *Result) error {
	switch a.Type {
	case ActionNoOp:
		res.NoOps++
		return nil

	case ActionWarn:
		res.Warnings = append(res.Warnings, a.Message)
		e.Log.Warn().Int64("issue", a.Number).Msg(a.Message)
		return nil

	case ActionConflict:
		res.Conflicts = append(res.Conflicts, *a)
		e.Log.Warn().
			Int64("issue", a.Number).
			Str("title", a.Title).
			Int("fields", len(a.Conflicts)).
			Msg("conflict, item skipped")
		return nil

	case ActionCreate:
		return e.create(ctx, a, res)

	case ActionLink:
		return e.link(a, res)

	case ActionPush, ActionPull, ActionPushPull:
		return e.move(ctx, a, res)

	default:
		return fmt.Errorf("unknown action type %d", a.Type)
	}
}

func (e *Executor) create(ctx context.Context, a *Action, res *Result) error {
	if e.DryRun {
		res.Created++
		e.Log.Info().Str("title", a.Title).Msg("would create issue")
		return nil
	}

	// Mark the create as pending before talking to the network so a
	// crash between the API call and the snapshot save is visible to
	// the next status run.
	e.Snap.AddPendingCreate(a.LocalID, a.Title)

	issue, err := e.Remote.Create(ctx, *a.Create)
	if err != nil {
		return fmt.Errorf("create issue %q: %w", a.Title, err)
	}
	if err := e.writeLink(a.Handle, issue); err != nil {
		return err
	}

	e.Snap.Record(issue.Number, a.LocalID, issue.Title, snapshot.Digest(issue.Body),
		snapshot.StateOf(issue.Open), issue.Assignees, issue.Labels, issue.UpdatedAt)

	res.Created++
	e.Log.Info().Int64("issue", issue.Number).Str("title", a.Title).Msg("created issue")
	return nil
}

func (e *Executor) link(a *Action, res *Result) error {
	if e.DryRun {
		res.Linked++
		e.Log.Info().Int64("issue", a.Number).Str("title", a.Title).Msg("would link issue")
		return nil
	}

	issue := a.Remote
	if err := e.writeLink(a.Handle, issue); err != nil {
		return err
	}

	// The issue's current values become the common base. Local edits
	// made before linking surface as local changes on the next run.
	e.Snap.Record(issue.Number, a.LocalID, issue.Title, snapshot.Digest(issue.Body),
		snapshot.StateOf(issue.Open), issue.Assignees, issue.Labels, issue.UpdatedAt)

	res.Linked++
	e.Log.Info().Int64("issue", issue.Number).Str("title", a.Title).Msg("linked issue")
	return nil
}

func (e *Executor) move(ctx context.Context, a *Action, res *Result) error {
	if e.DryRun {
		e.countMove(a, res)
		e.Log.Info().
			Int64("issue", a.Number).
			Strs("push", a.Push.Fields()).
			Strs("pull", a.Pull.Fields()).
			Msg("would sync issue")
		return nil
	}

	var old *snapshot.Entry
	if prev, ok := e.Snap.Items[a.Number]; ok {
		saved := *prev
		old = &saved
	}

	issue := a.Remote
	if !a.Push.Empty() {
		updated, err := e.Remote.Update(ctx, a.Number, a.Push)
		if err != nil {
			return fmt.Errorf("update issue #%d: %w", a.Number, err)
		}
		issue = updated
	}

	if err := e.applyPull(a); err != nil {
		return err
	}

	// The updated issue carries pushed values for pushed fields and the
	// remote's current values for everything else; after the pull the
	// document agrees with it, so its values are the new common base.
	e.Snap.Record(issue.Number, a.LocalID, issue.Title, snapshot.Digest(issue.Body),
		snapshot.StateOf(issue.Open), issue.Assignees, issue.Labels, issue.UpdatedAt)
	e.restoreHeldFields(a, old)

	e.countMove(a, res)
	e.Log.Info().
		Int64("issue", a.Number).
		Strs("push", a.Push.Fields()).
		Strs("pull", a.Pull.Fields()).
		Msg("synced issue")
	return nil
}

func (e *Executor) applyPull(a *Action) error {
	if a.Pull.Status != nil {
		if err := e.Doc.SetStatus(a.Handle, a.Pull.Status.Keyword()); err != nil {
			return fmt.Errorf("set status for issue #%d: %w", a.Number, err)
		}
	}
	if a.Pull.Assignees != nil {
		if err := e.Doc.SetProperty(a.Handle, org.PropAssignee, strings.Join(a.Pull.Assignees, ", ")); err != nil {
			return fmt.Errorf("set assignees for issue #%d: %w", a.Number, err)
		}
	}
	if a.Pull.Labels != nil {
		if err := e.Doc.SetProperty(a.Handle, org.PropLabels, strings.Join(a.Pull.Labels, ", ")); err != nil {
			return fmt.Errorf("set labels for issue #%d: %w", a.Number, err)
		}
	}
	return nil
}

func (e *Executor) writeLink(h org.Handle, issue *github.Issue) error {
	if err := e.Doc.SetProperty(h, org.PropIssue, fmt.Sprintf("%d", issue.Number)); err != nil {
		return fmt.Errorf("write issue link: %w", err)
	}
	if issue.URL != "" {
		if err := e.Doc.SetProperty(h, org.PropURL, issue.URL); err != nil {
			return fmt.Errorf("write issue url: %w", err)
		}
	}
	return nil
}

// restoreHeldFields puts the previous base values back for fields held
// this run, whether by the run direction or by policy, so a later run
// still sees the divergence.
func (e *Executor) restoreHeldFields(a *Action, old *snapshot.Entry) {
	if old == nil || len(a.KeepBase) == 0 {
		return
	}
	entry, ok := e.Snap.Items[a.Number]
	if !ok {
		return
	}
	for _, f := range a.KeepBase {
		switch f {
		case FieldTitle:
			entry.Title = old.Title
		case FieldBody:
			entry.BodyDigest = old.BodyDigest
		case FieldState:
			entry.State = old.State
		case FieldAssignees:
			entry.Assignees = old.Assignees
		case FieldLabels:
			entry.Labels = old.Labels
		}
	}
}

func (e *Executor) countMove(a *Action, res *Result) {
	if !a.Push.Empty() {
		res.Pushed++
	}
	if !a.Pull.Empty() {
		res.Pulled++
	}
}
