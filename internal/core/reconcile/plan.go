package reconcile

import (
	"fmt"
	"sort"

	"github.com/hay-kot/orgsync/internal/core/org"
	"github.com/hay-kot/orgsync/internal/core/snapshot"
	"github.com/hay-kot/orgsync/internal/github"
)

// ActionType is the single decision produced for one item per run.
type ActionType int

const (
	// ActionCreate opens a new remote issue for an unlinked heading.
	ActionCreate ActionType = iota
	// ActionLink ties a heading to an existing issue and seeds the
	// snapshot from the issue's current values, with no field mutation.
	ActionLink
	// ActionNoOp means every field is unchanged.
	ActionNoOp
	// ActionPush sends changed fields to the remote.
	ActionPush
	// ActionPull writes changed fields into the document.
	ActionPull
	// ActionPushPull moves disjoint field sets in both directions.
	ActionPushPull
	// ActionConflict blocks the item: at least one field needs an
	// explicit override. No mutation happens, not even for fields that
	// resolved cleanly.
	ActionConflict
	// ActionWarn reports an orphaned link or snapshot entry.
	ActionWarn
)

func (t ActionType) String() string {
	switch t {
	case ActionCreate:
		return "create"
	case ActionLink:
		return "link"
	case ActionNoOp:
		return "no-op"
	case ActionPush:
		return "push"
	case ActionPull:
		return "pull"
	case ActionPushPull:
		return "push+pull"
	case ActionConflict:
		return "conflict"
	case ActionWarn:
		return "warn"
	default:
		return "unknown"
	}
}

// Direction restricts which way a run may move data.
type Direction int

const (
	// Bidirectional moves fields both ways.
	Bidirectional Direction = iota
	// PushOnly mutates the remote only; pull-side movements are held
	// back with their base values preserved.
	PushOnly
	// PullOnly mutates the document only and never creates issues.
	PullOnly
)

// ConflictField reports both sides of an unresolved field.
type ConflictField struct {
	Field  string `json:"field"`
	Local  string `json:"local"`
	Remote string `json:"remote"`
}

// DocChanges is the pull side of an action: values to write into the
// document. Nil slices mean "leave alone".
type DocChanges struct {
	Status    *org.Status
	Assignees []string
	Labels    []string
}

// Empty reports whether there is nothing to write.
func (c DocChanges) Empty() bool {
	return c.Status == nil && c.Assignees == nil && c.Labels == nil
}

// Fields names the fields the change set carries.
func (c DocChanges) Fields() []string {
	var out []string
	if c.Status != nil {
		out = append(out, "state")
	}
	if c.Assignees != nil {
		out = append(out, "assignees")
	}
	if c.Labels != nil {
		out = append(out, "labels")
	}
	return out
}

// Action is one planned step. Exactly one is produced per local item,
// plus one Warn per orphaned snapshot entry.
type Action struct {
	Type    ActionType
	Handle  org.Handle
	LocalID string
	Title   string
	Number  int64

	Create    *github.CreateRequest
	Push      github.UpdateRequest
	Pull      DocChanges
	Conflicts []ConflictField

	// Remote is the fetched issue for linked items; its values seed the
	// snapshot record for fields that were not pushed.
	Remote *github.Issue

	// KeepBase lists fields held back this run, by the run direction or
	// by policy: their base values must survive the snapshot record so
	// the divergence is still detected next run.
	KeepBase []Field

	// Message is the human warning text for ActionWarn.
	Message string
}

// Options configures a planning pass.
type Options struct {
	Policy    Policy
	Override  bool
	Direction Direction

	// DefaultLabels are added to every created issue.
	DefaultLabels []string
}

// Plan computes one Action per local item, in document order, followed by
// a Warn per snapshot entry no longer referenced by any heading. It is a
// pure function over the three replicas; nothing is mutated.
func Plan(items []org.Item, issues []github.Issue, snap *snapshot.Snapshot, opts Options) []Action {
	byNumber := make(map[int64]*github.Issue, len(issues))
	for i := range issues {
		byNumber[issues[i].Number] = &issues[i]
	}

	var actions []Action
	linked := make(map[int64]bool, len(items))

	for i := range items {
		item := &items[i]
		if item.Linked() {
			linked[item.Issue] = true
		}
		if a, ok := planItem(item, issues, byNumber, snap, opts); ok {
			actions = append(actions, a)
		}
	}

	for _, number := range sortedNumbers(snap.Items) {
		if linked[number] {
			continue
		}
		entry := snap.Items[number]
		actions = append(actions, Action{
			Type:    ActionWarn,
			Number:  number,
			LocalID: entry.LocalID,
			Title:   entry.Title,
			Message: fmt.Sprintf("issue #%d (%s) is in the snapshot but its heading is gone; run unlink to drop it", number, entry.Title),
		})
	}

	return actions
}

func planItem(item *org.Item, issues []github.Issue, byNumber map[int64]*github.Issue, snap *snapshot.Snapshot, opts Options) (Action, bool) {
	base := Action{
		Handle:  item.Handle,
		LocalID: item.ID,
		Title:   item.Title,
		Number:  item.Issue,
	}

	if !item.Linked() {
		if opts.Direction == PullOnly {
			return Action{}, false
		}
		if matched := Match(item, issues); matched != nil {
			base.Type = ActionLink
			base.Number = matched.Number
			base.Remote = matched
			return base, true
		}
		base.Type = ActionCreate
		base.Create = &github.CreateRequest{
			Title:     item.Title,
			Body:      item.Body,
			Assignees: append([]string(nil), item.Assignees...),
			Labels:    Union(item.Labels, opts.DefaultLabels),
		}
		return base, true
	}

	issue, ok := byNumber[item.Issue]
	if !ok {
		base.Type = ActionWarn
		base.Message = fmt.Sprintf("issue #%d linked from %q but not found on GitHub", item.Issue, item.Title)
		return base, true
	}
	base.Remote = issue

	entry, ok := snap.Items[item.Issue]
	if !ok {
		// First sync for this link: adopt the remote values as the
		// common state, never diff against an absent base.
		base.Type = ActionLink
		return base, true
	}

	diff := ThreeWay(item, issue, entry)
	if !diff.Changed() {
		base.Type = ActionNoOp
		return base, true
	}

	resolveInto(&base, item, issue, diff, opts)

	switch {
	case len(base.Conflicts) > 0:
		// A single unresolved field blocks the whole item so no
		// cross-field state is half-applied.
		base.Type = ActionConflict
		base.Push = github.UpdateRequest{}
		base.Pull = DocChanges{}
	case !base.Push.Empty() && !base.Pull.Empty():
		base.Type = ActionPushPull
	case !base.Push.Empty():
		base.Type = ActionPush
	case !base.Pull.Empty():
		base.Type = ActionPull
	default:
		base.Type = ActionNoOp
	}
	return base, true
}

// Match links an unlinked heading to an issue by exact, case-sensitive
// title equality. Ties go to the first issue in fetch order (open before
// closed); the tie-break is documented, not meaningful.
func Match(item *org.Item, issues []github.Issue) *github.Issue {
	for i := range issues {
		if issues[i].Title == item.Title {
			return &issues[i]
		}
	}
	return nil
}

// resolveInto aggregates per-field resolutions into the action's push and
// pull sides. Policy is interpreted in Resolve only.
func resolveInto(a *Action, item *org.Item, issue *github.Issue, diff FieldDiff, opts Options) {
	for _, fc := range diff.Fields() {
		act := Resolve(fc.Field, fc.Change, opts.Policy.For(fc.Field), opts.Override)
		act, held := restrict(act, opts.Direction)
		if held {
			a.KeepBase = append(a.KeepBase, fc.Field)
			continue
		}

		switch act {
		case FieldNone:
			// A detected change the policy declines to move (a remote
			// title or body edit) must keep its base value too, or the
			// next run would misread the untouched local value as a
			// fresh edit and push it over the remote's.
			if fc.Change != Unchanged {
				a.KeepBase = append(a.KeepBase, fc.Field)
			}
			continue

		case FieldConflict:
			a.Conflicts = append(a.Conflicts, ConflictDetail(fc.Field, item, issue))

		case FieldPush:
			switch fc.Field {
			case FieldTitle:
				a.Push.Title = &item.Title
			case FieldBody:
				a.Push.Body = &item.Body
			case FieldState:
				open := item.Status.Open()
				a.Push.Open = &open
			case FieldAssignees:
				assignees := append([]string(nil), item.Assignees...)
				a.Push.Assignees = &assignees
			case FieldLabels:
				labels := append([]string(nil), item.Labels...)
				a.Push.Labels = &labels
			}

		case FieldPull:
			switch fc.Field {
			case FieldState:
				st := statusFor(issue.Open)
				a.Pull.Status = &st
			case FieldAssignees:
				a.Pull.Assignees = append([]string(nil), issue.Assignees...)
			case FieldLabels:
				a.Pull.Labels = append([]string(nil), issue.Labels...)
			}

		case FieldMerge:
			merged := Union(item.Labels, issue.Labels)
			a.Push.Labels = &merged
			a.Pull.Labels = merged
		}
	}
}

// restrict applies the run direction to a resolved movement. The second
// return is true when the movement was held back entirely.
func restrict(act FieldAction, dir Direction) (FieldAction, bool) {
	switch dir {
	case PushOnly:
		if act == FieldPull || act == FieldMerge {
			return FieldNone, true
		}
	case PullOnly:
		if act == FieldPush || act == FieldMerge {
			return FieldNone, true
		}
	}
	return act, false
}

// statusFor maps a pulled remote state to a document keyword. Closing
// marks DONE; reopening marks TODO. Finer-grained keywords are local
// detail the remote cannot know.
func statusFor(open bool) org.Status {
	if open {
		return org.StatusTodo
	}
	return org.StatusDone
}

// ConflictDetail renders both sides of an unresolved field for
// reporting. Bodies report the fact of change, not their content.
func ConflictDetail(f Field, item *org.Item, issue *github.Issue) ConflictField {
	fc := ConflictField{Field: f.String()}
	switch f {
	case FieldTitle:
		fc.Local, fc.Remote = item.Title, issue.Title
	case FieldBody:
		fc.Local, fc.Remote = "(changed)", "(changed)"
	case FieldState:
		fc.Local = snapshot.StateOf(item.Status.Open())
		fc.Remote = snapshot.StateOf(issue.Open)
	case FieldAssignees:
		fc.Local = joinList(item.Assignees)
		fc.Remote = joinList(issue.Assignees)
	case FieldLabels:
		fc.Local = joinList(item.Labels)
		fc.Remote = joinList(issue.Labels)
	}
	return fc
}

func joinList(vals []string) string {
	if len(vals) == 0 {
		return "(none)"
	}
	out := vals[0]
	for _, v := range vals[1:] {
		out += ", " + v
	}
	return out
}

func sortedNumbers(items map[int64]*snapshot.Entry) []int64 {
	out := make([]int64, 0, len(items))
	for n := range items {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
