package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/orgsync/internal/core/org"
	"github.com/hay-kot/orgsync/internal/core/snapshot"
	"github.com/hay-kot/orgsync/internal/github"
)

func planOpts() Options {
	return Options{Policy: DefaultPolicy()}
}

func baseEntry(title, body, state string, labels []string) *snapshot.Entry {
	return &snapshot.Entry{
		LocalID:    org.Slugify(title),
		Title:      title,
		BodyDigest: snapshot.Digest(body),
		State:      state,
		Labels:     labels,
	}
}

func TestPlanNoOp(t *testing.T) {
	item := org.Item{ID: "a", Title: "A", Body: "body", Status: org.StatusTodo, Issue: 1}
	issue := github.Issue{Number: 1, Title: "A", Body: "body", Open: true}

	snap := snapshot.New("o/r")
	snap.Items[1] = baseEntry("A", "body", snapshot.StateOpen, nil)

	actions := Plan([]org.Item{item}, []github.Issue{issue}, snap, planOpts())
	require.Len(t, actions, 1)
	assert.Equal(t, ActionNoOp, actions[0].Type)
}

func TestPlanPushState(t *testing.T) {
	item := org.Item{ID: "a", Title: "A", Body: "body", Status: org.StatusDone, Issue: 1}
	issue := github.Issue{Number: 1, Title: "A", Body: "body", Open: true}

	snap := snapshot.New("o/r")
	snap.Items[1] = baseEntry("A", "body", snapshot.StateOpen, nil)

	actions := Plan([]org.Item{item}, []github.Issue{issue}, snap, planOpts())
	require.Len(t, actions, 1)

	a := actions[0]
	assert.Equal(t, ActionPush, a.Type)
	require.NotNil(t, a.Push.Open)
	assert.False(t, *a.Push.Open)
	assert.Nil(t, a.Push.Title)
	assert.True(t, a.Pull.Empty())
}

func TestPlanTitleConflict(t *testing.T) {
	item := org.Item{ID: "old", Title: "Local", Body: "body", Status: org.StatusDone, Issue: 1}
	issue := github.Issue{Number: 1, Title: "Remote", Body: "body", Open: true}

	snap := snapshot.New("o/r")
	snap.Items[1] = baseEntry("Old", "body", snapshot.StateOpen, nil)

	actions := Plan([]org.Item{item}, []github.Issue{issue}, snap, planOpts())
	require.Len(t, actions, 1)

	// The state change resolved cleanly, but the title conflict blocks
	// the whole item.
	a := actions[0]
	assert.Equal(t, ActionConflict, a.Type)
	require.Len(t, a.Conflicts, 1)
	assert.Equal(t, "title", a.Conflicts[0].Field)
	assert.Equal(t, "Local", a.Conflicts[0].Local)
	assert.Equal(t, "Remote", a.Conflicts[0].Remote)
	assert.True(t, a.Push.Empty())
	assert.True(t, a.Pull.Empty())
}

func TestPlanTitleConflictOverridden(t *testing.T) {
	item := org.Item{ID: "old", Title: "Local", Body: "body", Status: org.StatusTodo, Issue: 1}
	issue := github.Issue{Number: 1, Title: "Remote", Body: "body", Open: true}

	snap := snapshot.New("o/r")
	snap.Items[1] = baseEntry("Old", "body", snapshot.StateOpen, nil)

	opts := planOpts()
	opts.Override = true

	actions := Plan([]org.Item{item}, []github.Issue{issue}, snap, opts)
	require.Len(t, actions, 1)

	a := actions[0]
	assert.Equal(t, ActionPush, a.Type)
	require.NotNil(t, a.Push.Title)
	assert.Equal(t, "Local", *a.Push.Title)
	assert.Empty(t, a.Conflicts)
}

func TestPlanLabelUnion(t *testing.T) {
	item := org.Item{
		ID: "a", Title: "A", Body: "body", Status: org.StatusTodo,
		Issue: 1, Labels: []string{"a", "b"},
	}
	issue := github.Issue{
		Number: 1, Title: "A", Body: "body", Open: true,
		Labels: []string{"a", "c"},
	}

	snap := snapshot.New("o/r")
	snap.Items[1] = baseEntry("A", "body", snapshot.StateOpen, []string{"a"})

	actions := Plan([]org.Item{item}, []github.Issue{issue}, snap, planOpts())
	require.Len(t, actions, 1)

	a := actions[0]
	assert.Equal(t, ActionPushPull, a.Type)
	require.NotNil(t, a.Push.Labels)
	assert.Equal(t, []string{"a", "b", "c"}, *a.Push.Labels)
	assert.Equal(t, []string{"a", "b", "c"}, a.Pull.Labels)
	assert.Empty(t, a.Conflicts)
}

func TestPlanLinkByTitle(t *testing.T) {
	item := org.Item{ID: "ship-v2", Title: "Ship v2", Status: org.StatusTodo}
	issue := github.Issue{Number: 7, Title: "Ship v2", Open: true, URL: "https://github.com/o/r/issues/7"}

	actions := Plan([]org.Item{item}, []github.Issue{issue}, snapshot.New("o/r"), planOpts())
	require.Len(t, actions, 1)

	a := actions[0]
	assert.Equal(t, ActionLink, a.Type)
	assert.Equal(t, int64(7), a.Number)
	require.NotNil(t, a.Remote)
	assert.Equal(t, "Ship v2", a.Remote.Title)
}

func TestPlanMatchPrefersFetchOrder(t *testing.T) {
	item := org.Item{ID: "dup", Title: "Dup", Status: org.StatusTodo}
	issues := []github.Issue{
		{Number: 3, Title: "Dup", Open: true},
		{Number: 1, Title: "Dup", Open: false},
	}

	actions := Plan([]org.Item{item}, issues, snapshot.New("o/r"), planOpts())
	require.Len(t, actions, 1)
	assert.Equal(t, int64(3), actions[0].Number)
}

func TestPlanCreate(t *testing.T) {
	item := org.Item{
		ID: "new-thing", Title: "New thing", Body: "details",
		Status: org.StatusTodo, Labels: []string{"feat"},
	}

	opts := planOpts()
	opts.DefaultLabels = []string{"synced"}

	actions := Plan([]org.Item{item}, nil, snapshot.New("o/r"), opts)
	require.Len(t, actions, 1)

	a := actions[0]
	assert.Equal(t, ActionCreate, a.Type)
	require.NotNil(t, a.Create)
	assert.Equal(t, "New thing", a.Create.Title)
	assert.Equal(t, "details", a.Create.Body)
	assert.Equal(t, []string{"feat", "synced"}, a.Create.Labels)
}

func TestPlanAdoptWithoutBase(t *testing.T) {
	// Linked in the document but never reconciled: adopt the remote
	// values, never diff against an absent base.
	item := org.Item{ID: "a", Title: "Local title", Body: "local", Status: org.StatusDone, Issue: 4}
	issue := github.Issue{Number: 4, Title: "Remote title", Body: "remote", Open: true}

	actions := Plan([]org.Item{item}, []github.Issue{issue}, snapshot.New("o/r"), planOpts())
	require.Len(t, actions, 1)
	assert.Equal(t, ActionLink, actions[0].Type)
	assert.True(t, actions[0].Push.Empty())
	assert.True(t, actions[0].Pull.Empty())
}

func TestPlanWarnMissingRemote(t *testing.T) {
	item := org.Item{ID: "gone", Title: "Gone", Status: org.StatusTodo, Issue: 99}

	actions := Plan([]org.Item{item}, nil, snapshot.New("o/r"), planOpts())
	require.Len(t, actions, 1)
	assert.Equal(t, ActionWarn, actions[0].Type)
	assert.Contains(t, actions[0].Message, "#99")
}

func TestPlanWarnSnapshotOrphan(t *testing.T) {
	snap := snapshot.New("o/r")
	snap.Items[12] = baseEntry("Deleted heading", "body", snapshot.StateOpen, nil)

	actions := Plan(nil, nil, snap, planOpts())
	require.Len(t, actions, 1)
	assert.Equal(t, ActionWarn, actions[0].Type)
	assert.Equal(t, int64(12), actions[0].Number)
	assert.Contains(t, actions[0].Message, "unlink")
}

func TestPlanPullOnlySkipsUnlinked(t *testing.T) {
	item := org.Item{ID: "new", Title: "New", Status: org.StatusTodo}

	opts := planOpts()
	opts.Direction = PullOnly

	actions := Plan([]org.Item{item}, nil, snapshot.New("o/r"), opts)
	assert.Empty(t, actions)
}

func TestPlanPushOnlyHoldsPullFields(t *testing.T) {
	item := org.Item{ID: "a", Title: "A", Body: "new body", Status: org.StatusTodo, Issue: 1}
	issue := github.Issue{
		Number: 1, Title: "A", Body: "body", Open: true,
		Assignees: []string{"alice"},
	}

	snap := snapshot.New("o/r")
	snap.Items[1] = baseEntry("A", "body", snapshot.StateOpen, nil)

	opts := planOpts()
	opts.Direction = PushOnly

	actions := Plan([]org.Item{item}, []github.Issue{issue}, snap, opts)
	require.Len(t, actions, 1)

	a := actions[0]
	assert.Equal(t, ActionPush, a.Type)
	require.NotNil(t, a.Push.Body)
	assert.True(t, a.Pull.Empty())
	assert.Equal(t, []Field{FieldAssignees}, a.KeepBase)
}

func TestPlanIdempotent(t *testing.T) {
	// A second pass over converged replicas plans nothing but no-ops.
	item := org.Item{
		ID: "a", Title: "A", Body: "body", Status: org.StatusDone,
		Issue: 1, Assignees: []string{"bob"}, Labels: []string{"x"},
	}
	issue := github.Issue{
		Number: 1, Title: "A", Body: "body", Open: false,
		Assignees: []string{"bob"}, Labels: []string{"x"},
	}

	snap := snapshot.New("o/r")
	entry := baseEntry("A", "body", snapshot.StateClosed, []string{"x"})
	entry.Assignees = []string{"bob"}
	snap.Items[1] = entry

	for run := 0; run < 2; run++ {
		actions := Plan([]org.Item{item}, []github.Issue{issue}, snap, planOpts())
		require.Len(t, actions, 1)
		assert.Equal(t, ActionNoOp, actions[0].Type)
	}
}
