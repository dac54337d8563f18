// Package reconcile implements the three-way merge engine: per-field
// change classification, conflict-resolution policy, the per-item action
// plan, and the executor that applies it.
package reconcile

import (
	"sort"

	"github.com/hay-kot/orgsync/internal/core/org"
	"github.com/hay-kot/orgsync/internal/core/snapshot"
	"github.com/hay-kot/orgsync/internal/github"
)

// Change classifies one field against the base snapshot.
type Change int

const (
	Unchanged Change = iota
	LocalChanged
	RemoteChanged
	Conflict
)

func (c Change) String() string {
	switch c {
	case Unchanged:
		return "unchanged"
	case LocalChanged:
		return "local-changed"
	case RemoteChanged:
		return "remote-changed"
	case Conflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Classify compares a scalar field's local, remote, and base values.
// Both sides moving to the same new value is a convergent edit, classified
// LocalChanged rather than Conflict.
func Classify(local, remote, base string) Change {
	lc := local != base
	rc := remote != base

	switch {
	case !lc && !rc:
		return Unchanged
	case lc && !rc:
		return LocalChanged
	case !lc && rc:
		return RemoteChanged
	case local == remote:
		return LocalChanged
	default:
		return Conflict
	}
}

// ClassifySet compares set-valued fields by set equality: order is
// irrelevant and duplicates collapse.
func ClassifySet(local, remote, base []string) Change {
	lc := !setEqual(local, base)
	rc := !setEqual(remote, base)

	switch {
	case !lc && !rc:
		return Unchanged
	case lc && !rc:
		return LocalChanged
	case !lc && rc:
		return RemoteChanged
	case setEqual(local, remote):
		return LocalChanged
	default:
		return Conflict
	}
}

// FieldDiff holds the classification of every synced field for one item.
type FieldDiff struct {
	Title     Change
	Body      Change
	State     Change
	Assignees Change
	Labels    Change
}

// ThreeWay classifies all fields of a linked item against its base entry.
// Bodies are compared by digest only; the raw base body is never stored.
func ThreeWay(item *org.Item, issue *github.Issue, base *snapshot.Entry) FieldDiff {
	return FieldDiff{
		Title: Classify(item.Title, issue.Title, base.Title),
		Body: Classify(
			snapshot.Digest(item.Body),
			snapshot.Digest(issue.Body),
			base.BodyDigest,
		),
		State: Classify(
			snapshot.StateOf(item.Status.Open()),
			snapshot.StateOf(issue.Open),
			base.State,
		),
		Assignees: ClassifySet(item.Assignees, issue.Assignees, base.Assignees),
		Labels:    ClassifySet(item.Labels, issue.Labels, base.Labels),
	}
}

// FieldChange pairs a field with its classification.
type FieldChange struct {
	Field  Field
	Change Change
}

// Fields returns the per-field classifications in a stable order.
func (d FieldDiff) Fields() []FieldChange {
	return []FieldChange{
		{FieldTitle, d.Title},
		{FieldBody, d.Body},
		{FieldState, d.State},
		{FieldAssignees, d.Assignees},
		{FieldLabels, d.Labels},
	}
}

// Changed reports whether any field moved on either side.
func (d FieldDiff) Changed() bool {
	return d.Title != Unchanged || d.Body != Unchanged || d.State != Unchanged ||
		d.Assignees != Unchanged || d.Labels != Unchanged
}

func setEqual(a, b []string) bool {
	as := toSet(a)
	bs := toSet(b)
	if len(as) != len(bs) {
		return false
	}
	for k := range as {
		if _, ok := bs[k]; !ok {
			return false
		}
	}
	return true
}

func toSet(vals []string) map[string]struct{} {
	set := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		set[v] = struct{}{}
	}
	return set
}

// Union merges two label sets into a sorted, de-duplicated slice. The
// result is deterministic regardless of input order.
func Union(a, b []string) []string {
	set := toSet(a)
	for _, v := range b {
		set[v] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
