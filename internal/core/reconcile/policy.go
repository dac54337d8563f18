package reconcile

import "fmt"

// Field names a synced field.
type Field int

const (
	FieldTitle Field = iota
	FieldBody
	FieldState
	FieldAssignees
	FieldLabels
)

func (f Field) String() string {
	switch f {
	case FieldTitle:
		return "title"
	case FieldBody:
		return "body"
	case FieldState:
		return "state"
	case FieldAssignees:
		return "assignees"
	case FieldLabels:
		return "labels"
	default:
		return "unknown"
	}
}

// Resolution decides how a field's Conflict is settled.
type Resolution string

const (
	// LocalWins pushes the document's value on conflict.
	LocalWins Resolution = "local-wins"
	// RemoteWins pulls the service's value on conflict.
	RemoteWins Resolution = "remote-wins"
	// RequireOverride surfaces the conflict unless the run-level
	// override flag is set, in which case the local value is pushed.
	RequireOverride Resolution = "require-override"
	// UnionMerge merges both sets and writes the union to both sides.
	UnionMerge Resolution = "union"
)

// ParseResolution validates a configured resolution name.
func ParseResolution(s string) (Resolution, error) {
	switch Resolution(s) {
	case LocalWins, RemoteWins, RequireOverride, UnionMerge:
		return Resolution(s), nil
	default:
		return "", fmt.Errorf("unknown conflict resolution %q", s)
	}
}

// Policy maps each field to its conflict resolution.
type Policy struct {
	Title     Resolution
	Body      Resolution
	State     Resolution
	Assignees Resolution
	Labels    Resolution
}

// DefaultPolicy returns the stock policy: the document owns title and
// body but a genuine both-sides divergence still needs the override,
// state needs an explicit override, the service owns assignees, and
// label conflicts always merge by union.
func DefaultPolicy() Policy {
	return Policy{
		Title:     RequireOverride,
		Body:      RequireOverride,
		State:     RequireOverride,
		Assignees: RemoteWins,
		Labels:    UnionMerge,
	}
}

// For returns the resolution configured for a field.
func (p Policy) For(f Field) Resolution {
	switch f {
	case FieldTitle:
		return p.Title
	case FieldBody:
		return p.Body
	case FieldState:
		return p.State
	case FieldAssignees:
		return p.Assignees
	default:
		return p.Labels
	}
}

// FieldAction is the resolved movement for one field.
type FieldAction int

const (
	// FieldNone leaves the field alone.
	FieldNone FieldAction = iota
	// FieldPush writes the local value to the remote.
	FieldPush
	// FieldPull writes the remote value into the document.
	FieldPull
	// FieldMerge writes the union of both sets to both sides.
	FieldMerge
	// FieldConflict blocks the whole item pending an override.
	FieldConflict
)

// Resolve turns one field's classification into a movement. It is the
// single place policy is interpreted; the planner only aggregates.
//
// Title and body are the document's authoring surface: remote-side edits
// to them are detected but never pulled, since pulling would overwrite
// document-native content the engine does not own.
func Resolve(field Field, change Change, res Resolution, override bool) FieldAction {
	switch change {
	case Unchanged:
		return FieldNone

	case LocalChanged:
		return FieldPush

	case RemoteChanged:
		if field == FieldTitle || field == FieldBody {
			return FieldNone
		}
		return FieldPull

	case Conflict:
		switch res {
		case UnionMerge:
			return FieldMerge
		case LocalWins:
			return FieldPush
		case RemoteWins:
			if override {
				return FieldPush
			}
			return FieldPull
		default: // RequireOverride
			if override {
				return FieldPush
			}
			return FieldConflict
		}

	default:
		return FieldNone
	}
}
