// Package org defines the outline document model: a parsed org-mode file,
// its syncable headings, and the surgical edits that write changes back
// without disturbing surrounding text.
package org

import (
	"strings"
	"time"
)

// Status is the TODO lifecycle keyword on a heading.
type Status string

const (
	StatusTodo      Status = "TODO"
	StatusDoing     Status = "DOING"
	StatusBlocked   Status = "BLOCKED"
	StatusWaiting   Status = "WAITING"
	StatusDone      Status = "DONE"
	StatusCancelled Status = "CANCELLED"
)

// Keywords maps heading keywords to the Status they carry. Extra
// keywords from configuration collapse to TODO or DONE, so the engine
// only ever sees the canonical lifecycle.
type Keywords map[string]Status

// DefaultKeywords returns the built-in keyword set.
func DefaultKeywords() Keywords {
	return Keywords{
		"TODO":      StatusTodo,
		"DOING":     StatusDoing,
		"BLOCKED":   StatusBlocked,
		"WAITING":   StatusWaiting,
		"DONE":      StatusDone,
		"CANCELLED": StatusCancelled,
		"CANCELED":  StatusCancelled,
		"WONTFIX":   StatusCancelled,
	}
}

// Extend returns a copy with extra open and closed keywords added.
// Matching is uppercase; open keywords parse as TODO, closed as DONE.
func (k Keywords) Extend(open, closed []string) Keywords {
	out := make(Keywords, len(k)+len(open)+len(closed))
	for kw, st := range k {
		out[kw] = st
	}
	for _, kw := range open {
		if kw = strings.ToUpper(strings.TrimSpace(kw)); kw != "" {
			out[kw] = StatusTodo
		}
	}
	for _, kw := range closed {
		if kw = strings.ToUpper(strings.TrimSpace(kw)); kw != "" {
			out[kw] = StatusDone
		}
	}
	return out
}

// ParseStatus maps a heading keyword to a Status using the default
// keyword set. The second return is false for keywords that are not
// TODO keywords (plain headings).
func ParseStatus(keyword string) (Status, bool) {
	st, ok := DefaultKeywords()[keyword]
	return st, ok
}

// Open reports whether the status maps to an open issue state.
func (s Status) Open() bool {
	switch s {
	case StatusTodo, StatusDoing, StatusBlocked, StatusWaiting:
		return true
	default:
		return false
	}
}

// Keyword returns the canonical keyword written back to the document.
func (s Status) Keyword() string { return string(s) }

// Handle addresses one heading inside its Document. It is an index into a
// span arena owned by the Document; callers pass it back to edit operations
// and never interpret it.
type Handle int

// Item is one syncable heading.
type Item struct {
	// ID is a stable identifier: the CUSTOM_ID property when present,
	// otherwise a slug of the title. Slug-derived IDs change when the
	// title changes, so they must not be treated as cross-run stable.
	ID     string
	Title  string
	Body   string
	Status Status

	// Issue is the linked issue number from :GH_ISSUE:, 0 when unlinked.
	Issue int64
	// URL is the display URL from :GH_URL:, informational only.
	URL string

	Assignees []string
	Labels    []string

	Created *time.Time
	Updated *time.Time

	// Handle locates this heading inside its Document for edits.
	Handle Handle
}

// Linked reports whether the item carries a remote issue link.
func (it *Item) Linked() bool { return it.Issue > 0 }

// Properties written to the document's property drawers.
const (
	PropIssue    = "GH_ISSUE"
	PropURL      = "GH_URL"
	PropCustomID = "CUSTOM_ID"
	PropAssignee = "ASSIGNEE"
	PropLabels   = "LABELS"
	PropCreated  = "CREATED"
	PropUpdated  = "UPDATED"
)

// KeywordRepo is the file-level keyword naming the GitHub repository.
const KeywordRepo = "GH_REPO"
