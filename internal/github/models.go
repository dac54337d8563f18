// Package github talks to the GitHub Issues API and defines the domain
// types the reconciliation engine sees. The engine never touches API
// wire types; it works with Issue and the two request structs.
package github

import "time"

// Issue is one tracked record fetched from the service.
type Issue struct {
	Number    int64      `json:"number"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Open      bool       `json:"open"`
	Assignees []string   `json:"assignees"`
	Labels    []string   `json:"labels"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	URL       string     `json:"url"`
}

// CreateRequest carries the fields sent when creating an issue.
type CreateRequest struct {
	Title     string
	Body      string
	Assignees []string
	Labels    []string
}

// UpdateRequest is a partial update: nil fields are left untouched.
type UpdateRequest struct {
	Title     *string
	Body      *string
	Open      *bool
	Assignees *[]string
	Labels    *[]string
}

// Empty reports whether the update would change nothing.
func (r UpdateRequest) Empty() bool {
	return r.Title == nil && r.Body == nil && r.Open == nil && r.Assignees == nil && r.Labels == nil
}

// Fields names the fields the update carries, for reporting.
func (r UpdateRequest) Fields() []string {
	var out []string
	if r.Title != nil {
		out = append(out, "title")
	}
	if r.Body != nil {
		out = append(out, "body")
	}
	if r.Open != nil {
		out = append(out, "state")
	}
	if r.Assignees != nil {
		out = append(out, "assignees")
	}
	if r.Labels != nil {
		out = append(out, "labels")
	}
	return out
}
