// Package githubtest provides an in-memory issue service for tests.
package githubtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hay-kot/orgsync/internal/github"
)

// Fake is an in-memory stand-in for the GitHub client. Open issues sort
// before closed ones in FetchAll, matching the real fetch order.
type Fake struct {
	mu     sync.Mutex
	next   int64
	issues map[int64]github.Issue

	// Calls records every mutation in order, for assertions.
	Calls []string

	// FailOn makes the named operation ("create", "update", "fetch",
	// "get") return an error.
	FailOn map[string]error

	// Now supplies timestamps for created/updated issues.
	Now func() time.Time
}

// NewFake returns an empty fake service.
func NewFake() *Fake {
	return &Fake{
		next:   1,
		issues: map[int64]github.Issue{},
		FailOn: map[string]error{},
		Now:    func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) },
	}
}

// Seed inserts an issue as-is, assigning the next number when unset.
func (f *Fake) Seed(is github.Issue) github.Issue {
	f.mu.Lock()
	defer f.mu.Unlock()
	if is.Number == 0 {
		is.Number = f.next
	}
	if is.Number >= f.next {
		f.next = is.Number + 1
	}
	if is.URL == "" {
		is.URL = fmt.Sprintf("https://github.com/acme/rockets/issues/%d", is.Number)
	}
	f.issues[is.Number] = is
	return is
}

// Issue returns a stored issue by number for assertions.
func (f *Fake) Issue(number int64) (github.Issue, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	is, ok := f.issues[number]
	return is, ok
}

func (f *Fake) FetchAll(_ context.Context) ([]github.Issue, error) {
	if err := f.FailOn["fetch"]; err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var open, closed []github.Issue
	for n := int64(1); n < f.next; n++ {
		is, ok := f.issues[n]
		if !ok {
			continue
		}
		if is.Open {
			open = append(open, is)
		} else {
			closed = append(closed, is)
		}
	}
	return append(open, closed...), nil
}

func (f *Fake) Get(_ context.Context, number int64) (*github.Issue, error) {
	if err := f.FailOn["get"]; err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	is, ok := f.issues[number]
	if !ok {
		return nil, fmt.Errorf("issue #%d not found", number)
	}
	return &is, nil
}

func (f *Fake) Create(_ context.Context, req github.CreateRequest) (*github.Issue, error) {
	if err := f.FailOn["create"]; err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.Now()
	is := github.Issue{
		Number:    f.next,
		Title:     req.Title,
		Body:      req.Body,
		Open:      true,
		Assignees: append([]string(nil), req.Assignees...),
		Labels:    append([]string(nil), req.Labels...),
		CreatedAt: now,
		UpdatedAt: now,
		URL:       fmt.Sprintf("https://github.com/acme/rockets/issues/%d", f.next),
	}
	f.next++
	f.issues[is.Number] = is
	f.Calls = append(f.Calls, fmt.Sprintf("create %q", req.Title))
	return &is, nil
}

func (f *Fake) Update(_ context.Context, number int64, req github.UpdateRequest) (*github.Issue, error) {
	if err := f.FailOn["update"]; err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	is, ok := f.issues[number]
	if !ok {
		return nil, fmt.Errorf("issue #%d not found", number)
	}
	if req.Title != nil {
		is.Title = *req.Title
	}
	if req.Body != nil {
		is.Body = *req.Body
	}
	if req.Open != nil {
		is.Open = *req.Open
	}
	if req.Assignees != nil {
		is.Assignees = append([]string(nil), (*req.Assignees)...)
	}
	if req.Labels != nil {
		is.Labels = append([]string(nil), (*req.Labels)...)
	}
	is.UpdatedAt = f.Now()
	f.issues[number] = is
	f.Calls = append(f.Calls, fmt.Sprintf("update #%d %v", number, req.Fields()))
	return &is, nil
}

func (f *Fake) FindByTitle(ctx context.Context, title string) (*github.Issue, error) {
	issues, err := f.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range issues {
		if issues[i].Title == title {
			return &issues[i], nil
		}
	}
	return nil, nil
}
