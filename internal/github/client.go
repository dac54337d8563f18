package github

import (
	"context"
	"fmt"
	"strings"

	gogithub "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

// Client wraps the GitHub REST API for one repository.
type Client struct {
	api   *gogithub.Client
	owner string
	repo  string
}

// NewClient builds an authenticated client for "owner/repo".
func NewClient(ctx context.Context, token, repo string) (*Client, error) {
	owner, name, err := SplitRepo(repo)
	if err != nil {
		return nil, err
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	api := gogithub.NewClient(oauth2.NewClient(ctx, ts))

	return &Client{api: api, owner: owner, repo: name}, nil
}

// SplitRepo validates and splits an "owner/repo" spec.
func SplitRepo(repo string) (owner, name string, err error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q: expected owner/repo", repo)
	}
	return parts[0], parts[1], nil
}

// Repo returns the "owner/repo" spec the client targets.
func (c *Client) Repo() string { return c.owner + "/" + c.repo }

// FetchAll returns all open issues followed by all closed issues, in API
// order within each group. Pull requests are filtered out.
func (c *Client) FetchAll(ctx context.Context) ([]Issue, error) {
	var all []Issue
	for _, state := range []string{"open", "closed"} {
		opts := &gogithub.IssueListByRepoOptions{
			State:       state,
			ListOptions: gogithub.ListOptions{PerPage: 100},
		}
		for {
			page, resp, err := c.api.Issues.ListByRepo(ctx, c.owner, c.repo, opts)
			if err != nil {
				return nil, fmt.Errorf("list %s issues: %w", state, err)
			}
			for _, is := range page {
				if is.IsPullRequest() {
					continue
				}
				all = append(all, convertIssue(is))
			}
			if resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
		}
	}
	return all, nil
}

// Get fetches a single issue by number.
func (c *Client) Get(ctx context.Context, number int64) (*Issue, error) {
	is, _, err := c.api.Issues.Get(ctx, c.owner, c.repo, int(number))
	if err != nil {
		return nil, fmt.Errorf("get issue #%d: %w", number, err)
	}
	out := convertIssue(is)
	return &out, nil
}

// Create opens a new issue.
func (c *Client) Create(ctx context.Context, req CreateRequest) (*Issue, error) {
	ir := &gogithub.IssueRequest{Title: gogithub.Ptr(req.Title)}
	if req.Body != "" {
		ir.Body = gogithub.Ptr(req.Body)
	}
	if len(req.Assignees) > 0 {
		ir.Assignees = &req.Assignees
	}
	if len(req.Labels) > 0 {
		ir.Labels = &req.Labels
	}

	is, _, err := c.api.Issues.Create(ctx, c.owner, c.repo, ir)
	if err != nil {
		return nil, fmt.Errorf("create issue %q: %w", req.Title, err)
	}
	out := convertIssue(is)
	return &out, nil
}

// Update applies a partial update to an issue.
func (c *Client) Update(ctx context.Context, number int64, req UpdateRequest) (*Issue, error) {
	ir := &gogithub.IssueRequest{
		Title:     req.Title,
		Body:      req.Body,
		Assignees: req.Assignees,
		Labels:    req.Labels,
	}
	if req.Open != nil {
		state := "closed"
		if *req.Open {
			state = "open"
		}
		ir.State = gogithub.Ptr(state)
	}

	is, _, err := c.api.Issues.Edit(ctx, c.owner, c.repo, int(number), ir)
	if err != nil {
		return nil, fmt.Errorf("update issue #%d: %w", number, err)
	}
	out := convertIssue(is)
	return &out, nil
}

// FindByTitle returns the first issue whose title matches exactly, open
// issues before closed ones, or nil when none matches.
func (c *Client) FindByTitle(ctx context.Context, title string) (*Issue, error) {
	issues, err := c.FetchAll(ctx)
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

func convertIssue(is *gogithub.Issue) Issue {
	out := Issue{
		Number:    int64(is.GetNumber()),
		Title:     is.GetTitle(),
		Body:      is.GetBody(),
		Open:      is.GetState() == "open",
		CreatedAt: is.GetCreatedAt().Time,
		UpdatedAt: is.GetUpdatedAt().Time,
		URL:       is.GetHTMLURL(),
	}
	for _, u := range is.Assignees {
		if login := u.GetLogin(); login != "" {
			out.Assignees = append(out.Assignees, login)
		}
	}
	for _, l := range is.Labels {
		if name := l.GetName(); name != "" {
			out.Labels = append(out.Labels, name)
		}
	}
	if closed := is.GetClosedAt(); !closed.Time.IsZero() {
		t := closed.Time
		out.ClosedAt = &t
	}
	return out
}
