// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/prwarden/prwarden/internal/core"
)

// DraftReviewComment represents a single inline comment to be posted as part
// of a pull request review.
type DraftReviewComment struct {
	Path string
	Line int
	Body string
}

// Client defines the set of GitHub operations the pipeline needs: reading a
// pull request and its changed files, and the two publish channels.
//
//go:generate mockgen -destination=../mocks/mock_github_client.go -package=mocks . Client
type Client interface {
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)
	GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]core.DiffEntry, error)
	CreateReview(ctx context.Context, owner, repo string, number int, commitSHA, body string, comments []DraftReviewComment) (string, error)
	CreateComment(ctx context.Context, owner, repo string, number int, body string) (string, error)
}

type gitHubClient struct {
	client *github.Client
	logger *slog.Logger
}

// NewClient wraps an already-constructed go-github client. Used by tests to
// point at an httptest server.
func NewClient(client *github.Client, logger *slog.Logger) Client {
	return &gitHubClient{client: client, logger: logger}
}

// NewTokenClient creates a client authenticated with a personal access token
// or the workflow-provided GITHUB_TOKEN.
func NewTokenClient(ctx context.Context, token string, logger *slog.Logger) Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	return &gitHubClient{client: github.NewClient(tc), logger: logger}
}

// GetPullRequest retrieves a single pull request by its number.
func (g *gitHubClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	var pr *github.PullRequest
	err := g.withRetry(ctx, "get pull request", func() error {
		var err error
		pr, _, err = g.client.PullRequests.Get(ctx, owner, repo, number)
		return err
	})
	if err != nil {
		g.logger.Error("failed to get pull request", "owner", owner, "repo", repo, "pr", number, "error", err)
		return nil, fmt.Errorf("%w: %w", core.ErrSourceUnavailable, err)
	}
	return pr, nil
}

// GetChangedFiles retrieves the files modified in a pull request, in the
// order GitHub returns them. It handles pagination automatically since the
// API returns at most 100 files per page. Files without patch text (binary
// files, pure renames) are kept with an empty patch so downstream stages can
// still report them.
func (g *gitHubClient) GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]core.DiffEntry, error) {
	var entries []core.DiffEntry
	opts := &github.ListOptions{PerPage: 100}

	for {
		var files []*github.CommitFile
		var resp *github.Response
		err := g.withRetry(ctx, "list changed files", func() error {
			var err error
			files, resp, err = g.client.PullRequests.ListFiles(ctx, owner, repo, number, opts)
			return err
		})
		if err != nil {
			g.logger.Error("failed to list files for pull request", "owner", owner, "repo", repo, "pr", number, "error", err)
			return nil, fmt.Errorf("%w: %w", core.ErrSourceUnavailable, err)
		}

		for _, file := range files {
			entries = append(entries, core.DiffEntry{
				Path:      file.GetFilename(),
				Patch:     file.GetPatch(),
				Additions: file.GetAdditions(),
				Deletions: file.GetDeletions(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return entries, nil
}

// CreateReview creates a pull request review with a summary body and inline
// comments. Not retried: a publish attempt must be all-or-nothing so a slow
// success is never followed by a duplicate.
func (g *gitHubClient) CreateReview(ctx context.Context, owner, repo string, number int, commitSHA, body string, comments []DraftReviewComment) (string, error) {
	var ghComments []*github.DraftReviewComment
	for _, c := range comments {
		ghComments = append(ghComments, &github.DraftReviewComment{
			Path: github.Ptr(c.Path),
			Line: github.Ptr(c.Line),
			Body: github.Ptr(c.Body),
		})
	}

	req := &github.PullRequestReviewRequest{
		CommitID: github.Ptr(commitSHA),
		Body:     github.Ptr(body),
		Event:    github.Ptr("COMMENT"),
		Comments: ghComments,
	}

	review, _, err := g.client.PullRequests.CreateReview(ctx, owner, repo, number, req)
	if err != nil {
		g.logger.Warn("failed to create pull request review", "owner", owner, "repo", repo, "pr", number, "error", err)
		return "", err
	}
	return review.GetHTMLURL(), nil
}

// CreateComment creates a plain comment on the pull request via the Issues
// API. This is the fallback publish channel.
func (g *gitHubClient) CreateComment(ctx context.Context, owner, repo string, number int, body string) (string, error) {
	comment, _, err := g.client.Issues.CreateComment(ctx, owner, repo, number, &github.IssueComment{Body: github.Ptr(body)})
	if err != nil {
		g.logger.Error("failed to create comment", "owner", owner, "repo", repo, "pr", number, "error", err)
		return "", err
	}
	return comment.GetHTMLURL(), nil
}

const retryBackoff = 2 * time.Second

// withRetry runs fn and retries it once after a short backoff when the
// failure looks transient (connection error or 5xx). Read-only calls only;
// writes go through exactly once.
func (g *gitHubClient) withRetry(ctx context.Context, op string, fn func() error) error {
	err := fn()
	if err == nil || !isTransient(err) {
		return err
	}

	g.logger.Warn("transient GitHub API failure, retrying once", "op", op, "error", err)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(retryBackoff):
	}
	return fn()
}

func isTransient(err error) bool {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		return ghErr.Response != nil && ghErr.Response.StatusCode >= 500
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
