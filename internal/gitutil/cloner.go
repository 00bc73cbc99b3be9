// Package gitutil checks out the pull request head commit so the analyzers
// have a real worktree to scan.
package gitutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Cloner clones repositories into temporary directories.
type Cloner struct {
	logger *slog.Logger
}

func NewCloner(logger *slog.Logger) *Cloner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cloner{logger: logger}
}

// CloneAndCheckout clones repoURL into a fresh temporary directory, makes
// sure the pull request head commit is present, and checks it out. prNumber
// is used to fetch the refs/pull/N/head ref, which is the only place a fork's
// head commit is guaranteed to exist in the base repository. The returned
// cleanup removes the checkout.
func (c *Cloner) CloneAndCheckout(ctx context.Context, repoURL, sha, token string, prNumber int) (string, func(), error) {
	repoPath, err := os.MkdirTemp("", "prwarden-repo-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	cleanup := func() {
		if removeErr := os.RemoveAll(repoPath); removeErr != nil {
			c.logger.Error("failed to remove temp checkout", "path", repoPath, "error", removeErr)
		}
	}

	auth, err := authFor(repoURL, token)
	if err != nil {
		cleanup()
		return "", nil, err
	}

	c.logger.Info("cloning repository", "url", repoURL, "path", repoPath)
	repo, err := git.PlainCloneContext(ctx, repoPath, false, &git.CloneOptions{
		URL:  repoURL,
		Auth: auth,
	})
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to clone %s: %w", repoURL, err)
	}

	if prNumber > 0 {
		if err := c.fetchPullHead(ctx, repo, auth, prNumber); err != nil {
			c.logger.Warn("could not fetch pull request head ref", "pr", prNumber, "error", err)
		}
	}

	if sha != "" {
		wt, err := repo.Worktree()
		if err != nil {
			cleanup()
			return "", nil, fmt.Errorf("failed to open worktree: %w", err)
		}
		if err := wt.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(sha), Force: true}); err != nil {
			cleanup()
			return "", nil, fmt.Errorf("failed to check out %s: %w", sha, err)
		}
	}

	c.logger.Info("repository ready", "path", repoPath, "sha", sha)
	return repoPath, cleanup, nil
}

// fetchPullHead fetches refs/pull/N/head into a local tracking ref.
func (c *Cloner) fetchPullHead(ctx context.Context, repo *git.Repository, auth transport.AuthMethod, prNumber int) error {
	spec := gitconfig.RefSpec(fmt.Sprintf("refs/pull/%d/head:refs/remotes/origin/pr-%d", prNumber, prNumber))
	err := repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: "origin",
		RefSpecs:   []gitconfig.RefSpec{spec},
		Auth:       auth,
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	return err
}

// authFor builds token auth for http(s) remotes. Local paths need none, and
// anything else (ssh, file) is rejected rather than silently tried.
func authFor(repoURL, token string) (transport.AuthMethod, error) {
	if !strings.Contains(repoURL, "://") {
		return nil, nil
	}
	if !strings.HasPrefix(repoURL, "https://") && !strings.HasPrefix(repoURL, "http://") {
		return nil, fmt.Errorf("unsupported repository URL: %s", repoURL)
	}
	if token == "" {
		return nil, nil
	}
	return &githttp.BasicAuth{Username: "x-access-token", Password: token}, nil
}
