package github

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/go-github/v73/github"

	"github.com/prwarden/prwarden/internal/core"
)

// ContextFromEventFile reads the GitHub Actions event payload (the file named
// by GITHUB_EVENT_PATH) and transforms it into the pipeline's ChangeContext.
// It acts as an anti-corruption layer: the raw payload is validated here and
// untyped JSON never leaks past this function.
func ContextFromEventFile(path string) (core.ChangeContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.ChangeContext{}, fmt.Errorf("failed to read event payload %s: %w", path, err)
	}
	return contextFromPayload(data)
}

// ContextFromPullRequest builds a ChangeContext from an API-fetched pull
// request, for invocations that start from a URL instead of an event payload.
func ContextFromPullRequest(owner, repo string, number int, pr *github.PullRequest) (core.ChangeContext, error) {
	if pr == nil {
		return core.ChangeContext{}, fmt.Errorf("pull request %d is missing", number)
	}

	cc := core.ChangeContext{
		Owner:    owner,
		Repo:     repo,
		Number:   number,
		Title:    pr.GetTitle(),
		HeadSHA:  pr.GetHead().GetSHA(),
		BaseSHA:  pr.GetBase().GetSHA(),
		CloneURL: pr.GetBase().GetRepo().GetCloneURL(),
	}
	if err := cc.Validate(); err != nil {
		return core.ChangeContext{}, err
	}
	return cc, nil
}

func contextFromPayload(data []byte) (core.ChangeContext, error) {
	var event github.PullRequestEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return core.ChangeContext{}, fmt.Errorf("failed to parse event payload: %w", err)
	}

	pr := event.GetPullRequest()
	repo := event.GetRepo()
	if pr == nil || repo == nil {
		return core.ChangeContext{}, fmt.Errorf("event payload is not a pull request event")
	}
	if repo.GetOwner().GetLogin() == "" || repo.GetName() == "" {
		return core.ChangeContext{}, fmt.Errorf("repository or owner information is missing from the event")
	}
	if pr.GetNumber() <= 0 {
		return core.ChangeContext{}, fmt.Errorf("invalid pull request number: %d", pr.GetNumber())
	}

	cc := core.ChangeContext{
		Owner:    repo.GetOwner().GetLogin(),
		Repo:     repo.GetName(),
		Number:   pr.GetNumber(),
		Title:    pr.GetTitle(),
		HeadSHA:  pr.GetHead().GetSHA(),
		BaseSHA:  pr.GetBase().GetSHA(),
		CloneURL: repo.GetCloneURL(),
	}
	if err := cc.Validate(); err != nil {
		return core.ChangeContext{}, err
	}
	return cc, nil
}
