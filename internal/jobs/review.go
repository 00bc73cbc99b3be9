// Package jobs runs the review pipeline for a single pull request: collect
// the diff, run the analyzers, assemble the prompt, ask the model, publish.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prwarden/prwarden/internal/analysis"
	"github.com/prwarden/prwarden/internal/config"
	"github.com/prwarden/prwarden/internal/core"
	"github.com/prwarden/prwarden/internal/diff"
	"github.com/prwarden/prwarden/internal/github"
	"github.com/prwarden/prwarden/internal/llm"
	"github.com/prwarden/prwarden/internal/prompt"
)

// Publisher posts a finished review result to the pull request.
type Publisher interface {
	Publish(ctx context.Context, change core.ChangeContext, result core.ReviewResult, entries []core.DiffEntry, failures []analysis.ToolResult) (core.PublishOutcome, error)
}

// ReviewJob executes one complete review run. It holds no per-run state, but
// a single invocation reviews exactly one change.
type ReviewJob struct {
	cfg      *config.Config
	client   github.Client
	reviewer llm.Reviewer
	poster   Publisher
	builder  *prompt.Builder
	logger   *slog.Logger

	// runAnalyzers is replaceable in tests; the default resolves the
	// configured analyzers and runs them against the checkout.
	runAnalyzers func(ctx context.Context, cfg config.Config, repoPath string) ([]analysis.ToolResult, error)
}

// NewReviewJob wires the pipeline stages together.
func NewReviewJob(cfg *config.Config, client github.Client, reviewer llm.Reviewer, poster Publisher, logger *slog.Logger) (*ReviewJob, error) {
	if cfg == nil {
		panic("config cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	builder, err := prompt.NewBuilder(cfg.PromptBudget, cfg.PromptTemplatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt template: %w", err)
	}

	j := &ReviewJob{
		cfg:      cfg,
		client:   client,
		reviewer: reviewer,
		poster:   poster,
		builder:  builder,
		logger:   logger,
	}
	j.runAnalyzers = j.runResolvedAnalyzers
	return j, nil
}

// Run reviews one pull request. repoPath is a checkout of the head commit,
// used for repo-level configuration and as the analyzers' working directory.
// The returned outcome reports which publish channel carried the review; the
// error is non-nil only for run-aborting failures.
func (j *ReviewJob) Run(ctx context.Context, change core.ChangeContext, repoPath string) (core.PublishOutcome, error) {
	if err := change.Validate(); err != nil {
		return core.PublishOutcome{Channel: core.ChannelNone}, fmt.Errorf("invalid change context: %w", err)
	}

	j.logger.Info("starting review", "repo", change.FullName(), "pr", change.Number)

	change, err := j.resolveHead(ctx, change)
	if err != nil {
		return core.PublishOutcome{Channel: core.ChannelNone}, err
	}

	entries, err := j.client.GetChangedFiles(ctx, change.Owner, change.Repo, change.Number)
	if err != nil {
		return core.PublishOutcome{Channel: core.ChannelNone}, fmt.Errorf("failed to collect diff: %w", err)
	}
	if len(entries) == 0 {
		j.logger.Info("pull request has no changed files, nothing to review", "pr", change.Number)
		return core.PublishOutcome{Channel: core.ChannelNone}, nil
	}

	cfg := j.applyRepoConfig(repoPath)

	budgeter := diff.Budgeter{Global: cfg.MaxDiffBudget, PerFile: cfg.PerFileBudget}
	budgeted, omitted := budgeter.Apply(entries)
	j.logger.Info("diff budgeted",
		"files", len(entries),
		"kept", len(budgeted),
		"omitted", omitted,
	)

	results, err := j.runAnalyzers(ctx, cfg, repoPath)
	if err != nil {
		return core.PublishOutcome{Channel: core.ChannelNone}, err
	}
	findings := analysis.Aggregate(results, cfg.MaxFindingsTotal)
	failures := analysis.Failures(results)
	j.logger.Info("static analysis done", "findings", len(findings), "failed_tools", len(failures))

	result, err := j.buildResult(ctx, budgeted, omitted, findings)
	if err != nil {
		return core.PublishOutcome{Channel: core.ChannelNone}, err
	}

	outcome, err := j.poster.Publish(ctx, change, result, entries, failures)
	if err != nil {
		return outcome, err
	}

	j.logger.Info("review finished",
		"repo", change.FullName(),
		"pr", change.Number,
		"origin", result.Origin,
		"channel", outcome.Channel,
	)
	return outcome, nil
}

// buildResult asks the model for a review and degrades to a static-only
// result when the model is unavailable in any way. Only non-model errors
// (e.g. cancellation) propagate.
func (j *ReviewJob) buildResult(ctx context.Context, budgeted []core.DiffEntry, omitted int, findings []core.Finding) (core.ReviewResult, error) {
	payload := prompt.BuildPayload(budgeted, omitted, findings)
	promptText, err := j.builder.Build(payload)
	if err != nil {
		return core.ReviewResult{}, fmt.Errorf("failed to assemble prompt: %w", err)
	}

	review, err := j.reviewer.Review(ctx, promptText)
	if err != nil {
		if !errors.Is(err, core.ErrModelUnavailable) {
			return core.ReviewResult{}, err
		}
		j.logger.Warn("model review unavailable, publishing static-only review", "reason", err)
		return core.ReviewResult{
			Origin:    core.OriginStatic,
			Findings:  findings,
			ModelNote: err.Error(),
		}, nil
	}

	return core.ReviewResult{
		Origin:   core.OriginModel,
		Review:   review,
		Findings: findings,
	}, nil
}

// resolveHead fills in the head SHA from the API when the triggering event
// did not carry one. Inline review comments require the exact commit id.
func (j *ReviewJob) resolveHead(ctx context.Context, change core.ChangeContext) (core.ChangeContext, error) {
	if change.HeadSHA != "" {
		return change, nil
	}

	pr, err := j.client.GetPullRequest(ctx, change.Owner, change.Repo, change.Number)
	if err != nil {
		return change, fmt.Errorf("failed to get pull request details: %w", err)
	}
	if pr.GetHead() == nil || pr.GetHead().GetSHA() == "" {
		return change, fmt.Errorf("%w: pull request %d has no head SHA", core.ErrSourceUnavailable, change.Number)
	}
	change.HeadSHA = pr.GetHead().GetSHA()
	if change.Title == "" {
		change.Title = pr.GetTitle()
	}
	return change, nil
}

// applyRepoConfig overlays `.prwarden.yml` from the checkout onto the run
// configuration. A missing file is the normal case; a malformed one is
// reported and ignored rather than failing the run.
func (j *ReviewJob) applyRepoConfig(repoPath string) config.Config {
	cfg := *j.cfg
	if repoPath == "" {
		return cfg
	}

	rc, err := config.LoadRepoConfig(repoPath)
	if err != nil {
		if !errors.Is(err, config.ErrRepoConfigNotFound) {
			j.logger.Warn("ignoring unreadable repository config", "error", err)
		}
		return cfg
	}

	j.logger.Info("applying repository config overrides")
	return rc.Apply(cfg)
}

func (j *ReviewJob) runResolvedAnalyzers(ctx context.Context, cfg config.Config, repoPath string) ([]analysis.ToolResult, error) {
	if repoPath == "" || len(cfg.Analyzers) == 0 {
		j.logger.Warn("skipping static analysis", "checkout", repoPath != "", "analyzers", len(cfg.Analyzers))
		return nil, nil
	}

	analyzers, err := analysis.Resolve(cfg.Analyzers)
	if err != nil {
		return nil, fmt.Errorf("invalid analyzer configuration: %w", err)
	}

	runner := analysis.NewRunner(analyzers, cfg.AnalyzerTimeout, cfg.MaxFindingsPerTool, j.logger)
	return runner.Run(ctx, repoPath), nil
}
