package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/prwarden/prwarden/internal/github"
	"github.com/prwarden/prwarden/internal/gitutil"
	"github.com/prwarden/prwarden/internal/jobs"
	"github.com/prwarden/prwarden/internal/llm"
	"github.com/prwarden/prwarden/internal/publish"
)

var (
	dryRun  bool
	verbose bool
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	dimColor     = color.New(color.FgHiBlack)
)

var reviewCmd = &cobra.Command{
	Use:   "review [pr-url]",
	Short: "Review a pull request from your terminal",
	Long: `Review a pull request given its URL.

Clones the repository, checks out the pull request head, runs the analyzers,
and asks the local model for a review. The result is published to the pull
request unless --dry-run is given, in which case it is rendered locally.

Examples:
  prwarden review https://github.com/owner/repo/pull/123
  prwarden review --dry-run https://github.com/owner/repo/pull/123`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Render the review to the terminal instead of posting it")
	reviewCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output with timing information")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(_ *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	prURL := args[0]
	start := time.Now()

	titleColor.Println("🚀 prwarden - PR Review")
	dimColor.Printf("   Target: %s\n\n", prURL)

	owner, repoName, prNumber, err := gitutil.ParsePullRequestURL(prURL)
	if err != nil {
		return fmt.Errorf("invalid PR URL: %w\n\nExpected format: https://github.com/owner/repo/pull/123", err)
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w\n\nTip: set GITHUB_TOKEN or pass --github-token", err)
	}

	step("Fetching pull request metadata")
	client := github.NewTokenClient(ctx, cfg.GitHubToken, log)
	pr, err := client.GetPullRequest(ctx, owner, repoName, prNumber)
	if err != nil {
		return fmt.Errorf("failed to fetch PR: %w\n\nTip: check that the PR exists and your token has access", err)
	}
	change, err := github.ContextFromPullRequest(owner, repoName, prNumber, pr)
	if err != nil {
		return err
	}
	stepDetail("PR #%d: %s", change.Number, change.Title)
	stepDetail("Head SHA: %s", shortSHA(change.HeadSHA))

	step("Checking out head commit")
	cloner := gitutil.NewCloner(log)
	repoPath, cleanup, err := cloner.CloneAndCheckout(ctx, change.CloneURL, change.HeadSHA, cfg.GitHubToken, change.Number)
	if err != nil {
		return fmt.Errorf("failed to check out repository: %w", err)
	}
	defer cleanup()
	stepDetail("Path: %s", repoPath)

	reviewer, err := llm.NewClient(cfg, log)
	if err != nil {
		return err
	}

	var poster jobs.Publisher = publish.NewPoster(client, log)
	if dryRun {
		poster = newTerminalPoster()
	}

	job, err := jobs.NewReviewJob(cfg, client, reviewer, poster, log)
	if err != nil {
		return err
	}

	step("Running review")
	outcome, err := job.Run(ctx, change, repoPath)
	if err != nil {
		return err
	}

	if verbose {
		dimColor.Printf("\n⏱️  Total time: %s\n", time.Since(start).Round(time.Millisecond))
	}
	if outcome.Published() {
		successColor.Printf("\n✅ Review published: %s\n", outcome.ArtifactURL)
	}
	return nil
}

func step(name string) {
	if verbose {
		titleColor.Printf("\n🔧 %s...\n", name)
	} else {
		fmt.Printf("%s...\n", name)
	}
}

func stepDetail(format string, args ...any) {
	if verbose {
		dimColor.Printf("   └── "+format+"\n", args...)
	}
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
