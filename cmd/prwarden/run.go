package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/prwarden/prwarden/internal/github"
	"github.com/prwarden/prwarden/internal/jobs"
	"github.com/prwarden/prwarden/internal/llm"
	"github.com/prwarden/prwarden/internal/publish"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Review the pull request that triggered the current workflow run",
	Long: `Review the pull request described by the GitHub Actions event payload.

Reads the event from GITHUB_EVENT_PATH and uses the checkout at
GITHUB_WORKSPACE as the analyzers' working directory. Exits zero when the
review was published through any channel.`,
	RunE: runCI,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(runCmd)
}

func runCI(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, err := loadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if cfg.EventPath == "" {
		return fmt.Errorf("GITHUB_EVENT_PATH is not set; the run command only works inside a workflow")
	}

	change, err := github.ContextFromEventFile(cfg.EventPath)
	if err != nil {
		return fmt.Errorf("failed to read trigger event: %w", err)
	}

	client := github.NewTokenClient(ctx, cfg.GitHubToken, log)
	reviewer, err := llm.NewClient(cfg, log)
	if err != nil {
		return err
	}

	job, err := jobs.NewReviewJob(cfg, client, reviewer, publish.NewPoster(client, log), log)
	if err != nil {
		return err
	}

	if cfg.Workspace == "" {
		log.Warn("GITHUB_WORKSPACE is not set, static analysis will be skipped")
	}

	outcome, err := job.Run(ctx, change, cfg.Workspace)
	if err != nil {
		return err
	}
	if outcome.Published() {
		log.Info("review published", "channel", outcome.Channel, "url", outcome.ArtifactURL)
	}
	return nil
}
