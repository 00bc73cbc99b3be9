package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/prwarden/prwarden/internal/config"
	"github.com/prwarden/prwarden/internal/logger"
)

var githubToken string

var rootCmd = &cobra.Command{
	Use:   "prwarden",
	Short: "prwarden reviews pull requests with static analyzers and a local LLM.",
	Long: `prwarden collects a pull request diff, runs static analyzers against the
checkout, asks a locally hosted model for a structured review, and publishes
the result back to the pull request. When the model is unavailable it still
publishes the static analysis findings.`,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.PersistentFlags().StringVarP(&githubToken, "github-token", "t", "", "GitHub token (defaults to the GITHUB_TOKEN environment variable)")
}

// loadConfig reads the environment configuration. The token flag is exported
// to the environment first so validation sees it.
func loadConfig() (*config.Config, *slog.Logger, error) {
	if githubToken != "" {
		os.Setenv("GITHUB_TOKEN", githubToken)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cfg.LogLevel, cfg.LogFormat, os.Stderr), nil
}
