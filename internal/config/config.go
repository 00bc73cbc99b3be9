// Package config collects all externally supplied settings into one immutable
// value that is passed to every component, instead of components reading
// process-wide state ad hoc.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default budgets and timeouts. All of them are overridable through the
// environment without code changes.
const (
	DefaultMaxDiffBudget      = 7000
	DefaultPerFileBudget      = 2000
	DefaultMaxFindingsPerTool = 25
	DefaultMaxFindingsTotal   = 50
	DefaultPromptBudget       = 12000
)

// Config holds the application's configuration values for a single run.
type Config struct {
	GitHubToken string
	EventPath   string
	Workspace   string

	Model      string
	OllamaHost string

	MaxDiffBudget      int
	PerFileBudget      int
	MaxFindingsPerTool int
	MaxFindingsTotal   int
	PromptBudget       int

	ModelReadyTimeout time.Duration
	ModelWaitTimeout  time.Duration
	AnalyzerTimeout   time.Duration

	// Analyzers lists the enabled analyzer names. Unknown names are rejected
	// at startup rather than silently skipped mid-run.
	Analyzers []string

	// PromptTemplatePath optionally overrides the embedded review template.
	PromptTemplatePath string

	LogLevel  slog.Level
	LogFormat string
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates required fields. It uses the Viper
// library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("LLM_MODEL", "qwen2.5-coder:7b-instruct")
	v.SetDefault("OLLAMA_HOST", "http://localhost:11434")
	v.SetDefault("MAX_DIFF_BUDGET", DefaultMaxDiffBudget)
	v.SetDefault("PER_FILE_BUDGET", DefaultPerFileBudget)
	v.SetDefault("MAX_FINDINGS_PER_TOOL", DefaultMaxFindingsPerTool)
	v.SetDefault("MAX_FINDINGS_TOTAL", DefaultMaxFindingsTotal)
	v.SetDefault("PROMPT_BUDGET", DefaultPromptBudget)
	v.SetDefault("MODEL_READY_TIMEOUT", "5s")
	v.SetDefault("MODEL_WAIT_TIMEOUT", "4m")
	v.SetDefault("ANALYZER_TIMEOUT", "3m")
	v.SetDefault("ANALYZERS", "semgrep,bandit")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Debug("no .env file loaded", "error", err)
		}
	}

	cfg := &Config{
		GitHubToken:        v.GetString("GITHUB_TOKEN"),
		EventPath:          v.GetString("GITHUB_EVENT_PATH"),
		Workspace:          v.GetString("GITHUB_WORKSPACE"),
		Model:              v.GetString("LLM_MODEL"),
		OllamaHost:         v.GetString("OLLAMA_HOST"),
		MaxDiffBudget:      v.GetInt("MAX_DIFF_BUDGET"),
		PerFileBudget:      v.GetInt("PER_FILE_BUDGET"),
		MaxFindingsPerTool: v.GetInt("MAX_FINDINGS_PER_TOOL"),
		MaxFindingsTotal:   v.GetInt("MAX_FINDINGS_TOTAL"),
		PromptBudget:       v.GetInt("PROMPT_BUDGET"),
		ModelReadyTimeout:  v.GetDuration("MODEL_READY_TIMEOUT"),
		ModelWaitTimeout:   v.GetDuration("MODEL_WAIT_TIMEOUT"),
		AnalyzerTimeout:    v.GetDuration("ANALYZER_TIMEOUT"),
		Analyzers:          splitList(v.GetString("ANALYZERS")),
		PromptTemplatePath: v.GetString("PROMPT_TEMPLATE_PATH"),
		LogLevel:           parseLogLevel(v.GetString("LOG_LEVEL")),
		LogFormat:          v.GetString("LOG_FORMAT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks budget and timeout sanity. A per-file budget larger than
// the global one would make the global cap unreachable for any second file.
func (c *Config) Validate() error {
	if c.GitHubToken == "" {
		return fmt.Errorf("GITHUB_TOKEN must be set")
	}
	if c.MaxDiffBudget <= 0 {
		return fmt.Errorf("MAX_DIFF_BUDGET must be positive, got %d", c.MaxDiffBudget)
	}
	if c.PerFileBudget <= 0 {
		return fmt.Errorf("PER_FILE_BUDGET must be positive, got %d", c.PerFileBudget)
	}
	if c.PerFileBudget > c.MaxDiffBudget {
		return fmt.Errorf("PER_FILE_BUDGET (%d) cannot exceed MAX_DIFF_BUDGET (%d)", c.PerFileBudget, c.MaxDiffBudget)
	}
	if c.MaxFindingsPerTool <= 0 {
		return fmt.Errorf("MAX_FINDINGS_PER_TOOL must be positive, got %d", c.MaxFindingsPerTool)
	}
	if c.MaxFindingsTotal <= 0 {
		return fmt.Errorf("MAX_FINDINGS_TOTAL must be positive, got %d", c.MaxFindingsTotal)
	}
	if c.PromptBudget < c.MaxDiffBudget {
		return fmt.Errorf("PROMPT_BUDGET (%d) cannot be smaller than MAX_DIFF_BUDGET (%d)", c.PromptBudget, c.MaxDiffBudget)
	}
	if c.ModelReadyTimeout <= 0 || c.ModelWaitTimeout <= 0 || c.AnalyzerTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if len(c.Analyzers) == 0 {
		return fmt.Errorf("at least one analyzer must be enabled")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseLogLevel parses the log level string into a slog.Level type.
func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		return slog.LevelInfo
	default:
		slog.Warn("unrecognized log level, defaulting to info", "provided", s)
		return slog.LevelInfo
	}
}
