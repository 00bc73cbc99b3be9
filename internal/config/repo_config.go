package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var (
	ErrRepoConfigNotFound = errors.New("repo config file not found")
	ErrRepoConfigParsing  = errors.New("repo config parsing failed")
)

// RepoConfig holds per-repository overrides read from a .prwarden.yml file
// at the root of the reviewed checkout. Zero values mean "keep the global
// setting".
type RepoConfig struct {
	Analyzers          []string `yaml:"analyzers"`
	MaxDiffBudget      int      `yaml:"max_diff_budget"`
	PerFileBudget      int      `yaml:"per_file_budget"`
	MaxFindingsPerTool int      `yaml:"max_findings_per_tool"`
}

// LoadRepoConfig loads and parses the .prwarden.yml file from a repository
// path. A missing file is not an error condition for callers that treat the
// defaults as acceptable; they can check for ErrRepoConfigNotFound.
func LoadRepoConfig(repoPath string) (*RepoConfig, error) {
	configPath := filepath.Join(repoPath, ".prwarden.yml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &RepoConfig{}, ErrRepoConfigNotFound
		}
		return nil, fmt.Errorf("failed to read .prwarden.yml: %w", err)
	}

	rc := &RepoConfig{}
	if err := yaml.Unmarshal(data, rc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRepoConfigParsing, err)
	}
	return rc, nil
}

// Apply overlays the repo-level overrides onto a copy of the global config
// and returns it. The original config is never mutated.
func (rc *RepoConfig) Apply(cfg Config) Config {
	if len(rc.Analyzers) > 0 {
		cfg.Analyzers = rc.Analyzers
	}
	if rc.MaxDiffBudget > 0 {
		cfg.MaxDiffBudget = rc.MaxDiffBudget
	}
	if rc.PerFileBudget > 0 {
		cfg.PerFileBudget = rc.PerFileBudget
	}
	if rc.MaxFindingsPerTool > 0 {
		cfg.MaxFindingsPerTool = rc.MaxFindingsPerTool
	}
	return cfg
}
