package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRepoConfig(t *testing.T) {
	t.Run("missing file returns sentinel", func(t *testing.T) {
		dir := t.TempDir()
		rc, err := LoadRepoConfig(dir)
		assert.ErrorIs(t, err, ErrRepoConfigNotFound)
		assert.NotNil(t, rc)
	})

	t.Run("valid file is parsed", func(t *testing.T) {
		dir := t.TempDir()
		content := "analyzers:\n  - semgrep\nper_file_budget: 1500\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".prwarden.yml"), []byte(content), 0o600))

		rc, err := LoadRepoConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"semgrep"}, rc.Analyzers)
		assert.Equal(t, 1500, rc.PerFileBudget)
		assert.Zero(t, rc.MaxDiffBudget)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".prwarden.yml"), []byte("analyzers: [unclosed"), 0o600))

		_, err := LoadRepoConfig(dir)
		assert.ErrorIs(t, err, ErrRepoConfigParsing)
	})
}

func TestRepoConfigApply(t *testing.T) {
	base := *validConfig()

	overlay := &RepoConfig{Analyzers: []string{"bandit"}, MaxDiffBudget: 9000}
	merged := overlay.Apply(base)

	assert.Equal(t, []string{"bandit"}, merged.Analyzers)
	assert.Equal(t, 9000, merged.MaxDiffBudget)
	assert.Equal(t, base.PerFileBudget, merged.PerFileBudget)

	// base is untouched
	assert.Equal(t, []string{"semgrep", "bandit"}, base.Analyzers)
	assert.Equal(t, DefaultMaxDiffBudget, base.MaxDiffBudget)
}
