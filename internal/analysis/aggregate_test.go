package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prwarden/prwarden/internal/core"
)

func TestAggregateOrdersAcrossTools(t *testing.T) {
	results := []ToolResult{
		{Tool: "semgrep", Findings: []core.Finding{
			{Tool: "semgrep", Severity: core.SeverityMedium, File: "b.go", Line: 10, Message: "m1"},
			{Tool: "semgrep", Severity: core.SeverityCritical, File: "z.go", Line: 1, Message: "m2"},
		}},
		{Tool: "bandit", Findings: []core.Finding{
			{Tool: "bandit", Severity: core.SeverityMedium, File: "a.go", Line: 5, Message: "m3"},
			{Tool: "bandit", Severity: core.SeverityMedium, File: "b.go", Line: 2, Message: "m4"},
		}},
	}

	merged := Aggregate(results, 50)
	require.Len(t, merged, 4)

	assert.Equal(t, core.SeverityCritical, merged[0].Severity)
	// Medium findings ordered by path, then line.
	assert.Equal(t, "a.go", merged[1].File)
	assert.Equal(t, "b.go", merged[2].File)
	assert.Equal(t, 2, merged[2].Line)
	assert.Equal(t, 10, merged[3].Line)
}

func TestAggregateKeepsCrossToolDuplicates(t *testing.T) {
	dup := core.Finding{Severity: core.SeverityHigh, File: "x.go", Line: 3, Message: "possible injection"}
	s := dup
	s.Tool = "semgrep"
	b := dup
	b.Tool = "bandit"

	merged := Aggregate([]ToolResult{
		{Tool: "semgrep", Findings: []core.Finding{s}},
		{Tool: "bandit", Findings: []core.Finding{b}},
	}, 50)

	require.Len(t, merged, 2, "independent corroboration is retained, not deduplicated")
}

func TestAggregateCombinedCap(t *testing.T) {
	var semgrep, bandit []core.Finding
	for i := 0; i < 20; i++ {
		semgrep = append(semgrep, core.Finding{Tool: "semgrep", Severity: core.SeverityHigh, File: "s.go", Line: i + 1, Message: "m"})
		bandit = append(bandit, core.Finding{Tool: "bandit", Severity: core.SeverityInfo, File: "b.py", Line: i + 1, Message: "m"})
	}

	merged := Aggregate([]ToolResult{
		{Tool: "semgrep", Findings: semgrep},
		{Tool: "bandit", Findings: bandit},
	}, 30)

	require.Len(t, merged, 30)
	for _, f := range merged[:20] {
		assert.Equal(t, core.SeverityHigh, f.Severity)
	}
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil, 50))
	assert.Empty(t, Aggregate([]ToolResult{{Tool: "semgrep"}}, 50))
}
