package publish

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prwarden/prwarden/internal/analysis"
	"github.com/prwarden/prwarden/internal/core"
)

func TestModelReviewBodyStatistics(t *testing.T) {
	review := &core.StructuredReview{
		Summary: "Two problems found.",
		Verdict: "Approve",
		Suggestions: []core.Suggestion{
			{Severity: "High"},
			{Severity: "High"},
			{Severity: "Low"},
		},
	}

	body := ModelReviewBody(review, nil)
	assert.Contains(t, body, "✅ Verdict: Approve")
	assert.Contains(t, body, "Two problems found.")
	assert.Contains(t, body, "| 🟠 High | 2 |")
	assert.Contains(t, body, "| 🟢 Low | 1 |")
	assert.NotContains(t, body, "Critical")
	assert.NotContains(t, body, "Findings outside")
}

func TestModelReviewBodyNoVerdict(t *testing.T) {
	body := ModelReviewBody(&core.StructuredReview{Summary: "Fine."}, nil)
	assert.Contains(t, body, "📝 Automated Review")
	assert.NotContains(t, body, "Issue Statistics")
}

func TestFormatInlineCommentWrapsProseInAlert(t *testing.T) {
	sug := core.Suggestion{
		Severity: "Critical",
		Category: "Security",
		Comment:  "Never interpolate user input.\n\n```python\nquery = f\"...{user}\"\n```",
	}

	out := FormatInlineComment(sug)
	assert.True(t, strings.HasPrefix(out, "### 🔴 Critical | Security\n"))
	assert.Contains(t, out, "> [!CAUTION]\n> Never interpolate user input.")

	// The code fence stays outside the alert quoting.
	assert.Contains(t, out, "```python\nquery = f\"...{user}\"\n```")
	assert.NotContains(t, out, "> ```")
}

func TestStaticBodyNoFindings(t *testing.T) {
	result := core.ReviewResult{
		Origin:    core.OriginStatic,
		ModelNote: "model endpoint not reachable",
	}

	body := StaticBody(result, nil)
	assert.Contains(t, body, "Static Analysis Only")
	assert.Contains(t, body, "_model endpoint not reachable_")
	assert.Contains(t, body, "no findings")
	assert.NotContains(t, body, "Analyzer diagnostics")
}

func TestSeverityMappings(t *testing.T) {
	assert.Equal(t, "🔴", severityEmoji("Critical"))
	assert.Equal(t, "⚪", severityEmoji("Unknown"))
	assert.Equal(t, "🟡", findingEmoji(core.SeverityMedium))
	assert.Equal(t, "CAUTION", severityAlert("Critical"))
	assert.Equal(t, "NOTE", severityAlert("Low"))
	assert.Equal(t, "📝", verdictIcon("needs work"))
	assert.Equal(t, "🚫", verdictIcon(" request changes "))
}

func TestSplitSuggestionsByLine(t *testing.T) {
	validLines := map[string]map[int]struct{}{
		"app.py": {10: {}, 11: {}},
	}
	suggestions := []core.Suggestion{
		{FilePath: "app.py", LineNumber: 11},
		{FilePath: "./app.py", LineNumber: 10},
		{FilePath: "app.py", LineNumber: 500},
		{FilePath: "missing.py", LineNumber: 1},
	}

	logger := slog.New(slog.DiscardHandler)
	inline, offDiff := SplitSuggestionsByLine(logger, suggestions, validLines)

	require.Len(t, inline, 2)
	assert.Equal(t, 11, inline[0].LineNumber)
	assert.Equal(t, "./app.py", inline[1].FilePath)

	require.Len(t, offDiff, 2)
	assert.Equal(t, 500, offDiff[0].LineNumber)
	assert.Equal(t, "missing.py", offDiff[1].FilePath)
}

func TestSplitSuggestionsByLineNoPatchData(t *testing.T) {
	suggestions := []core.Suggestion{{FilePath: "a.py", LineNumber: 1}}

	inline, offDiff := SplitSuggestionsByLine(slog.New(slog.DiscardHandler), suggestions, nil)
	assert.Empty(t, inline)
	assert.Equal(t, suggestions, offDiff)
}

func TestStaticBodyFailureDiagnostics(t *testing.T) {
	result := core.ReviewResult{Origin: core.OriginStatic, ModelNote: "timed out"}
	failures := []analysis.ToolResult{
		{Tool: "semgrep", Err: assertErr("killed after 3m")},
	}

	body := StaticBody(result, failures)
	assert.Contains(t, body, "Analyzer diagnostics")
	assert.Contains(t, body, "`semgrep` did not complete: killed after 3m")
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
