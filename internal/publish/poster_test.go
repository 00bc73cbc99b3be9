package publish

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/prwarden/prwarden/internal/analysis"
	"github.com/prwarden/prwarden/internal/core"
	"github.com/prwarden/prwarden/internal/github"
	"github.com/prwarden/prwarden/internal/mocks"
)

var testChange = core.ChangeContext{
	Owner:   "octo",
	Repo:    "demo",
	Number:  7,
	HeadSHA: "abc123",
}

const testPatch = `@@ -1,2 +10,4 @@
 unchanged
+added at eleven
 unchanged
+added at thirteen`

func modelResult() core.ReviewResult {
	return core.ReviewResult{
		Origin: core.OriginModel,
		Review: &core.StructuredReview{
			Summary: "Mostly fine, one bug in the retry path.",
			Verdict: "Request Changes",
			Suggestions: []core.Suggestion{
				{FilePath: "app.py", LineNumber: 11, Severity: "High", Category: "Bug", Comment: "This leaks the handle."},
				{FilePath: "app.py", LineNumber: 99, Severity: "Low", Comment: "Consider a constant."},
				{FilePath: "other.py", LineNumber: 5, Severity: "Medium", Comment: "Not part of this diff."},
			},
		},
	}
}

func testEntries() []core.DiffEntry {
	return []core.DiffEntry{{Path: "app.py", Patch: testPatch}}
}

func TestPublishPrimaryChannel(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	poster := NewPoster(client, slog.New(slog.DiscardHandler))

	var gotBody string
	var gotComments []github.DraftReviewComment
	client.EXPECT().
		CreateReview(gomock.Any(), "octo", "demo", 7, "abc123", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int, _, body string, comments []github.DraftReviewComment) (string, error) {
			gotBody = body
			gotComments = comments
			return "https://github.com/octo/demo/pull/7#pullrequestreview-1", nil
		})

	outcome, err := poster.Publish(context.Background(), testChange, modelResult(), testEntries(), nil)
	require.NoError(t, err)
	assert.Equal(t, core.ChannelPrimary, outcome.Channel)
	assert.True(t, outcome.Published())
	assert.NotEmpty(t, outcome.ArtifactURL)

	// Only the suggestion on a valid diff line becomes an inline comment.
	require.Len(t, gotComments, 1)
	assert.Equal(t, "app.py", gotComments[0].Path)
	assert.Equal(t, 11, gotComments[0].Line)
	assert.Contains(t, gotComments[0].Body, "🟠 High")
	assert.Contains(t, gotComments[0].Body, "[!WARNING]")

	// Off-diff suggestions land in the body instead.
	assert.Contains(t, gotBody, "🚫 Verdict: Request Changes")
	assert.Contains(t, gotBody, "Findings outside the changed lines")
	assert.Contains(t, gotBody, "app.py:99")
	assert.Contains(t, gotBody, "other.py:5")
	assert.Contains(t, gotBody, "Issue Statistics")
	assert.Contains(t, gotBody, "<sub>Generated by prwarden</sub>")
}

func TestPublishFallsBackToComment(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	poster := NewPoster(client, slog.New(slog.DiscardHandler))

	client.EXPECT().
		CreateReview(gomock.Any(), "octo", "demo", 7, "abc123", gomock.Any(), gomock.Any()).
		Return("", errors.New("422 Unprocessable Entity"))

	var gotBody string
	client.EXPECT().
		CreateComment(gomock.Any(), "octo", "demo", 7, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int, body string) (string, error) {
			gotBody = body
			return "https://github.com/octo/demo/pull/7#issuecomment-1", nil
		})

	outcome, err := poster.Publish(context.Background(), testChange, modelResult(), testEntries(), nil)
	require.NoError(t, err)
	assert.Equal(t, core.ChannelFallback, outcome.Channel)

	// The fallback carries every suggestion as prose, inline ones included.
	assert.Contains(t, gotBody, "app.py:11")
	assert.Contains(t, gotBody, "This leaks the handle.")
	assert.Contains(t, gotBody, "app.py:99")
}

func TestPublishBothChannelsFail(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	poster := NewPoster(client, slog.New(slog.DiscardHandler))

	client.EXPECT().
		CreateReview(gomock.Any(), "octo", "demo", 7, "abc123", gomock.Any(), gomock.Any()).
		Return("", errors.New("403 Forbidden"))
	client.EXPECT().
		CreateComment(gomock.Any(), "octo", "demo", 7, gomock.Any()).
		Return("", errors.New("403 Forbidden"))

	outcome, err := poster.Publish(context.Background(), testChange, modelResult(), testEntries(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrPublishFailed)
	assert.Equal(t, core.ChannelNone, outcome.Channel)
	assert.False(t, outcome.Published())
}

func TestPublishStaticOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	poster := NewPoster(client, slog.New(slog.DiscardHandler))

	result := core.ReviewResult{
		Origin:    core.OriginStatic,
		ModelNote: "review model unavailable: generation exceeded 4m0s",
		Findings: []core.Finding{
			{Tool: "semgrep", Severity: core.SeverityHigh, File: "app.py", Line: 3, RuleID: "sql-injection", Message: "possible SQL injection"},
		},
	}
	failures := []analysis.ToolResult{
		{Tool: "bandit", Err: errors.New("exit status 2: config not found")},
	}

	var gotBody string
	var gotComments []github.DraftReviewComment
	client.EXPECT().
		CreateReview(gomock.Any(), "octo", "demo", 7, "abc123", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int, _, body string, comments []github.DraftReviewComment) (string, error) {
			gotBody = body
			gotComments = comments
			return "url", nil
		})

	outcome, err := poster.Publish(context.Background(), testChange, result, testEntries(), failures)
	require.NoError(t, err)
	assert.Equal(t, core.ChannelPrimary, outcome.Channel)

	assert.Empty(t, gotComments, "static-only reviews post no inline comments")
	assert.Contains(t, gotBody, "Static Analysis Only")
	assert.Contains(t, gotBody, "review model unavailable")
	assert.Contains(t, gotBody, "sql-injection")
	assert.Contains(t, gotBody, "app.py:3")
	assert.Contains(t, gotBody, "`bandit` did not complete")
}
