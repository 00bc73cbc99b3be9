package publish

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prwarden/prwarden/internal/analysis"
	"github.com/prwarden/prwarden/internal/core"
	"github.com/prwarden/prwarden/internal/github"
)

// Poster publishes a review result to a pull request. The primary channel is
// a pull request review with inline comments; when that fails for any reason
// a single plain issue comment is posted instead. Neither channel is retried.
type Poster struct {
	client github.Client
	logger *slog.Logger
}

func NewPoster(client github.Client, logger *slog.Logger) *Poster {
	return &Poster{client: client, logger: logger}
}

// Publish posts the result and reports which channel carried it. The error is
// non-nil only when both channels failed; it wraps core.ErrPublishFailed so
// the caller can map it to a non-zero exit.
func (p *Poster) Publish(ctx context.Context, change core.ChangeContext, result core.ReviewResult, entries []core.DiffEntry, failures []analysis.ToolResult) (core.PublishOutcome, error) {
	body, comments, fallbackBody := p.render(result, entries, failures)

	url, primaryErr := p.client.CreateReview(ctx, change.Owner, change.Repo, change.Number, change.HeadSHA, body, comments)
	if primaryErr == nil {
		p.logger.Info("review published", "channel", core.ChannelPrimary, "url", url)
		return core.PublishOutcome{Channel: core.ChannelPrimary, ArtifactURL: url}, nil
	}

	p.logger.Warn("review channel rejected the submission, falling back to a comment",
		"pr", change.FullName(),
		"error", primaryErr,
	)

	url, fallbackErr := p.client.CreateComment(ctx, change.Owner, change.Repo, change.Number, fallbackBody)
	if fallbackErr == nil {
		p.logger.Info("review published", "channel", core.ChannelFallback, "url", url)
		return core.PublishOutcome{Channel: core.ChannelFallback, ArtifactURL: url}, nil
	}

	return core.PublishOutcome{Channel: core.ChannelNone},
		fmt.Errorf("%w: review: %v; comment: %v", core.ErrPublishFailed, primaryErr, fallbackErr)
}

// render produces the review body, the inline comments for the primary
// channel, and the flattened body used by the comment fallback.
func (p *Poster) render(result core.ReviewResult, entries []core.DiffEntry, failures []analysis.ToolResult) (body string, comments []github.DraftReviewComment, fallbackBody string) {
	if result.Origin != core.OriginModel || result.Review == nil {
		body = StaticBody(result, failures)
		return body, nil, body
	}

	validLines := make(map[string]map[int]struct{}, len(entries))
	for _, entry := range entries {
		if entry.Patch != "" {
			validLines[entry.Path] = github.ValidCommentLines(entry.Patch)
		}
	}

	inline, offDiff := SplitSuggestionsByLine(p.logger, result.Review.Suggestions, validLines)
	for _, sug := range inline {
		comments = append(comments, github.DraftReviewComment{
			Path: sug.FilePath,
			Line: sug.LineNumber,
			Body: FormatInlineComment(sug),
		})
	}

	body = ModelReviewBody(result.Review, offDiff)
	fallbackBody = FallbackBody(result.Review, inline, offDiff)
	return body, comments, fallbackBody
}
