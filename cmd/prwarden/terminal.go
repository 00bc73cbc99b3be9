package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"

	"github.com/prwarden/prwarden/internal/analysis"
	"github.com/prwarden/prwarden/internal/core"
	"github.com/prwarden/prwarden/internal/publish"
)

// terminalPoster renders the review to the terminal instead of posting it.
// It satisfies jobs.Publisher so --dry-run swaps it in for the real poster.
type terminalPoster struct {
	renderer *glamour.TermRenderer
}

func newTerminalPoster() *terminalPoster {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		// Fall back to raw markdown output.
		renderer = nil
	}
	return &terminalPoster{renderer: renderer}
}

func (p *terminalPoster) Publish(_ context.Context, _ core.ChangeContext, result core.ReviewResult, _ []core.DiffEntry, failures []analysis.ToolResult) (core.PublishOutcome, error) {
	var body string
	if result.Origin == core.OriginModel && result.Review != nil {
		// The fallback body flattens inline suggestions into prose, which is
		// exactly what a terminal needs.
		body = publish.FallbackBody(result.Review, result.Review.Suggestions, nil)
	} else {
		body = publish.StaticBody(result, failures)
	}

	color.New(color.FgYellow).Println("\n── dry run: review not posted ──")
	if p.renderer != nil {
		if rendered, err := p.renderer.Render(body); err == nil {
			fmt.Print(rendered)
			return core.PublishOutcome{Channel: core.ChannelNone}, nil
		}
	}
	fmt.Println(body)
	return core.PublishOutcome{Channel: core.ChannelNone}, nil
}
