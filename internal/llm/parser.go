package llm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/prwarden/prwarden/internal/core"
)

var (
	// Matches: ## Suggestion [path/to/file.py:123] or ## Suggestion [path/to/file.py: 123]
	suggestionHeaderRegex = regexp.MustCompile(`(?i)##\s+Suggestion\s+\[(.*?):\s*(\d+)\]`)
	severityRegex         = regexp.MustCompile(`(?i)\*\*Severity:?\*\*\s*(.*)`)
	categoryRegex         = regexp.MustCompile(`(?i)\*\*Category:?\*\*\s*(.*)`)
)

// parseMarkdownReview extracts structured review data from the model's
// Markdown output. It tolerates the usual model quirks: output wrapped in
// ```markdown fences, inconsistent heading casing, and missing sections.
// Only the summary is strictly required.
func parseMarkdownReview(markdown string) (*core.StructuredReview, error) {
	markdown = stripMarkdownFence(markdown)

	review := &core.StructuredReview{}
	lines := strings.Split(markdown, "\n")

	var section string
	var current *core.Suggestion
	var comment strings.Builder
	var summary strings.Builder

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		switch upper := strings.ToUpper(line); {
		case strings.HasPrefix(upper, "# REVIEW SUMMARY"):
			flushSuggestion(review, current, &comment)
			current = nil
			section = "SUMMARY"
			continue
		case strings.HasPrefix(upper, "# VERDICT"):
			flushSuggestion(review, current, &comment)
			current = nil
			section = "VERDICT"
			continue
		case strings.HasPrefix(upper, "# SUGGESTIONS"):
			flushSuggestion(review, current, &comment)
			current = nil
			section = "SUGGESTIONS"
			continue
		}

		if strings.HasPrefix(strings.ToLower(line), "## suggestion") {
			flushSuggestion(review, current, &comment)

			if m := suggestionHeaderRegex.FindStringSubmatch(line); len(m) == 3 {
				lineNum, _ := strconv.Atoi(m[2])
				current = &core.Suggestion{
					FilePath:   strings.TrimSpace(m[1]),
					LineNumber: lineNum,
				}
			} else {
				// Header exists but the location did not parse. Keep the
				// suggestion so its comment text is not lost.
				current = &core.Suggestion{FilePath: "unknown"}
			}
			section = "SUGGESTION"
			continue
		}

		switch section {
		case "SUMMARY":
			if line != "" && !strings.HasPrefix(line, "#") {
				if summary.Len() > 0 {
					summary.WriteString("\n")
				}
				summary.WriteString(line)
			}
		case "VERDICT":
			if line != "" && !strings.HasPrefix(line, "#") && review.Verdict == "" {
				review.Verdict = line
			}
		case "SUGGESTION":
			if current == nil {
				continue
			}
			if strings.HasPrefix(line, "**Severity") {
				if m := severityRegex.FindStringSubmatch(line); len(m) > 1 {
					current.Severity = strings.TrimSpace(m[1])
				}
				continue
			}
			if strings.HasPrefix(line, "**Category") {
				if m := categoryRegex.FindStringSubmatch(line); len(m) > 1 {
					current.Category = strings.TrimSpace(m[1])
				}
				continue
			}
			if strings.HasPrefix(line, "### Comment") {
				continue
			}
			if strings.HasPrefix(line, "### Fix") {
				comment.WriteString("\n\n**Fix:**\n")
				continue
			}
			// Preserve original indentation from lines[i] for code blocks.
			if line != "" || comment.Len() > 0 {
				comment.WriteString(lines[i] + "\n")
			}
		}
	}

	if summary.Len() > 0 {
		review.Summary = summary.String()
	}
	flushSuggestion(review, current, &comment)

	if review.Summary == "" && len(review.Suggestions) == 0 {
		return nil, fmt.Errorf("no recognized review sections in model output")
	}

	return review, nil
}

func flushSuggestion(review *core.StructuredReview, s *core.Suggestion, comment *strings.Builder) {
	if s == nil {
		return
	}
	if comment.Len() > 0 {
		s.Comment = strings.TrimSpace(comment.String())
		comment.Reset()
	}
	review.Suggestions = append(review.Suggestions, *s)
}

// stripMarkdownFence removes ```markdown ... ``` wrapping that some models
// add around their whole response.
func stripMarkdownFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```markdown") && !strings.HasPrefix(trimmed, "```md") {
		return s
	}
	idx := strings.Index(trimmed, "\n")
	if idx < 0 {
		return s
	}
	inner := trimmed[idx+1:]
	if lastFence := strings.LastIndex(inner, "```"); lastFence >= 0 {
		inner = inner[:lastFence]
	}
	return strings.TrimSpace(inner)
}
