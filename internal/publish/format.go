// Package publish renders review results into GitHub Markdown and posts them
// through the tiered channels: a pull request review first, a plain issue
// comment when the Reviews API refuses.
package publish

import (
	"fmt"
	"strings"

	"github.com/prwarden/prwarden/internal/analysis"
	"github.com/prwarden/prwarden/internal/core"
)

const bodyFooter = "\n\n<sub>Generated by prwarden</sub>"

// ModelReviewBody builds the review body for a model-produced review: verdict
// line, summary prose, a severity statistics table, and any suggestions that
// could not be attached inline because they point outside the diff.
func ModelReviewBody(review *core.StructuredReview, offDiff []core.Suggestion) string {
	var sb strings.Builder

	if review.Verdict != "" {
		fmt.Fprintf(&sb, "### %s Verdict: %s\n\n", verdictIcon(review.Verdict), review.Verdict)
	} else {
		sb.WriteString("### 📝 Automated Review\n\n")
	}

	sb.WriteString(review.Summary)
	sb.WriteString("\n")

	if len(review.Suggestions) > 0 {
		sb.WriteString("\n---\n")
		sb.WriteString("#### 📊 Issue Statistics\n\n")
		sb.WriteString("| Severity | Count |\n")
		sb.WriteString("|----------|-------|\n")

		counts := map[string]int{}
		for _, sug := range review.Suggestions {
			counts[sug.Severity]++
		}
		for _, sev := range []string{"Critical", "High", "Medium", "Low"} {
			if count := counts[sev]; count > 0 {
				fmt.Fprintf(&sb, "| %s %s | %d |\n", severityEmoji(sev), sev, count)
			}
		}
	}

	if len(offDiff) > 0 {
		sb.WriteString("\n---\n")
		sb.WriteString("#### Findings outside the changed lines\n\n")
		for _, sug := range offDiff {
			writeSuggestionProse(&sb, sug)
		}
	}

	sb.WriteString(bodyFooter)
	return sb.String()
}

// FallbackBody flattens a model review into a single comment for the issue
// channel, where inline annotations are not possible.
func FallbackBody(review *core.StructuredReview, inline, offDiff []core.Suggestion) string {
	var sb strings.Builder

	if review.Verdict != "" {
		fmt.Fprintf(&sb, "### %s Verdict: %s\n\n", verdictIcon(review.Verdict), review.Verdict)
	} else {
		sb.WriteString("### 📝 Automated Review\n\n")
	}
	sb.WriteString(review.Summary)
	sb.WriteString("\n")

	all := make([]core.Suggestion, 0, len(inline)+len(offDiff))
	all = append(all, inline...)
	all = append(all, offDiff...)
	if len(all) > 0 {
		sb.WriteString("\n---\n")
		sb.WriteString("#### Suggestions\n\n")
		for _, sug := range all {
			writeSuggestionProse(&sb, sug)
		}
	}

	sb.WriteString(bodyFooter)
	return sb.String()
}

// StaticBody builds the degraded review posted when the model never produced
// a usable answer. It says so explicitly and carries the capped analyzer
// findings plus a diagnostic line per failed tool.
func StaticBody(result core.ReviewResult, failures []analysis.ToolResult) string {
	var sb strings.Builder

	sb.WriteString("### 🤖 Automated Review (Static Analysis Only)\n\n")
	if result.ModelNote != "" {
		fmt.Fprintf(&sb, "_%s_\n\n", result.ModelNote)
	}

	if len(result.Findings) == 0 {
		sb.WriteString("Static analysis reported no findings for this change.\n")
	} else {
		fmt.Fprintf(&sb, "Static analysis reported %d finding(s):\n\n", len(result.Findings))
		for _, f := range result.Findings {
			writeFindingLine(&sb, f)
		}
	}

	if len(failures) > 0 {
		sb.WriteString("\n---\n")
		sb.WriteString("#### ⚠️ Analyzer diagnostics\n\n")
		for _, res := range failures {
			fmt.Fprintf(&sb, "- `%s` did not complete: %s\n", res.Tool, res.Err)
		}
	}

	sb.WriteString(bodyFooter)
	return sb.String()
}

// FormatInlineComment renders one suggestion as an inline review comment with
// a severity header and the body wrapped in the matching GitHub alert.
func FormatInlineComment(sug core.Suggestion) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s %s", severityEmoji(sug.Severity), sug.Severity)
	if sug.Category != "" {
		fmt.Fprintf(&sb, " | %s", sug.Category)
	}
	sb.WriteString("\n\n")

	writeAlertBody(&sb, sug.Comment, severityAlert(sug.Severity))
	return sb.String()
}

// writeAlertBody wraps prose lines in a GitHub alert block while passing code
// fences through untouched, since alert quoting inside a fence renders as
// literal "> " noise.
func writeAlertBody(sb *strings.Builder, comment, alertType string) {
	inCodeBlock := false
	insideAlert := false

	for _, line := range strings.Split(comment, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			if insideAlert {
				insideAlert = false
				sb.WriteString("\n")
			}
			inCodeBlock = !inCodeBlock
			sb.WriteString(line + "\n")
			continue
		}
		if inCodeBlock {
			sb.WriteString(line + "\n")
			continue
		}

		if !insideAlert && trimmed != "" {
			fmt.Fprintf(sb, "> [!%s]\n", alertType)
			insideAlert = true
		}
		if insideAlert {
			if trimmed == "" {
				sb.WriteString(">\n")
			} else {
				fmt.Fprintf(sb, "> %s\n", line)
			}
		}
	}
}

func writeSuggestionProse(sb *strings.Builder, sug core.Suggestion) {
	location := sug.FilePath
	if sug.LineNumber > 0 {
		location = fmt.Sprintf("%s:%d", sug.FilePath, sug.LineNumber)
	}
	fmt.Fprintf(sb, "**%s `%s`**", severityEmoji(sug.Severity), location)
	if sug.Category != "" {
		fmt.Fprintf(sb, " _(%s)_", sug.Category)
	}
	sb.WriteString("\n\n")
	sb.WriteString(sug.Comment)
	sb.WriteString("\n\n")
}

func writeFindingLine(sb *strings.Builder, f core.Finding) {
	location := f.File
	if f.Line > 0 {
		location = fmt.Sprintf("%s:%d", f.File, f.Line)
	}
	fmt.Fprintf(sb, "- %s **%s** `%s` at `%s`: %s\n",
		findingEmoji(f.Severity), f.Tool, f.RuleID, location, f.Message)
}

// verdictIcon returns an icon for the given verdict using normalized exact
// matching.
func verdictIcon(verdict string) string {
	switch strings.ToUpper(strings.TrimSpace(verdict)) {
	case "APPROVE":
		return "✅"
	case "REQUEST_CHANGES", "REQUEST CHANGES":
		return "🚫"
	case "COMMENT":
		return "💬"
	default:
		return "📝"
	}
}

// severityEmoji maps the model's severity vocabulary to a badge.
func severityEmoji(severity string) string {
	switch severity {
	case "Critical":
		return "🔴"
	case "High":
		return "🟠"
	case "Medium":
		return "🟡"
	case "Low":
		return "🟢"
	default:
		return "⚪"
	}
}

// findingEmoji maps the normalized analyzer scale to the same badges.
func findingEmoji(severity core.Severity) string {
	switch severity {
	case core.SeverityCritical:
		return "🔴"
	case core.SeverityHigh:
		return "🟠"
	case core.SeverityMedium:
		return "🟡"
	case core.SeverityLow:
		return "🟢"
	default:
		return "⚪"
	}
}

// severityAlert returns the GitHub alert type for a severity.
func severityAlert(severity string) string {
	switch severity {
	case "Critical":
		return "CAUTION"
	case "High":
		return "WARNING"
	case "Medium":
		return "IMPORTANT"
	default:
		return "NOTE"
	}
}
