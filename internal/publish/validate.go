package publish

import (
	"log/slog"
	"strings"

	"github.com/prwarden/prwarden/internal/core"
)

// SplitSuggestionsByLine partitions suggestions into those that can be posted
// inline (their file and line appear on the new side of a PR patch) and those
// that cannot. The Reviews API rejects the whole review with a 422 when any
// single comment targets an invalid line, so off-diff suggestions are folded
// into the review body instead.
func SplitSuggestionsByLine(logger *slog.Logger, suggestions []core.Suggestion, validLines map[string]map[int]struct{}) (inline, offDiff []core.Suggestion) {
	if len(validLines) == 0 {
		logger.Warn("no patch line data available, folding all suggestions into the body")
		return nil, suggestions
	}

	for _, s := range suggestions {
		cleanPath := strings.TrimPrefix(s.FilePath, "./")
		lines, ok := validLines[cleanPath]
		if !ok {
			logger.Warn("suggestion targets a file outside the diff",
				"file", s.FilePath,
				"line", s.LineNumber,
			)
			offDiff = append(offDiff, s)
			continue
		}

		if _, ok := lines[s.LineNumber]; ok {
			inline = append(inline, s)
		} else {
			logger.Warn("suggestion targets a line outside the diff",
				"file", s.FilePath,
				"line", s.LineNumber,
			)
			offDiff = append(offDiff, s)
		}
	}
	return inline, offDiff
}
