package github

import (
	"regexp"
	"strconv"
	"strings"
)

var hunkHeaderRegex = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

// ValidCommentLines extracts the line numbers of a unified patch that can
// receive an inline review comment: the lines present on the new side of the
// diff. The Reviews API rejects comments on any other line with a 422, so
// suggestions are filtered against this set before posting.
func ValidCommentLines(patch string) map[int]struct{} {
	valid := make(map[int]struct{})
	current := -1

	for _, line := range strings.Split(patch, "\n") {
		if strings.HasPrefix(line, "@@") {
			matches := hunkHeaderRegex.FindStringSubmatch(line)
			if len(matches) < 2 {
				current = -1
				continue
			}
			start, err := strconv.Atoi(matches[1])
			if err != nil {
				// Malformed hunk header; ignore the hunk rather than comment
				// against corrupted line numbers.
				current = -1
				continue
			}
			current = start
			continue
		}

		if current == -1 {
			continue
		}

		switch {
		case strings.HasPrefix(line, "+"), strings.HasPrefix(line, " "):
			valid[current] = struct{}{}
			current++
		case strings.HasPrefix(line, "-"):
			// Removed lines exist only on the old side.
		}
	}

	return valid
}
