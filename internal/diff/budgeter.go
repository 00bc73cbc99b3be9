// Package diff bounds collected patch content to fixed character budgets so
// the review prompt stays within the model's usable context.
package diff

import (
	"strings"

	"github.com/prwarden/prwarden/internal/core"
)

const (
	truncationMarker = "\n... [patch truncated]"
	splitSeparator   = "\n...\n"
)

// Budgeter truncates diff entries to a per-file ceiling and stops emitting
// entries once a global ceiling is reached. Identical input and budgets
// always yield identical output.
type Budgeter struct {
	Global  int
	PerFile int
}

// Apply returns a new entry sequence honoring both budgets, plus the number
// of files omitted entirely. Entries keep their original order. A first file
// larger than the whole global budget is truncated rather than dropped, so
// the review always sees at least partial content when any budget remains.
func (b Budgeter) Apply(entries []core.DiffEntry) ([]core.DiffEntry, int) {
	var out []core.DiffEntry
	running := 0

	for i, entry := range entries {
		patch := entry.Patch
		truncated := false

		if len(patch) > b.PerFile {
			patch = truncatePatch(patch, b.PerFile)
			truncated = true
		}

		if running+len(patch) > b.Global {
			if len(out) > 0 {
				return out, len(entries) - i
			}
			// Global budget smaller than even one budgeted file: keep the
			// first file partially visible instead of emitting nothing.
			patch = truncatePatch(patch, b.Global)
			truncated = true
		}

		entry.Patch = patch
		entry.Truncated = truncated
		out = append(out, entry)
		running += len(patch)
	}

	return out, 0
}

// truncatePatch cuts a unified patch down to limit characters, marker
// included. It prefers dropping whole trailing hunks; when not even the first
// hunk fits, it falls back to a head/tail split so both the beginning and the
// end of the change stay visible.
func truncatePatch(patch string, limit int) string {
	if len(patch) <= limit {
		return patch
	}

	avail := limit - len(truncationMarker)
	if avail <= 0 {
		return patch[:limit]
	}

	if kept, ok := keepLeadingHunks(patch, avail); ok {
		return kept + truncationMarker
	}

	head := avail * 2 / 5
	tail := avail - head - len(splitSeparator)
	if tail <= 0 {
		return patch[:avail] + truncationMarker
	}
	return patch[:head] + splitSeparator + patch[len(patch)-tail:] + truncationMarker
}

// keepLeadingHunks returns the longest prefix of whole hunks fitting in
// avail characters. ok is false when not even the first hunk fits.
func keepLeadingHunks(patch string, avail int) (string, bool) {
	var sb strings.Builder
	kept := 0

	for _, hunk := range splitHunks(patch) {
		if sb.Len()+len(hunk) > avail {
			break
		}
		sb.WriteString(hunk)
		kept++
	}

	if kept == 0 {
		return "", false
	}
	return strings.TrimSuffix(sb.String(), "\n"), true
}

// splitHunks splits a patch into segments starting at each @@ hunk header.
// Any preamble before the first header stays attached to the first segment.
func splitHunks(patch string) []string {
	var hunks []string
	var current strings.Builder

	for _, line := range strings.SplitAfter(patch, "\n") {
		if strings.HasPrefix(line, "@@") && current.Len() > 0 && hasHunkHeader(current.String()) {
			hunks = append(hunks, current.String())
			current.Reset()
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		hunks = append(hunks, current.String())
	}
	return hunks
}

func hasHunkHeader(s string) bool {
	return strings.HasPrefix(s, "@@") || strings.Contains(s, "\n@@")
}
