package analysis

import "github.com/prwarden/prwarden/internal/core"

// Aggregate merges the per-tool findings into one ranked sequence: severity
// descending, then file path, then line. Identical findings from different
// tools are both retained since they represent independent corroboration.
// maxTotal caps the combined sequence separately from the per-tool caps.
func Aggregate(results []ToolResult, maxTotal int) []core.Finding {
	var merged []core.Finding
	for _, res := range results {
		merged = append(merged, res.Findings...)
	}
	return capFindings(merged, maxTotal)
}

// Failures extracts the per-tool failures for the diagnostics narrative.
func Failures(results []ToolResult) []ToolResult {
	var failed []ToolResult
	for _, res := range results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}
