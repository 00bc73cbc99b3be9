package core

import "strings"

// Severity is the normalized severity scale shared by all analyzers.
// The ordering is total: Info < Low < Medium < High < Critical.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns a numeric rank for sorting (higher = more severe).
// Unknown severities rank below Info so they are dropped first under a cap.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 5
	case SeverityHigh:
		return 4
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// NormalizeSeverity maps tool-specific severity vocabularies onto the shared
// scale. Semgrep reports INFO/WARNING/ERROR, Bandit LOW/MEDIUM/HIGH, and
// golangci-lint uses lowercase level names. Anything unrecognized becomes Low
// rather than being rejected, so a tool with an unusual vocabulary still
// contributes its findings.
func NormalizeSeverity(raw string) Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "critical", "blocker":
		return SeverityCritical
	case "error", "high":
		return SeverityHigh
	case "warning", "medium":
		return SeverityMedium
	case "low", "minor":
		return SeverityLow
	case "info", "note", "informational":
		return SeverityInfo
	default:
		return SeverityLow
	}
}

// Finding is one static-analysis result, already normalized at the tool
// boundary. Line is zero for file-level findings.
type Finding struct {
	Tool     string
	Severity Severity
	File     string
	Line     int
	RuleID   string
	Message  string
}
