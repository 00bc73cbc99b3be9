package analysis

import (
	"encoding/json"
	"fmt"

	"github.com/prwarden/prwarden/internal/core"
)

// Tool output is parsed into fixed typed records here at the boundary.
// Entries missing a path or message are dropped instead of propagated.

type semgrepOutput struct {
	Results []struct {
		CheckID string `json:"check_id"`
		Path    string `json:"path"`
		Start   struct {
			Line int `json:"line"`
		} `json:"start"`
		Extra struct {
			Message  string `json:"message"`
			Severity string `json:"severity"`
		} `json:"extra"`
	} `json:"results"`
}

func parseSemgrep(output []byte) ([]core.Finding, error) {
	var parsed semgrepOutput
	if err := json.Unmarshal(output, &parsed); err != nil {
		return nil, fmt.Errorf("malformed semgrep output: %w", err)
	}

	var findings []core.Finding
	for _, r := range parsed.Results {
		if r.Path == "" || r.Extra.Message == "" {
			continue
		}
		findings = append(findings, core.Finding{
			Tool:     "semgrep",
			Severity: core.NormalizeSeverity(r.Extra.Severity),
			File:     r.Path,
			Line:     r.Start.Line,
			RuleID:   r.CheckID,
			Message:  r.Extra.Message,
		})
	}
	return findings, nil
}

type banditOutput struct {
	Results []struct {
		Filename   string `json:"filename"`
		LineNumber int    `json:"line_number"`
		TestID     string `json:"test_id"`
		IssueText  string `json:"issue_text"`
		Severity   string `json:"issue_severity"`
	} `json:"results"`
}

func parseBandit(output []byte) ([]core.Finding, error) {
	var parsed banditOutput
	if err := json.Unmarshal(output, &parsed); err != nil {
		return nil, fmt.Errorf("malformed bandit output: %w", err)
	}

	var findings []core.Finding
	for _, r := range parsed.Results {
		if r.Filename == "" || r.IssueText == "" {
			continue
		}
		findings = append(findings, core.Finding{
			Tool:     "bandit",
			Severity: core.NormalizeSeverity(r.Severity),
			File:     r.Filename,
			Line:     r.LineNumber,
			RuleID:   r.TestID,
			Message:  r.IssueText,
		})
	}
	return findings, nil
}

type golangciOutput struct {
	Issues []struct {
		FromLinter string `json:"FromLinter"`
		Text       string `json:"Text"`
		Severity   string `json:"Severity"`
		Pos        struct {
			Filename string `json:"Filename"`
			Line     int    `json:"Line"`
		} `json:"Pos"`
	} `json:"Issues"`
}

func parseGolangciLint(output []byte) ([]core.Finding, error) {
	var parsed golangciOutput
	if err := json.Unmarshal(output, &parsed); err != nil {
		return nil, fmt.Errorf("malformed golangci-lint output: %w", err)
	}

	var findings []core.Finding
	for _, issue := range parsed.Issues {
		if issue.Pos.Filename == "" || issue.Text == "" {
			continue
		}
		findings = append(findings, core.Finding{
			Tool:     "golangci-lint",
			Severity: core.NormalizeSeverity(issue.Severity),
			File:     issue.Pos.Filename,
			Line:     issue.Pos.Line,
			RuleID:   issue.FromLinter,
			Message:  issue.Text,
		})
	}
	return findings, nil
}
