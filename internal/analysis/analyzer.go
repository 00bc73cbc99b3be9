// Package analysis runs external static-analysis tools against a repository
// checkout and turns their JSON output into normalized findings. Tool
// failures degrade to an empty contribution; they never abort the pipeline.
package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prwarden/prwarden/internal/core"
)

// ParseFunc converts a tool's raw stdout into findings. Implementations
// validate shape at this boundary and drop entries that don't match, so the
// rest of the pipeline never handles untyped data.
type ParseFunc func(output []byte) ([]core.Finding, error)

// Analyzer describes one external tool invocation. Args are relative to the
// repository root, which is set as the working directory at run time.
type Analyzer struct {
	Name    string
	Command string
	Args    []string
	Parse   ParseFunc
}

// registry holds the built-in analyzer definitions. Semgrep and Bandit exit
// with code 1 when findings exist, which the runner treats as success.
var registry = map[string]Analyzer{
	"semgrep": {
		Name:    "semgrep",
		Command: "semgrep",
		Args:    []string{"--config", "auto", "--json", "--quiet", "."},
		Parse:   parseSemgrep,
	},
	"bandit": {
		Name:    "bandit",
		Command: "bandit",
		Args:    []string{"-r", "-f", "json", "-q", "."},
		Parse:   parseBandit,
	},
	"golangci-lint": {
		Name:    "golangci-lint",
		Command: "golangci-lint",
		Args:    []string{"run", "--out-format", "json", "./..."},
		Parse:   parseGolangciLint,
	},
}

// Resolve maps configured analyzer names to their definitions. Unknown names
// are an error at startup rather than a silent skip mid-run.
func Resolve(names []string) ([]Analyzer, error) {
	var analyzers []Analyzer
	for _, name := range names {
		a, ok := registry[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown analyzer %q (available: %s)", name, strings.Join(registryNames(), ", "))
		}
		analyzers = append(analyzers, a)
	}
	return analyzers, nil
}

func registryNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sortFindings orders by severity descending, then file path, then line.
// This is the relevance order used both for per-tool caps and the final
// aggregate, so dropped findings are never more severe than retained ones.
func sortFindings(findings []core.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		ri, rj := findings[i].Severity.Rank(), findings[j].Severity.Rank()
		if ri != rj {
			return ri > rj
		}
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		return findings[i].Line < findings[j].Line
	})
}

// capFindings sorts by relevance and keeps at most max findings.
func capFindings(findings []core.Finding, max int) []core.Finding {
	sortFindings(findings)
	if max > 0 && len(findings) > max {
		findings = findings[:max]
	}
	return findings
}
