// Package prompt composes the bounded review request sent to the model: the
// budgeted diff, the aggregated findings and a fixed instructional template.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/prwarden/prwarden/internal/core"
)

//go:embed templates/*.prompt
var promptFiles embed.FS

const (
	embeddedTemplate = "templates/review.prompt"

	findingsTruncatedMarker = "\n[findings truncated to fit the prompt budget]"
	diffTruncatedMarker     = "\n[diff truncated to fit the prompt budget]"
)

type templateData struct {
	Diffs    string
	Findings string
}

// Builder renders the final prompt and guarantees it never exceeds the
// configured character budget, template text included. Building is pure:
// identical inputs always produce byte-identical output.
type Builder struct {
	budget int
	tmpl   *template.Template
}

// NewBuilder loads the embedded review template, or the file at overridePath
// when set. The template is swappable without code changes; its wording is
// not part of the pipeline's logic.
func NewBuilder(budget int, overridePath string) (*Builder, error) {
	var content []byte
	var err error

	if overridePath != "" {
		content, err = os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt template %s: %w", overridePath, err)
		}
	} else {
		content, err = promptFiles.ReadFile(embeddedTemplate)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded prompt template: %w", err)
		}
	}

	tmpl, err := template.New("review").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("could not parse prompt template: %w", err)
	}

	return &Builder{budget: budget, tmpl: tmpl}, nil
}

// BuildPayload renders the two bounded sections from budgeted entries and
// capped findings.
func BuildPayload(entries []core.DiffEntry, omittedFiles int, findings []core.Finding) core.BudgetedPayload {
	return core.BudgetedPayload{
		DiffSection:     RenderDiffSection(entries, omittedFiles),
		FindingsSection: RenderFindingsSection(findings),
		OmittedFiles:    omittedFiles,
	}
}

// Build renders the full prompt. When the rendered result would exceed the
// budget, the findings section is trimmed before any diff content, since
// diff content carries more review value per character.
func (b *Builder) Build(payload core.BudgetedPayload) (string, error) {
	rendered, err := b.render(payload.DiffSection, payload.FindingsSection)
	if err != nil {
		return "", err
	}
	if len(rendered) <= b.budget {
		return rendered, nil
	}

	findings := shrink(payload.FindingsSection, len(rendered)-b.budget, findingsTruncatedMarker)
	rendered, err = b.render(payload.DiffSection, findings)
	if err != nil {
		return "", err
	}
	if len(rendered) <= b.budget {
		return rendered, nil
	}

	diffs := shrink(payload.DiffSection, len(rendered)-b.budget, diffTruncatedMarker)
	rendered, err = b.render(diffs, findings)
	if err != nil {
		return "", err
	}
	if len(rendered) <= b.budget {
		return rendered, nil
	}

	// Template text alone overflows the budget; hard cut as a last resort.
	return rendered[:b.budget], nil
}

func (b *Builder) render(diffs, findings string) (string, error) {
	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, templateData{Diffs: diffs, Findings: findings}); err != nil {
		return "", fmt.Errorf("failed to render prompt template: %w", err)
	}
	return buf.String(), nil
}

// shrink cuts a section by at least overshoot characters and announces the
// cut inline so the reader is never misled into assuming completeness.
func shrink(section string, overshoot int, marker string) string {
	keep := len(section) - overshoot - len(marker)
	if keep <= 0 {
		return ""
	}
	return section[:keep] + marker
}

// RenderDiffSection formats budgeted entries the way the model sees them:
// one fenced diff block per file, with a closing marker when files were
// omitted for budget reasons.
func RenderDiffSection(entries []core.DiffEntry, omittedFiles int) string {
	if len(entries) == 0 && omittedFiles == 0 {
		return "No textual changes.\n"
	}

	var sb strings.Builder
	for _, e := range entries {
		if e.Patch == "" {
			fmt.Fprintf(&sb, "### %s\n_(no textual patch: binary file or rename)_\n\n", e.Path)
			continue
		}
		fmt.Fprintf(&sb, "### %s\n```diff\n%s\n```\n\n", e.Path, e.Patch)
	}
	if omittedFiles > 0 {
		fmt.Fprintf(&sb, "_%d more changed file(s) omitted to fit the diff budget._\n", omittedFiles)
	}
	return sb.String()
}

// RenderFindingsSection formats aggregated findings as one line each,
// severity first since the list is already ranked.
func RenderFindingsSection(findings []core.Finding) string {
	if len(findings) == 0 {
		return "No static analysis findings.\n"
	}

	var sb strings.Builder
	for _, f := range findings {
		location := f.File
		if f.Line > 0 {
			location = fmt.Sprintf("%s:%d", f.File, f.Line)
		}
		fmt.Fprintf(&sb, "- [%s] %s %s at %s: %s\n", f.Severity, f.Tool, f.RuleID, location, f.Message)
	}
	return sb.String()
}
