package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/prwarden/prwarden/internal/core"
)

// ToolResult is the outcome of one analyzer invocation. A failed tool keeps
// its name and error for the diagnostics section; its findings are empty.
type ToolResult struct {
	Tool     string
	Findings []core.Finding
	Err      error
}

// Runner executes the configured analyzers against a repository checkout.
// Analyzers run concurrently since each is a read-only scan of the same
// immutable worktree; their results are joined before the pipeline proceeds.
type Runner struct {
	analyzers  []Analyzer
	timeout    time.Duration
	capPerTool int
	logger     *slog.Logger

	// execute is swapped in tests to avoid spawning real processes.
	execute func(ctx context.Context, a Analyzer, dir string) ([]byte, error)
}

// NewRunner creates a runner for the given analyzers. Each tool gets its own
// timeout; capPerTool bounds how many findings a single tool may contribute.
func NewRunner(analyzers []Analyzer, timeout time.Duration, capPerTool int, logger *slog.Logger) *Runner {
	r := &Runner{
		analyzers:  analyzers,
		timeout:    timeout,
		capPerTool: capPerTool,
		logger:     logger,
	}
	r.execute = r.runProcess
	return r
}

// Run launches every analyzer and blocks until all have completed or timed
// out individually. The returned slice preserves the configured analyzer
// order regardless of completion order.
func (r *Runner) Run(ctx context.Context, repoPath string) []ToolResult {
	results := make([]ToolResult, len(r.analyzers))

	g, ctx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	for i, a := range r.analyzers {
		g.Go(func() error {
			res := r.runOne(ctx, a, repoPath)
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; failures are carried in the results.
	_ = g.Wait()
	return results
}

func (r *Runner) runOne(ctx context.Context, a Analyzer, repoPath string) ToolResult {
	r.logger.Info("running analyzer", "tool", a.Name)
	start := time.Now()

	toolCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	output, err := r.execute(toolCtx, a, repoPath)
	if err != nil {
		r.logger.Warn("analyzer failed, continuing without its findings",
			"tool", a.Name, "error", err, "elapsed", time.Since(start).Round(time.Millisecond))
		return ToolResult{Tool: a.Name, Err: err}
	}

	findings, err := a.Parse(output)
	if err != nil {
		r.logger.Warn("analyzer produced unparsable output, continuing without its findings",
			"tool", a.Name, "error", err)
		return ToolResult{Tool: a.Name, Err: err}
	}

	total := len(findings)
	findings = capFindings(findings, r.capPerTool)
	r.logger.Info("analyzer finished",
		"tool", a.Name, "findings", total, "kept", len(findings),
		"elapsed", time.Since(start).Round(time.Millisecond))

	return ToolResult{Tool: a.Name, Findings: findings}
}

// runProcess invokes the analyzer binary with the repository root as working
// directory. Exit code 1 conventionally means "findings exist" for these
// tools and is treated as success as long as stdout is present.
func (r *Runner) runProcess(ctx context.Context, a Analyzer, dir string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, a.Command, a.Args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%s timed out: %w", a.Name, ctx.Err())
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && stdout.Len() > 0 {
			return stdout.Bytes(), nil
		}
		return nil, fmt.Errorf("%s failed: %w: %s", a.Name, err, firstLine(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func firstLine(s string) string {
	for i, c := range s {
		if c == '\n' {
			return s[:i]
		}
	}
	return s
}
