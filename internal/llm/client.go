// Package llm talks to the local Ollama server: a cheap readiness probe
// first, then a single bounded generation call whose output is parsed into a
// structured review. Every failure mode maps to core.ErrModelUnavailable so
// the pipeline can degrade to a static-only review instead of aborting.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sevigo/goframe/llms/ollama"

	"github.com/prwarden/prwarden/internal/config"
	"github.com/prwarden/prwarden/internal/core"
)

// State tracks where the model client is in its lifecycle for a single run.
type State string

const (
	StateProbing     State = "probing"
	StateReady       State = "ready"
	StateCompleted   State = "completed"
	StateUnavailable State = "unavailable"
)

// Reviewer produces a structured review from an assembled prompt.
type Reviewer interface {
	Review(ctx context.Context, prompt string) (*core.StructuredReview, error)
}

// Client wraps a goframe Ollama model with a readiness probe and a hard
// generation timeout.
type Client struct {
	host         string
	modelName    string
	callFn       func(ctx context.Context, prompt string) (string, error)
	probeClient  *http.Client
	readyTimeout time.Duration
	waitTimeout  time.Duration
	logger       *slog.Logger

	state State
}

var _ Reviewer = (*Client)(nil)

// NewClient builds the Ollama-backed review client. It does not contact the
// server; reachability is checked per call by the readiness probe.
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	model, err := ollama.New(
		ollama.WithServerURL(cfg.OllamaHost),
		ollama.WithModel(cfg.Model),
		ollama.WithHTTPClient(&http.Client{Timeout: cfg.ModelWaitTimeout + 30*time.Second}),
		ollama.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client for %q: %w", cfg.Model, err)
	}

	return &Client{
		host:      strings.TrimRight(cfg.OllamaHost, "/"),
		modelName: cfg.Model,
		callFn: func(ctx context.Context, prompt string) (string, error) {
			return model.Call(ctx, prompt)
		},
		probeClient:  &http.Client{Timeout: cfg.ModelReadyTimeout},
		readyTimeout: cfg.ModelReadyTimeout,
		waitTimeout:  cfg.ModelWaitTimeout,
		logger:       logger,
		state:        StateProbing,
	}, nil
}

// State reports the client's lifecycle state after the last Review call.
func (c *Client) State() State {
	return c.state
}

// Review probes the server, runs one generation bounded by the configured
// wait timeout, and parses the result. All failures after a successful probe
// are still reported as core.ErrModelUnavailable: a slow or rambling model is
// operationally the same as an absent one.
func (c *Client) Review(ctx context.Context, prompt string) (*core.StructuredReview, error) {
	c.state = StateProbing
	if err := c.probe(ctx); err != nil {
		c.state = StateUnavailable
		return nil, fmt.Errorf("%w: ollama at %s is not reachable: %w", core.ErrModelUnavailable, c.host, err)
	}
	c.state = StateReady
	c.logger.Info("model endpoint ready, requesting review",
		"model", c.modelName,
		"prompt_chars", len(prompt),
		"timeout", c.waitTimeout,
	)

	raw, err := c.generateWithTimeout(ctx, prompt)
	if err != nil {
		c.state = StateUnavailable
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: generation exceeded %s", core.ErrModelUnavailable, c.waitTimeout)
		}
		return nil, fmt.Errorf("%w: generation failed: %w", core.ErrModelUnavailable, err)
	}

	if strings.TrimSpace(raw) == "" {
		c.state = StateUnavailable
		return nil, fmt.Errorf("%w: model returned an empty response", core.ErrModelUnavailable)
	}

	review, err := parseMarkdownReview(raw)
	if err != nil {
		c.state = StateUnavailable
		c.logger.Warn("discarding unparsable model output", "chars", len(raw), "error", err)
		return nil, fmt.Errorf("%w: %w", core.ErrModelUnavailable, err)
	}

	c.state = StateCompleted
	c.logger.Info("model review parsed", "suggestions", len(review.Suggestions))
	return review, nil
}

// probe checks GET {host}/api/version with a short timeout. A fast 200 means
// the server is up; anything else is treated as unavailable.
func (c *Client) probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.readyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/version", nil)
	if err != nil {
		return fmt.Errorf("building probe request: %w", err)
	}

	resp, err := c.probeClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("probe returned status %d", resp.StatusCode)
	}
	return nil
}

// generateWithTimeout wraps the generation call with a hard timeout so a hung
// server cannot stall the pipeline past the configured wait.
func (c *Client) generateWithTimeout(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.waitTimeout)
	defer cancel()

	type result struct {
		resp string
		err  error
	}
	resultCh := make(chan result, 1)

	go func() {
		resp, err := c.callFn(ctx, prompt)
		select {
		case resultCh <- result{resp, err}:
		case <-ctx.Done():
			// Do not block the goroutine if the wait expired.
		}
	}()

	select {
	case r := <-resultCh:
		return r.resp, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
