package core

import "errors"

// Sentinel errors for the run-level failure taxonomy. Only ErrSourceUnavailable
// and ErrPublishFailed abort a run; everything else degrades locally.
var (
	// ErrSourceUnavailable means the host platform could not provide the diff.
	// Without a diff no review is possible, so this is fatal.
	ErrSourceUnavailable = errors.New("change source unavailable")

	// ErrModelUnavailable means the review model did not become ready, timed
	// out, or returned unusable output. The pipeline falls back to a
	// static-only review instead of failing.
	ErrModelUnavailable = errors.New("review model unavailable")

	// ErrPublishFailed means both the primary review channel and the fallback
	// comment channel rejected the content.
	ErrPublishFailed = errors.New("all publish channels failed")
)
