// Package core defines the essential data structures that flow through the
// review pipeline. These types are plain values with no behavior tied to any
// external service, so every stage can be tested with injected data.
package core

import "fmt"

// ChangeContext identifies the single change request a run operates on.
// It is constructed once from the triggering event and never mutated.
type ChangeContext struct {
	Owner    string
	Repo     string
	Number   int
	Title    string
	HeadSHA  string
	BaseSHA  string
	CloneURL string
}

// FullName returns the "owner/repo" form used in logs and artifact names.
func (c ChangeContext) FullName() string {
	return c.Owner + "/" + c.Repo
}

// Validate checks that the context carries everything the pipeline needs.
func (c ChangeContext) Validate() error {
	if c.Owner == "" {
		return fmt.Errorf("repository owner cannot be empty")
	}
	if c.Repo == "" {
		return fmt.Errorf("repository name cannot be empty")
	}
	if c.Number <= 0 {
		return fmt.Errorf("pull request number must be positive, got: %d", c.Number)
	}
	return nil
}
