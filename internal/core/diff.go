package core

// DiffEntry holds the patch data for a single file changed in a pull request.
// Entries are produced by the collector and treated as read-only downstream;
// the budgeter returns fresh entries rather than mutating its input.
type DiffEntry struct {
	Path      string
	Patch     string
	Additions int
	Deletions int

	// Truncated marks a patch that was cut to fit the per-file budget.
	Truncated bool
}

// BudgetedPayload is the bounded content handed to the prompt builder.
// Each section carries its own inline truncation markers so a reader is never
// misled into assuming completeness.
type BudgetedPayload struct {
	DiffSection     string
	FindingsSection string

	// OmittedFiles counts files dropped entirely because the global diff
	// budget was exhausted before they were reached.
	OmittedFiles int
}
