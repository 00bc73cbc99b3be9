package core

// ReviewOrigin tags a ReviewResult with how it was produced, so formatting
// and the failure narrative downstream can differ correctly.
type ReviewOrigin string

const (
	// OriginModel marks a review generated by the language model.
	OriginModel ReviewOrigin = "model"
	// OriginStatic marks a fallback review built solely from analyzer findings.
	OriginStatic ReviewOrigin = "static-only"
)

// Suggestion represents a single piece of model feedback for a specific line
// of code. Severity here uses the model's vocabulary (Low..Critical).
type Suggestion struct {
	FilePath   string `json:"file_path"`
	LineNumber int    `json:"line_number"`
	Severity   string `json:"severity"`
	Category   string `json:"category"`
	Comment    string `json:"comment"`
}

// StructuredReview is the parsed model output.
type StructuredReview struct {
	Summary     string       `json:"summary"`
	Verdict     string       `json:"verdict,omitempty"`
	Suggestions []Suggestion `json:"suggestions"`
}

// ReviewResult is the final content to publish: either a model review or a
// static-only view of the capped findings. Review is set only when Origin is
// OriginModel; ModelNote carries the reason the model was skipped so the
// published comment can state it.
type ReviewResult struct {
	Origin    ReviewOrigin
	Review    *StructuredReview
	Findings  []Finding
	ModelNote string
}
