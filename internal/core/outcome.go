package core

// PublishChannel identifies which publishing path carried the review.
type PublishChannel string

const (
	// ChannelPrimary is a pull request review submitted through the Reviews
	// API, supporting per-line annotations.
	ChannelPrimary PublishChannel = "review"
	// ChannelFallback is a plain issue comment on the pull request, used when
	// the Reviews API rejects the submission (e.g. across a fork boundary).
	ChannelFallback PublishChannel = "comment"
	// ChannelNone means no channel accepted the content.
	ChannelNone PublishChannel = "none"
)

// PublishOutcome records which channel succeeded and a reference to the
// created artifact. Tests assert on the tag instead of re-deriving it from
// nested error conditions.
type PublishOutcome struct {
	Channel     PublishChannel
	ArtifactURL string
}

// Published reports whether any channel accepted the review.
func (o PublishOutcome) Published() bool {
	return o.Channel == ChannelPrimary || o.Channel == ChannelFallback
}
