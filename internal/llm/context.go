package llm

import "context"

// Purpose labels recorded with every LLM call.
const (
	PurposeExplanation = "explanation"
	PurposeClassify    = "classify"
	PurposeUnknown     = "unknown"
)

type purposeKey struct{}

// WithPurpose tags ctx with the reason a call is being made. The logging
// provider copies the tag into the llm_events table.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the tag set by WithPurpose, or PurposeUnknown.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return PurposeUnknown
}
