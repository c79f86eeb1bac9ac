package generation

import (
	"strings"
)

// Operation tags used by the pipeline. Continuation calls append
// ContinuationSuffix to the tag of the request they continue.
const (
	OpCourseDetails      = "course-details"
	OpCurriculumPlanning = "curriculum-planning"
	OpLessonContent      = "lesson-content"
	OpValidatePrefix     = "validate-"

	ContinuationSuffix = ":continuation"
)

// Pricing converts provider usage into a cost estimate.
type Pricing struct {
	InputPer1K  float64
	OutputPer1K float64

	// Fallback is the flat estimate per operation used when the provider
	// reports no usage.
	Fallback map[string]float64
}

// DefaultPricing returns rates for a typical hosted model plus flat
// per-operation estimates.
func DefaultPricing() Pricing {
	return Pricing{
		InputPer1K:  0.0015,
		OutputPer1K: 0.002,
		Fallback: map[string]float64{
			OpCourseDetails:      0.01,
			OpCurriculumPlanning: 0.02,
			OpLessonContent:      0.015,
		},
	}
}

// Cost estimates the cost of one call.
func (p Pricing) Cost(operation string, usage Usage) float64 {
	if usage.Total() > 0 {
		return float64(usage.InputTokens)/1000*p.InputPer1K +
			float64(usage.OutputTokens)/1000*p.OutputPer1K
	}
	return p.Fallback[strings.TrimSuffix(operation, ContinuationSuffix)]
}

// IsContinuation reports whether operation tags a continuation call.
func IsContinuation(operation string) bool {
	return strings.HasSuffix(operation, ContinuationSuffix)
}
