package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReportStatus is the outcome of a validation run against its threshold.
type ReportStatus string

// Possible report statuses
const (
	StatusPassed      ReportStatus = "passed"
	StatusNeedsReview ReportStatus = "needs_review"
	StatusFailed      ReportStatus = "failed"
)

// GateDecision is the disposition of a course after validation.
type GateDecision string

// Possible gate decisions
const (
	DecisionAutoApprove     GateDecision = "auto_approve"
	DecisionManualReview    GateDecision = "manual_review"
	DecisionBlockActivation GateDecision = "block_activation"
)

// Recommendation priorities
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
)

// DimensionResult is one scorer's contribution to a report.
type DimensionResult struct {
	Name         string   `json:"name"`
	Score        int      `json:"score"`
	Threshold    int      `json:"threshold"`
	Passed       bool     `json:"passed"`
	Issues       []string `json:"issues"`
	Improvements []string `json:"improvements"`

	// Error is set when the scorer failed; such a dimension is reported
	// with score 0 and left out of the aggregate.
	Error string `json:"error,omitempty"`
}

// Scored reports whether the dimension produced a score.
func (d DimensionResult) Scored() bool {
	return d.Error == ""
}

// Recommendation is a follow-up action for a dimension that did not pass.
type Recommendation struct {
	Category    string   `json:"category"`
	Priority    string   `json:"priority"`
	Description string   `json:"description"`
	Suggestions []string `json:"suggestions"`
}

// ValidationReport is the immutable result of one validation run over a
// course. Re-validation produces a new report.
type ValidationReport struct {
	ID              uuid.UUID         `json:"id"`
	CourseID        uuid.UUID         `json:"course_id"`
	Strict          bool              `json:"strict"`
	Dimensions      []DimensionResult `json:"dimensions"`
	AggregateScore  int               `json:"aggregate_score"`
	Status          ReportStatus      `json:"status"`
	Decision        GateDecision      `json:"decision"`
	Issues          []string          `json:"issues"`
	Recommendations []Recommendation  `json:"recommendations"`
	LessonsSampled  int               `json:"lessons_sampled"`
	EstimatedCost   float64           `json:"estimated_cost"`
	CreatedAt       time.Time         `json:"created_at"`
}

// Dimension returns the named dimension, if present.
func (r *ValidationReport) Dimension(name string) (DimensionResult, bool) {
	for _, d := range r.Dimensions {
		if d.Name == name {
			return d, true
		}
	}
	return DimensionResult{}, false
}
