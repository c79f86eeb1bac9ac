package validation

import (
	"math"

	"github.com/phrazzld/curricula-api/internal/domain"
)

// Gate thresholds. They do not depend on the validation mode.
const (
	AutoApproveScore  = 90
	ManualReviewScore = 70
)

// Thresholds are the per-dimension and overall passing scores.
type Thresholds struct {
	Grammar     int
	Progression int
	Cultural    int
	Dialect     int
	Overall     int
}

// StrictThresholds are used for production validation.
func StrictThresholds() Thresholds {
	return Thresholds{
		Grammar:     85,
		Progression: 90,
		Cultural:    80,
		Dialect:     85,
		Overall:     85,
	}
}

// RelaxedThresholds are used for drafts and development content.
func RelaxedThresholds() Thresholds {
	return Thresholds{
		Grammar:     60,
		Progression: 60,
		Cultural:    50,
		Dialect:     60,
		Overall:     60,
	}
}

// For returns the passing score of the named dimension.
func (t Thresholds) For(dimension string) int {
	switch dimension {
	case DimensionGrammar:
		return t.Grammar
	case DimensionProgression:
		return t.Progression
	case DimensionCultural:
		return t.Cultural
	case DimensionDialect:
		return t.Dialect
	}
	return t.Overall
}

// Decide maps an aggregate score to a gate decision.
func Decide(aggregate int) domain.GateDecision {
	switch {
	case aggregate >= AutoApproveScore:
		return domain.DecisionAutoApprove
	case aggregate >= ManualReviewScore:
		return domain.DecisionManualReview
	default:
		return domain.DecisionBlockActivation
	}
}

// Status maps an aggregate score to a report status.
func Status(aggregate int, t Thresholds) domain.ReportStatus {
	switch {
	case aggregate >= t.Overall:
		return domain.StatusPassed
	case aggregate >= ManualReviewScore:
		return domain.StatusNeedsReview
	default:
		return domain.StatusFailed
	}
}

// Aggregate returns the rounded mean of the dimensions that produced a
// score. Failed dimensions are left out; with none left the result is 0.
func Aggregate(dims []domain.DimensionResult) int {
	sum, n := 0, 0
	for _, d := range dims {
		if !d.Scored() {
			continue
		}
		sum += d.Score
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}
