// Package validation scores generated courses along independent quality
// dimensions and turns the aggregate score into a quality gate decision.
//
// Each dimension is a Scorer. The Engine samples a bounded set of lessons,
// runs every applicable scorer concurrently over that sample and folds the
// results into a domain.ValidationReport. A scorer that fails is recorded
// in the report with a zero score and never aborts its siblings.
package validation
