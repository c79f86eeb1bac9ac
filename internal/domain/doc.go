// Package domain contains the core entities of the curriculum service:
// languages, courses, skills, lessons, content items, assessments and
// validation reports. It also holds the transient CurriculumPlan produced
// by the planning stage and the small pure rules (proficiency tiers, plan
// defaults, fixed assessments) that do not depend on any infrastructure.
package domain
