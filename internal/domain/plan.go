package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Plan defaults applied to fields the planner leaves out.
const (
	MinDifficulty = 1
	MaxDifficulty = 10

	DefaultLessonDifficulty = 3
	DefaultLessonMinutes    = 20
	DefaultSkillHours       = 4.0
	DefaultDifficultyScore  = 5
)

// DefaultExerciseTypes is used for content items generated without any.
var DefaultExerciseTypes = []string{"flashcard"}

// CurriculumPlan is the planner's output. It only lives for the duration of
// a generation run and is persisted by decomposing it into Skill and Lesson
// records.
type CurriculumPlan struct {
	Skills []SkillPlan `json:"skills"`
}

// SkillPlan is one planned Skill. Prerequisites are positions of other
// skills in the same plan.
type SkillPlan struct {
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Position       int             `json:"position"`
	Tier           ProficiencyTier `json:"cefr_level"`
	Prerequisites  []int           `json:"prerequisites"`
	EstimatedHours float64         `json:"estimated_hours"`
	Lessons        []LessonPlan    `json:"lessons"`
}

// LessonPlan is one planned Lesson.
type LessonPlan struct {
	Name             string   `json:"name"`
	Position         int      `json:"position"`
	Difficulty       int      `json:"difficulty_level"`
	EstimatedMinutes int      `json:"estimated_minutes"`
	LearningFocus    string   `json:"learning_focus"`
	ContentAreas     []string `json:"content_areas"`
}

// Validate checks the plan has at least one named skill and every lesson
// is named.
func (p *CurriculumPlan) Validate() error {
	if len(p.Skills) == 0 {
		return ErrEmptyPlan
	}
	for i, s := range p.Skills {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("%w: skill %d has no name", ErrValidation, i+1)
		}
		for j, l := range s.Lessons {
			if strings.TrimSpace(l.Name) == "" {
				return fmt.Errorf("%w: lesson %d of skill %q has no name", ErrValidation, j+1, s.Name)
			}
		}
	}
	return nil
}

// ApplyDefaults fills in missing positions, hours, difficulty and minutes,
// and clamps difficulty into range. Skills without a tier get tier.
func (p *CurriculumPlan) ApplyDefaults(tier ProficiencyTier) {
	for i := range p.Skills {
		s := &p.Skills[i]
		if s.Position <= 0 {
			s.Position = i + 1
		}
		if s.EstimatedHours <= 0 {
			s.EstimatedHours = DefaultSkillHours
		}
		if s.Tier == "" {
			s.Tier = tier
		}
		for j := range s.Lessons {
			l := &s.Lessons[j]
			if l.Position <= 0 {
				l.Position = j + 1
			}
			if l.Difficulty == 0 {
				l.Difficulty = DefaultLessonDifficulty
			}
			l.Difficulty = clamp(l.Difficulty, MinDifficulty, MaxDifficulty)
			if l.EstimatedMinutes <= 0 {
				l.EstimatedMinutes = DefaultLessonMinutes
			}
		}
	}
}

// LessonCount returns the total number of planned lessons.
func (p *CurriculumPlan) LessonCount() int {
	n := 0
	for _, s := range p.Skills {
		n += len(s.Lessons)
	}
	return n
}

// ContentDraft is one generated content item before it is attached to a
// lesson.
type ContentDraft struct {
	EnglishPhrase      string   `json:"english_phrase"`
	TargetPhrase       string   `json:"target_phrase"`
	PronunciationGuide string   `json:"pronunciation_guide"`
	CulturalContext    string   `json:"cultural_context"`
	DifficultyScore    int      `json:"difficulty_score"`
	ExerciseTypes      []string `json:"exercise_types"`
}

// ToItem converts the draft into a ContentItem of lessonID, applying
// defaults for difficulty and exercise types.
func (d ContentDraft) ToItem(lessonID uuid.UUID) *ContentItem {
	score := d.DifficultyScore
	if score == 0 {
		score = DefaultDifficultyScore
	}
	types := d.ExerciseTypes
	if len(types) == 0 {
		types = append([]string(nil), DefaultExerciseTypes...)
	}

	return &ContentItem{
		ID:                 uuid.New(),
		LessonID:           lessonID,
		EnglishPhrase:      strings.TrimSpace(d.EnglishPhrase),
		TargetPhrase:       strings.TrimSpace(d.TargetPhrase),
		PronunciationGuide: d.PronunciationGuide,
		CulturalContext:    d.CulturalContext,
		DifficultyScore:    clamp(score, MinDifficulty, MaxDifficulty),
		ExerciseTypes:      types,
		CreatedAt:          time.Now().UTC(),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
