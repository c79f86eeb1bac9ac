package validation

import (
	"math/rand/v2"
	"sort"

	"github.com/phrazzld/curricula-api/internal/domain"
)

// DefaultSampleSize is the number of lessons a validation run looks at.
const DefaultSampleSize = 5

// SampledLesson is one lesson picked for validation with its context.
type SampledLesson struct {
	// Sequence is the lesson's 1-based position in the whole course.
	Sequence int
	Skill    *domain.Skill
	Lesson   *domain.Lesson
	Items    []*domain.ContentItem
}

// Sample is the course content a validation run scores.
type Sample struct {
	Course       *domain.Course
	Language     *domain.Language
	TotalLessons int
	Lessons      []SampledLesson
}

// CulturalNotes returns the non-empty cultural notes of the sampled items.
func (s *Sample) CulturalNotes() []string {
	var notes []string
	for _, l := range s.Lessons {
		for _, item := range l.Items {
			if item.CulturalContext != "" {
				notes = append(notes, item.CulturalContext)
			}
		}
	}
	return notes
}

// Phrases returns the sampled items that carry a target-language phrase.
func (s *Sample) Phrases() []*domain.ContentItem {
	var items []*domain.ContentItem
	for _, l := range s.Lessons {
		for _, item := range l.Items {
			if item.TargetPhrase != "" {
				items = append(items, item)
			}
		}
	}
	return items
}

// sampleIndices picks up to size indices out of total: the first, middle
// and last lesson, then random others. The result is in ascending order.
func sampleIndices(total, size int, rnd *rand.Rand) []int {
	if size <= 0 || total <= 0 {
		return nil
	}
	if total <= size {
		idx := make([]int, total)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}

	picked := make(map[int]bool, size)
	var idx []int
	for _, i := range []int{0, total / 2, total - 1} {
		if len(idx) == size {
			break
		}
		if !picked[i] {
			picked[i] = true
			idx = append(idx, i)
		}
	}

	remaining := make([]int, 0, total-len(idx))
	for i := 0; i < total; i++ {
		if !picked[i] {
			remaining = append(remaining, i)
		}
	}
	for len(idx) < size && len(remaining) > 0 {
		j := rnd.IntN(len(remaining))
		idx = append(idx, remaining[j])
		remaining = append(remaining[:j], remaining[j+1:]...)
	}

	sort.Ints(idx)
	return idx
}
