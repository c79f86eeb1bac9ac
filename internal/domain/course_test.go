package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierForLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level   int
		want    ProficiencyTier
		wantErr bool
	}{
		{1, TierA1, false},
		{2, TierA2, false},
		{3, TierB1, false},
		{4, TierB2, false},
		{0, "", true},
		{5, "", true},
	}

	for _, tt := range tests {
		tier, err := TierForLevel(tt.level)
		if tt.wantErr {
			assert.True(t, errors.Is(err, ErrInvalidLevel), "level %d", tt.level)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, tier)
	}
}

func TestBaselineHours(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 40, BaselineHours(1))
	assert.Equal(t, 70, BaselineHours(4))
}

func TestNewCourse(t *testing.T) {
	t.Parallel()

	langID := uuid.New()
	course, err := NewCourse(langID, 2, "Albanian A2")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, course.ID)
	assert.Equal(t, langID, course.LanguageID)
	assert.Equal(t, TierA2, course.Tier)
	assert.Equal(t, 50, course.EstimatedHours)
	assert.True(t, course.Active)
	assert.NotNil(t, course.LearningObjectives)

	_, err = NewCourse(langID, 9, "x")
	assert.True(t, errors.Is(err, ErrInvalidLevel))

	_, err = NewCourse(uuid.Nil, 1, "x")
	assert.True(t, errors.Is(err, ErrInvalidID))

	_, err = NewCourse(langID, 1, "")
	assert.True(t, errors.Is(err, ErrEmptyContent))
}

func TestNewLanguage(t *testing.T) {
	t.Parallel()

	lang, err := NewLanguage(" SQ ", "Albanian", "Shqip")
	require.NoError(t, err)
	assert.Equal(t, "sq", lang.Code)
	assert.True(t, lang.Active)

	_, err = NewLanguage("", "Albanian", "Shqip")
	assert.True(t, errors.Is(err, ErrEmptyContent))
}

func TestStandardAssessments(t *testing.T) {
	t.Parallel()

	course, err := NewCourse(uuid.New(), 1, "Basics")
	require.NoError(t, err)

	as := StandardAssessments(course)
	require.Len(t, as, 2)

	assert.Equal(t, AssessmentQuiz, as[0].Type)
	assert.Equal(t, 75, as[0].PassingScore)
	assert.Equal(t, 30, as[0].TimeLimitMinutes)
	assert.Equal(t, AssessmentExam, as[1].Type)
	assert.Equal(t, 80, as[1].PassingScore)
	assert.Equal(t, 45, as[1].TimeLimitMinutes)

	for _, a := range as {
		assert.Equal(t, course.ID, a.CourseID)
		assert.Equal(t, 100, a.MaxScore)
		assert.NoError(t, a.Validate())
	}
}
