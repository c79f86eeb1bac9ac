package api

import (
	"github.com/phrazzld/curricula-api/internal/curriculum"
	"github.com/phrazzld/curricula-api/internal/domain"
)

// GenerateCourseRequest is the body of POST /api/courses/generate.
type GenerateCourseRequest struct {
	LanguageCode string `json:"languageCode" validate:"required,min=2,max=10"`
	LanguageName string `json:"languageName" validate:"required,max=100"`
	NativeName   string `json:"nativeName"   validate:"max=100"`
	Level        int    `json:"level"        validate:"required,min=1,max=4"`
}

func (r GenerateCourseRequest) toDomain() curriculum.GenerateRequest {
	return curriculum.GenerateRequest{
		LanguageCode: r.LanguageCode,
		LanguageName: r.LanguageName,
		NativeName:   r.NativeName,
		Level:        r.Level,
	}
}

// ValidateCourseRequest is the optional body of POST /api/courses/{id}/validate.
type ValidateCourseRequest struct {
	Strict *bool `json:"strict"`
}

// ValidationHistoryResponse lists a course's stored validation reports.
type ValidationHistoryResponse struct {
	CourseID string                     `json:"courseId"`
	Reports  []*domain.ValidationReport `json:"reports"`
}
