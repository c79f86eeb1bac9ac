package postgres

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/phrazzld/curricula-api/internal/store"
)

// NewStores creates every PostgreSQL store over db.
func NewStores(db store.DBTX, logger *slog.Logger) store.Stores {
	return store.Stores{
		Languages:   NewPostgresLanguageStore(db, logger),
		Courses:     NewPostgresCourseStore(db, logger),
		Skills:      NewPostgresSkillStore(db, logger),
		Lessons:     NewPostgresLessonStore(db, logger),
		Content:     NewPostgresContentStore(db, logger),
		Assessments: NewPostgresAssessmentStore(db, logger),
		Reports:     NewPostgresReportStore(db, logger),
	}
}

func componentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("component", component))
}

// toJSONB encodes v for a JSONB column. Nil slices are stored as [].
func toJSONB[T any](v []T) ([]byte, error) {
	if v == nil {
		v = []T{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode jsonb: %w", err)
	}
	return b, nil
}

// fromJSONB decodes a JSONB array column, never returning nil.
func fromJSONB[T any](b []byte) ([]T, error) {
	out := []T{}
	if len(b) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("failed to decode jsonb: %w", err)
	}
	return out, nil
}
