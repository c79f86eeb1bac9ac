package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/curricula-api/internal/domain"
	"github.com/phrazzld/curricula-api/internal/platform/logger"
	"github.com/phrazzld/curricula-api/internal/store"
)

// PostgresAssessmentStore implements store.AssessmentStore.
type PostgresAssessmentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.AssessmentStore = (*PostgresAssessmentStore)(nil)

// NewPostgresAssessmentStore creates an assessment store over db.
func NewPostgresAssessmentStore(db store.DBTX, logger *slog.Logger) *PostgresAssessmentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresAssessmentStore{db: db, logger: componentLogger(logger, "assessment_store")}
}

// Create implements store.AssessmentStore.Create.
func (s *PostgresAssessmentStore) Create(ctx context.Context, a *domain.Assessment) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assessments (id, course_id, name, assessment_type, max_score, passing_score,
			time_limit_minutes, instructions, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.CourseID, a.Name, string(a.Type), a.MaxScore, a.PassingScore,
		a.TimeLimitMinutes, a.Instructions, a.CreatedAt)
	if err != nil {
		return writeError("assessment", "create", err)
	}
	return nil
}

// ListByCourse implements store.AssessmentStore.ListByCourse.
func (s *PostgresAssessmentStore) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*domain.Assessment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, course_id, name, assessment_type, max_score, passing_score,
			time_limit_minutes, instructions, created_at
		FROM assessments
		WHERE course_id = $1
		ORDER BY seq`,
		courseID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	out := []*domain.Assessment{}
	for rows.Next() {
		var (
			a   domain.Assessment
			typ string
		)
		if err := rows.Scan(&a.ID, &a.CourseID, &a.Name, &typ, &a.MaxScore, &a.PassingScore,
			&a.TimeLimitMinutes, &a.Instructions, &a.CreatedAt); err != nil {
			return nil, MapError(err)
		}
		a.Type = domain.AssessmentType(typ)
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return out, nil
}

// PostgresReportStore implements store.ReportStore. The full report is kept
// as a JSONB document next to the columns used for filtering.
type PostgresReportStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.ReportStore = (*PostgresReportStore)(nil)

// NewPostgresReportStore creates a validation report store over db.
func NewPostgresReportStore(db store.DBTX, logger *slog.Logger) *PostgresReportStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresReportStore{db: db, logger: componentLogger(logger, "report_store")}
}

// Create implements store.ReportStore.Create.
func (s *PostgresReportStore) Create(ctx context.Context, r *domain.ValidationReport) error {
	if r.ID == uuid.Nil {
		return fmt.Errorf("%w: report id", store.ErrInvalidEntity)
	}
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO validation_reports (id, course_id, strict, aggregate_score, status, decision,
			lessons_sampled, estimated_cost, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		r.ID, r.CourseID, r.Strict, r.AggregateScore, string(r.Status), string(r.Decision),
		r.LessonsSampled, r.EstimatedCost, body, r.CreatedAt)
	if err != nil {
		return writeError("validation report", "create", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("validation report stored",
		slog.String("report_id", r.ID.String()),
		slog.String("course_id", r.CourseID.String()),
		slog.Int("aggregate_score", r.AggregateScore))
	return nil
}

// ListByCourse implements store.ReportStore.ListByCourse.
func (s *PostgresReportStore) ListByCourse(
	ctx context.Context,
	courseID uuid.UUID,
	limit int,
) ([]*domain.ValidationReport, error) {
	query := `SELECT body FROM validation_reports WHERE course_id = $1 ORDER BY seq DESC`
	args := []any{courseID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	out := []*domain.ValidationReport{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, MapError(err)
		}
		var r domain.ValidationReport
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, fmt.Errorf("failed to decode report: %w", err)
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return out, nil
}
