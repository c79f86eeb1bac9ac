package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/curricula-api/internal/api/shared"
	"github.com/phrazzld/curricula-api/internal/curriculum"
	"github.com/phrazzld/curricula-api/internal/domain"
	"github.com/phrazzld/curricula-api/internal/platform/logger"
	"github.com/phrazzld/curricula-api/internal/validation"
)

// CourseGenerator generates courses and reports their progress.
type CourseGenerator interface {
	GenerateFullCourse(ctx context.Context, req curriculum.GenerateRequest) (*curriculum.Result, error)
	GenerationStatus(ctx context.Context, courseID uuid.UUID) (*curriculum.GenerationStatus, error)
}

// CourseValidator validates courses and lists past reports.
type CourseValidator interface {
	ValidateCourseContent(ctx context.Context, courseID uuid.UUID, opts validation.Options) (*domain.ValidationReport, error)
	History(ctx context.Context, courseID uuid.UUID, limit int) ([]*domain.ValidationReport, error)
}

// CourseHandler handles course generation and validation requests.
type CourseHandler struct {
	generator CourseGenerator
	validator CourseValidator
	logger    *slog.Logger
}

// NewCourseHandler creates a CourseHandler.
func NewCourseHandler(generator CourseGenerator, validator CourseValidator, logger *slog.Logger) *CourseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CourseHandler{
		generator: generator,
		validator: validator,
		logger:    logger.With("component", "course_handler"),
	}
}

// GenerateCourse handles POST /api/courses/generate.
func (h *CourseHandler) GenerateCourse(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req GenerateCourseRequest
	if err := shared.DecodeJSON(w, r, &req, false); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	log.Info("course generation requested",
		slog.String("language_code", req.LanguageCode),
		slog.Int("level", req.Level))

	result, err := h.generator.GenerateFullCourse(r.Context(), req.toDomain())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// ValidateCourse handles POST /api/courses/{id}/validate.
func (h *CourseHandler) ValidateCourse(w http.ResponseWriter, r *http.Request) {
	courseID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	var req ValidateCourseRequest
	if err := shared.DecodeJSON(w, r, &req, true); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	report, err := h.validator.ValidateCourseContent(r.Context(), courseID, validation.Options{Strict: req.Strict})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, report)
}

// GenerationStatus handles GET /api/courses/{id}/generation-status.
func (h *CourseHandler) GenerationStatus(w http.ResponseWriter, r *http.Request) {
	courseID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	status, err := h.generator.GenerationStatus(r.Context(), courseID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, status)
}

// ValidationHistory handles GET /api/courses/{id}/validations.
func (h *CourseHandler) ValidationHistory(w http.ResponseWriter, r *http.Request) {
	courseID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	limit, err := historyLimit(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	reports, err := h.validator.History(r.Context(), courseID, limit)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ValidationHistoryResponse{
		CourseID: courseID.String(),
		Reports:  reports,
	})
}

// Health handles GET /health.
func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
