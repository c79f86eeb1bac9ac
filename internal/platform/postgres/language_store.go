package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/curricula-api/internal/domain"
	"github.com/phrazzld/curricula-api/internal/platform/logger"
	"github.com/phrazzld/curricula-api/internal/store"
)

// PostgresLanguageStore implements store.LanguageStore.
type PostgresLanguageStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.LanguageStore = (*PostgresLanguageStore)(nil)

// NewPostgresLanguageStore creates a language store over db.
// If logger is nil, a default logger will be used.
func NewPostgresLanguageStore(db store.DBTX, logger *slog.Logger) *PostgresLanguageStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresLanguageStore{db: db, logger: componentLogger(logger, "language_store")}
}

const languageColumns = `id, code, name, native_name, active, created_at`

// Create implements store.LanguageStore.Create.
func (s *PostgresLanguageStore) Create(ctx context.Context, lang *domain.Language) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := lang.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO languages (`+languageColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		lang.ID, lang.Code, lang.Name, lang.NativeName, lang.Active, lang.CreatedAt)
	if err != nil {
		log.Warn("failed to create language", slog.String("code", lang.Code), slog.String("error", err.Error()))
		return mapCreateError("language", err, store.ErrLanguageExists)
	}

	log.Info("language created", slog.String("language_id", lang.ID.String()), slog.String("code", lang.Code))
	return nil
}

// FindByCode implements store.LanguageStore.FindByCode.
func (s *PostgresLanguageStore) FindByCode(ctx context.Context, code string) (*domain.Language, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+languageColumns+` FROM languages WHERE code = $1`,
		strings.ToLower(strings.TrimSpace(code)))
	return scanLanguage(row)
}

// GetByID implements store.LanguageStore.GetByID.
func (s *PostgresLanguageStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Language, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+languageColumns+` FROM languages WHERE id = $1`, id)
	return scanLanguage(row)
}

func scanLanguage(row *sql.Row) (*domain.Language, error) {
	var l domain.Language
	err := row.Scan(&l.ID, &l.Code, &l.Name, &l.NativeName, &l.Active, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrLanguageNotFound
	}
	if err != nil {
		return nil, MapError(err)
	}
	return &l, nil
}
