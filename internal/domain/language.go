package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Language is a locale a course can be taught in. Code is unique.
type Language struct {
	ID         uuid.UUID `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	NativeName string    `json:"native_name"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewLanguage creates an active Language. The code is lower-cased.
func NewLanguage(code, name, nativeName string) (*Language, error) {
	lang := &Language{
		ID:         uuid.New(),
		Code:       strings.ToLower(strings.TrimSpace(code)),
		Name:       strings.TrimSpace(name),
		NativeName: strings.TrimSpace(nativeName),
		Active:     true,
		CreatedAt:  time.Now().UTC(),
	}

	if err := lang.Validate(); err != nil {
		return nil, err
	}

	return lang, nil
}

// Validate checks if the Language has valid data.
func (l *Language) Validate() error {
	if l.ID == uuid.Nil {
		return fmt.Errorf("%w: language id", ErrInvalidID)
	}
	if l.Code == "" {
		return fmt.Errorf("%w: language code", ErrEmptyContent)
	}
	if l.Name == "" {
		return fmt.Errorf("%w: language name", ErrEmptyContent)
	}
	return nil
}
