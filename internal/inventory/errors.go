package inventory

import (
	"errors"
	"fmt"

	"github.com/Benediks/Sidaya/internal/util"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the target stock item or menu does not exist.
	ErrNotFound = errors.New("not found")
	// ErrEmptyBatch is returned when an ingestion batch carries no rows.
	ErrEmptyBatch = errors.New("file is empty or invalid format")
)

// ValidationError is returned before any write when input fields are bad.
type ValidationError = util.ValidationError

func invalid(field, msg string) *ValidationError {
	return util.NewValidationError(field, msg)
}

// notFoundOr maps gorm.ErrRecordNotFound to ErrNotFound and wraps anything else.
func notFoundOr(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("load %s: %w", what, err)
}
