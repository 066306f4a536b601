package usecase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrPatientNotFound        = errors.New("patient not found")
	ErrDuplicateMedicalRecord = errors.New("medical record number already in use")
	ErrGenerationFailed       = errors.New("failed to generate medical record")
	ErrStorage                = errors.New("storage operation failed")
	ErrInvalidBirthDate       = errors.New("invalid birth date, use YYYY-MM-DD")
	ErrInvalidMedicalRecord   = errors.New("medical record must be exactly 6 digits")
	ErrInvalidPatientID       = errors.New("invalid patient id")
	ErrTicketRenderFailed     = errors.New("failed to render ticket")
)

// storageError keeps the backend error reachable through errors.Is/As while
// classifying it as a storage failure.
func storageError(err error) error {
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

// isDuplicateKeyError reports whether err is a unique violation on a
// constraint or column whose name contains constraintName.
func isDuplicateKeyError(err error, constraintName string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		return pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName))
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// SQLite: "UNIQUE constraint failed: patients.medical_record"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") && strings.Contains(msg, strings.ToLower(constraintName))
}
