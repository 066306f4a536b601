package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"patient-registration/internal/domain/entity"
	"patient-registration/internal/domain/repository"
	"patient-registration/pkg/metrics"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// maxMedicalRecord is the largest number that fits in a medical record.
const maxMedicalRecord = 999999

// MedicalRecordAllocator proposes the next medical record number.
//
// The proposal is computed from the current maximum without reserving it, so two
// concurrent registrations can receive the same number. The unique constraint on
// medical_record rejects the second insert with ErrDuplicateMedicalRecord.
type MedicalRecordAllocator interface {
	Next(ctx context.Context) (string, error)
}

type medicalRecordAllocator struct {
	db          *gorm.DB
	log         *logrus.Logger
	patientRepo repository.PatientRepository
	metrics     *metrics.Metrics
}

func NewMedicalRecordAllocator(
	db *gorm.DB,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	metrics *metrics.Metrics,
) MedicalRecordAllocator {
	return &medicalRecordAllocator{
		db:          db,
		log:         log,
		patientRepo: patientRepo,
		metrics:     metrics,
	}
}

func (a *medicalRecordAllocator) Next(ctx context.Context) (string, error) {
	current, err := a.patientRepo.FindMaxMedicalRecord(ctx, a.db)
	if err != nil {
		a.log.Warnf("Failed to read highest medical record: %+v", err)
		a.metrics.MedicalRecordAllocations.WithLabelValues(metrics.StatusFailed).Inc()
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	next, err := NextMedicalRecord(current)
	if err != nil {
		a.log.Warnf("Failed to generate medical record after %q: %+v", current, err)
		a.metrics.MedicalRecordAllocations.WithLabelValues(metrics.StatusFailed).Inc()
		return "", err
	}

	a.metrics.MedicalRecordAllocations.WithLabelValues(metrics.StatusOK).Inc()
	return next, nil
}

// NextMedicalRecord returns the successor of current. An empty or unparseable
// current value restarts the sequence at 1.
func NextMedicalRecord(current string) (string, error) {
	next := 1
	if n, err := strconv.Atoi(strings.TrimSpace(current)); err == nil && n >= 0 {
		next = n + 1
	}

	if next > maxMedicalRecord {
		return "", fmt.Errorf("%w: medical record space exhausted", ErrGenerationFailed)
	}

	return FormatMedicalRecord(next), nil
}

// FormatMedicalRecord zero-pads n to the medical record width.
func FormatMedicalRecord(n int) string {
	return fmt.Sprintf("%0*d", entity.MedicalRecordLength, n)
}

// IsMedicalRecord reports whether s has the medical record shape: exactly six ASCII digits.
func IsMedicalRecord(s string) bool {
	if len(s) != entity.MedicalRecordLength {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
