package repository

import (
	"context"

	"patient-registration/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PatientRepository interface {
	Create(ctx context.Context, db *gorm.DB, patient *entity.Patient) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Patient, error)
	FindAll(ctx context.Context, db *gorm.DB, order entity.PatientOrder) ([]entity.Patient, error)
	// FindMaxMedicalRecord returns the greatest medical record number in use,
	// or an empty string when no patient exists.
	FindMaxMedicalRecord(ctx context.Context, db *gorm.DB) (string, error)
	Update(ctx context.Context, db *gorm.DB, patient *entity.Patient) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error)
}
