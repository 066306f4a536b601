package repository

import (
	"context"
	"errors"
	"time"

	"patient-registration/internal/domain/entity"
	domainRepo "patient-registration/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type patientRepository struct{}

func NewPatientRepository() domainRepo.PatientRepository {
	return &patientRepository{}
}

func (r *patientRepository) Create(ctx context.Context, db *gorm.DB, patient *entity.Patient) error {
	return db.WithContext(ctx).Create(patient).Error
}

func (r *patientRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Patient, error) {
	var patient entity.Patient
	err := db.WithContext(ctx).Where("id = ?", id).First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) FindAll(ctx context.Context, db *gorm.DB, order entity.PatientOrder) ([]entity.Patient, error) {
	query := db.WithContext(ctx).Model(&entity.Patient{})

	switch order {
	case entity.OrderByCreatedAt:
		query = query.Order("created_at DESC").Order("medical_record DESC")
	default:
		query = query.Order("medical_record ASC")
	}

	var patients []entity.Patient
	if err := query.Find(&patients).Error; err != nil {
		return nil, err
	}
	return patients, nil
}

// FindMaxMedicalRecord relies on medical_record being fixed-width, so the
// lexical maximum is also the numeric one.
func (r *patientRepository) FindMaxMedicalRecord(ctx context.Context, db *gorm.DB) (string, error) {
	var patient entity.Patient
	err := db.WithContext(ctx).
		Select("medical_record").
		Order("medical_record DESC").
		Take(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return patient.MedicalRecord, nil
}

// Update overwrites every mutable column. Identity, medical record number and
// creation time are never part of the assignment.
func (r *patientRepository) Update(ctx context.Context, db *gorm.DB, patient *entity.Patient) (int64, error) {
	result := db.WithContext(ctx).
		Model(&entity.Patient{}).
		Where("id = ?", patient.ID).
		Updates(map[string]interface{}{
			"full_name":   patient.FullName,
			"nik":         patient.NIK,
			"mother_name": patient.MotherName,
			"birth_place": patient.BirthPlace,
			"birth_date":  patient.BirthDate,
			"gender":      patient.Gender,
			"religion":    patient.Religion,
			"phone":       patient.Phone,
			"clinic":      patient.Clinic,
			"updated_at":  time.Now(),
		})
	return result.RowsAffected, result.Error
}

func (r *patientRepository) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Patient{})
	return result.RowsAffected, result.Error
}
