package usecase

import (
	"context"
	"time"

	"patient-registration/internal/converter"
	"patient-registration/internal/delivery/dto"
	"patient-registration/internal/domain/entity"
	"patient-registration/internal/domain/repository"
	"patient-registration/pkg/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TicketPrinter renders the E-Ticket of a stored patient.
type TicketPrinter interface {
	Render(patient *entity.Patient) (string, []byte, error)
}

type PatientUsecase interface {
	CreatePatient(ctx context.Context, req *dto.CreatePatientRequest) (*dto.PatientResponse, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*dto.PatientResponse, error)
	GetAllPatients(ctx context.Context, order entity.PatientOrder, query string) ([]dto.PatientResponse, error)
	UpdatePatient(ctx context.Context, req *dto.UpdatePatientRequest) (*dto.PatientResponse, error)
	DeletePatient(ctx context.Context, id uuid.UUID) error
	NextMedicalRecord(ctx context.Context) (string, error)
	PrintTicket(ctx context.Context, id uuid.UUID) (*dto.TicketFile, error)
}

type patientUsecase struct {
	db            *gorm.DB
	log           *logrus.Logger
	patientRepo   repository.PatientRepository
	allocator     MedicalRecordAllocator
	ticketPrinter TicketPrinter
	metrics       *metrics.Metrics
}

func NewPatientUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	allocator MedicalRecordAllocator,
	ticketPrinter TicketPrinter,
	metrics *metrics.Metrics,
) PatientUsecase {
	return &patientUsecase{
		db:            db,
		log:           log,
		patientRepo:   patientRepo,
		allocator:     allocator,
		ticketPrinter: ticketPrinter,
		metrics:       metrics,
	}
}

func (u *patientUsecase) CreatePatient(ctx context.Context, req *dto.CreatePatientRequest) (*dto.PatientResponse, error) {
	birthDate, err := time.Parse(converter.DateLayout, req.BirthDate)
	if err != nil {
		return nil, ErrInvalidBirthDate
	}

	// The allocator reads through u.db, so it must run before the transaction
	// takes a connection.
	medicalRecord := req.MedicalRecord
	if medicalRecord == "" {
		medicalRecord, err = u.allocator.Next(ctx)
		if err != nil {
			return nil, err
		}
	} else if !IsMedicalRecord(medicalRecord) {
		return nil, ErrInvalidMedicalRecord
	}

	patient := &entity.Patient{
		FullName:      req.FullName,
		MedicalRecord: medicalRecord,
		NIK:           req.NIK,
		MotherName:    req.MotherName,
		BirthPlace:    req.BirthPlace,
		BirthDate:     birthDate,
		Gender:        req.Gender,
		Religion:      req.Religion,
		Phone:         req.Phone,
		Clinic:        req.Clinic,
	}

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		u.log.Warnf("Failed to begin transaction: %+v", tx.Error)
		return nil, storageError(tx.Error)
	}
	defer tx.Rollback()

	if err := u.patientRepo.Create(ctx, tx, patient); err != nil {
		if isDuplicateKeyError(err, "medical_record") {
			return nil, ErrDuplicateMedicalRecord
		}
		u.log.Warnf("Failed to create patient: %+v", err)
		return nil, storageError(err)
	}

	if err := tx.Commit().Error; err != nil {
		if isDuplicateKeyError(err, "medical_record") {
			return nil, ErrDuplicateMedicalRecord
		}
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, storageError(err)
	}

	u.metrics.PatientsCreated.Inc()

	// Reload to pick up the store-assigned registration number.
	created, err := u.patientRepo.FindByID(ctx, u.db, patient.ID)
	if err != nil {
		u.log.Warnf("Failed to reload created patient: %+v", err)
		return nil, storageError(err)
	}
	if created == nil {
		created = patient
	}

	u.log.WithFields(logrus.Fields{
		"patient_id":     created.ID,
		"medical_record": created.MedicalRecord,
	}).Info("Patient registered")

	return converter.PatientToResponse(created), nil
}

func (u *patientUsecase) GetPatient(ctx context.Context, id uuid.UUID) (*dto.PatientResponse, error) {
	patient, err := u.patientRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find patient: %+v", err)
		return nil, storageError(err)
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	return converter.PatientToResponse(patient), nil
}

func (u *patientUsecase) GetAllPatients(ctx context.Context, order entity.PatientOrder, query string) ([]dto.PatientResponse, error) {
	if order == "" {
		order = entity.OrderByMedicalRecord
	}

	patients, err := u.patientRepo.FindAll(ctx, u.db, order)
	if err != nil {
		u.log.Warnf("Failed to list patients: %+v", err)
		return nil, storageError(err)
	}

	return converter.PatientsToResponse(entity.FilterPatients(patients, query)), nil
}

func (u *patientUsecase) UpdatePatient(ctx context.Context, req *dto.UpdatePatientRequest) (*dto.PatientResponse, error) {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, ErrInvalidPatientID
	}

	birthDate, err := time.Parse(converter.DateLayout, req.BirthDate)
	if err != nil {
		return nil, ErrInvalidBirthDate
	}

	patient := &entity.Patient{
		ID:         id,
		FullName:   req.FullName,
		NIK:        req.NIK,
		MotherName: req.MotherName,
		BirthPlace: req.BirthPlace,
		BirthDate:  birthDate,
		Gender:     req.Gender,
		Religion:   req.Religion,
		Phone:      req.Phone,
		Clinic:     req.Clinic,
	}

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		u.log.Warnf("Failed to begin transaction: %+v", tx.Error)
		return nil, storageError(tx.Error)
	}
	defer tx.Rollback()

	rows, err := u.patientRepo.Update(ctx, tx, patient)
	if err != nil {
		u.log.Warnf("Failed to update patient: %+v", err)
		return nil, storageError(err)
	}
	if rows == 0 {
		return nil, ErrPatientNotFound
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, storageError(err)
	}

	u.metrics.PatientsUpdated.Inc()

	updated, err := u.patientRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to reload updated patient: %+v", err)
		return nil, storageError(err)
	}
	if updated == nil {
		return nil, ErrPatientNotFound
	}

	return converter.PatientToResponse(updated), nil
}

// DeletePatient removes the patient permanently. Deleting an unknown id succeeds.
func (u *patientUsecase) DeletePatient(ctx context.Context, id uuid.UUID) error {
	rows, err := u.patientRepo.Delete(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to delete patient: %+v", err)
		return storageError(err)
	}

	if rows == 0 {
		u.log.WithField("patient_id", id).Debug("Delete matched no patient")
		return nil
	}

	u.metrics.PatientsDeleted.Inc()
	return nil
}

func (u *patientUsecase) NextMedicalRecord(ctx context.Context) (string, error) {
	return u.allocator.Next(ctx)
}

func (u *patientUsecase) PrintTicket(ctx context.Context, id uuid.UUID) (*dto.TicketFile, error) {
	patient, err := u.patientRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find patient: %+v", err)
		return nil, storageError(err)
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	fileName, content, err := u.ticketPrinter.Render(patient)
	if err != nil {
		u.log.Warnf("Failed to render ticket: %+v", err)
		return nil, ErrTicketRenderFailed
	}

	u.metrics.TicketsRendered.Inc()

	return &dto.TicketFile{
		FileName:    fileName,
		ContentType: "application/pdf",
		Content:     content,
	}, nil
}
