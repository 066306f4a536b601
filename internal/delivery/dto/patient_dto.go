package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreatePatientRequest is the registration form. MedicalRecord may be left
// empty, in which case the next free number is allocated.
type CreatePatientRequest struct {
	FullName      string `json:"fullName" validate:"required,max=255"`
	MedicalRecord string `json:"medicalRecord" validate:"omitempty,len=6,digits"`
	NIK           string `json:"nik" validate:"required,len=16,digits"`
	MotherName    string `json:"motherName" validate:"omitempty,max=255"`
	BirthPlace    string `json:"birthPlace" validate:"required,max=100"`
	BirthDate     string `json:"birthDate" validate:"required,datetime=2006-01-02"`
	Gender        string `json:"gender" validate:"required,oneof=Male Female"`
	Religion      string `json:"religion" validate:"required,oneof=Islam Christian Catholic Hinduism Buddhism Confucianism"`
	Phone         string `json:"phone" validate:"required,min=10,max=20,digits"`
	Clinic        string `json:"clinic" validate:"required,oneof=General Dental Pediatric Neurologist Orthopedic Urologist Cardiologist Dermatologist Obstetrician"`
}

// UpdatePatientRequest replaces every mutable field of the patient identified by ID.
// A medicalRecord sent by older clients is accepted and ignored.
type UpdatePatientRequest struct {
	ID            string `json:"id" validate:"required,uuid"`
	FullName      string `json:"fullName" validate:"required,max=255"`
	MedicalRecord string `json:"medicalRecord,omitempty"`
	NIK           string `json:"nik" validate:"required,len=16,digits"`
	MotherName    string `json:"motherName" validate:"omitempty,max=255"`
	BirthPlace    string `json:"birthPlace" validate:"required,max=100"`
	BirthDate     string `json:"birthDate" validate:"required,datetime=2006-01-02"`
	Gender        string `json:"gender" validate:"required,oneof=Male Female"`
	Religion      string `json:"religion" validate:"required,oneof=Islam Christian Catholic Hinduism Buddhism Confucianism"`
	Phone         string `json:"phone" validate:"required,min=10,max=20,digits"`
	Clinic        string `json:"clinic" validate:"required,oneof=General Dental Pediatric Neurologist Orthopedic Urologist Cardiologist Dermatologist Obstetrician"`
}

// PatientResponse represents a patient record in responses
type PatientResponse struct {
	ID                 uuid.UUID `json:"id"`
	RegistrationNumber string    `json:"registrationNumber"`
	FullName           string    `json:"fullName"`
	MedicalRecord      string    `json:"medicalRecord"`
	NIK                string    `json:"nik"`
	MotherName         string    `json:"motherName"`
	BirthPlace         string    `json:"birthPlace"`
	BirthDate          string    `json:"birthDate"`
	Gender             string    `json:"gender"`
	Religion           string    `json:"religion"`
	Phone              string    `json:"phone"`
	Clinic             string    `json:"clinic"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type CreatePatientResponse struct {
	Message            string    `json:"message"`
	ID                 uuid.UUID `json:"id"`
	MedicalRecord      string    `json:"medicalRecord"`
	RegistrationNumber string    `json:"registrationNumber"`
}

type NextMedicalRecordResponse struct {
	MedicalRecord string `json:"medicalRecord"`
}

// TicketFile is a rendered E-Ticket ready for download.
type TicketFile struct {
	FileName    string
	ContentType string
	Content     []byte
}
