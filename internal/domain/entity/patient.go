package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Patient is a registered patient of the clinic front desk.
// RegistrationNumber is assigned by the store and never written by the application.
type Patient struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RegistrationNumber string    `gorm:"column:registration_number;type:varchar(20);->" json:"registration_number"`
	FullName           string    `gorm:"type:varchar(255);not null" json:"full_name"`
	MedicalRecord      string    `gorm:"type:char(6);uniqueIndex;not null" json:"medical_record"`
	NIK                string    `gorm:"column:nik;type:char(16);not null" json:"nik"`
	MotherName         string    `gorm:"type:varchar(255)" json:"mother_name,omitempty"`
	BirthPlace         string    `gorm:"type:varchar(100);not null" json:"birth_place"`
	BirthDate          time.Time `gorm:"type:date;not null" json:"birth_date"`
	Gender             string    `gorm:"type:varchar(10);not null" json:"gender"`
	Religion           string    `gorm:"type:varchar(20);not null" json:"religion"`
	Phone              string    `gorm:"type:varchar(20);not null" json:"phone"`
	Clinic             string    `gorm:"type:varchar(30);not null" json:"clinic"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Patient) TableName() string {
	return "patients"
}

func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Gender constants
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
)

// Religion constants
const (
	ReligionIslam        = "Islam"
	ReligionChristian    = "Christian"
	ReligionCatholic     = "Catholic"
	ReligionHinduism     = "Hinduism"
	ReligionBuddhism     = "Buddhism"
	ReligionConfucianism = "Confucianism"
)

// Clinic constants
const (
	ClinicGeneral       = "General"
	ClinicDental        = "Dental"
	ClinicPediatric     = "Pediatric"
	ClinicNeurologist   = "Neurologist"
	ClinicOrthopedic    = "Orthopedic"
	ClinicUrologist     = "Urologist"
	ClinicCardiologist  = "Cardiologist"
	ClinicDermatologist = "Dermatologist"
	ClinicObstetrician  = "Obstetrician"
)

// MedicalRecordLength is the fixed width of a medical record number.
const MedicalRecordLength = 6

// PatientOrder selects how a full patient listing is sorted.
type PatientOrder string

const (
	// OrderByMedicalRecord sorts ascending by medical record number.
	OrderByMedicalRecord PatientOrder = "medical_record"
	// OrderByCreatedAt sorts newest registrations first.
	OrderByCreatedAt PatientOrder = "created_at"
)

func (o PatientOrder) Valid() bool {
	return o == OrderByMedicalRecord || o == OrderByCreatedAt
}
