package converter

import (
	"patient-registration/internal/delivery/dto"
	"patient-registration/internal/domain/entity"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// PatientToResponse converts a Patient entity to PatientResponse DTO
func PatientToResponse(patient *entity.Patient) *dto.PatientResponse {
	if patient == nil {
		return nil
	}

	return &dto.PatientResponse{
		ID:                 patient.ID,
		RegistrationNumber: patient.RegistrationNumber,
		FullName:           patient.FullName,
		MedicalRecord:      patient.MedicalRecord,
		NIK:                patient.NIK,
		MotherName:         patient.MotherName,
		BirthPlace:         patient.BirthPlace,
		BirthDate:          patient.BirthDate.Format(DateLayout),
		Gender:             patient.Gender,
		Religion:           patient.Religion,
		Phone:              patient.Phone,
		Clinic:             patient.Clinic,
		CreatedAt:          patient.CreatedAt,
		UpdatedAt:          patient.UpdatedAt,
	}
}

// PatientsToResponse converts a slice of Patient entities, never returning nil
// so an empty listing encodes as [].
func PatientsToResponse(patients []entity.Patient) []dto.PatientResponse {
	responses := make([]dto.PatientResponse, 0, len(patients))
	for i := range patients {
		responses = append(responses, *PatientToResponse(&patients[i]))
	}
	return responses
}

// SessionToResponse converts the request session to SessionResponse DTO
func SessionToResponse(session *entity.Session) *dto.SessionResponse {
	if session == nil || !session.Authenticated {
		return &dto.SessionResponse{Authenticated: false}
	}

	expiresAt := session.ExpiresAt
	return &dto.SessionResponse{
		Authenticated: true,
		Username:      session.Username,
		ExpiresAt:     &expiresAt,
	}
}
