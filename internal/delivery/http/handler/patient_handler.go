package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"patient-registration/internal/delivery/dto"
	"patient-registration/internal/domain/entity"
	"patient-registration/internal/usecase"
	"patient-registration/pkg/response"
	"patient-registration/pkg/validator"

	"github.com/google/uuid"
)

type PatientHandler struct {
	patientUsecase usecase.PatientUsecase
	validator      *validator.CustomValidator
}

func NewPatientHandler(patientUsecase usecase.PatientUsecase, validator *validator.CustomValidator) *PatientHandler {
	return &PatientHandler{
		patientUsecase: patientUsecase,
		validator:      validator,
	}
}

// writeError maps usecase errors to HTTP responses. fallback is used for
// anything unclassified.
func (h *PatientHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrPatientNotFound):
		response.NotFound(w, "Patient not found")
	case errors.Is(err, usecase.ErrInvalidPatientID):
		response.BadRequest(w, "Invalid patient ID")
	case errors.Is(err, usecase.ErrInvalidBirthDate), errors.Is(err, usecase.ErrInvalidMedicalRecord):
		response.BadRequest(w, err.Error())
	case errors.Is(err, usecase.ErrDuplicateMedicalRecord):
		response.Conflict(w, "Medical record number already in use")
	case errors.Is(err, usecase.ErrGenerationFailed):
		response.InternalServerError(w, "Failed to generate medical record")
	case errors.Is(err, usecase.ErrStorage):
		response.InternalServerError(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}

func parsePatientID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// GetPatients returns one patient when ?id is given, otherwise the listing.
// GET /patient?id=<uuid>
// GET /patient?order=medical_record|created_at&q=<search>
func (h *PatientHandler) GetPatients(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if query.Has("id") {
		id, ok := parsePatientID(r)
		if !ok {
			response.BadRequest(w, "Invalid patient ID")
			return
		}

		patient, err := h.patientUsecase.GetPatient(r.Context(), id)
		if err != nil {
			h.writeError(w, err, "Failed to get patient")
			return
		}

		response.JSON(w, http.StatusOK, patient)
		return
	}

	order := entity.PatientOrder(query.Get("order"))
	if order != "" && !order.Valid() {
		response.BadRequest(w, "order must be medical_record or created_at")
		return
	}

	patients, err := h.patientUsecase.GetAllPatients(r.Context(), order, query.Get("q"))
	if err != nil {
		h.writeError(w, err, "Failed to get patients")
		return
	}

	response.JSON(w, http.StatusOK, patients)
}

// CreatePatient registers a new patient.
// POST /patient
func (h *PatientHandler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	patient, err := h.patientUsecase.CreatePatient(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "Failed to create patient")
		return
	}

	response.JSON(w, http.StatusCreated, dto.CreatePatientResponse{
		Message:            "success",
		ID:                 patient.ID,
		MedicalRecord:      patient.MedicalRecord,
		RegistrationNumber: patient.RegistrationNumber,
	})
}

// UpdatePatient replaces the mutable fields of the patient named by body.id.
// PUT /patient
func (h *PatientHandler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	if _, err := h.patientUsecase.UpdatePatient(r.Context(), &req); err != nil {
		h.writeError(w, err, "Failed to update patient")
		return
	}

	response.Success(w, http.StatusOK, "updated")
}

// DeletePatient removes a patient. Unknown ids succeed.
// DELETE /patient?id=<uuid>
func (h *PatientHandler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePatientID(r)
	if !ok {
		response.BadRequest(w, "Invalid patient ID")
		return
	}

	if err := h.patientUsecase.DeletePatient(r.Context(), id); err != nil {
		h.writeError(w, err, "Failed to delete patient")
		return
	}

	response.Success(w, http.StatusOK, "deleted")
}

// NextMedicalRecord proposes the medical record number for the next registration.
// GET /patient/next-record
func (h *PatientHandler) NextMedicalRecord(w http.ResponseWriter, r *http.Request) {
	next, err := h.patientUsecase.NextMedicalRecord(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to generate medical record")
		return
	}

	response.JSON(w, http.StatusOK, dto.NextMedicalRecordResponse{MedicalRecord: next})
}

// PrintTicket downloads the patient's E-Ticket as a PDF.
// GET /patient/ticket?id=<uuid>
func (h *PatientHandler) PrintTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePatientID(r)
	if !ok {
		response.BadRequest(w, "Invalid patient ID")
		return
	}

	ticket, err := h.patientUsecase.PrintTicket(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "Failed to print ticket")
		return
	}

	response.File(w, ticket.ContentType, ticket.FileName, ticket.Content)
}
