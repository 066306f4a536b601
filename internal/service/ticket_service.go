package service

import (
	"strings"

	"patient-registration/config"
	"patient-registration/internal/domain/entity"
	"patient-registration/pkg/pdf"
)

// placeholder is printed for any field the patient record leaves empty.
const placeholder = "-"

const birthDateLayout = "2006-01-02"

// TicketService lays out the E-Ticket for one patient and renders it.
type TicketService struct {
	cfg      config.TicketConfig
	renderer pdf.Renderer
}

func NewTicketService(cfg config.TicketConfig, renderer pdf.Renderer) *TicketService {
	if cfg.DateLayout == "" {
		cfg.DateLayout = "02/01/2006"
	}
	return &TicketService{cfg: cfg, renderer: renderer}
}

func orPlaceholder(value string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}

// Compose builds the ticket document. It does not touch the store.
func (s *TicketService) Compose(patient *entity.Patient) *pdf.Document {
	birthDate := ""
	if !patient.BirthDate.IsZero() {
		birthDate = patient.BirthDate.Format(birthDateLayout)
	}
	entryDate := ""
	if !patient.CreatedAt.IsZero() {
		entryDate = patient.CreatedAt.Format(s.cfg.DateLayout)
	}

	header := make([]string, 0, 3)
	for _, line := range []string{s.cfg.InstitutionName, s.cfg.InstitutionAddress, s.cfg.InstitutionPhone} {
		if line != "" {
			header = append(header, line)
		}
	}

	return &pdf.Document{
		Header: header,
		Title:  s.cfg.Title,
		Rows: []pdf.Row{
			{Label: "Registration Number", Value: orPlaceholder(patient.RegistrationNumber)},
			{Label: "Patient Name", Value: orPlaceholder(patient.FullName)},
			{Label: "Identification Number", Value: orPlaceholder(patient.NIK)},
			{Label: "Medical Record Number", Value: orPlaceholder(patient.MedicalRecord)},
			{Label: "Gender", Value: orPlaceholder(patient.Gender)},
			{Label: "Mother Name", Value: orPlaceholder(patient.MotherName)},
			{Label: "Date of Birth", Value: orPlaceholder(birthDate)},
			{Label: "Phone Number", Value: orPlaceholder(patient.Phone)},
			{Label: "Date of Entry", Value: orPlaceholder(entryDate)},
			{Label: "Specialist", Value: orPlaceholder(patient.Clinic)},
		},
		Footer:  s.cfg.Footer,
		Subject: s.FileName(patient),
	}
}

// FileName is derived from the registration number, falling back to the
// medical record number for rows the store has not numbered yet.
func (s *TicketService) FileName(patient *entity.Patient) string {
	id := patient.RegistrationNumber
	if strings.TrimSpace(id) == "" {
		id = patient.MedicalRecord
	}
	return "E-Ticket-" + id + ".pdf"
}

// Render composes and renders the ticket, returning its file name and PDF bytes.
func (s *TicketService) Render(patient *entity.Patient) (string, []byte, error) {
	content, err := s.renderer.Render(s.Compose(patient))
	if err != nil {
		return "", nil, err
	}
	return s.FileName(patient), content, nil
}
