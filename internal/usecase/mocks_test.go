package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"patient-registration/internal/domain/entity"
	"patient-registration/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Compile-time check to ensure MockPatientRepository implements PatientRepository
var _ repository.PatientRepository = (*MockPatientRepository)(nil)

// MockPatientRepository is a mock implementation of PatientRepository.
type MockPatientRepository struct {
	CreateFunc               func(ctx context.Context, db *gorm.DB, patient *entity.Patient) error
	FindByIDFunc             func(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Patient, error)
	FindAllFunc              func(ctx context.Context, db *gorm.DB, order entity.PatientOrder) ([]entity.Patient, error)
	FindMaxMedicalRecordFunc func(ctx context.Context, db *gorm.DB) (string, error)
	UpdateFunc               func(ctx context.Context, db *gorm.DB, patient *entity.Patient) (int64, error)
	DeleteFunc               func(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error)
}

var errNotMocked = errors.New("not implemented in mock")

func (m *MockPatientRepository) Create(ctx context.Context, db *gorm.DB, patient *entity.Patient) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, db, patient)
	}
	return errNotMocked
}

func (m *MockPatientRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Patient, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, db, id)
	}
	return nil, errNotMocked
}

func (m *MockPatientRepository) FindAll(ctx context.Context, db *gorm.DB, order entity.PatientOrder) ([]entity.Patient, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx, db, order)
	}
	return nil, errNotMocked
}

func (m *MockPatientRepository) FindMaxMedicalRecord(ctx context.Context, db *gorm.DB) (string, error) {
	if m.FindMaxMedicalRecordFunc != nil {
		return m.FindMaxMedicalRecordFunc(ctx, db)
	}
	return "", errNotMocked
}

func (m *MockPatientRepository) Update(ctx context.Context, db *gorm.DB, patient *entity.Patient) (int64, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, db, patient)
	}
	return 0, errNotMocked
}

func (m *MockPatientRepository) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, db, id)
	}
	return 0, errNotMocked
}

// Compile-time check to ensure mapSessionRepository implements SessionRepository
var _ repository.SessionRepository = (*mapSessionRepository)(nil)

// mapSessionRepository keeps sessions in memory, keyed like the Redis store.
type mapSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]time.Duration
	err      error
}

func newMapSessionRepository() *mapSessionRepository {
	return &mapSessionRepository{sessions: make(map[string]time.Duration)}
}

func (r *mapSessionRepository) key(username, tokenID string) string {
	return username + ":" + tokenID
}

func (r *mapSessionRepository) Save(ctx context.Context, session *entity.Session, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sessions[r.key(session.Username, session.TokenID)] = ttl
	return nil
}

func (r *mapSessionRepository) Exists(ctx context.Context, username, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.sessions[r.key(username, tokenID)]
	return ok, nil
}

func (r *mapSessionRepository) Delete(ctx context.Context, username, tokenID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	delete(r.sessions, r.key(username, tokenID))
	return nil
}

// stubTicketPrinter records the patient it was asked to print.
type stubTicketPrinter struct {
	printed *entity.Patient
	err     error
}

func (p *stubTicketPrinter) Render(patient *entity.Patient) (string, []byte, error) {
	p.printed = patient
	if p.err != nil {
		return "", nil, p.err
	}
	return "E-Ticket-" + patient.RegistrationNumber + ".pdf", []byte("%PDF-stub"), nil
}
