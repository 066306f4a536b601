package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"patient-registration/config"
	deliveryHttp "patient-registration/internal/delivery/http"
	"patient-registration/internal/delivery/http/handler"
	"patient-registration/internal/delivery/http/middleware"
	"patient-registration/internal/domain/entity"
	"patient-registration/internal/repository"
	"patient-registration/internal/service"
	"patient-registration/internal/testutil"
	"patient-registration/internal/usecase"
	"patient-registration/pkg/jwt"
	"patient-registration/pkg/metrics"
	"patient-registration/pkg/pdf"
	"patient-registration/pkg/validator"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memorySessionRepository is an in-memory stand-in for the Redis session store.
type memorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]bool
}

func (r *memorySessionRepository) Save(ctx context.Context, session *entity.Session, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.Username+":"+session.TokenID] = true
	return nil
}

func (r *memorySessionRepository) Exists(ctx context.Context, username, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[username+":"+tokenID], nil
}

func (r *memorySessionRepository) Delete(ctx context.Context, username, tokenID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, username+":"+tokenID)
	return nil
}

type serverOptions struct {
	auth       bool
	loginBurst int
}

func newTestServer(t *testing.T, opts serverOptions) http.Handler {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	db := testutil.NewSQLiteDB(t)
	m := metrics.NewMetrics("test")
	customValidator := validator.NewValidator()

	patientRepo := repository.NewPatientRepository()
	ticketService := service.NewTicketService(config.TicketConfig{
		InstitutionName: "Hospital X South Africa",
		Title:           "E-Ticket Registration",
		DateLayout:      "02/01/2006",
	}, pdf.NewRenderer(time.Time{}))
	allocator := usecase.NewMedicalRecordAllocator(db, log, patientRepo, m)
	patientUsecase := usecase.NewPatientUsecase(db, log, patientRepo, allocator, ticketService, m)
	patientHandler := handler.NewPatientHandler(patientUsecase, customValidator)

	var (
		authHandler    *handler.AuthHandler
		authMiddleware *middleware.AuthMiddleware
	)
	if opts.auth {
		hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.MinCost)
		require.NoError(t, err)

		authUsecase := usecase.NewAuthUsecase(log, config.AuthConfig{
			Enabled:              true,
			OperatorUsername:     "frontdesk",
			OperatorPasswordHash: string(hash),
		}, &memorySessionRepository{sessions: map[string]bool{}},
			jwt.NewJWTService(config.JWTConfig{Secret: "secret", AccessExpiry: time.Hour}), m)
		authHandler = handler.NewAuthHandler(authUsecase, customValidator)
		authMiddleware = middleware.NewAuthMiddleware(authUsecase)
	}

	burst := opts.loginBurst
	if burst == 0 {
		burst = 100
	}

	router := deliveryHttp.NewRouter(
		patientHandler,
		authHandler,
		authMiddleware,
		middleware.NewCORSMiddleware("*"),
		middleware.NewLoggingMiddleware(log),
		middleware.NewMetricsMiddleware(m),
		middleware.NewRateLimiter(middleware.RateLimiterConfig{Rate: middleware.PerMinute(1), Burst: burst}),
		m.Handler(),
	)
	return router.Setup()
}

func do(t *testing.T, h http.Handler, method, target string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func patientBody(medicalRecord string) map[string]interface{} {
	return map[string]interface{}{
		"fullName":      "Alice",
		"medicalRecord": medicalRecord,
		"nik":           "3201010101010001",
		"motherName":    "Carol",
		"birthPlace":    "Bandung",
		"birthDate":     "1990-01-02",
		"gender":        "Female",
		"religion":      "Islam",
		"phone":         "081234567890",
		"clinic":        "General",
	}
}

func createPatient(t *testing.T, h http.Handler, medicalRecord, token string) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/patient", patientBody(medicalRecord), token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode(t, rec)["id"].(string)
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, serverOptions{})

	rec := do(t, h, http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestNextRecord(t *testing.T) {
	h := newTestServer(t, serverOptions{})

	rec := do(t, h, http.MethodGet, "/api/patient/next-record", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"medicalRecord":"000001"}`, rec.Body.String())

	createPatient(t, h, "000001", "")

	rec = do(t, h, http.MethodGet, "/api/patient/next-record", nil, "")
	assert.JSONEq(t, `{"medicalRecord":"000002"}`, rec.Body.String())
}

func TestCreatePatient(t *testing.T) {
	h := newTestServer(t, serverOptions{})

	rec := do(t, h, http.MethodPost, "/api/patient", patientBody("000001"), "")
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "success", body["message"])
	assert.Equal(t, "000001", body["medicalRecord"])
	assert.Equal(t, "REG0000001", body["registrationNumber"])
	assert.NotEmpty(t, body["id"])
}

func TestCreatePatient_Validation(t *testing.T) {
	h := newTestServer(t, serverOptions{})

	req := patientBody("000001")
	req["nik"] = "123"
	req["phone"] = "0812"
	req["religion"] = "Unknown"
	delete(req, "fullName")

	rec := do(t, h, http.MethodPost, "/api/patient", req, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "Validation failed", body["message"])
	errs := body["errors"].(map[string]interface{})
	assert.Contains(t, errs, "nik")
	assert.Contains(t, errs, "phone")
	assert.Contains(t, errs, "religion")
	assert.Contains(t, errs, "fullName")
}

func TestCreatePatient_MalformedBody(t *testing.T) {
	h := newTestServer(t, serverOptions{})

	req := httptest.NewRequest(http.MethodPost, "/api/patient", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decode(t, rec)["message"])
}

func TestCreatePatient_DuplicateMedicalRecord(t *testing.T) {
	h := newTestServer(t, serverOptions{})

	createPatient(t, h, "000001", "")

	rec := do(t, h, http.MethodPost, "/api/patient", patientBody("000001"), "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Medical record number already in use", decode(t, rec)["message"])
}

func TestGetPatient(t *testing.T) {
	h := newTestServer(t, serverOptions{})
	id := createPatient(t, h, "000001", "")

	rec := do(t, h, http.MethodGet, "/api/patient?id="+id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	for field, want := range patientBody("000001") {
		assert.Equal(t, want, body[field], field)
	}
	assert.Equal(t, id, body["id"])

	rec = do(t, h, http.MethodGet, "/api/patient?id=7d3c1f0e-8a0b-4c55-9a34-5d0f6f8d2b11", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Patient not found", decode(t, rec)["message"])

	rec = do(t, h, http.MethodGet, "/api/patient?id=42", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPatients(t *testing.T) {
	h := newTestServer(t, serverOptions{})

	rec := do(t, h, http.MethodGet, "/api/patient", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	createPatient(t, h, "000002", "")
	bob := patientBody("000003")
	bob["fullName"] = "Bob"
	bob["clinic"] = "Dental"
	rec = do(t, h, http.MethodPost, "/api/patient", bob, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var list []map[string]interface{}

	rec = do(t, h, http.MethodGet, "/api/patient", nil, "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "000002", list[0]["medicalRecord"])

	rec = do(t, h, http.MethodGet, "/api/patient?order=created_at", nil, "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "Bob", list[0]["fullName"])

	rec = do(t, h, http.MethodGet, "/api/patient?q=den", nil, "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Bob", list[0]["fullName"])

	rec = do(t, h, http.MethodGet, "/api/patient?order=full_name", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdatePatient(t *testing.T) {
	h := newTestServer(t, serverOptions{})
	id := createPatient(t, h, "000001", "")

	update := patientBody("")
	update["id"] = id
	update["fullName"] = "Alice Smith"
	delete(update, "motherName")
	delete(update, "medicalRecord")

	rec := do(t, h, http.MethodPut, "/api/patient", update, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"updated"}`, rec.Body.String())

	body := decode(t, do(t, h, http.MethodGet, "/api/patient?id="+id, nil, ""))
	assert.Equal(t, "Alice Smith", body["fullName"])
	assert.Equal(t, "", body["motherName"])
	assert.Equal(t, "000001", body["medicalRecord"])

	update["id"] = "7d3c1f0e-8a0b-4c55-9a34-5d0f6f8d2b11"
	rec = do(t, h, http.MethodPut, "/api/patient", update, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletePatient(t *testing.T) {
	h := newTestServer(t, serverOptions{})
	id := createPatient(t, h, "000001", "")

	rec := do(t, h, http.MethodDelete, "/api/patient?id="+id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"deleted"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/patient?id="+id, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/patient?id="+id, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/patient", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPrintTicket(t *testing.T) {
	h := newTestServer(t, serverOptions{})
	id := createPatient(t, h, "000001", "")

	rec := do(t, h, http.MethodGet, "/api/patient/ticket?id="+id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="E-Ticket-REG0000001.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec = do(t, h, http.MethodGet, "/api/patient/ticket?id=7d3c1f0e-8a0b-4c55-9a34-5d0f6f8d2b11", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, serverOptions{})

	rec := do(t, h, http.MethodOptions, "/api/patient", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, serverOptions{})
	do(t, h, http.MethodGet, "/api/patient", nil, "")

	rec := do(t, h, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_http_requests_total{method="GET",route="/api/patient",status="200"} 1`)
}

func TestUnmatchedRoutesAreRecorded(t *testing.T) {
	h := newTestServer(t, serverOptions{})

	rec := do(t, h, http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", decode(t, rec)["message"])

	rec = do(t, h, http.MethodDelete, "/api/patient/next-record", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(t, h, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	assert.Contains(t, rec.Body.String(), `test_http_requests_total{method="DELETE",route="unmatched",status="405"} 1`)
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/auth/login", map[string]string{"username": "frontdesk", "password": "admin"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode(t, rec)["token"].(string)
}

func TestSessionGate(t *testing.T) {
	h := newTestServer(t, serverOptions{auth: true})

	rec := do(t, h, http.MethodGet, "/api/patient", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/patient", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := login(t, h)

	rec = do(t, h, http.MethodGet, "/api/patient", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/auth/session", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	session := decode(t, rec)
	assert.Equal(t, true, session["authenticated"])
	assert.Equal(t, "frontdesk", session["username"])

	rec = do(t, h, http.MethodPost, "/api/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/patient", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Session has been revoked", decode(t, rec)["message"])
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newTestServer(t, serverOptions{auth: true})

	rec := do(t, h, http.MethodPost, "/api/auth/login", map[string]string{"username": "frontdesk", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid username or password", decode(t, rec)["message"])
}

func TestLogin_RateLimited(t *testing.T) {
	h := newTestServer(t, serverOptions{auth: true, loginBurst: 1})

	creds := map[string]string{"username": "frontdesk", "password": "nope"}
	rec := do(t, h, http.MethodPost, "/api/auth/login", creds, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/auth/login", creds, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAuthRoutesAbsentWhenDisabled(t *testing.T) {
	h := newTestServer(t, serverOptions{})

	rec := do(t, h, http.MethodPost, "/api/auth/login", map[string]string{"username": "a", "password": "b"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
