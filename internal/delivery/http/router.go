package http

import (
	"net/http"

	"patient-registration/internal/delivery/http/handler"
	"patient-registration/internal/delivery/http/middleware"
	"patient-registration/pkg/response"

	"github.com/gorilla/mux"
)

type Router struct {
	router            *mux.Router
	patientHandler    *handler.PatientHandler
	authHandler       *handler.AuthHandler
	authMiddleware    *middleware.AuthMiddleware
	corsMiddleware    *middleware.CORSMiddleware
	loggingMiddleware *middleware.LoggingMiddleware
	metricsMiddleware *middleware.MetricsMiddleware
	loginRateLimiter  *middleware.RateLimiter
	metricsHandler    http.Handler
}

// NewRouter wires the HTTP routes. authHandler and authMiddleware are nil when
// sessions are disabled, leaving the patient routes open.
func NewRouter(
	patientHandler *handler.PatientHandler,
	authHandler *handler.AuthHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	loggingMiddleware *middleware.LoggingMiddleware,
	metricsMiddleware *middleware.MetricsMiddleware,
	loginRateLimiter *middleware.RateLimiter,
	metricsHandler http.Handler,
) *Router {
	return &Router{
		router:            mux.NewRouter(),
		patientHandler:    patientHandler,
		authHandler:       authHandler,
		authMiddleware:    authMiddleware,
		corsMiddleware:    corsMiddleware,
		loggingMiddleware: loggingMiddleware,
		metricsMiddleware: metricsMiddleware,
		loginRateLimiter:  loginRateLimiter,
		metricsHandler:    metricsHandler,
	}
}

func (r *Router) Setup() http.Handler {
	api := r.router.PathPrefix("/api").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	if r.authHandler != nil && r.authMiddleware != nil {
		// Auth routes (public)
		auth := api.PathPrefix("/auth").Subrouter()
		login := http.Handler(http.HandlerFunc(r.authHandler.Login))
		if r.loginRateLimiter != nil {
			login = r.loginRateLimiter.Limit(login)
		}
		auth.Handle("/login", login).Methods(http.MethodPost)

		// Auth routes (protected)
		authProtected := api.PathPrefix("/auth").Subrouter()
		authProtected.Use(r.authMiddleware.Authenticate)
		authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
		authProtected.HandleFunc("/session", r.authHandler.Session).Methods(http.MethodGet)
	}

	// Patient routes
	patient := api.PathPrefix("/patient").Subrouter()
	if r.authMiddleware != nil {
		patient.Use(r.authMiddleware.Authenticate)
	}
	patient.HandleFunc("/next-record", r.patientHandler.NextMedicalRecord).Methods(http.MethodGet)
	patient.HandleFunc("/ticket", r.patientHandler.PrintTicket).Methods(http.MethodGet)
	patient.HandleFunc("", r.patientHandler.GetPatients).Methods(http.MethodGet)
	patient.HandleFunc("", r.patientHandler.CreatePatient).Methods(http.MethodPost)
	patient.HandleFunc("", r.patientHandler.UpdatePatient).Methods(http.MethodPut)
	patient.HandleFunc("", r.patientHandler.DeletePatient).Methods(http.MethodDelete)

	if r.metricsHandler != nil {
		r.router.Handle("/metrics", r.metricsHandler).Methods(http.MethodGet)
	}

	if r.loggingMiddleware != nil {
		r.router.Use(r.loggingMiddleware.Handle)
	}
	if r.metricsMiddleware != nil {
		r.router.Use(r.metricsMiddleware.Handle)
	}

	// mux skips Use middleware when no route matches, so the fallbacks are
	// wrapped explicitly.
	r.router.NotFoundHandler = r.instrument(http.HandlerFunc(notFound))
	r.router.MethodNotAllowedHandler = r.instrument(http.HandlerFunc(methodNotAllowed))

	// CORS wraps the router so preflight requests are answered before route matching.
	return r.corsMiddleware.Handle(r.router)
}

func (r *Router) instrument(h http.Handler) http.Handler {
	if r.metricsMiddleware != nil {
		h = r.metricsMiddleware.Handle(h)
	}
	if r.loggingMiddleware != nil {
		h = r.loggingMiddleware.Handle(h)
	}
	return h
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func notFound(w http.ResponseWriter, req *http.Request) {
	response.NotFound(w, "Route not found")
}

func methodNotAllowed(w http.ResponseWriter, req *http.Request) {
	response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
}
