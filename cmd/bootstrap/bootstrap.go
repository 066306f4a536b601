package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"patient-registration/config"
	deliveryHttp "patient-registration/internal/delivery/http"
	"patient-registration/internal/delivery/http/handler"
	"patient-registration/internal/delivery/http/middleware"
	"patient-registration/internal/infrastructure/cache"
	"patient-registration/internal/infrastructure/database"
	"patient-registration/internal/repository"
	"patient-registration/internal/service"
	"patient-registration/internal/usecase"
	"patient-registration/pkg/jwt"
	"patient-registration/pkg/metrics"
	"patient-registration/pkg/pdf"
	"patient-registration/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const metricsNamespace = "patient_registration"

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New(cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	// Setup logger
	SetupLogger(cfg.App.LogLevel)

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(cfg.DB); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize database
	db, err := database.NewConnection(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.WithField("driver", cfg.DB.Driver).Info("Database connected successfully")

	// Redis only backs operator sessions
	if cfg.Auth.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		app.RedisClient = redisClient
		logrus.Info("Redis connected successfully")
	} else {
		logrus.Warn("Operator sessions are disabled, patient routes are open")
	}

	// Initialize all layers
	app.Server = initializeServer(cfg, db, app.RedisClient)

	return app, nil
}

// SetupLogger configures the logrus logger
func SetupLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *http.Server {
	log := logrus.StandardLogger()
	m := metrics.NewMetrics(metricsNamespace)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	patientRepo := repository.NewPatientRepository()

	// Initialize services
	ticketService := service.NewTicketService(cfg.Ticket, pdf.NewRenderer(time.Time{}))

	// Initialize usecases
	allocator := usecase.NewMedicalRecordAllocator(db, log, patientRepo, m)
	patientUsecase := usecase.NewPatientUsecase(db, log, patientRepo, allocator, ticketService, m)

	// Initialize handlers
	patientHandler := handler.NewPatientHandler(patientUsecase, customValidator)

	var (
		authHandler    *handler.AuthHandler
		authMiddleware *middleware.AuthMiddleware
	)
	if redisClient != nil {
		jwtService := jwt.NewJWTService(cfg.JWT)
		sessionRepo := repository.NewSessionRepository(redisClient)
		authUsecase := usecase.NewAuthUsecase(log, cfg.Auth, sessionRepo, jwtService, m)
		authHandler = handler.NewAuthHandler(authUsecase, customValidator)
		authMiddleware = middleware.NewAuthMiddleware(authUsecase)
	}

	// Initialize middleware
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigin)
	loggingMiddleware := middleware.NewLoggingMiddleware(log)
	metricsMiddleware := middleware.NewMetricsMiddleware(m)
	loginRateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:           middleware.PerMinute(cfg.RateLimit.LoginPerMinute),
		Burst:          cfg.RateLimit.LoginBurst,
		TrustedProxies: cfg.RateLimit.TrustedProxies,
	})

	// Initialize router
	router := deliveryHttp.NewRouter(
		patientHandler,
		authHandler,
		authMiddleware,
		corsMiddleware,
		loggingMiddleware,
		metricsMiddleware,
		loginRateLimiter,
		m.Handler(),
	)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:         serverAddr,
		Handler:      httpRouter,
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis)
func (app *App) Close() {
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
