package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pubudu-echanneling/config"
	deliveryHttp "pubudu-echanneling/internal/delivery/http"
	"pubudu-echanneling/internal/delivery/http/handler"
	"pubudu-echanneling/internal/delivery/http/middleware"
	"pubudu-echanneling/internal/infrastructure/cache"
	"pubudu-echanneling/internal/infrastructure/database"
	"pubudu-echanneling/internal/infrastructure/messaging"
	"pubudu-echanneling/internal/repository"
	"pubudu-echanneling/internal/service"
	"pubudu-echanneling/internal/usecase"
	"pubudu-echanneling/pkg/jwt"
	"pubudu-echanneling/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Publisher   messaging.Publisher
	Slots       *service.SlotService
	Scheduler   *service.Scheduler
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New(cfg *config.Config) (*App, error) {
	if cfg.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}

	log := SetupLogger(cfg.App)
	app := &App{Config: cfg, Log: log}

	loc, err := time.LoadLocation(cfg.DB.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_TIMEZONE %q: %w", cfg.DB.TimeZone, err)
	}

	// Schema first, so a fresh database is usable right away
	if err := database.MigrateUp(cfg.DB); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	db, err := database.NewPostgresConnection(cfg.DB, !cfg.IsProduction())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	log.Info("Database connected successfully")

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	log.Info("Redis connected successfully")

	app.Publisher = messaging.NewPublisher(cfg.Kafka, log)

	app.Slots = service.NewSlotService(db, redisClient, log, loc)
	syncCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Slots.SyncOnStartup(syncCtx); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to sync slot counters: %w", err)
	}

	if err := app.initialize(loc); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// SetupLogger configures the standard logrus logger from config and returns it.
func SetupLogger(cfg config.AppConfig) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// initialize wires repositories, services, usecases and the HTTP server.
func (app *App) initialize(loc *time.Location) error {
	cfg, db, log := app.Config, app.DB, app.Log

	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()

	// Repositories
	userRepo := repository.NewUserRepository()
	patientProfileRepo := repository.NewPatientProfileRepository()
	doctorProfileRepo := repository.NewDoctorProfileRepository()
	receptionistRepo := repository.NewReceptionistProfileRepository()
	scheduleRepo := repository.NewDoctorScheduleRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	paymentRepo := repository.NewPaymentRepository()
	resetTokenRepo := repository.NewPasswordResetTokenRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Services
	sessions := service.NewSessionStore(app.RedisClient, log)
	auditService := service.NewAuditService(log, auditLogRepo)
	notifier := service.NewNotificationService(app.Publisher, log)

	app.Scheduler = service.NewScheduler(db, log, loc, appointmentRepo, resetTokenRepo, notifier)
	if err := app.Scheduler.Start(cfg.Scheduler.ReminderSpec, cfg.Scheduler.CleanupSpec); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	registrationProfile := validator.LegacyServer
	if cfg.Validation.Strict {
		registrationProfile = validator.PatientSelfRegistration
	}

	// Usecases
	authUsecase := usecase.NewAuthUsecase(db, log, userRepo, patientProfileRepo, doctorProfileRepo, receptionistRepo,
		resetTokenRepo, jwtService, sessions, notifier, auditService, usecase.AuthOptions{
			RegistrationProfile: registrationProfile,
			FrontendURL:         cfg.App.FrontendURL,
			ResetTokenExpiry:    cfg.Auth.ResetTokenExpiry,
		})
	doctorProfileUsecase := usecase.NewDoctorProfileUsecase(db, log, userRepo, doctorProfileRepo, appointmentRepo, auditService)
	receptionistUsecase := usecase.NewReceptionistProfileUsecase(db, log, userRepo, receptionistRepo, auditService)
	scheduleUsecase := usecase.NewDoctorScheduleUsecase(db, log, loc, scheduleRepo, doctorProfileRepo, appointmentRepo, app.Slots, auditService)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, loc, appointmentRepo, scheduleRepo, patientProfileRepo, paymentRepo, app.Slots, auditService, notifier)
	paymentUsecase := usecase.NewPaymentUsecase(db, log, appointmentRepo, paymentRepo, auditService, notifier)
	patientUsecase := usecase.NewPatientProfileUsecase(db, log, userRepo, patientProfileRepo, auditService)
	reportUsecase := usecase.NewReportUsecase(db, log, userRepo, appointmentRepo, paymentRepo)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Handlers
	handlers := deliveryHttp.Handlers{
		Auth:           handler.NewAuthHandler(authUsecase, customValidator),
		Doctor:         handler.NewDoctorHandler(doctorProfileUsecase, customValidator),
		Receptionist:   handler.NewReceptionistHandler(receptionistUsecase, customValidator),
		DoctorSchedule: handler.NewDoctorScheduleHandler(scheduleUsecase, customValidator),
		Patient:        handler.NewPatientHandler(patientUsecase),
		Appointment:    handler.NewAppointmentHandler(appointmentUsecase, customValidator),
		Payment:        handler.NewPaymentHandler(paymentUsecase, customValidator),
		Report:         handler.NewReportHandler(reportUsecase),
		AuditLog:       handler.NewAuditLogHandler(auditLogUsecase),
		Validation:     handler.NewValidationHandler(),
		Health: handler.NewHealthHandler(map[string]handler.HealthCheck{
			"database": func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
			"redis": func(ctx context.Context) error {
				return app.RedisClient.Ping(ctx).Err()
			},
		}),
	}

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, sessions, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.FrontendURL)
	loggingMiddleware := middleware.NewLoggingMiddleware(log)

	router := deliveryHttp.NewRouter(handlers, authMiddleware, corsMiddleware, loggingMiddleware)

	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}
	if app.Scheduler != nil {
		app.Scheduler.Stop(ctx)
	}

	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close releases background workers and connections. Safe on a partly built App.
func (app *App) Close() {
	if app.Slots != nil {
		app.Slots.Stop()
	}

	if app.Publisher != nil {
		if err := app.Publisher.Close(); err != nil {
			app.Log.Warnf("Failed to close publisher: %v", err)
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}

	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

// Seed creates the default roles and the first administrator.
func Seed(ctx context.Context, cfg *config.Config) error {
	log := SetupLogger(cfg.App)

	if err := database.MigrateUp(cfg.DB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	db, err := database.NewPostgresConnection(cfg.DB, false)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	seeder := usecase.NewSeedUsecase(db, log, repository.NewRoleRepository(), repository.NewUserRepository())
	return seeder.Seed(ctx, usecase.SeedAdmin{
		Username: cfg.Seed.AdminUsername,
		Password: cfg.Seed.AdminPassword,
		Email:    cfg.Seed.AdminEmail,
	})
}
