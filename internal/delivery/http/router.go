package http

import (
	"net/http"

	"pubudu-echanneling/internal/delivery/http/handler"
	"pubudu-echanneling/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router                *mux.Router
	authHandler           *handler.AuthHandler
	doctorHandler         *handler.DoctorHandler
	receptionistHandler   *handler.ReceptionistHandler
	doctorScheduleHandler *handler.DoctorScheduleHandler
	patientHandler        *handler.PatientHandler
	appointmentHandler    *handler.AppointmentHandler
	paymentHandler        *handler.PaymentHandler
	reportHandler         *handler.ReportHandler
	auditLogHandler       *handler.AuditLogHandler
	validationHandler     *handler.ValidationHandler
	healthHandler         *handler.HealthHandler
	authMiddleware        *middleware.AuthMiddleware
	corsMiddleware        *middleware.CORSMiddleware
	loggingMiddleware     *middleware.LoggingMiddleware
}

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Auth           *handler.AuthHandler
	Doctor         *handler.DoctorHandler
	Receptionist   *handler.ReceptionistHandler
	DoctorSchedule *handler.DoctorScheduleHandler
	Patient        *handler.PatientHandler
	Appointment    *handler.AppointmentHandler
	Payment        *handler.PaymentHandler
	Report         *handler.ReportHandler
	AuditLog       *handler.AuditLogHandler
	Validation     *handler.ValidationHandler
	Health         *handler.HealthHandler
}

func NewRouter(
	handlers Handlers,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	loggingMiddleware *middleware.LoggingMiddleware,
) *Router {
	return &Router{
		router:                mux.NewRouter(),
		authHandler:           handlers.Auth,
		doctorHandler:         handlers.Doctor,
		receptionistHandler:   handlers.Receptionist,
		doctorScheduleHandler: handlers.DoctorSchedule,
		patientHandler:        handlers.Patient,
		appointmentHandler:    handlers.Appointment,
		paymentHandler:        handlers.Payment,
		reportHandler:         handlers.Report,
		auditLogHandler:       handlers.AuditLog,
		validationHandler:     handlers.Validation,
		healthHandler:         handlers.Health,
		authMiddleware:        authMiddleware,
		corsMiddleware:        corsMiddleware,
		loggingMiddleware:     loggingMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	r.router.Use(r.loggingMiddleware.Handle)
	r.router.Use(r.corsMiddleware.Handle)
	// Preflight requests must reach the CORS middleware even without a matching method
	r.router.MethodNotAllowedHandler = r.corsMiddleware.Handle(http.HandlerFunc(methodNotAllowed))

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthHandler.Health).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)
	auth.HandleFunc("/forgot-password", r.authHandler.ForgotPassword).Methods(http.MethodPost)
	auth.HandleFunc("/reset-password", r.authHandler.ResetPassword).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/profile", r.authHandler.GetProfile).Methods(http.MethodGet)
	authProtected.HandleFunc("/profile", r.authHandler.UpdateProfile).Methods(http.MethodPut)
	authProtected.HandleFunc("/change-password", r.authHandler.ChangePassword).Methods(http.MethodPut)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)

	// Public catalogue
	api.HandleFunc("/doctors", r.doctorHandler.ListPublicDoctors).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}/schedules", r.doctorScheduleHandler.GetSchedulesByDoctor).Methods(http.MethodGet)

	// Shared validation rules
	validation := api.PathPrefix("/validation").Subrouter()
	validation.HandleFunc("/profiles", r.validationHandler.ListProfiles).Methods(http.MethodGet)
	validation.HandleFunc("/profiles/{name}", r.validationHandler.ValidateForm).Methods(http.MethodPost)
	validation.HandleFunc("/profiles/{name}/fields/{field}", r.validationHandler.ValidateField).Methods(http.MethodPost)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/doctors", r.doctorHandler.CreateDoctor).Methods(http.MethodPost)
	admin.HandleFunc("/doctors", r.doctorHandler.GetAllDoctors).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{id}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{id}", r.doctorHandler.UpdateDoctor).Methods(http.MethodPut)
	admin.HandleFunc("/doctors/{id}", r.doctorHandler.DeleteDoctor).Methods(http.MethodDelete)

	admin.HandleFunc("/receptionists", r.receptionistHandler.CreateReceptionist).Methods(http.MethodPost)
	admin.HandleFunc("/receptionists", r.receptionistHandler.GetAllReceptionists).Methods(http.MethodGet)
	admin.HandleFunc("/receptionists/{id}", r.receptionistHandler.GetReceptionist).Methods(http.MethodGet)
	admin.HandleFunc("/receptionists/{id}", r.receptionistHandler.UpdateReceptionist).Methods(http.MethodPut)
	admin.HandleFunc("/receptionists/{id}", r.receptionistHandler.DeleteReceptionist).Methods(http.MethodDelete)

	admin.HandleFunc("/schedules", r.doctorScheduleHandler.CreateSchedule).Methods(http.MethodPost)
	admin.HandleFunc("/schedules/{id}", r.doctorScheduleHandler.DeleteSchedule).Methods(http.MethodDelete)

	admin.HandleFunc("/reports/summary", r.reportHandler.GetSummary).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Receptionist routes
	receptionist := api.PathPrefix("/receptionist").Subrouter()
	receptionist.Use(r.authMiddleware.Authenticate)
	receptionist.Use(middleware.RequireReceptionist)

	receptionist.HandleFunc("/search-patient", r.patientHandler.SearchPatients).Methods(http.MethodGet)
	receptionist.HandleFunc("/register-patient", r.patientHandler.RegisterPatient).Methods(http.MethodPost)
	receptionist.HandleFunc("/appointments", r.appointmentHandler.BookForPatient).Methods(http.MethodPost)
	receptionist.HandleFunc("/appointments", r.appointmentHandler.GetAllAppointments).Methods(http.MethodGet)
	receptionist.HandleFunc("/appointments/{id}/confirm-payment", r.paymentHandler.ConfirmPayment).Methods(http.MethodPut)

	// Doctor routes
	doctor := api.PathPrefix("/doctor").Subrouter()
	doctor.Use(r.authMiddleware.Authenticate)
	doctor.Use(middleware.RequireDoctor)

	doctor.HandleFunc("/appointments", r.appointmentHandler.GetDoctorAppointments).Methods(http.MethodGet)
	doctor.HandleFunc("/appointments/{id}/complete", r.appointmentHandler.CompleteAppointment).Methods(http.MethodPut)
	doctor.HandleFunc("/schedules", r.doctorScheduleHandler.GetMySchedules).Methods(http.MethodGet)

	// Patient routes
	patient := api.PathPrefix("/patient").Subrouter()
	patient.Use(r.authMiddleware.Authenticate)
	patient.Use(middleware.RequirePatient)

	patient.HandleFunc("/appointments", r.appointmentHandler.BookAppointment).Methods(http.MethodPost)
	patient.HandleFunc("/appointments", r.appointmentHandler.GetMyAppointments).Methods(http.MethodGet)
	patient.HandleFunc("/appointments/{id}", r.appointmentHandler.CancelAppointment).Methods(http.MethodDelete)
	patient.HandleFunc("/payment", r.paymentHandler.PayAppointment).Methods(http.MethodPost)
	patient.HandleFunc("/transactions", r.paymentHandler.GetMyTransactions).Methods(http.MethodGet)

	return r.router
}

func methodNotAllowed(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	w.Write([]byte(`{"success": false, "message": "Method not allowed"}`))
}
