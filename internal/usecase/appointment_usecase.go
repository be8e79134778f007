package usecase

import (
	"context"
	"errors"
	"time"

	"pubudu-echanneling/internal/converter"
	"pubudu-echanneling/internal/delivery/dto"
	"pubudu-echanneling/internal/delivery/http/middleware"
	"pubudu-echanneling/internal/domain/entity"
	"pubudu-echanneling/internal/domain/repository"
	"pubudu-echanneling/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound       = errors.New("appointment not found")
	ErrAlreadyBooked             = errors.New("patient already has an appointment in this session")
	ErrAppointmentNotOwned       = errors.New("appointment does not belong to you")
	ErrAppointmentNotCancellable = errors.New("appointment can no longer be cancelled")
	ErrAppointmentNotUpcoming    = errors.New("only upcoming appointments can be completed")
	ErrPatientNotFound           = errors.New("patient not found")
	ErrSlotsFull                 = service.ErrSlotsFull
)

const slotCompensationTimeout = 5 * time.Second

type AppointmentUsecase interface {
	// BookAppointment books the logged-in patient into a schedule.
	BookAppointment(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error)
	// BookForPatient books at the front desk; pay_now means cash taken at the counter.
	BookForPatient(ctx context.Context, req *dto.FrontDeskBookRequest) (*dto.AppointmentResponse, error)
	GetMyAppointments(ctx context.Context, filter *dto.AppointmentFilterRequest) (*dto.AppointmentListResponse, error)
	CancelAppointment(ctx context.Context, appointmentID uuid.UUID) error
	GetDoctorAppointments(ctx context.Context, filter *dto.AppointmentFilterRequest) (*dto.AppointmentListResponse, error)
	CompleteAppointment(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error)
	GetAllAppointments(ctx context.Context, filter *dto.AppointmentFilterRequest) (*dto.AppointmentListResponse, error)
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	loc             *time.Location
	appointmentRepo repository.AppointmentRepository
	scheduleRepo    repository.DoctorScheduleRepository
	patientRepo     repository.PatientProfileRepository
	paymentRepo     repository.PaymentRepository
	slots           service.SlotReserver
	auditService    service.AuditService
	notifier        service.NotificationService
	now             func() time.Time
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	loc *time.Location,
	appointmentRepo repository.AppointmentRepository,
	scheduleRepo repository.DoctorScheduleRepository,
	patientRepo repository.PatientProfileRepository,
	paymentRepo repository.PaymentRepository,
	slots service.SlotReserver,
	auditService service.AuditService,
	notifier service.NotificationService,
) AppointmentUsecase {
	if loc == nil {
		loc = time.Local
	}
	return &appointmentUsecase{
		db:              db,
		log:             log,
		loc:             loc,
		appointmentRepo: appointmentRepo,
		scheduleRepo:    scheduleRepo,
		patientRepo:     patientRepo,
		paymentRepo:     paymentRepo,
		slots:           slots,
		auditService:    auditService,
		notifier:        notifier,
		now:             time.Now,
	}
}

type bookingInput struct {
	patientID     uuid.UUID
	scheduleID    int
	paymentOption string
	paymentMethod string
	notes         string
	bookedBy      uuid.UUID
}

func (u *appointmentUsecase) BookAppointment(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	if req.PaymentOption == dto.PaymentOptionPayNow {
		if err := validateCard(req.Card, u.now().In(u.loc)); err != nil {
			return nil, err
		}
	}

	return u.book(ctx, bookingInput{
		patientID:     userID,
		scheduleID:    req.ScheduleID,
		paymentOption: req.PaymentOption,
		paymentMethod: entity.PaymentMethodCard,
		notes:         req.Notes,
		bookedBy:      userID,
	})
}

func (u *appointmentUsecase) BookForPatient(ctx context.Context, req *dto.FrontDeskBookRequest) (*dto.AppointmentResponse, error) {
	receptionistID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	return u.book(ctx, bookingInput{
		patientID:     req.PatientID,
		scheduleID:    req.ScheduleID,
		paymentOption: req.PaymentOption,
		paymentMethod: entity.PaymentMethodCash,
		notes:         req.Notes,
		bookedBy:      receptionistID,
	})
}

// book reserves a slot and persists the appointment.
//
// Flow:
// 1. Validate patient and schedule (exists, doctor active, not started)
// 2. Reject a second open booking of the same patient in the session
// 3. Reserve a slot in Redis (atomic quota decrement + number increment)
// 4. Insert appointment (and payment when paid now) in one transaction
// 5. If anything after step 3 fails -> compensate: release the slot
func (u *appointmentUsecase) book(ctx context.Context, in bookingInput) (*dto.AppointmentResponse, error) {
	db := u.db.WithContext(ctx)

	patient, err := u.patientRepo.FindByUserID(ctx, db, in.patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", in.patientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}
	if !patient.User.IsActive {
		return nil, ErrAccountDisabled
	}

	schedule, err := u.scheduleRepo.FindByID(db, in.scheduleID)
	if err != nil {
		u.log.Warnf("Failed to find schedule %d: %+v", in.scheduleID, err)
		return nil, err
	}
	if schedule == nil {
		return nil, ErrScheduleNotFound
	}
	if !schedule.Doctor.User.IsActive {
		return nil, ErrDoctorInactive
	}
	if !schedule.StartsAt(u.loc).After(u.now().In(u.loc)) {
		return nil, ErrSchedulePast
	}

	existing, err := u.appointmentRepo.FindByPatientAndSchedule(db, in.patientID, in.scheduleID)
	if err != nil {
		u.log.Warnf("Failed to check existing appointment: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyBooked
	}

	appointmentNo, err := u.slots.Reserve(ctx, in.scheduleID)
	if err != nil {
		if errors.Is(err, service.ErrSlotsFull) {
			return nil, ErrSlotsFull
		}
		u.log.Warnf("Failed slot reservation for schedule %d: %+v", in.scheduleID, err)
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			u.releaseSlot(in.scheduleID, "booking failed")
		}
	}()

	appointment := &entity.Appointment{
		AppointmentNo:   appointmentNo,
		BookingCode:     generateBookingCode(schedule.ScheduleDate),
		PatientID:       in.patientID,
		DoctorID:        schedule.DoctorID,
		ScheduleID:      schedule.ID,
		AppointmentDate: schedule.ScheduleDate,
		AppointmentTime: schedule.StartTime,
		Status:          entity.AppointmentStatusPending,
		PaymentStatus:   entity.PaymentStatusUnpaid,
		Fee:             schedule.Doctor.ConsultationFee,
		Notes:           in.notes,
		BookedBy:        &in.bookedBy,
	}
	payNow := in.paymentOption == dto.PaymentOptionPayNow
	if payNow {
		appointment.MarkPaid()
	}

	tx := db.Begin()
	defer tx.Rollback()

	if err := u.appointmentRepo.Create(tx, appointment); err != nil {
		if isDuplicateKeyError(err, "patient_schedule") {
			return nil, ErrAlreadyBooked
		}
		u.log.Errorf("Failed to insert appointment, compensating slot: %+v", err)
		return nil, err
	}

	var payment *entity.Payment
	if payNow {
		payment = newPayment(appointment, schedule.Doctor.FullName, in.paymentMethod, u.now())
		if err := u.paymentRepo.Create(tx, payment); err != nil {
			u.log.Errorf("Failed to record payment, compensating slot: %+v", err)
			return nil, err
		}
	}

	appointment.Patient = *patient
	appointment.Doctor = schedule.Doctor
	resp := converter.AppointmentToResponse(appointment)
	if payment != nil {
		resp.Payment = converter.PaymentToResponse(payment)
	}

	if err := u.auditService.LogCreate(ctx, tx, &in.bookedBy, entity.AuditActionAppointmentBook, "appointment", appointment.ID.String(), resp); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Errorf("Failed commit transaction, compensating slot: %+v", err)
		return nil, err
	}
	committed = true

	u.notifier.AppointmentBooked(ctx, &patient.User, appointment)
	if payment != nil {
		u.notifier.PaymentReceived(ctx, &patient.User, payment)
	}

	u.log.Infof("Appointment booked: id=%s, schedule=%d, no=%d, code=%s", appointment.ID, in.scheduleID, appointmentNo, appointment.BookingCode)
	return resp, nil
}

func (u *appointmentUsecase) GetMyAppointments(ctx context.Context, filter *dto.AppointmentFilterRequest) (*dto.AppointmentListResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	f := appointmentFilter(filter)
	f.PatientID = &userID
	return u.list(ctx, f)
}

func (u *appointmentUsecase) GetDoctorAppointments(ctx context.Context, filter *dto.AppointmentFilterRequest) (*dto.AppointmentListResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	f := appointmentFilter(filter)
	f.DoctorID = &doctorID
	return u.list(ctx, f)
}

func (u *appointmentUsecase) GetAllAppointments(ctx context.Context, filter *dto.AppointmentFilterRequest) (*dto.AppointmentListResponse, error) {
	return u.list(ctx, appointmentFilter(filter))
}

func (u *appointmentUsecase) list(ctx context.Context, filter entity.AppointmentFilter) (*dto.AppointmentListResponse, error) {
	appointments, err := u.appointmentRepo.FindAll(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to find appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// CancelAppointment cancels an open appointment of the logged-in patient
// and gives the slot back. Payments are not refunded here.
func (u *appointmentUsecase) CancelAppointment(ctx context.Context, appointmentID uuid.UUID) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByID(tx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return err
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}
	if appointment.PatientID != userID {
		return ErrAppointmentNotOwned
	}
	if !appointment.CanCancel() {
		return ErrAppointmentNotCancellable
	}

	// Conditional update guards against a concurrent cancel
	rowsAffected, err := u.appointmentRepo.Cancel(tx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to cancel appointment %s: %+v", appointmentID, err)
		return err
	}
	if rowsAffected == 0 {
		return ErrAppointmentNotCancellable
	}
	previous := appointment.Status
	appointment.Cancel()

	if err := u.auditService.LogAction(ctx, tx, &userID, entity.AuditActionAppointmentCancel, "appointment", appointmentID.String(), map[string]interface{}{
		"booking_code":    appointment.BookingCode,
		"previous_status": previous,
		"payment_status":  appointment.PaymentStatus,
	}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	// Slot counters are rebuilt on startup, so a failure here is not fatal.
	// The appointment number is never handed out again.
	u.releaseSlot(appointment.ScheduleID, "appointment cancelled")

	u.notifier.AppointmentCancelled(ctx, &appointment.Patient.User, appointment)
	u.log.Infof("Appointment cancelled: id=%s, schedule=%d", appointmentID, appointment.ScheduleID)
	return nil
}

func (u *appointmentUsecase) CompleteAppointment(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByID(tx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if appointment.DoctorID != doctorID {
		return nil, ErrAppointmentNotOwned
	}

	rowsAffected, err := u.appointmentRepo.Complete(tx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to complete appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, ErrAppointmentNotUpcoming
	}
	appointment.Complete()

	if err := u.auditService.LogAction(ctx, tx, &doctorID, entity.AuditActionAppointmentComplete, "appointment", appointmentID.String(), map[string]interface{}{
		"booking_code": appointment.BookingCode,
	}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) releaseSlot(scheduleID int, reason string) {
	syncCtx, cancel := context.WithTimeout(context.Background(), slotCompensationTimeout)
	defer cancel()
	if err := u.slots.Release(syncCtx, scheduleID); err != nil {
		u.log.Errorf("CRITICAL: Failed to release slot for schedule %d (%s): %+v", scheduleID, reason, err)
	}
}

func appointmentFilter(req *dto.AppointmentFilterRequest) entity.AppointmentFilter {
	var filter entity.AppointmentFilter
	if req != nil {
		filter.Status = entity.AppointmentStatus(req.Status)
		filter.Date = req.Date
	}
	return filter
}
