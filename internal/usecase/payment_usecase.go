package usecase

import (
	"context"
	"errors"
	"fmt"
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

var ErrAppointmentNotPayable = errors.New("only pending unpaid appointments can be paid")

type PaymentUsecase interface {
	// PayAppointment settles a pay-later appointment of the logged-in patient by card.
	PayAppointment(ctx context.Context, req *dto.PaymentRequest) (*dto.AppointmentResponse, error)
	// ConfirmPayment records cash taken at the front desk.
	ConfirmPayment(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error)
	GetMyTransactions(ctx context.Context) (*dto.TransactionListResponse, error)
}

type paymentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	paymentRepo     repository.PaymentRepository
	auditService    service.AuditService
	notifier        service.NotificationService
	now             func() time.Time
}

func NewPaymentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	paymentRepo repository.PaymentRepository,
	auditService service.AuditService,
	notifier service.NotificationService,
) PaymentUsecase {
	return &paymentUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		paymentRepo:     paymentRepo,
		auditService:    auditService,
		notifier:        notifier,
		now:             time.Now,
	}
}

func (u *paymentUsecase) PayAppointment(ctx context.Context, req *dto.PaymentRequest) (*dto.AppointmentResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	if err := validateCard(&req.Card, u.now()); err != nil {
		return nil, err
	}

	return u.settle(ctx, userID, req.AppointmentID, entity.PaymentMethodCard, func(a *entity.Appointment) error {
		if a.PatientID != userID {
			return ErrAppointmentNotOwned
		}
		return nil
	})
}

func (u *paymentUsecase) ConfirmPayment(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	receptionistID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return u.settle(ctx, receptionistID, appointmentID, entity.PaymentMethodCash, nil)
}

// settle moves a pending appointment to upcoming/paid and records the
// payment in the same transaction.
func (u *paymentUsecase) settle(ctx context.Context, actorID, appointmentID uuid.UUID, method string, authorize func(*entity.Appointment) error) (*dto.AppointmentResponse, error) {
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
	if authorize != nil {
		if err := authorize(appointment); err != nil {
			return nil, err
		}
	}
	if !appointment.IsPending() || appointment.IsPaid() {
		return nil, ErrAppointmentNotPayable
	}

	rowsAffected, err := u.appointmentRepo.MarkPaid(tx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to mark appointment %s paid: %+v", appointmentID, err)
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, ErrAppointmentNotPayable
	}
	appointment.MarkPaid()

	payment := newPayment(appointment, appointment.Doctor.FullName, method, u.now())
	if err := u.paymentRepo.Create(tx, payment); err != nil {
		u.log.Warnf("Failed to record payment: %+v", err)
		return nil, err
	}

	action := entity.AuditActionPaymentCreate
	if method == entity.PaymentMethodCash {
		action = entity.AuditActionPaymentConfirm
	}
	if err := u.auditService.LogCreate(ctx, tx, &actorID, action, "payment", payment.ID.String(), converter.PaymentToResponse(payment)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.notifier.PaymentReceived(ctx, &appointment.Patient.User, payment)

	resp := converter.AppointmentToResponse(appointment)
	resp.Payment = converter.PaymentToResponse(payment)
	return resp, nil
}

func (u *paymentUsecase) GetMyTransactions(ctx context.Context) (*dto.TransactionListResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	payments, err := u.paymentRepo.FindByPatientID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find transactions: %+v", err)
		return nil, err
	}

	return &dto.TransactionListResponse{
		Transactions: converter.PaymentsToResponses(payments),
		Total:        len(payments),
	}, nil
}

func newPayment(appointment *entity.Appointment, doctorName, method string, now time.Time) *entity.Payment {
	return &entity.Payment{
		PatientID:     appointment.PatientID,
		AppointmentID: &appointment.ID,
		Amount:        appointment.Fee,
		PaymentMethod: method,
		Status:        entity.TransactionStatusSuccess,
		TransactionID: generateTransactionID(now),
		Description:   fmt.Sprintf("Consultation fee - %s (%s)", doctorName, appointment.BookingCode),
	}
}
