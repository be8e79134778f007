package service

import (
	"context"
	"fmt"
	"time"

	"pubudu-echanneling/internal/domain/entity"
	"pubudu-echanneling/internal/infrastructure/messaging"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// NotificationService turns domain events into messages for the mail/SMS
// worker. Delivery failures are logged and never fail the calling operation.
type NotificationService interface {
	PasswordReset(ctx context.Context, user *entity.User, resetURL string, expiresAt time.Time)
	AppointmentBooked(ctx context.Context, user *entity.User, appointment *entity.Appointment)
	AppointmentCancelled(ctx context.Context, user *entity.User, appointment *entity.Appointment)
	AppointmentReminder(ctx context.Context, user *entity.User, appointment *entity.Appointment) error
	PaymentReceived(ctx context.Context, user *entity.User, payment *entity.Payment)
}

type notificationService struct {
	publisher messaging.Publisher
	log       *logrus.Logger
	now       func() time.Time
}

func NewNotificationService(publisher messaging.Publisher, log *logrus.Logger) NotificationService {
	return &notificationService{publisher: publisher, log: log, now: time.Now}
}

func (s *notificationService) PasswordReset(ctx context.Context, user *entity.User, resetURL string, expiresAt time.Time) {
	s.send(ctx, s.event(entity.NotificationPasswordReset, user, "Reset your Pubudu Medical Center password", map[string]interface{}{
		"username":   user.Username,
		"reset_url":  resetURL,
		"expires_at": expiresAt,
	}))
}

func (s *notificationService) AppointmentBooked(ctx context.Context, user *entity.User, appointment *entity.Appointment) {
	s.send(ctx, s.event(entity.NotificationAppointmentBooked, user,
		fmt.Sprintf("Appointment %s confirmed", appointment.BookingCode), appointmentData(appointment)))
}

func (s *notificationService) AppointmentCancelled(ctx context.Context, user *entity.User, appointment *entity.Appointment) {
	s.send(ctx, s.event(entity.NotificationAppointmentCancelled, user,
		fmt.Sprintf("Appointment %s cancelled", appointment.BookingCode), appointmentData(appointment)))
}

func (s *notificationService) AppointmentReminder(ctx context.Context, user *entity.User, appointment *entity.Appointment) error {
	event := s.event(entity.NotificationAppointmentReminder, user,
		fmt.Sprintf("Reminder: appointment No. %d tomorrow", appointment.AppointmentNo), appointmentData(appointment))

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return s.publisher.Publish(ctx, event)
}

func (s *notificationService) PaymentReceived(ctx context.Context, user *entity.User, payment *entity.Payment) {
	s.send(ctx, s.event(entity.NotificationPaymentReceived, user, "Payment received", map[string]interface{}{
		"transaction_id": payment.TransactionID,
		"amount":         payment.Amount.StringFixed(2),
		"payment_method": payment.PaymentMethod,
	}))
}

func (s *notificationService) event(t entity.NotificationType, user *entity.User, subject string, data map[string]interface{}) entity.NotificationEvent {
	return entity.NotificationEvent{
		ID:         uuid.New(),
		Type:       t,
		UserID:     user.ID,
		Email:      user.EmailValue(),
		Phone:      user.ContactNumber,
		Subject:    subject,
		Data:       data,
		OccurredAt: s.now(),
	}
}

func (s *notificationService) send(ctx context.Context, event entity.NotificationEvent) {
	// detached so a finished request does not abort delivery
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.WithFields(logrus.Fields{
			"type":    event.Type,
			"user_id": event.UserID,
		}).Warnf("Failed to publish notification: %+v", err)
	}
}

func appointmentData(a *entity.Appointment) map[string]interface{} {
	data := map[string]interface{}{
		"appointment_id":   a.ID,
		"booking_code":     a.BookingCode,
		"appointment_no":   a.AppointmentNo,
		"appointment_date": a.AppointmentDate.Format("2006-01-02"),
		"appointment_time": a.AppointmentTime,
		"status":           a.Status,
		"payment_status":   a.PaymentStatus,
		"fee":              a.Fee.StringFixed(2),
	}
	if a.Doctor.FullName != "" {
		data["doctor_name"] = a.Doctor.FullName
		data["specialization"] = a.Doctor.Specialization
	}
	return data
}
