package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type NotificationType string

const (
	NotificationPasswordReset        NotificationType = "password_reset"
	NotificationAppointmentBooked    NotificationType = "appointment_booked"
	NotificationAppointmentCancelled NotificationType = "appointment_cancelled"
	NotificationAppointmentReminder  NotificationType = "appointment_reminder"
	NotificationPaymentReceived      NotificationType = "payment_received"
)

// NotificationEvent is published for the mail/SMS worker to deliver.
type NotificationEvent struct {
	ID         uuid.UUID              `json:"id"`
	Type       NotificationType       `json:"type"`
	UserID     uuid.UUID              `json:"user_id"`
	Email      string                 `json:"email,omitempty"`
	Phone      string                 `json:"phone,omitempty"`
	Subject    string                 `json:"subject"`
	Data       map[string]interface{} `json:"data,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// ReportSummary aggregates counts and revenue for the admin dashboard.
type ReportSummary struct {
	TotalPatients         int64           `json:"total_patients"`
	TotalDoctors          int64           `json:"total_doctors"`
	TotalReceptionists    int64           `json:"total_receptionists"`
	TotalAppointments     int64           `json:"total_appointments"`
	UpcomingAppointments  int64           `json:"upcoming_appointments"`
	PendingAppointments   int64           `json:"pending_appointments"`
	CompletedAppointments int64           `json:"completed_appointments"`
	CancelledAppointments int64           `json:"cancelled_appointments"`
	TotalRevenue          decimal.Decimal `json:"total_revenue"`
}
