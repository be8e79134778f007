package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusUpcoming  AppointmentStatus = "upcoming"
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

type PaymentStatus string

const (
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusUnpaid PaymentStatus = "unpaid"
)

// Appointment is a confirmed booking of a patient into a doctor's schedule.
type Appointment struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AppointmentNo   int               `gorm:"not null" json:"appointment_no"`
	BookingCode     string            `gorm:"type:varchar(50);uniqueIndex;not null" json:"booking_code"`
	PatientID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"doctor_id"`
	ScheduleID      int               `gorm:"not null;index" json:"schedule_id"`
	AppointmentDate time.Time         `gorm:"type:date;not null;index" json:"appointment_date"`
	AppointmentTime string            `gorm:"type:time;not null" json:"appointment_time"`
	Status          AppointmentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Fee             decimal.Decimal   `gorm:"type:numeric(10,2);not null;default:0" json:"fee"`
	Notes           string            `gorm:"type:text" json:"notes,omitempty"`
	PaymentStatus   PaymentStatus     `gorm:"type:varchar(10);not null;default:'unpaid'" json:"payment_status"`
	BookedBy        *uuid.UUID        `gorm:"type:uuid" json:"booked_by,omitempty"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient  PatientProfile `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor   DoctorProfile  `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Schedule DoctorSchedule `gorm:"foreignKey:ScheduleID" json:"schedule,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

func (a *Appointment) IsPending() bool {
	return a.Status == AppointmentStatusPending
}

func (a *Appointment) IsUpcoming() bool {
	return a.Status == AppointmentStatusUpcoming
}

func (a *Appointment) IsPaid() bool {
	return a.PaymentStatus == PaymentStatusPaid
}

// CanCancel reports whether the appointment is still open.
func (a *Appointment) CanCancel() bool {
	return a.Status == AppointmentStatusPending || a.Status == AppointmentStatusUpcoming
}

// MarkPaid moves a pending appointment to upcoming.
func (a *Appointment) MarkPaid() {
	a.PaymentStatus = PaymentStatusPaid
	a.Status = AppointmentStatusUpcoming
}

func (a *Appointment) Cancel() {
	a.Status = AppointmentStatusCancelled
}

func (a *Appointment) Complete() {
	a.Status = AppointmentStatusCompleted
}
