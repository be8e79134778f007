package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentOptionPayNow   = "pay_now"
	PaymentOptionPayLater = "pay_later"
)

// Request DTOs

// CardDetails is checked for format only; no gateway is called.
type CardDetails struct {
	CardHolder string `json:"card_holder" validate:"required,min=2,max=100"`
	CardNumber string `json:"card_number" validate:"required"`
	Expiry     string `json:"expiry" validate:"required"` // MM/YY
	CVV        string `json:"cvv" validate:"required"`
}

type BookAppointmentRequest struct {
	ScheduleID    int          `json:"schedule_id" validate:"required,min=1"`
	PaymentOption string       `json:"payment_option" validate:"required,oneof=pay_now pay_later"`
	Card          *CardDetails `json:"card" validate:"required_if=PaymentOption pay_now"`
	Notes         string       `json:"notes" validate:"max=500"`
}

// FrontDeskBookRequest books on behalf of an existing patient.
type FrontDeskBookRequest struct {
	PatientID     uuid.UUID `json:"patient_id" validate:"required"`
	ScheduleID    int       `json:"schedule_id" validate:"required,min=1"`
	PaymentOption string    `json:"payment_option" validate:"required,oneof=pay_now pay_later"`
	Notes         string    `json:"notes" validate:"max=500"`
}

type AppointmentFilterRequest struct {
	Status string `json:"status" validate:"omitempty,oneof=upcoming pending cancelled completed"`
	Date   string `json:"date" validate:"omitempty,iso_date"`
}

// Response DTOs

type AppointmentResponse struct {
	ID              uuid.UUID        `json:"id"`
	AppointmentNo   int              `json:"appointment_no"`
	BookingCode     string           `json:"booking_code"`
	PatientID       uuid.UUID        `json:"patient_id"`
	PatientName     string           `json:"patient_name,omitempty"`
	DoctorID        uuid.UUID        `json:"doctor_id"`
	DoctorName      string           `json:"doctor_name,omitempty"`
	Specialization  string           `json:"specialization,omitempty"`
	ScheduleID      int              `json:"schedule_id"`
	AppointmentDate string           `json:"appointment_date"`
	AppointmentTime string           `json:"appointment_time"`
	Status          string           `json:"status"`
	PaymentStatus   string           `json:"payment_status"`
	Fee             decimal.Decimal  `json:"fee"`
	Notes           string           `json:"notes,omitempty"`
	Payment         *PaymentResponse `json:"payment,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
