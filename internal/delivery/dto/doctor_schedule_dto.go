package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateScheduleRequest struct {
	DoctorID     uuid.UUID `json:"doctor_id" validate:"required"`
	ScheduleDate string    `json:"schedule_date" validate:"required,iso_date"`
	StartTime    string    `json:"start_time" validate:"required,datetime=15:04"`
	EndTime      string    `json:"end_time" validate:"required,datetime=15:04"`
	TotalQuota   int       `json:"total_quota" validate:"required,min=1,max=200"`
}

type ScheduleFilterRequest struct {
	StartAt string `json:"start_date" validate:"omitempty,iso_date"`
	EndAt   string `json:"end_date" validate:"omitempty,iso_date"`
}

// Response DTOs

type ScheduleResponse struct {
	ID              int             `json:"id"`
	DoctorID        uuid.UUID       `json:"doctor_id"`
	DoctorName      string          `json:"doctor_name,omitempty"`
	Specialization  string          `json:"specialization,omitempty"`
	ConsultationFee decimal.Decimal `json:"consultation_fee"`
	ScheduleDate    string          `json:"schedule_date"`
	StartTime       string          `json:"start_time"`
	EndTime         string          `json:"end_time"`
	TotalQuota      int             `json:"total_quota"`
	RemainingSlots  *int            `json:"remaining_slots,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type ScheduleListResponse struct {
	Schedules []ScheduleResponse `json:"schedules"`
	Total     int                `json:"total"`
}
