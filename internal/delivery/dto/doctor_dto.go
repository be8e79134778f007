package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

// CreateDoctorRequest is filled from a form that passed the admin doctor profile.
type CreateDoctorRequest struct {
	Username        string          `json:"username"`
	Password        string          `json:"password"`
	Email           string          `json:"email"`
	ContactNumber   string          `json:"contact_number"`
	FullName        string          `json:"full_name"`
	Specialization  string          `json:"specialization"`
	LicenseNo       string          `json:"license_no"`
	ConsultationFee decimal.Decimal `json:"consultation_fee"`
}

type UpdateDoctorRequest struct {
	Email           *string          `json:"email" validate:"omitempty,email"`
	ContactNumber   *string          `json:"contact_number" validate:"omitempty,sl_mobile"`
	FullName        *string          `json:"full_name" validate:"omitempty,min=3,max=100"`
	Specialization  *string          `json:"specialization" validate:"omitempty,min=2,max=100"`
	LicenseNo       *string          `json:"license_no" validate:"omitempty,license_no"`
	ConsultationFee *decimal.Decimal `json:"consultation_fee"`
	IsActive        *bool            `json:"is_active"`
}

type DoctorFilterRequest struct {
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
}

// Response DTOs

type DoctorProfileResponse struct {
	FullName        string          `json:"full_name"`
	Specialization  string          `json:"specialization"`
	LicenseNo       string          `json:"license_no"`
	ConsultationFee decimal.Decimal `json:"consultation_fee"`
}

type DoctorResponse struct {
	UserID          uuid.UUID       `json:"user_id"`
	Username        string          `json:"username"`
	Email           string          `json:"email,omitempty"`
	ContactNumber   string          `json:"contact_number,omitempty"`
	FullName        string          `json:"full_name"`
	Specialization  string          `json:"specialization"`
	LicenseNo       string          `json:"license_no"`
	ConsultationFee decimal.Decimal `json:"consultation_fee"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}

// PublicDoctorResponse is the catalogue view of a doctor.
type PublicDoctorResponse struct {
	ID              uuid.UUID       `json:"id"`
	FullName        string          `json:"full_name"`
	Specialization  string          `json:"specialization"`
	ConsultationFee decimal.Decimal `json:"consultation_fee"`
}

type PublicDoctorListResponse struct {
	Doctors []PublicDoctorResponse `json:"doctors"`
	Total   int                    `json:"total"`
}
