package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// RegisterPatientRequest is filled from a form that already passed a
// registration profile, both for self-registration and at the front desk.
type RegisterPatientRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	Email         string `json:"email"`
	ContactNumber string `json:"contact_number"`
	FullName      string `json:"full_name"`
	NIC           string `json:"nic"`
	Gender        string `json:"gender"`
	DateOfBirth   string `json:"date_of_birth"`
	Address       string `json:"address"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required,len=64,hexadecimal"`
	NewPassword string `json:"new_password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,nefield=CurrentPassword"`
}

// UpdateProfileRequest changes only the fields that are present.
type UpdateProfileRequest struct {
	Email         *string `json:"email" validate:"omitempty,email"`
	ContactNumber *string `json:"contact_number" validate:"omitempty,sl_mobile"`
	FullName      *string `json:"full_name" validate:"omitempty,min=2,max=100"`
	Address       *string `json:"address" validate:"omitempty,max=255"`
	Gender        *string `json:"gender" validate:"omitempty,gender"`
	DateOfBirth   *string `json:"date_of_birth" validate:"omitempty,iso_date"`
}

// Response DTOs

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type LoginResponse struct {
	TokenResponse
	User *UserResponse `json:"user"`
}

type UserResponse struct {
	ID                  uuid.UUID                    `json:"id"`
	Username            string                       `json:"username"`
	Email               string                       `json:"email,omitempty"`
	ContactNumber       string                       `json:"contact_number,omitempty"`
	FullName            string                       `json:"full_name"`
	RoleID              int                          `json:"role_id"`
	Role                string                       `json:"role"`
	IsActive            bool                         `json:"is_active"`
	PatientProfile      *PatientProfileResponse      `json:"patient_profile,omitempty"`
	DoctorProfile       *DoctorProfileResponse       `json:"doctor_profile,omitempty"`
	ReceptionistProfile *ReceptionistProfileResponse `json:"receptionist_profile,omitempty"`
	CreatedAt           time.Time                    `json:"created_at"`
	UpdatedAt           time.Time                    `json:"updated_at"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}
