package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateReceptionistRequest is filled from a form that passed the admin
// receptionist profile.
type CreateReceptionistRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	Email         string `json:"email"`
	ContactNumber string `json:"contact_number"`
	FullName      string `json:"full_name"`
	NIC           string `json:"nic"`
}

type UpdateReceptionistRequest struct {
	Email         *string `json:"email" validate:"omitempty,email"`
	ContactNumber *string `json:"contact_number" validate:"omitempty,sl_mobile"`
	FullName      *string `json:"full_name" validate:"omitempty,min=3,max=100"`
	NIC           *string `json:"nic" validate:"omitempty,nic"`
	IsActive      *bool   `json:"is_active"`
}

type ReceptionistProfileResponse struct {
	FullName string `json:"full_name"`
	NIC      string `json:"nic"`
}

type ReceptionistResponse struct {
	UserID        uuid.UUID `json:"user_id"`
	Username      string    `json:"username"`
	Email         string    `json:"email,omitempty"`
	ContactNumber string    `json:"contact_number,omitempty"`
	FullName      string    `json:"full_name"`
	NIC           string    `json:"nic"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

type ReceptionistListResponse struct {
	Receptionists []ReceptionistResponse `json:"receptionists"`
	Total         int                    `json:"total"`
}
