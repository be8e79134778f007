package dto

import (
	"github.com/google/uuid"
)

type PatientProfileResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	FullName    string    `json:"full_name"`
	NIC         string    `json:"nic"`
	Gender      string    `json:"gender,omitempty"`
	DateOfBirth string    `json:"date_of_birth,omitempty"`
	Address     string    `json:"address,omitempty"`
}

// PatientResponse is a patient as seen by front-desk staff.
type PatientResponse struct {
	PatientProfileResponse
	Username      string `json:"username"`
	Email         string `json:"email,omitempty"`
	ContactNumber string `json:"contact_number,omitempty"`
}

type PatientSearchResponse struct {
	Exists   bool              `json:"exists"`
	Patients []PatientResponse `json:"patients"`
}
