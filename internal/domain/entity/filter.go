package entity

import "github.com/google/uuid"

// ScheduleFilter is a domain-level filter for querying schedules.
// Used by repository layer to avoid coupling with delivery DTOs.
type ScheduleFilter struct {
	DoctorID       *uuid.UUID
	StartAt        string // Format: YYYY-MM-DD
	EndAt          string // Format: YYYY-MM-DD
	DoctorName     string // ILIKE
	Specialization string // ILIKE
}

// DoctorFilter narrows the public doctor catalogue.
type DoctorFilter struct {
	Name           string
	Specialization string
	ActiveOnly     bool
}

// AppointmentFilter narrows appointment listings; zero values mean "any".
type AppointmentFilter struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Status    AppointmentStatus
	Date      string // YYYY-MM-DD
}

// PatientSearchType selects the column a front-desk search matches on.
type PatientSearchType string

const (
	PatientSearchNIC   PatientSearchType = "nic"
	PatientSearchPhone PatientSearchType = "phone"
	PatientSearchName  PatientSearchType = "name"
)

// AuditLogFilter narrows the admin audit trail.
type AuditLogFilter struct {
	UserID *uuid.UUID
	Action string
}
