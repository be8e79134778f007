package entity

import (
	"time"

	"github.com/google/uuid"
)

// PatientProfile represents patient-specific profile data
type PatientProfile struct {
	UserID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	FullName     string     `gorm:"type:varchar(100);not null;index" json:"full_name"`
	NIC          string     `gorm:"column:nic;type:varchar(15);uniqueIndex;not null" json:"nic"`
	Gender       *string    `gorm:"type:varchar(10)" json:"gender,omitempty"`
	DateOfBirth  *time.Time `gorm:"type:date" json:"date_of_birth,omitempty"`
	Address      string     `gorm:"type:varchar(255)" json:"address,omitempty"`
	RegisteredBy *uuid.UUID `gorm:"type:uuid" json:"registered_by,omitempty"`

	// Relationships
	User         User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Appointments []Appointment `gorm:"foreignKey:PatientID" json:"appointments,omitempty"`
}

func (PatientProfile) TableName() string {
	return "patient_profiles"
}

// Gender constants
const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
	GenderOther  = "OTHER"
)
