package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the credential record shared by every role.
type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Username      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Password      string    `gorm:"type:text;not null" json:"-"`
	Email         *string   `gorm:"type:varchar(100);uniqueIndex" json:"email,omitempty"`
	ContactNumber string    `gorm:"type:varchar(15);index" json:"contact_number,omitempty"`
	RoleID        int       `gorm:"not null;index" json:"role_id"`
	IsActive      bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Role                Role                 `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	PatientProfile      *PatientProfile      `gorm:"foreignKey:UserID" json:"patient_profile,omitempty"`
	DoctorProfile       *DoctorProfile       `gorm:"foreignKey:UserID" json:"doctor_profile,omitempty"`
	ReceptionistProfile *ReceptionistProfile `gorm:"foreignKey:UserID" json:"receptionist_profile,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// EmailValue returns the email or "" when none is on file.
func (u *User) EmailValue() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

// FullName returns the name from whichever profile is loaded.
func (u *User) FullName() string {
	switch {
	case u.PatientProfile != nil:
		return u.PatientProfile.FullName
	case u.DoctorProfile != nil:
		return u.DoctorProfile.FullName
	case u.ReceptionistProfile != nil:
		return u.ReceptionistProfile.FullName
	}
	return u.Username
}
