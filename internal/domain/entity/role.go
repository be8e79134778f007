package entity

// Role represents a user role in the system
type Role struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	RoleName    string `gorm:"type:varchar(50);uniqueIndex;not null" json:"role_name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

// Role ID constants
const (
	RoleIDAdmin        = 1
	RoleIDDoctor       = 2
	RoleIDReceptionist = 3
	RoleIDPatient      = 4
)

// RoleNames constants
const (
	RoleAdmin        = "Admin"
	RoleDoctor       = "Doctor"
	RoleReceptionist = "Receptionist"
	RolePatient      = "Patient"
)

// DefaultRoles are the rows every installation starts with.
func DefaultRoles() []Role {
	return []Role{
		{ID: RoleIDAdmin, RoleName: RoleAdmin, Description: "Hospital administrator"},
		{ID: RoleIDDoctor, RoleName: RoleDoctor, Description: "Channelling doctor"},
		{ID: RoleIDReceptionist, RoleName: RoleReceptionist, Description: "Front desk staff"},
		{ID: RoleIDPatient, RoleName: RolePatient, Description: "Registered patient"},
	}
}

// RoleNameByID returns the display name for a role id, or "" if unknown.
func RoleNameByID(id int) string {
	for _, r := range DefaultRoles() {
		if r.ID == id {
			return r.RoleName
		}
	}
	return ""
}
