package entity

import "github.com/google/uuid"

type ReceptionistProfile struct {
	UserID    uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	FullName  string     `gorm:"type:varchar(100);not null" json:"full_name"`
	NIC       string     `gorm:"column:nic;type:varchar(15);uniqueIndex;not null" json:"nic"`
	CreatedBy *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ReceptionistProfile) TableName() string {
	return "receptionist_profiles"
}
