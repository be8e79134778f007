package repository

import (
	"pubudu-echanneling/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReceptionistProfileRepository interface {
	Create(db *gorm.DB, profile *entity.ReceptionistProfile) error
	FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.ReceptionistProfile, error)
	FindAll(db *gorm.DB) ([]entity.ReceptionistProfile, error)
	Update(db *gorm.DB, profile *entity.ReceptionistProfile) error
	Delete(db *gorm.DB, userID uuid.UUID) (int64, error)
}
