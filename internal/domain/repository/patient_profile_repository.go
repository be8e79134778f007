package repository

import (
	"context"

	"pubudu-echanneling/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PatientProfileRepository interface {
	Create(ctx context.Context, db *gorm.DB, profile *entity.PatientProfile) error
	FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.PatientProfile, error)
	FindByNIC(ctx context.Context, db *gorm.DB, nic string) (*entity.PatientProfile, error)
	Search(ctx context.Context, db *gorm.DB, by entity.PatientSearchType, query string, limit int) ([]entity.PatientProfile, error)
	Update(ctx context.Context, db *gorm.DB, profile *entity.PatientProfile) error
}
