package repository

import (
	"time"

	"pubudu-echanneling/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PasswordResetTokenRepository interface {
	Create(db *gorm.DB, token *entity.PasswordResetToken) error
	FindByHash(db *gorm.DB, hash string) (*entity.PasswordResetToken, error)
	DeleteByUserID(db *gorm.DB, userID uuid.UUID) error
	DeleteExpired(db *gorm.DB, now time.Time) (int64, error)
}
