package repository

import (
	"errors"
	"time"

	"pubudu-echanneling/internal/domain/entity"
	domainRepo "pubudu-echanneling/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type passwordResetTokenRepository struct{}

func NewPasswordResetTokenRepository() domainRepo.PasswordResetTokenRepository {
	return &passwordResetTokenRepository{}
}

func (r *passwordResetTokenRepository) Create(db *gorm.DB, token *entity.PasswordResetToken) error {
	return db.Create(token).Error
}

func (r *passwordResetTokenRepository) FindByHash(db *gorm.DB, hash string) (*entity.PasswordResetToken, error) {
	var token entity.PasswordResetToken
	err := db.Where("token_hash = ?", hash).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

func (r *passwordResetTokenRepository) DeleteByUserID(db *gorm.DB, userID uuid.UUID) error {
	return db.Where("user_id = ?", userID).Delete(&entity.PasswordResetToken{}).Error
}

func (r *passwordResetTokenRepository) DeleteExpired(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Where("expires_at <= ?", now).Delete(&entity.PasswordResetToken{})
	return result.RowsAffected, result.Error
}
