package repository

import (
	"errors"

	"pubudu-echanneling/internal/domain/entity"
	domainRepo "pubudu-echanneling/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct{}

func NewUserRepository() domainRepo.UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(db *gorm.DB, user *entity.User) error {
	return db.Create(user).Error
}

func (r *userRepository) findOne(db *gorm.DB, column string, value interface{}) (*entity.User, error) {
	var user entity.User
	err := db.Preload("Role").
		Preload("PatientProfile").
		Preload("DoctorProfile").
		Preload("ReceptionistProfile").
		Where(column+" = ?", value).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	return r.findOne(db, "id", id)
}

func (r *userRepository) FindByUsername(db *gorm.DB, username string) (*entity.User, error) {
	return r.findOne(db, "username", username)
}

func (r *userRepository) FindByEmail(db *gorm.DB, email string) (*entity.User, error) {
	return r.findOne(db, "LOWER(email)", email)
}

// Update saves the user row only; profiles are saved by their own repositories.
func (r *userRepository) Update(db *gorm.DB, user *entity.User) error {
	return db.Omit("Role", "PatientProfile", "DoctorProfile", "ReceptionistProfile").Save(user).Error
}

func (r *userRepository) UpdatePassword(db *gorm.DB, id uuid.UUID, hash string) error {
	return db.Model(&entity.User{}).Where("id = ?", id).Update("password", hash).Error
}

func (r *userRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.User{})
	return result.RowsAffected, result.Error
}

func (r *userRepository) CountByRole(db *gorm.DB, roleID int) (int64, error) {
	var count int64
	err := db.Model(&entity.User{}).Where("role_id = ?", roleID).Count(&count).Error
	return count, err
}
