package repository

import (
	"errors"

	"pubudu-echanneling/internal/domain/entity"
	domainRepo "pubudu-echanneling/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type receptionistProfileRepository struct{}

func NewReceptionistProfileRepository() domainRepo.ReceptionistProfileRepository {
	return &receptionistProfileRepository{}
}

func (r *receptionistProfileRepository) Create(db *gorm.DB, profile *entity.ReceptionistProfile) error {
	return db.Create(profile).Error
}

func (r *receptionistProfileRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.ReceptionistProfile, error) {
	var profile entity.ReceptionistProfile
	err := db.Preload("User").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *receptionistProfileRepository) FindAll(db *gorm.DB) ([]entity.ReceptionistProfile, error) {
	var profiles []entity.ReceptionistProfile
	err := db.Preload("User").Order("full_name ASC").Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *receptionistProfileRepository) Update(db *gorm.DB, profile *entity.ReceptionistProfile) error {
	if err := db.Omit("Role", "PatientProfile", "DoctorProfile", "ReceptionistProfile").Save(&profile.User).Error; err != nil {
		return err
	}
	return db.Omit("User").Save(profile).Error
}

func (r *receptionistProfileRepository) Delete(db *gorm.DB, userID uuid.UUID) (int64, error) {
	result := db.Where("user_id = ?", userID).Delete(&entity.ReceptionistProfile{})
	return result.RowsAffected, result.Error
}
