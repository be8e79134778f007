package repository

import (
	"errors"

	"pubudu-echanneling/internal/domain/entity"
	domainRepo "pubudu-echanneling/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorProfileRepository struct{}

func NewDoctorProfileRepository() domainRepo.DoctorProfileRepository {
	return &doctorProfileRepository{}
}

// Create inserts the profile together with its embedded User.
func (r *doctorProfileRepository) Create(db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.Create(profile).Error
}

func (r *doctorProfileRepository) FindByUserID(db *gorm.DB, doctorID uuid.UUID) (*entity.DoctorProfile, error) {
	var profile entity.DoctorProfile
	err := db.Preload("User").Where("user_id = ?", doctorID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *doctorProfileRepository) FindAll(db *gorm.DB, filter entity.DoctorFilter) ([]entity.DoctorProfile, error) {
	var profiles []entity.DoctorProfile
	query := db.Joins("JOIN users ON users.id = doctor_profiles.user_id").Preload("User")

	if filter.ActiveOnly {
		query = query.Where("users.is_active = ?", true)
	}
	if filter.Name != "" {
		query = query.Where("doctor_profiles.full_name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Specialization != "" {
		query = query.Where("doctor_profiles.specialization ILIKE ?", "%"+filter.Specialization+"%")
	}

	err := query.Order("doctor_profiles.full_name ASC").Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// Update saves the profile and its user row in one call.
func (r *doctorProfileRepository) Update(db *gorm.DB, profile *entity.DoctorProfile) error {
	if err := db.Omit("Role", "PatientProfile", "DoctorProfile", "ReceptionistProfile").Save(&profile.User).Error; err != nil {
		return err
	}
	return db.Omit("User", "Schedules").Save(profile).Error
}

func (r *doctorProfileRepository) Delete(db *gorm.DB, doctorID uuid.UUID) (int64, error) {
	result := db.Where("user_id = ?", doctorID).Delete(&entity.DoctorProfile{})
	return result.RowsAffected, result.Error
}
