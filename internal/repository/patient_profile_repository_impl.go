package repository

import (
	"context"
	"errors"
	"strings"

	"pubudu-echanneling/internal/domain/entity"
	domainRepo "pubudu-echanneling/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type patientProfileRepository struct{}

func NewPatientProfileRepository() domainRepo.PatientProfileRepository {
	return &patientProfileRepository{}
}

func (r *patientProfileRepository) Create(ctx context.Context, db *gorm.DB, profile *entity.PatientProfile) error {
	return db.WithContext(ctx).Create(profile).Error
}

func (r *patientProfileRepository) FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.PatientProfile, error) {
	var profile entity.PatientProfile
	err := db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *patientProfileRepository) FindByNIC(ctx context.Context, db *gorm.DB, nic string) (*entity.PatientProfile, error) {
	var profile entity.PatientProfile
	err := db.WithContext(ctx).Preload("User").Where("UPPER(nic) = ?", strings.ToUpper(nic)).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// Search matches NIC and phone exactly and names by substring.
func (r *patientProfileRepository) Search(ctx context.Context, db *gorm.DB, by entity.PatientSearchType, query string, limit int) ([]entity.PatientProfile, error) {
	var profiles []entity.PatientProfile
	q := db.WithContext(ctx).
		Joins("JOIN users ON users.id = patient_profiles.user_id").
		Preload("User")

	switch by {
	case entity.PatientSearchNIC:
		q = q.Where("UPPER(patient_profiles.nic) = ?", strings.ToUpper(query))
	case entity.PatientSearchPhone:
		q = q.Where("users.contact_number = ?", query)
	default:
		q = q.Where("patient_profiles.full_name ILIKE ?", "%"+query+"%")
	}

	if limit > 0 {
		q = q.Limit(limit)
	}

	err := q.Order("patient_profiles.full_name ASC").Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *patientProfileRepository) Update(ctx context.Context, db *gorm.DB, profile *entity.PatientProfile) error {
	return db.WithContext(ctx).Omit("User", "Appointments").Save(profile).Error
}
