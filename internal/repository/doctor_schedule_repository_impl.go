package repository

import (
	"errors"

	"pubudu-echanneling/internal/domain/entity"
	domainRepo "pubudu-echanneling/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorScheduleRepository struct{}

func NewDoctorScheduleRepository() domainRepo.DoctorScheduleRepository {
	return &doctorScheduleRepository{}
}

func (r *doctorScheduleRepository) Create(db *gorm.DB, schedule *entity.DoctorSchedule) error {
	return db.Omit("Doctor", "Appointments").Create(schedule).Error
}

func (r *doctorScheduleRepository) FindByID(db *gorm.DB, id int) (*entity.DoctorSchedule, error) {
	var schedule entity.DoctorSchedule
	err := db.Preload("Doctor.User").Where("id = ?", id).First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &schedule, nil
}

// FindByDoctorID lists a doctor's sessions from fromDate onwards; an empty
// fromDate lists all of them.
func (r *doctorScheduleRepository) FindByDoctorID(db *gorm.DB, doctorID uuid.UUID, fromDate string) ([]entity.DoctorSchedule, error) {
	var schedules []entity.DoctorSchedule
	query := db.Where("doctor_id = ?", doctorID)
	if fromDate != "" {
		query = query.Where("schedule_date >= ?", fromDate)
	}
	err := query.Order("schedule_date ASC, start_time ASC").Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

// FindAllWithActiveDoctor returns schedules only for doctors whose user account is active.
// Supports optional filters: doctor, date range, doctor name, and specialization.
func (r *doctorScheduleRepository) FindAllWithActiveDoctor(db *gorm.DB, filter *entity.ScheduleFilter) ([]entity.DoctorSchedule, error) {
	var schedules []entity.DoctorSchedule
	query := db.
		Joins("JOIN doctor_profiles ON doctor_profiles.user_id = doctor_schedules.doctor_id").
		Joins("JOIN users ON users.id = doctor_profiles.user_id").
		Where("users.is_active = ?", true)

	if filter != nil {
		if filter.DoctorID != nil {
			query = query.Where("doctor_schedules.doctor_id = ?", *filter.DoctorID)
		}
		if filter.StartAt != "" {
			query = query.Where("doctor_schedules.schedule_date >= ?", filter.StartAt)
		}
		if filter.EndAt != "" {
			query = query.Where("doctor_schedules.schedule_date <= ?", filter.EndAt)
		}
		if filter.DoctorName != "" {
			query = query.Where("doctor_profiles.full_name ILIKE ?", "%"+filter.DoctorName+"%")
		}
		if filter.Specialization != "" {
			query = query.Where("doctor_profiles.specialization ILIKE ?", "%"+filter.Specialization+"%")
		}
	}

	err := query.
		Preload("Doctor").Preload("Doctor.User").
		Order("doctor_schedules.schedule_date ASC, doctor_schedules.start_time ASC").
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

// ExistsOverlap reports whether the doctor already has a session on the same
// day whose time range intersects the given one.
func (r *doctorScheduleRepository) ExistsOverlap(db *gorm.DB, schedule *entity.DoctorSchedule) (bool, error) {
	var count int64
	err := db.Model(&entity.DoctorSchedule{}).
		Where("doctor_id = ? AND schedule_date = ?", schedule.DoctorID, schedule.ScheduleDate.Format("2006-01-02")).
		Where("start_time < ? AND end_time > ?", schedule.EndTime, schedule.StartTime).
		Count(&count).Error
	return count > 0, err
}

func (r *doctorScheduleRepository) Delete(db *gorm.DB, id int) (int64, error) {
	affected := db.Where("id = ?", id).Delete(&entity.DoctorSchedule{})
	return affected.RowsAffected, affected.Error
}
