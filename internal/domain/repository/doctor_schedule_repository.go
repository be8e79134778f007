package repository

import (
	"pubudu-echanneling/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DoctorScheduleRepository interface {
	Create(db *gorm.DB, schedule *entity.DoctorSchedule) error
	FindByID(db *gorm.DB, id int) (*entity.DoctorSchedule, error)
	FindByDoctorID(db *gorm.DB, doctorID uuid.UUID, fromDate string) ([]entity.DoctorSchedule, error)
	FindAllWithActiveDoctor(db *gorm.DB, filter *entity.ScheduleFilter) ([]entity.DoctorSchedule, error)
	ExistsOverlap(db *gorm.DB, schedule *entity.DoctorSchedule) (bool, error)
	Delete(db *gorm.DB, id int) (int64, error)
}
