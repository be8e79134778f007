package repository

import (
	"pubudu-echanneling/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindAll(db *gorm.DB, filter entity.AppointmentFilter) ([]entity.Appointment, error)
	FindByPatientAndSchedule(db *gorm.DB, patientID uuid.UUID, scheduleID int) (*entity.Appointment, error)
	FindOpenByDate(db *gorm.DB, date string) ([]entity.Appointment, error)
	CountOpenBySchedule(db *gorm.DB, scheduleID int) (int64, error)
	CountByStatus(db *gorm.DB) (map[entity.AppointmentStatus]int64, error)
	Cancel(db *gorm.DB, id uuid.UUID) (int64, error)
	MarkPaid(db *gorm.DB, id uuid.UUID) (int64, error)
	Complete(db *gorm.DB, id uuid.UUID) (int64, error)
}
