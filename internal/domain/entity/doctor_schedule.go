package entity

import (
	"time"

	"github.com/google/uuid"
)

// DoctorSchedule is one channelling session of a doctor.
// Remaining quota lives in Redis and is rebuilt from appointments on startup.
type DoctorSchedule struct {
	ID           int       `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID     uuid.UUID `gorm:"type:uuid;not null;index" json:"doctor_id"`
	ScheduleDate time.Time `gorm:"type:date;not null;index" json:"schedule_date"`
	StartTime    string    `gorm:"type:time;not null" json:"start_time"`
	EndTime      string    `gorm:"type:time;not null" json:"end_time"`
	TotalQuota   int       `gorm:"not null" json:"total_quota"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Doctor       DoctorProfile `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Appointments []Appointment `gorm:"foreignKey:ScheduleID" json:"appointments,omitempty"`
}

func (DoctorSchedule) TableName() string {
	return "doctor_schedules"
}

// StartsAt combines the schedule date and start time in loc.
func (s *DoctorSchedule) StartsAt(loc *time.Location) time.Time {
	t, err := time.Parse("15:04", trimSeconds(s.StartTime))
	if err != nil {
		return time.Date(s.ScheduleDate.Year(), s.ScheduleDate.Month(), s.ScheduleDate.Day(), 0, 0, 0, 0, loc)
	}
	return time.Date(s.ScheduleDate.Year(), s.ScheduleDate.Month(), s.ScheduleDate.Day(), t.Hour(), t.Minute(), 0, 0, loc)
}

// postgres returns time columns as HH:MM:SS
func trimSeconds(hhmmss string) string {
	if len(hhmmss) > 5 {
		return hhmmss[:5]
	}
	return hhmmss
}
