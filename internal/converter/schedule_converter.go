package converter

import (
	"pubudu-echanneling/internal/delivery/dto"
	"pubudu-echanneling/internal/domain/entity"
)

// ScheduleToResponse converts a DoctorSchedule entity to ScheduleResponse DTO.
// Doctor details are filled in when the Doctor relation is loaded.
func ScheduleToResponse(schedule *entity.DoctorSchedule) *dto.ScheduleResponse {
	if schedule == nil {
		return nil
	}

	return &dto.ScheduleResponse{
		ID:              schedule.ID,
		DoctorID:        schedule.DoctorID,
		DoctorName:      schedule.Doctor.FullName,
		Specialization:  schedule.Doctor.Specialization,
		ConsultationFee: schedule.Doctor.ConsultationFee,
		ScheduleDate:    schedule.ScheduleDate.Format(dateLayout),
		StartTime:       clockTime(schedule.StartTime),
		EndTime:         clockTime(schedule.EndTime),
		TotalQuota:      schedule.TotalQuota,
		CreatedAt:       schedule.CreatedAt,
	}
}

// SchedulesToResponses attaches remaining slot counts where known.
func SchedulesToResponses(schedules []entity.DoctorSchedule, remaining map[int]int) []dto.ScheduleResponse {
	responses := make([]dto.ScheduleResponse, len(schedules))
	for i := range schedules {
		responses[i] = *ScheduleToResponse(&schedules[i])
		if n, ok := remaining[schedules[i].ID]; ok {
			responses[i].RemainingSlots = &n
		}
	}
	return responses
}

// clockTime trims postgres TIME values (HH:MM:SS) to HH:MM.
func clockTime(t string) string {
	if len(t) > 5 {
		return t[:5]
	}
	return t
}
