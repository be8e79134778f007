package converter

import (
	"pubudu-echanneling/internal/delivery/dto"
	"pubudu-echanneling/internal/domain/entity"
)

func ReportSummaryToResponse(summary *entity.ReportSummary) *dto.ReportSummaryResponse {
	return &dto.ReportSummaryResponse{
		TotalPatients:      summary.TotalPatients,
		TotalDoctors:       summary.TotalDoctors,
		TotalReceptionists: summary.TotalReceptionists,
		Appointments: dto.AppointmentCounts{
			Total:     summary.TotalAppointments,
			Upcoming:  summary.UpcomingAppointments,
			Pending:   summary.PendingAppointments,
			Completed: summary.CompletedAppointments,
			Cancelled: summary.CancelledAppointments,
		},
		TotalRevenue: summary.TotalRevenue.Round(2),
	}
}
