package converter

import (
	"pubudu-echanneling/internal/delivery/dto"
	"pubudu-echanneling/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO.
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:              appointment.ID,
		AppointmentNo:   appointment.AppointmentNo,
		BookingCode:     appointment.BookingCode,
		PatientID:       appointment.PatientID,
		PatientName:     appointment.Patient.FullName,
		DoctorID:        appointment.DoctorID,
		DoctorName:      appointment.Doctor.FullName,
		Specialization:  appointment.Doctor.Specialization,
		ScheduleID:      appointment.ScheduleID,
		AppointmentDate: appointment.AppointmentDate.Format(dateLayout),
		AppointmentTime: clockTime(appointment.AppointmentTime),
		Status:          string(appointment.Status),
		PaymentStatus:   string(appointment.PaymentStatus),
		Fee:             appointment.Fee,
		Notes:           appointment.Notes,
		CreatedAt:       appointment.CreatedAt,
	}
}

func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}
