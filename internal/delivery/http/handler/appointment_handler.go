package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"pubudu-echanneling/internal/delivery/dto"
	"pubudu-echanneling/internal/usecase"
	"pubudu-echanneling/pkg/response"
	"pubudu-echanneling/pkg/validator"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
	}
}

// BookAppointment books the logged-in patient into a session.
func (h *AppointmentHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.BookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.BookAppointment(r.Context(), &req)
	if err != nil {
		writeBookingError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked successfully", appointment)
}

// BookForPatient books a walk-in or phone patient at the front desk.
func (h *AppointmentHandler) BookForPatient(w http.ResponseWriter, r *http.Request) {
	var req dto.FrontDeskBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.BookForPatient(r.Context(), &req)
	if err != nil {
		writeBookingError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked successfully", appointment)
}

func (h *AppointmentHandler) GetMyAppointments(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.appointmentUsecase.GetMyAppointments)
}

func (h *AppointmentHandler) GetDoctorAppointments(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.appointmentUsecase.GetDoctorAppointments)
}

func (h *AppointmentHandler) GetAllAppointments(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.appointmentUsecase.GetAllAppointments)
}

func (h *AppointmentHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	if err := h.appointmentUsecase.CancelAppointment(r.Context(), appointmentID); err != nil {
		switch {
		case errors.Is(err, usecase.ErrUnauthenticated):
			response.Unauthorized(w, "Unauthorized")
		case errors.Is(err, usecase.ErrAppointmentNotFound):
			response.NotFound(w, "Appointment not found")
		case errors.Is(err, usecase.ErrAppointmentNotOwned):
			response.Forbidden(w, "Appointment does not belong to you")
		case errors.Is(err, usecase.ErrAppointmentNotCancellable):
			response.BadRequest(w, "Appointment can no longer be cancelled")
		default:
			response.InternalServerError(w, "Failed to cancel appointment")
		}
		return
	}

	response.Success(w, http.StatusOK, "Appointment cancelled successfully", nil)
}

func (h *AppointmentHandler) CompleteAppointment(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	appointment, err := h.appointmentUsecase.CompleteAppointment(r.Context(), appointmentID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUnauthenticated):
			response.Unauthorized(w, "Unauthorized")
		case errors.Is(err, usecase.ErrAppointmentNotFound):
			response.NotFound(w, "Appointment not found")
		case errors.Is(err, usecase.ErrAppointmentNotOwned):
			response.Forbidden(w, "Appointment is not in your sessions")
		case errors.Is(err, usecase.ErrAppointmentNotUpcoming):
			response.BadRequest(w, "Only upcoming appointments can be completed")
		default:
			response.InternalServerError(w, "Failed to complete appointment")
		}
		return
	}

	response.Success(w, http.StatusOK, "Appointment completed successfully", appointment)
}

type appointmentLister func(ctx context.Context, filter *dto.AppointmentFilterRequest) (*dto.AppointmentListResponse, error)

func (h *AppointmentHandler) list(w http.ResponseWriter, r *http.Request, fetch appointmentLister) {
	q := r.URL.Query()
	filter := &dto.AppointmentFilterRequest{
		Status: q.Get("status"),
		Date:   q.Get("date"),
	}
	if err := h.validator.Validate(filter); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointments, err := fetch(r.Context(), filter)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUnauthenticated):
			response.Unauthorized(w, "Unauthorized")
		case errors.Is(err, usecase.ErrInvalidDateFormat):
			response.BadRequest(w, "Invalid date format, use YYYY-MM-DD")
		default:
			response.InternalServerError(w, "Failed to get appointments")
		}
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func writeBookingError(w http.ResponseWriter, err error) {
	if writeValidationError(w, err) {
		return
	}
	switch {
	case errors.Is(err, usecase.ErrUnauthenticated):
		response.Unauthorized(w, "Unauthorized")
	case errors.Is(err, usecase.ErrScheduleNotFound):
		response.NotFound(w, "Schedule not found")
	case errors.Is(err, usecase.ErrPatientNotFound):
		response.NotFound(w, "Patient not found")
	case errors.Is(err, usecase.ErrAccountDisabled):
		response.Forbidden(w, "Patient account is disabled")
	case errors.Is(err, usecase.ErrDoctorInactive):
		response.BadRequest(w, "Doctor is not accepting appointments")
	case errors.Is(err, usecase.ErrSchedulePast):
		response.BadRequest(w, "This session has already started")
	case errors.Is(err, usecase.ErrAlreadyBooked):
		response.Conflict(w, "Patient already has an appointment in this session")
	case errors.Is(err, usecase.ErrSlotsFull):
		response.Conflict(w, "No slots left in this session")
	default:
		response.InternalServerError(w, "Failed to book appointment")
	}
}
