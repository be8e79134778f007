package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"pubudu-echanneling/internal/delivery/dto"
	"pubudu-echanneling/internal/usecase"
	"pubudu-echanneling/pkg/response"
	"pubudu-echanneling/pkg/validator"

	"github.com/gorilla/mux"
)

type DoctorScheduleHandler struct {
	scheduleUsecase usecase.DoctorScheduleUsecase
	validator       *validator.CustomValidator
}

func NewDoctorScheduleHandler(scheduleUsecase usecase.DoctorScheduleUsecase, validator *validator.CustomValidator) *DoctorScheduleHandler {
	return &DoctorScheduleHandler{
		scheduleUsecase: scheduleUsecase,
		validator:       validator,
	}
}

func (h *DoctorScheduleHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	schedule, err := h.scheduleUsecase.CreateSchedule(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrDoctorNotFound):
			response.NotFound(w, "Doctor not found")
		case errors.Is(err, usecase.ErrDoctorInactive):
			response.BadRequest(w, "Doctor is not active")
		case errors.Is(err, usecase.ErrInvalidDateFormat):
			response.BadRequest(w, "Invalid schedule date format, use YYYY-MM-DD")
		case errors.Is(err, usecase.ErrInvalidTimeRange):
			response.BadRequest(w, "End time must be after start time")
		case errors.Is(err, usecase.ErrSchedulePast):
			response.BadRequest(w, "Schedule date has already passed")
		case errors.Is(err, usecase.ErrScheduleOverlap):
			response.Conflict(w, "Doctor already has a session at this time")
		default:
			response.InternalServerError(w, "Failed to create schedule")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Schedule created successfully", schedule)
}

func (h *DoctorScheduleHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	scheduleID, err := strconv.Atoi(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid schedule ID", nil)
		return
	}

	if err := h.scheduleUsecase.DeleteSchedule(r.Context(), scheduleID); err != nil {
		switch {
		case errors.Is(err, usecase.ErrScheduleNotFound):
			response.NotFound(w, "Schedule not found")
		case errors.Is(err, usecase.ErrScheduleHasAppointments):
			response.Conflict(w, "Schedule has open appointments")
		default:
			response.InternalServerError(w, "Failed to delete schedule")
		}
		return
	}

	response.Success(w, http.StatusOK, "Schedule deleted successfully", nil)
}

// GetSchedulesByDoctor is public; patients pick a session from it.
func (h *DoctorScheduleHandler) GetSchedulesByDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	filter, ok := h.scheduleFilter(w, r)
	if !ok {
		return
	}

	schedules, err := h.scheduleUsecase.GetSchedulesByDoctor(r.Context(), doctorID, filter)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrDoctorNotFound):
			response.NotFound(w, "Doctor not found")
		case errors.Is(err, usecase.ErrInvalidDateFormat):
			response.BadRequest(w, "Invalid date format, use YYYY-MM-DD")
		default:
			response.InternalServerError(w, "Failed to get schedules")
		}
		return
	}

	response.Success(w, http.StatusOK, "Schedules retrieved successfully", schedules)
}

func (h *DoctorScheduleHandler) GetMySchedules(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.scheduleFilter(w, r)
	if !ok {
		return
	}

	schedules, err := h.scheduleUsecase.GetMySchedules(r.Context(), filter)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUnauthenticated):
			response.Unauthorized(w, "Unauthorized")
		case errors.Is(err, usecase.ErrInvalidDateFormat):
			response.BadRequest(w, "Invalid date format, use YYYY-MM-DD")
		default:
			response.InternalServerError(w, "Failed to get schedules")
		}
		return
	}

	response.Success(w, http.StatusOK, "Schedules retrieved successfully", schedules)
}

func (h *DoctorScheduleHandler) scheduleFilter(w http.ResponseWriter, r *http.Request) (*dto.ScheduleFilterRequest, bool) {
	q := r.URL.Query()
	filter := &dto.ScheduleFilterRequest{
		StartAt: q.Get("start_date"),
		EndAt:   q.Get("end_date"),
	}
	if err := h.validator.Validate(filter); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return nil, false
	}
	return filter, true
}
