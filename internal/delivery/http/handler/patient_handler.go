package handler

import (
	"errors"
	"net/http"

	"pubudu-echanneling/internal/usecase"
	"pubudu-echanneling/pkg/response"
)

// PatientHandler serves the receptionist's patient lookup and walk-in registration.
type PatientHandler struct {
	patientUsecase usecase.PatientProfileUsecase
}

func NewPatientHandler(patientUsecase usecase.PatientProfileUsecase) *PatientHandler {
	return &PatientHandler{
		patientUsecase: patientUsecase,
	}
}

func (h *PatientHandler) SearchPatients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	result, err := h.patientUsecase.SearchPatients(r.Context(), q.Get("type"), q.Get("query"))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrEmptySearchQuery):
			response.BadRequest(w, "Search query is required")
		case errors.Is(err, usecase.ErrInvalidSearchType):
			response.BadRequest(w, "Search type must be one of nic, phone, name")
		default:
			response.InternalServerError(w, "Failed to search patients")
		}
		return
	}

	message := "Patient found"
	if !result.Exists {
		message = "No matching patient, register a new one"
	}
	response.Success(w, http.StatusOK, message, result)
}

func (h *PatientHandler) RegisterPatient(w http.ResponseWriter, r *http.Request) {
	form, err := decodeForm(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	patient, err := h.patientUsecase.RegisterPatient(r.Context(), form)
	if err != nil {
		if writeValidationError(w, err) {
			return
		}
		switch {
		case errors.Is(err, usecase.ErrUnauthenticated):
			response.Unauthorized(w, "Unauthorized")
		case errors.Is(err, usecase.ErrUsernameExists):
			response.Conflict(w, "Username already exists")
		case errors.Is(err, usecase.ErrEmailAlreadyExists):
			response.Conflict(w, "Email already exists")
		case errors.Is(err, usecase.ErrNICAlreadyExists):
			response.Conflict(w, "NIC already exists")
		default:
			response.InternalServerError(w, "Failed to register patient")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Patient registered successfully", patient)
}
