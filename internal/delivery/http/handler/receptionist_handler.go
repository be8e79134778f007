package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"pubudu-echanneling/internal/delivery/dto"
	"pubudu-echanneling/internal/usecase"
	"pubudu-echanneling/pkg/response"
	"pubudu-echanneling/pkg/validator"
)

// ReceptionistHandler is the admin view of front-desk staff accounts.
type ReceptionistHandler struct {
	receptionistUsecase usecase.ReceptionistProfileUsecase
	validator           *validator.CustomValidator
}

func NewReceptionistHandler(receptionistUsecase usecase.ReceptionistProfileUsecase, validator *validator.CustomValidator) *ReceptionistHandler {
	return &ReceptionistHandler{
		receptionistUsecase: receptionistUsecase,
		validator:           validator,
	}
}

func (h *ReceptionistHandler) CreateReceptionist(w http.ResponseWriter, r *http.Request) {
	form, err := decodeForm(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	receptionist, err := h.receptionistUsecase.CreateReceptionist(r.Context(), form)
	if err != nil {
		if writeValidationError(w, err) {
			return
		}
		switch {
		case errors.Is(err, usecase.ErrUsernameExists):
			response.Conflict(w, "Username already exists")
		case errors.Is(err, usecase.ErrEmailAlreadyExists):
			response.Conflict(w, "Email already exists")
		case errors.Is(err, usecase.ErrNICAlreadyExists):
			response.Conflict(w, "NIC already exists")
		default:
			response.InternalServerError(w, "Failed to create receptionist")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Receptionist created successfully", receptionist)
}

func (h *ReceptionistHandler) GetReceptionist(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid receptionist ID", nil)
		return
	}

	receptionist, err := h.receptionistUsecase.GetReceptionist(r.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrReceptionistNotFound) {
			response.NotFound(w, "Receptionist not found")
			return
		}
		response.InternalServerError(w, "Failed to get receptionist")
		return
	}

	response.Success(w, http.StatusOK, "Receptionist retrieved successfully", receptionist)
}

func (h *ReceptionistHandler) GetAllReceptionists(w http.ResponseWriter, r *http.Request) {
	receptionists, err := h.receptionistUsecase.GetAllReceptionists(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get receptionists")
		return
	}

	response.Success(w, http.StatusOK, "Receptionists retrieved successfully", receptionists)
}

func (h *ReceptionistHandler) UpdateReceptionist(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid receptionist ID", nil)
		return
	}

	var req dto.UpdateReceptionistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	receptionist, err := h.receptionistUsecase.UpdateReceptionist(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrReceptionistNotFound):
			response.NotFound(w, "Receptionist not found")
		case errors.Is(err, usecase.ErrEmailAlreadyExists):
			response.Conflict(w, "Email already exists")
		case errors.Is(err, usecase.ErrNICAlreadyExists):
			response.Conflict(w, "NIC already exists")
		default:
			response.InternalServerError(w, "Failed to update receptionist")
		}
		return
	}

	response.Success(w, http.StatusOK, "Receptionist updated successfully", receptionist)
}

func (h *ReceptionistHandler) DeleteReceptionist(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid receptionist ID", nil)
		return
	}

	if err := h.receptionistUsecase.DeleteReceptionist(r.Context(), id); err != nil {
		if errors.Is(err, usecase.ErrReceptionistNotFound) {
			response.NotFound(w, "Receptionist not found")
			return
		}
		response.InternalServerError(w, "Failed to delete receptionist")
		return
	}

	response.Success(w, http.StatusOK, "Receptionist deleted successfully", nil)
}
