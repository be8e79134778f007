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

type PaymentHandler struct {
	paymentUsecase usecase.PaymentUsecase
	validator      *validator.CustomValidator
}

func NewPaymentHandler(paymentUsecase usecase.PaymentUsecase, validator *validator.CustomValidator) *PaymentHandler {
	return &PaymentHandler{
		paymentUsecase: paymentUsecase,
		validator:      validator,
	}
}

func (h *PaymentHandler) PayAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.paymentUsecase.PayAppointment(r.Context(), &req)
	if err != nil {
		writePaymentError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Payment successful", appointment)
}

func (h *PaymentHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := pathUUID(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	appointment, err := h.paymentUsecase.ConfirmPayment(r.Context(), appointmentID)
	if err != nil {
		writePaymentError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Payment confirmed successfully", appointment)
}

func (h *PaymentHandler) GetMyTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.paymentUsecase.GetMyTransactions(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrUnauthenticated) {
			response.Unauthorized(w, "Unauthorized")
			return
		}
		response.InternalServerError(w, "Failed to get transactions")
		return
	}

	response.Success(w, http.StatusOK, "Transactions retrieved successfully", transactions)
}

func writePaymentError(w http.ResponseWriter, err error) {
	if writeValidationError(w, err) {
		return
	}
	switch {
	case errors.Is(err, usecase.ErrUnauthenticated):
		response.Unauthorized(w, "Unauthorized")
	case errors.Is(err, usecase.ErrAppointmentNotFound):
		response.NotFound(w, "Appointment not found")
	case errors.Is(err, usecase.ErrAppointmentNotOwned):
		response.Forbidden(w, "Appointment does not belong to you")
	case errors.Is(err, usecase.ErrAppointmentNotPayable):
		response.BadRequest(w, "Only pending unpaid appointments can be paid")
	default:
		response.InternalServerError(w, "Failed to process payment")
	}
}
