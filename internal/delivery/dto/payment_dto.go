package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentRequest struct {
	AppointmentID uuid.UUID   `json:"appointment_id" validate:"required"`
	Card          CardDetails `json:"card" validate:"required"`
}

type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	AppointmentID *uuid.UUID      `json:"appointment_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	TransactionID string          `json:"transaction_id"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type TransactionListResponse struct {
	Transactions []PaymentResponse `json:"transactions"`
	Total        int               `json:"total"`
}
