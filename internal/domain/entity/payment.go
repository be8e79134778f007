package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentMethodCard = "CARD"
	PaymentMethodCash = "CASH"
)

const (
	TransactionStatusSuccess = "SUCCESS"
	TransactionStatusFailed  = "FAILED"
)

// Payment is a single money movement recorded for a patient.
type Payment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"patient_id"`
	AppointmentID *uuid.UUID      `gorm:"type:uuid;index" json:"appointment_id,omitempty"`
	Amount        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	PaymentMethod string          `gorm:"type:varchar(50);not null" json:"payment_method"`
	Status        string          `gorm:"type:varchar(20);not null;default:'SUCCESS'" json:"status"`
	TransactionID string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"transaction_id"`
	Description   string          `gorm:"type:varchar(255)" json:"description,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}
