package repository

import (
	"pubudu-echanneling/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(db *gorm.DB, payment *entity.Payment) error
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Payment, error)
	SumSuccessful(db *gorm.DB) (decimal.Decimal, error)
}
