package usecase

import (
	"context"

	"pubudu-echanneling/internal/converter"
	"pubudu-echanneling/internal/delivery/dto"
	"pubudu-echanneling/internal/domain/entity"
	"pubudu-echanneling/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ReportUsecase interface {
	GetSummary(ctx context.Context) (*dto.ReportSummaryResponse, error)
}

type reportUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	userRepo        repository.UserRepository
	appointmentRepo repository.AppointmentRepository
	paymentRepo     repository.PaymentRepository
}

func NewReportUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	appointmentRepo repository.AppointmentRepository,
	paymentRepo repository.PaymentRepository,
) ReportUsecase {
	return &reportUsecase{
		db:              db,
		log:             log,
		userRepo:        userRepo,
		appointmentRepo: appointmentRepo,
		paymentRepo:     paymentRepo,
	}
}

func (u *reportUsecase) GetSummary(ctx context.Context) (*dto.ReportSummaryResponse, error) {
	db := u.db.WithContext(ctx)
	summary := &entity.ReportSummary{}

	roleCounts := []struct {
		roleID int
		dst    *int64
	}{
		{entity.RoleIDPatient, &summary.TotalPatients},
		{entity.RoleIDDoctor, &summary.TotalDoctors},
		{entity.RoleIDReceptionist, &summary.TotalReceptionists},
	}
	for _, rc := range roleCounts {
		count, err := u.userRepo.CountByRole(db, rc.roleID)
		if err != nil {
			u.log.Warnf("Failed to count users with role %d: %+v", rc.roleID, err)
			return nil, err
		}
		*rc.dst = count
	}

	byStatus, err := u.appointmentRepo.CountByStatus(db)
	if err != nil {
		u.log.Warnf("Failed to count appointments: %+v", err)
		return nil, err
	}
	summary.UpcomingAppointments = byStatus[entity.AppointmentStatusUpcoming]
	summary.PendingAppointments = byStatus[entity.AppointmentStatusPending]
	summary.CompletedAppointments = byStatus[entity.AppointmentStatusCompleted]
	summary.CancelledAppointments = byStatus[entity.AppointmentStatusCancelled]
	for _, n := range byStatus {
		summary.TotalAppointments += n
	}

	revenue, err := u.paymentRepo.SumSuccessful(db)
	if err != nil {
		u.log.Warnf("Failed to sum payments: %+v", err)
		return nil, err
	}
	summary.TotalRevenue = revenue

	return converter.ReportSummaryToResponse(summary), nil
}
