package usecase

import (
	"context"
	"errors"
	"time"

	"pubudu-echanneling/internal/converter"
	"pubudu-echanneling/internal/delivery/dto"
	"pubudu-echanneling/internal/delivery/http/middleware"
	"pubudu-echanneling/internal/domain/entity"
	"pubudu-echanneling/internal/domain/repository"
	"pubudu-echanneling/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrScheduleNotFound        = errors.New("schedule not found")
	ErrInvalidTimeRange        = errors.New("end time must be after start time")
	ErrSchedulePast            = errors.New("schedule date has already passed")
	ErrScheduleOverlap         = errors.New("doctor already has a session at this time")
	ErrScheduleHasAppointments = errors.New("schedule has open appointments")
	ErrDoctorInactive          = errors.New("doctor is not active")
)

type DoctorScheduleUsecase interface {
	CreateSchedule(ctx context.Context, req *dto.CreateScheduleRequest) (*dto.ScheduleResponse, error)
	DeleteSchedule(ctx context.Context, scheduleID int) error
	// GetSchedulesByDoctor lists a doctor's upcoming sessions with live slot counts.
	GetSchedulesByDoctor(ctx context.Context, doctorID uuid.UUID, filter *dto.ScheduleFilterRequest) (*dto.ScheduleListResponse, error)
	GetMySchedules(ctx context.Context, filter *dto.ScheduleFilterRequest) (*dto.ScheduleListResponse, error)
}

type doctorScheduleUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	loc               *time.Location
	scheduleRepo      repository.DoctorScheduleRepository
	doctorProfileRepo repository.DoctorProfileRepository
	appointmentRepo   repository.AppointmentRepository
	slots             service.SlotReserver
	auditService      service.AuditService
	now               func() time.Time
}

func NewDoctorScheduleUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	loc *time.Location,
	scheduleRepo repository.DoctorScheduleRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	appointmentRepo repository.AppointmentRepository,
	slots service.SlotReserver,
	auditService service.AuditService,
) DoctorScheduleUsecase {
	if loc == nil {
		loc = time.Local
	}
	return &doctorScheduleUsecase{
		db:                db,
		log:               log,
		loc:               loc,
		scheduleRepo:      scheduleRepo,
		doctorProfileRepo: doctorProfileRepo,
		appointmentRepo:   appointmentRepo,
		slots:             slots,
		auditService:      auditService,
		now:               time.Now,
	}
}

func (u *doctorScheduleUsecase) CreateSchedule(ctx context.Context, req *dto.CreateScheduleRequest) (*dto.ScheduleResponse, error) {
	scheduleDate, err := time.ParseInLocation(dateLayout, req.ScheduleDate, u.loc)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}
	// HH:MM compares correctly as a string
	if req.EndTime <= req.StartTime {
		return nil, ErrInvalidTimeRange
	}

	schedule := &entity.DoctorSchedule{
		DoctorID:     req.DoctorID,
		ScheduleDate: scheduleDate,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		TotalQuota:   req.TotalQuota,
	}
	if !schedule.StartsAt(u.loc).After(u.now().In(u.loc)) {
		return nil, ErrSchedulePast
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor, err := u.doctorProfileRepo.FindByUserID(tx, req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor: %+v", err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	if !doctor.User.IsActive {
		return nil, ErrDoctorInactive
	}

	overlap, err := u.scheduleRepo.ExistsOverlap(tx, schedule)
	if err != nil {
		u.log.Warnf("Failed to check schedule overlap: %+v", err)
		return nil, err
	}
	if overlap {
		return nil, ErrScheduleOverlap
	}

	if err := u.scheduleRepo.Create(tx, schedule); err != nil {
		if isForeignKeyError(err, "doctor") {
			return nil, ErrDoctorNotFound
		}
		u.log.Warnf("Failed to create schedule: %+v", err)
		return nil, err
	}
	schedule.Doctor = *doctor

	adminID, _ := middleware.GetUserIDFromContext(ctx)
	if err := u.auditService.LogCreate(ctx, tx, &adminID, entity.AuditActionScheduleCreate, "doctor_schedule", itoa(schedule.ID), converter.ScheduleToResponse(schedule)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	// A missing counter is rebuilt on the first reservation.
	if err := u.slots.SyncSchedule(ctx, schedule.ID, schedule.TotalQuota, schedule.ScheduleDate); err != nil {
		u.log.Errorf("Failed to initialise slots for schedule %d: %+v", schedule.ID, err)
	}

	resp := converter.ScheduleToResponse(schedule)
	remaining := schedule.TotalQuota
	resp.RemainingSlots = &remaining
	return resp, nil
}

func (u *doctorScheduleUsecase) DeleteSchedule(ctx context.Context, scheduleID int) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	schedule, err := u.scheduleRepo.FindByID(tx, scheduleID)
	if err != nil {
		u.log.Warnf("Failed to find schedule: %+v", err)
		return err
	}
	if schedule == nil {
		return ErrScheduleNotFound
	}

	open, err := u.appointmentRepo.CountOpenBySchedule(tx, scheduleID)
	if err != nil {
		u.log.Warnf("Failed to count appointments: %+v", err)
		return err
	}
	if open > 0 {
		return ErrScheduleHasAppointments
	}

	rowsAffected, err := u.scheduleRepo.Delete(tx, scheduleID)
	if err != nil {
		u.log.Warnf("Failed to delete schedule: %+v", err)
		return err
	}
	if rowsAffected == 0 {
		return ErrScheduleNotFound
	}

	adminID, _ := middleware.GetUserIDFromContext(ctx)
	if err := u.auditService.LogDelete(ctx, tx, &adminID, entity.AuditActionScheduleDelete, "doctor_schedule", itoa(scheduleID), converter.ScheduleToResponse(schedule)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	if err := u.slots.DeleteScheduleKeys(ctx, scheduleID); err != nil {
		u.log.Warnf("Failed to delete slot keys for schedule %d: %+v", scheduleID, err)
	}
	return nil
}

func (u *doctorScheduleUsecase) GetSchedulesByDoctor(ctx context.Context, doctorID uuid.UUID, filter *dto.ScheduleFilterRequest) (*dto.ScheduleListResponse, error) {
	db := u.db.WithContext(ctx)

	doctor, err := u.doctorProfileRepo.FindByUserID(db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor: %+v", err)
		return nil, err
	}
	if doctor == nil || !doctor.User.IsActive {
		return nil, ErrDoctorNotFound
	}

	scheduleFilter := &entity.ScheduleFilter{DoctorID: &doctorID, StartAt: u.today()}
	if filter != nil {
		if filter.StartAt > scheduleFilter.StartAt {
			scheduleFilter.StartAt = filter.StartAt
		}
		scheduleFilter.EndAt = filter.EndAt
	}

	schedules, err := u.scheduleRepo.FindAllWithActiveDoctor(db, scheduleFilter)
	if err != nil {
		u.log.Warnf("Failed to find schedules: %+v", err)
		return nil, err
	}

	return u.withRemaining(ctx, schedules), nil
}

func (u *doctorScheduleUsecase) GetMySchedules(ctx context.Context, filter *dto.ScheduleFilterRequest) (*dto.ScheduleListResponse, error) {
	doctorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	from := u.today()
	if filter != nil && filter.StartAt != "" {
		from = filter.StartAt
	}

	schedules, err := u.scheduleRepo.FindByDoctorID(u.db.WithContext(ctx), doctorID, from)
	if err != nil {
		u.log.Warnf("Failed to find schedules: %+v", err)
		return nil, err
	}

	if filter != nil && filter.EndAt != "" {
		kept := schedules[:0]
		for _, s := range schedules {
			if s.ScheduleDate.Format(dateLayout) <= filter.EndAt {
				kept = append(kept, s)
			}
		}
		schedules = kept
	}

	return u.withRemaining(ctx, schedules), nil
}

// withRemaining attaches live slot counts; when Redis is unavailable the
// list is still returned, just without counts.
func (u *doctorScheduleUsecase) withRemaining(ctx context.Context, schedules []entity.DoctorSchedule) *dto.ScheduleListResponse {
	ids := make([]int, len(schedules))
	for i, s := range schedules {
		ids[i] = s.ID
	}

	remaining, err := u.slots.Remaining(ctx, ids)
	if err != nil {
		u.log.Warnf("Failed to read remaining slots: %+v", err)
		remaining = nil
	}

	return &dto.ScheduleListResponse{
		Schedules: converter.SchedulesToResponses(schedules, remaining),
		Total:     len(schedules),
	}
}

func (u *doctorScheduleUsecase) today() string {
	return u.now().In(u.loc).Format(dateLayout)
}
