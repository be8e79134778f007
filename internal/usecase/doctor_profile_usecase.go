package usecase

import (
	"context"
	"errors"
	"strings"

	"pubudu-echanneling/internal/converter"
	"pubudu-echanneling/internal/delivery/dto"
	"pubudu-echanneling/internal/delivery/http/middleware"
	"pubudu-echanneling/internal/domain/entity"
	"pubudu-echanneling/internal/domain/repository"
	"pubudu-echanneling/internal/service"
	"pubudu-echanneling/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrLicenseNoExists     = errors.New("license number already exists")
	ErrInvalidFee          = errors.New("consultation fee must be a non-negative amount")
	ErrDoctorHasOpenVisits = errors.New("doctor still has open appointments")
)

type DoctorProfileUsecase interface {
	CreateDoctor(ctx context.Context, form validator.Form) (*dto.DoctorResponse, error)
	GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error)
	GetAllDoctors(ctx context.Context, filter *dto.DoctorFilterRequest) (*dto.DoctorListResponse, error)
	UpdateDoctor(ctx context.Context, doctorID uuid.UUID, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error)
	DeleteDoctor(ctx context.Context, doctorID uuid.UUID) error
	// ListPublicDoctors is the patient-facing catalogue; inactive doctors are hidden.
	ListPublicDoctors(ctx context.Context, filter *dto.DoctorFilterRequest) (*dto.PublicDoctorListResponse, error)
}

type doctorProfileUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	userRepo          repository.UserRepository
	doctorProfileRepo repository.DoctorProfileRepository
	appointmentRepo   repository.AppointmentRepository
	auditService      service.AuditService
}

func NewDoctorProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
) DoctorProfileUsecase {
	return &doctorProfileUsecase{
		db:                db,
		log:               log,
		userRepo:          userRepo,
		doctorProfileRepo: doctorProfileRepo,
		appointmentRepo:   appointmentRepo,
		auditService:      auditService,
	}
}

func (u *doctorProfileUsecase) CreateDoctor(ctx context.Context, form validator.Form) (*dto.DoctorResponse, error) {
	result := validator.AdminDoctor.ValidateDoctorAccount(form)
	req, feeErr := converter.FormToCreateDoctorRequest(form)
	if feeErr != nil || (req != nil && req.ConsultationFee.IsNegative()) {
		result.Errors["consultation_fee"] = "Consultation fee must be a non-negative amount"
		result.IsValid = false
	}
	if !result.IsValid {
		return nil, newValidationError(result.Errors)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	adminID, _ := middleware.GetUserIDFromContext(ctx)

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	// Create user with doctor profile in single insert using GORM association
	doctorProfile := &entity.DoctorProfile{
		FullName:        req.FullName,
		Specialization:  req.Specialization,
		LicenseNo:       req.LicenseNo,
		ConsultationFee: req.ConsultationFee,
		CreatedBy:       &adminID,
		User: entity.User{
			Username:      req.Username,
			Password:      string(hashedPassword),
			Email:         optionalString(req.Email),
			ContactNumber: req.ContactNumber,
			RoleID:        entity.RoleIDDoctor,
			IsActive:      true,
		},
	}
	if err := u.doctorProfileRepo.Create(tx, doctorProfile); err != nil {
		if mapped := staffAccountConflict(err); mapped != nil {
			return nil, mapped
		}
		if isDuplicateKeyError(err, "license_no") {
			return nil, ErrLicenseNoExists
		}
		u.log.Warnf("Failed to create doctor: %+v", err)
		return nil, err
	}
	doctorProfile.UserID = doctorProfile.User.ID

	if err := u.auditService.LogCreate(ctx, tx, &adminID, entity.AuditActionDoctorCreate, "doctor_profile", doctorProfile.UserID.String(), converter.DoctorProfileToResponse(doctorProfile)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
		// Don't fail the transaction for audit log errors
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.DoctorProfileToResponse(doctorProfile), nil
}

func (u *doctorProfileUsecase) GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error) {
	profile, err := u.doctorProfileRepo.FindByUserID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}
	return converter.DoctorProfileToResponse(profile), nil
}

func (u *doctorProfileUsecase) GetAllDoctors(ctx context.Context, filter *dto.DoctorFilterRequest) (*dto.DoctorListResponse, error) {
	profiles, err := u.doctorProfileRepo.FindAll(u.db.WithContext(ctx), doctorFilter(filter, false))
	if err != nil {
		u.log.Warnf("Failed to find all doctor profiles: %+v", err)
		return nil, err
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorProfilesToResponses(profiles),
		Total:   len(profiles),
	}, nil
}

func (u *doctorProfileUsecase) ListPublicDoctors(ctx context.Context, filter *dto.DoctorFilterRequest) (*dto.PublicDoctorListResponse, error) {
	profiles, err := u.doctorProfileRepo.FindAll(u.db.WithContext(ctx), doctorFilter(filter, true))
	if err != nil {
		u.log.Warnf("Failed to list doctors: %+v", err)
		return nil, err
	}

	return &dto.PublicDoctorListResponse{
		Doctors: converter.DoctorProfilesToPublic(profiles),
		Total:   len(profiles),
	}, nil
}

func (u *doctorProfileUsecase) UpdateDoctor(ctx context.Context, doctorID uuid.UUID, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error) {
	if req.ConsultationFee != nil && req.ConsultationFee.IsNegative() {
		return nil, ErrInvalidFee
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	profile, err := u.doctorProfileRepo.FindByUserID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	oldProfile := converter.DoctorProfileToResponse(profile)

	if req.Email != nil {
		profile.User.Email = optionalString(strings.ToLower(strings.TrimSpace(*req.Email)))
	}
	if req.ContactNumber != nil {
		profile.User.ContactNumber = strings.TrimSpace(*req.ContactNumber)
	}
	if req.IsActive != nil {
		profile.User.IsActive = *req.IsActive
	}
	if req.FullName != nil {
		profile.FullName = validator.Sanitize(*req.FullName)
	}
	if req.Specialization != nil {
		profile.Specialization = validator.Sanitize(*req.Specialization)
	}
	if req.LicenseNo != nil {
		profile.LicenseNo = strings.ToUpper(strings.TrimSpace(*req.LicenseNo))
	}
	if req.ConsultationFee != nil {
		profile.ConsultationFee = *req.ConsultationFee
	}

	if err := u.doctorProfileRepo.Update(tx, profile); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		if isDuplicateKeyError(err, "license_no") {
			return nil, ErrLicenseNoExists
		}
		u.log.Warnf("Failed to update doctor profile: %+v", err)
		return nil, err
	}

	newProfile := converter.DoctorProfileToResponse(profile)

	adminID, _ := middleware.GetUserIDFromContext(ctx)
	if err := u.auditService.LogUpdate(ctx, tx, &adminID, entity.AuditActionDoctorUpdate, "doctor_profile", profile.UserID.String(), oldProfile, newProfile); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return newProfile, nil
}

// DeleteDoctor removes the doctor's account; schedules and past appointments
// go with it. Doctors with open appointments must be deactivated instead.
func (u *doctorProfileUsecase) DeleteDoctor(ctx context.Context, doctorID uuid.UUID) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	profile, err := u.doctorProfileRepo.FindByUserID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return err
	}
	if profile == nil {
		return ErrDoctorNotFound
	}

	open, err := u.appointmentRepo.FindAll(tx, entity.AppointmentFilter{DoctorID: &doctorID, Status: entity.AppointmentStatusUpcoming})
	if err != nil {
		u.log.Warnf("Failed to check open appointments: %+v", err)
		return err
	}
	pending, err := u.appointmentRepo.FindAll(tx, entity.AppointmentFilter{DoctorID: &doctorID, Status: entity.AppointmentStatusPending})
	if err != nil {
		u.log.Warnf("Failed to check open appointments: %+v", err)
		return err
	}
	if len(open)+len(pending) > 0 {
		return ErrDoctorHasOpenVisits
	}

	rowsAffected, err := u.userRepo.Delete(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to delete doctor: %+v", err)
		return err
	}
	if rowsAffected == 0 {
		return ErrDoctorNotFound
	}

	adminID, _ := middleware.GetUserIDFromContext(ctx)
	if err := u.auditService.LogDelete(ctx, tx, &adminID, entity.AuditActionDoctorDelete, "doctor_profile", doctorID.String(), converter.DoctorProfileToResponse(profile)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	return nil
}

func doctorFilter(req *dto.DoctorFilterRequest, activeOnly bool) entity.DoctorFilter {
	filter := entity.DoctorFilter{ActiveOnly: activeOnly}
	if req != nil {
		filter.Name = strings.TrimSpace(req.Name)
		filter.Specialization = strings.TrimSpace(req.Specialization)
	}
	return filter
}

// staffAccountConflict maps unique violations on the users table shared by
// every staff account.
func staffAccountConflict(err error) error {
	switch {
	case isDuplicateKeyError(err, "username"):
		return ErrUsernameExists
	case isDuplicateKeyError(err, "email"):
		return ErrEmailAlreadyExists
	case isForeignKeyError(err, "role"):
		return ErrRoleNotFound
	}
	return nil
}
