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

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvalidSearchType = errors.New("search type must be one of nic, phone, name")
	ErrEmptySearchQuery  = errors.New("search query is required")
)

const patientSearchLimit = 20

// PatientProfileUsecase covers the front-desk view of patients.
type PatientProfileUsecase interface {
	SearchPatients(ctx context.Context, searchType, query string) (*dto.PatientSearchResponse, error)
	RegisterPatient(ctx context.Context, form validator.Form) (*dto.PatientResponse, error)
}

type patientProfileUsecase struct {
	db                 *gorm.DB
	log                *logrus.Logger
	userRepo           repository.UserRepository
	patientProfileRepo repository.PatientProfileRepository
	auditService       service.AuditService
}

func NewPatientProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	patientProfileRepo repository.PatientProfileRepository,
	auditService service.AuditService,
) PatientProfileUsecase {
	return &patientProfileUsecase{
		db:                 db,
		log:                log,
		userRepo:           userRepo,
		patientProfileRepo: patientProfileRepo,
		auditService:       auditService,
	}
}

func (u *patientProfileUsecase) SearchPatients(ctx context.Context, searchType, query string) (*dto.PatientSearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptySearchQuery
	}

	by := entity.PatientSearchType(strings.ToLower(strings.TrimSpace(searchType)))
	switch by {
	case "":
		by = entity.PatientSearchName
	case entity.PatientSearchNIC, entity.PatientSearchPhone, entity.PatientSearchName:
	default:
		return nil, ErrInvalidSearchType
	}

	profiles, err := u.patientProfileRepo.Search(ctx, u.db, by, query, patientSearchLimit)
	if err != nil {
		u.log.Warnf("Failed to search patients: %+v", err)
		return nil, err
	}

	return &dto.PatientSearchResponse{
		Exists:   len(profiles) > 0,
		Patients: converter.PatientsToResponses(profiles),
	}, nil
}

// RegisterPatient creates an account for a walk-in patient. Staff pick the
// initial password, so the staff password rules apply.
func (u *patientProfileUsecase) RegisterPatient(ctx context.Context, form validator.Form) (*dto.PatientResponse, error) {
	if result := validator.ReceptionistAssisted.ValidatePatientRegistration(form); !result.IsValid {
		return nil, newValidationError(result.Errors)
	}
	req := converter.FormToRegisterPatientRequest(form)

	receptionistID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user, err := createPatientAccount(ctx, tx, u.userRepo, u.patientProfileRepo, req, &receptionistID)
	if err != nil {
		if !isRegistrationConflict(err) {
			u.log.Warnf("Failed to register patient: %+v", err)
		}
		return nil, err
	}

	profile := *user.PatientProfile
	profile.User = *user
	resp := converter.PatientToResponse(&profile)

	if err := u.auditService.LogCreate(ctx, tx, &receptionistID, entity.AuditActionPatientRegister, "patient_profile", user.ID.String(), resp); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return &resp, nil
}
