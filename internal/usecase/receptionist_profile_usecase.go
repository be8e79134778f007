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

var ErrReceptionistNotFound = errors.New("receptionist not found")

type ReceptionistProfileUsecase interface {
	CreateReceptionist(ctx context.Context, form validator.Form) (*dto.ReceptionistResponse, error)
	GetReceptionist(ctx context.Context, id uuid.UUID) (*dto.ReceptionistResponse, error)
	GetAllReceptionists(ctx context.Context) (*dto.ReceptionistListResponse, error)
	UpdateReceptionist(ctx context.Context, id uuid.UUID, req *dto.UpdateReceptionistRequest) (*dto.ReceptionistResponse, error)
	DeleteReceptionist(ctx context.Context, id uuid.UUID) error
}

type receptionistProfileUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	userRepo         repository.UserRepository
	receptionistRepo repository.ReceptionistProfileRepository
	auditService     service.AuditService
}

func NewReceptionistProfileUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	receptionistRepo repository.ReceptionistProfileRepository,
	auditService service.AuditService,
) ReceptionistProfileUsecase {
	return &receptionistProfileUsecase{
		db:               db,
		log:              log,
		userRepo:         userRepo,
		receptionistRepo: receptionistRepo,
		auditService:     auditService,
	}
}

func (u *receptionistProfileUsecase) CreateReceptionist(ctx context.Context, form validator.Form) (*dto.ReceptionistResponse, error) {
	if result := validator.AdminReceptionist.ValidateReceptionistAccount(form); !result.IsValid {
		return nil, newValidationError(result.Errors)
	}
	req := converter.FormToCreateReceptionistRequest(form)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	adminID, _ := middleware.GetUserIDFromContext(ctx)

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	profile := &entity.ReceptionistProfile{
		FullName:  req.FullName,
		NIC:       req.NIC,
		CreatedBy: &adminID,
		User: entity.User{
			Username:      req.Username,
			Password:      string(hashedPassword),
			Email:         optionalString(req.Email),
			ContactNumber: req.ContactNumber,
			RoleID:        entity.RoleIDReceptionist,
			IsActive:      true,
		},
	}
	if err := u.receptionistRepo.Create(tx, profile); err != nil {
		if mapped := staffAccountConflict(err); mapped != nil {
			return nil, mapped
		}
		if isDuplicateKeyError(err, "nic") {
			return nil, ErrNICAlreadyExists
		}
		u.log.Warnf("Failed to create receptionist: %+v", err)
		return nil, err
	}
	profile.UserID = profile.User.ID

	if err := u.auditService.LogCreate(ctx, tx, &adminID, entity.AuditActionReceptionistCreate, "receptionist_profile", profile.UserID.String(), converter.ReceptionistProfileToResponse(profile)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.ReceptionistProfileToResponse(profile), nil
}

func (u *receptionistProfileUsecase) GetReceptionist(ctx context.Context, id uuid.UUID) (*dto.ReceptionistResponse, error) {
	profile, err := u.receptionistRepo.FindByUserID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find receptionist: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrReceptionistNotFound
	}
	return converter.ReceptionistProfileToResponse(profile), nil
}

func (u *receptionistProfileUsecase) GetAllReceptionists(ctx context.Context) (*dto.ReceptionistListResponse, error) {
	profiles, err := u.receptionistRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to find all receptionists: %+v", err)
		return nil, err
	}

	return &dto.ReceptionistListResponse{
		Receptionists: converter.ReceptionistProfilesToResponses(profiles),
		Total:         len(profiles),
	}, nil
}

func (u *receptionistProfileUsecase) UpdateReceptionist(ctx context.Context, id uuid.UUID, req *dto.UpdateReceptionistRequest) (*dto.ReceptionistResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	profile, err := u.receptionistRepo.FindByUserID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find receptionist: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrReceptionistNotFound
	}

	oldProfile := converter.ReceptionistProfileToResponse(profile)

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
	if req.NIC != nil {
		profile.NIC = strings.ToUpper(strings.TrimSpace(*req.NIC))
	}

	if err := u.receptionistRepo.Update(tx, profile); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		if isDuplicateKeyError(err, "nic") {
			return nil, ErrNICAlreadyExists
		}
		u.log.Warnf("Failed to update receptionist: %+v", err)
		return nil, err
	}

	newProfile := converter.ReceptionistProfileToResponse(profile)

	adminID, _ := middleware.GetUserIDFromContext(ctx)
	if err := u.auditService.LogUpdate(ctx, tx, &adminID, entity.AuditActionReceptionistUpdate, "receptionist_profile", id.String(), oldProfile, newProfile); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return newProfile, nil
}

func (u *receptionistProfileUsecase) DeleteReceptionist(ctx context.Context, id uuid.UUID) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	profile, err := u.receptionistRepo.FindByUserID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find receptionist: %+v", err)
		return err
	}
	if profile == nil {
		return ErrReceptionistNotFound
	}

	if _, err := u.userRepo.Delete(tx, id); err != nil {
		u.log.Warnf("Failed to delete receptionist: %+v", err)
		return err
	}

	adminID, _ := middleware.GetUserIDFromContext(ctx)
	if err := u.auditService.LogDelete(ctx, tx, &adminID, entity.AuditActionReceptionistDelete, "receptionist_profile", id.String(), converter.ReceptionistProfileToResponse(profile)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}
	return nil
}
