package usecase

import (
	"context"
	"errors"
	"strings"

	"pubudu-echanneling/internal/domain/entity"
	"pubudu-echanneling/internal/domain/repository"
	"pubudu-echanneling/pkg/validator"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrSeedAdminIncomplete = errors.New("admin username and password are required to seed an administrator")

// SeedAdmin describes the first administrator account.
type SeedAdmin struct {
	Username string
	Password string
	Email    string
}

type SeedUsecase interface {
	// Seed makes sure the default roles exist and creates the administrator
	// when no admin account exists yet. Running it twice changes nothing.
	Seed(ctx context.Context, admin SeedAdmin) error
}

type seedUsecase struct {
	db       *gorm.DB
	log      *logrus.Logger
	roleRepo repository.RoleRepository
	userRepo repository.UserRepository
}

func NewSeedUsecase(db *gorm.DB, log *logrus.Logger, roleRepo repository.RoleRepository, userRepo repository.UserRepository) SeedUsecase {
	return &seedUsecase{
		db:       db,
		log:      log,
		roleRepo: roleRepo,
		userRepo: userRepo,
	}
}

func (u *seedUsecase) Seed(ctx context.Context, admin SeedAdmin) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.roleRepo.EnsureDefaults(ctx, tx); err != nil {
		u.log.Warnf("Failed to seed roles: %+v", err)
		return err
	}

	adminRole, err := u.roleRepo.FindByName(ctx, tx, entity.RoleAdmin)
	if err != nil {
		u.log.Warnf("Failed to find admin role: %+v", err)
		return err
	}
	if adminRole == nil {
		return ErrRoleNotFound
	}

	admins, err := u.userRepo.CountByRole(tx, adminRole.ID)
	if err != nil {
		u.log.Warnf("Failed to count administrators: %+v", err)
		return err
	}

	if admins == 0 {
		if err := u.createAdmin(tx, admin); err != nil {
			return err
		}
	} else {
		u.log.Info("Administrator already present, skipping")
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}
	return nil
}

func (u *seedUsecase) createAdmin(tx *gorm.DB, admin SeedAdmin) error {
	if admin.Username == "" || admin.Password == "" {
		return ErrSeedAdminIncomplete
	}
	if check := validator.PasswordStrong.Check(admin.Password); !check.Valid {
		return newValidationError(map[string]string{"password": check.Message})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return err
	}

	user := &entity.User{
		Username: admin.Username,
		Password: string(hashedPassword),
		Email:    optionalString(strings.ToLower(strings.TrimSpace(admin.Email))),
		RoleID:   entity.RoleIDAdmin,
		IsActive: true,
	}
	if err := u.userRepo.Create(tx, user); err != nil {
		if mapped := staffAccountConflict(err); mapped != nil {
			return mapped
		}
		u.log.Warnf("Failed to create administrator: %+v", err)
		return err
	}

	u.log.WithField("username", user.Username).Info("Administrator created")
	return nil
}
