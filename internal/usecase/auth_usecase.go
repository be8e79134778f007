package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"pubudu-echanneling/internal/converter"
	"pubudu-echanneling/internal/delivery/dto"
	"pubudu-echanneling/internal/delivery/http/middleware"
	"pubudu-echanneling/internal/domain/entity"
	"pubudu-echanneling/internal/domain/repository"
	"pubudu-echanneling/internal/service"
	"pubudu-echanneling/pkg/jwt"
	"pubudu-echanneling/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameExists       = errors.New("username already exists")
	ErrEmailAlreadyExists   = errors.New("email already exists")
	ErrNICAlreadyExists     = errors.New("NIC already exists")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrAccountDisabled      = errors.New("account is disabled")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrTokenRevoked         = errors.New("token has been revoked")
	ErrUserNotFound         = errors.New("user not found")
	ErrRoleNotFound         = errors.New("role not found")
	ErrInvalidPassword      = errors.New("current password is incorrect")
	ErrInvalidResetToken    = errors.New("invalid or expired reset token")
	ErrResetRequestThrottle = errors.New("a reset link was sent recently, please wait before trying again")
	ErrSessionsNotRevoked   = errors.New("password updated but existing sessions could not be signed out")
)

const tokenTypeBearer = "Bearer"

// AuthOptions holds the settings the auth flows depend on.
type AuthOptions struct {
	// RegistrationProfile is applied to public self-registration.
	RegistrationProfile validator.Profile
	FrontendURL         string
	ResetTokenExpiry    time.Duration
	ResetThrottle       time.Duration
}

type AuthUsecase interface {
	Register(ctx context.Context, form validator.Form) (*dto.UserResponse, error)
	Login(ctx context.Context, form validator.Form) (*dto.LoginResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetProfile(ctx context.Context) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, req *dto.ChangePasswordRequest) error
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
}

type authUsecase struct {
	db                 *gorm.DB
	log                *logrus.Logger
	userRepo           repository.UserRepository
	patientProfileRepo repository.PatientProfileRepository
	doctorProfileRepo  repository.DoctorProfileRepository
	receptionistRepo   repository.ReceptionistProfileRepository
	resetTokenRepo     repository.PasswordResetTokenRepository
	jwtService         *jwt.JWTService
	sessions           service.SessionStore
	notifier           service.NotificationService
	auditService       service.AuditService
	opts               AuthOptions
	now                func() time.Time
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	patientProfileRepo repository.PatientProfileRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	receptionistRepo repository.ReceptionistProfileRepository,
	resetTokenRepo repository.PasswordResetTokenRepository,
	jwtService *jwt.JWTService,
	sessions service.SessionStore,
	notifier service.NotificationService,
	auditService service.AuditService,
	opts AuthOptions,
) AuthUsecase {
	if opts.ResetTokenExpiry == 0 {
		opts.ResetTokenExpiry = time.Hour
	}
	if opts.ResetThrottle == 0 {
		opts.ResetThrottle = time.Minute
	}
	return &authUsecase{
		db:                 db,
		log:                log,
		userRepo:           userRepo,
		patientProfileRepo: patientProfileRepo,
		doctorProfileRepo:  doctorProfileRepo,
		receptionistRepo:   receptionistRepo,
		resetTokenRepo:     resetTokenRepo,
		jwtService:         jwtService,
		sessions:           sessions,
		notifier:           notifier,
		auditService:       auditService,
		opts:               opts,
		now:                time.Now,
	}
}

func (u *authUsecase) Register(ctx context.Context, form validator.Form) (*dto.UserResponse, error) {
	if result := u.opts.RegistrationProfile.ValidatePatientRegistration(form); !result.IsValid {
		return nil, newValidationError(result.Errors)
	}
	req := converter.FormToRegisterPatientRequest(form)

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user, err := createPatientAccount(ctx, tx, u.userRepo, u.patientProfileRepo, req, nil)
	if err != nil {
		if !isRegistrationConflict(err) {
			u.log.Warnf("Failed to register patient: %+v", err)
		}
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &user.ID, entity.AuditActionUserRegister, "user", user.ID.String(), converter.UserToResponse(user)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.UserToResponse(user), nil
}

func (u *authUsecase) Login(ctx context.Context, form validator.Form) (*dto.LoginResponse, error) {
	if result := validator.ValidateLogin(form); !result.IsValid {
		return nil, newValidationError(result.Errors)
	}
	req := converter.FormToLoginRequest(form)

	user, err := u.userRepo.FindByUsername(u.db.WithContext(ctx), req.Username)
	if err != nil {
		u.log.Warnf("Failed to find user by username: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	tokens, err := u.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		TokenResponse: *tokens,
		User:          converter.UserToResponse(user),
	}, nil
}

// Logout revokes the access token of the current request and, when given,
// the refresh token issued alongside it.
func (u *authUsecase) Logout(ctx context.Context, refreshToken string) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	tokenID, _ := middleware.GetTokenIDFromContext(ctx)

	if err := u.sessions.Revoke(ctx, userID, tokenID); err != nil {
		u.log.Warnf("Failed to revoke access token: %+v", err)
		return err
	}

	if refreshToken == "" {
		return nil
	}
	claims, err := u.jwtService.ValidateToken(refreshToken)
	if err != nil || claims.TokenType != jwt.RefreshToken || claims.UserID != userID {
		// the access token is already gone; a bad refresh token changes nothing
		return nil
	}
	if _, err := u.sessions.ConsumeRefresh(ctx, userID, claims.TokenID); err != nil {
		u.log.Warnf("Failed to revoke refresh token: %+v", err)
		return err
	}
	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	// Refresh tokens are single use
	existed, err := u.sessions.ConsumeRefresh(ctx, claims.UserID, claims.TokenID)
	if err != nil {
		u.log.Warnf("Failed to consume refresh token: %+v", err)
		return nil, err
	}
	if !existed {
		return nil, ErrTokenRevoked
	}

	user, err := u.userRepo.FindByID(u.db.WithContext(ctx), claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	return u.issueTokens(ctx, user)
}

func (u *authUsecase) GetProfile(ctx context.Context) (*dto.UserResponse, error) {
	user, err := u.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return converter.UserToResponse(user), nil
}

func (u *authUsecase) UpdateProfile(ctx context.Context, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := u.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	before := converter.UserToResponse(user)

	if req.Email != nil {
		user.Email = optionalString(strings.ToLower(strings.TrimSpace(*req.Email)))
	}
	if req.ContactNumber != nil {
		user.ContactNumber = strings.TrimSpace(*req.ContactNumber)
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	switch {
	case user.PatientProfile != nil:
		err = u.updatePatientProfile(ctx, tx, user, req)
	case user.DoctorProfile != nil:
		if req.FullName != nil {
			user.DoctorProfile.FullName = validator.Sanitize(*req.FullName)
		}
		profile := user.DoctorProfile
		profile.User = *user
		err = u.doctorProfileRepo.Update(tx, profile)
	case user.ReceptionistProfile != nil:
		if req.FullName != nil {
			user.ReceptionistProfile.FullName = validator.Sanitize(*req.FullName)
		}
		profile := user.ReceptionistProfile
		profile.User = *user
		err = u.receptionistRepo.Update(tx, profile)
	default:
		err = u.userRepo.Update(tx, user)
	}
	if err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		if errors.Is(err, ErrInvalidDateFormat) {
			return nil, err
		}
		u.log.Warnf("Failed to update profile: %+v", err)
		return nil, err
	}

	after := converter.UserToResponse(user)
	if err := u.auditService.LogUpdate(ctx, tx, &user.ID, entity.AuditActionProfileUpdate, "user", user.ID.String(), before, after); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return after, nil
}

func (u *authUsecase) updatePatientProfile(ctx context.Context, tx *gorm.DB, user *entity.User, req *dto.UpdateProfileRequest) error {
	profile := user.PatientProfile
	if req.FullName != nil {
		profile.FullName = validator.Sanitize(*req.FullName)
	}
	if req.Address != nil {
		profile.Address = validator.Sanitize(*req.Address)
	}
	if req.Gender != nil {
		profile.Gender = optionalString(strings.ToUpper(strings.TrimSpace(*req.Gender)))
	}
	if req.DateOfBirth != nil {
		dob, err := parseDate(*req.DateOfBirth)
		if err != nil {
			return err
		}
		profile.DateOfBirth = dob
	}

	if err := u.userRepo.Update(tx, user); err != nil {
		return err
	}
	return u.patientProfileRepo.Update(ctx, tx, profile)
}

func (u *authUsecase) ChangePassword(ctx context.Context, req *dto.ChangePasswordRequest) error {
	user, err := u.currentUser(ctx)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return ErrInvalidPassword
	}
	if check := u.passwordPolicyFor(user.RoleID).Check(req.NewPassword); !check.Valid {
		return newValidationError(map[string]string{"new_password": check.Message})
	}

	if err := u.setPassword(ctx, user, req.NewPassword, entity.AuditActionPasswordChange); err != nil {
		return err
	}

	// Every session, including the current one, has to log in again
	return u.revokeSessions(ctx, user.ID)
}

// ForgotPassword answers the same way whether or not the email is on file.
func (u *authUsecase) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	allowed, err := u.sessions.AllowResetRequest(ctx, email, u.opts.ResetThrottle)
	if err != nil {
		u.log.Warnf("Failed to check reset throttle: %+v", err)
		return err
	}
	if !allowed {
		return ErrResetRequestThrottle
	}

	user, err := u.userRepo.FindByEmail(u.db.WithContext(ctx), email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return err
	}
	if user == nil || !user.IsActive {
		u.log.WithField("email", email).Info("Password reset requested for unknown or inactive account")
		return nil
	}

	token, hash, err := newResetToken()
	if err != nil {
		u.log.Warnf("Failed to generate reset token: %+v", err)
		return err
	}
	expiresAt := u.now().Add(u.opts.ResetTokenExpiry)

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	// Only the newest link works
	if err := u.resetTokenRepo.DeleteByUserID(tx, user.ID); err != nil {
		u.log.Warnf("Failed to delete old reset tokens: %+v", err)
		return err
	}
	if err := u.resetTokenRepo.Create(tx, &entity.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: expiresAt,
	}); err != nil {
		u.log.Warnf("Failed to store reset token: %+v", err)
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	resetURL := strings.TrimRight(u.opts.FrontendURL, "/") + "/reset-password/" + token
	u.notifier.PasswordReset(ctx, user, resetURL, expiresAt)
	return nil
}

func (u *authUsecase) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	db := u.db.WithContext(ctx)

	stored, err := u.resetTokenRepo.FindByHash(db, hashResetToken(req.Token))
	if err != nil {
		u.log.Warnf("Failed to find reset token: %+v", err)
		return err
	}
	if stored == nil {
		return ErrInvalidResetToken
	}
	if stored.IsExpired(u.now()) {
		if err := u.resetTokenRepo.DeleteByUserID(db, stored.UserID); err != nil {
			u.log.Warnf("Failed to delete expired reset token: %+v", err)
		}
		return ErrInvalidResetToken
	}

	user, err := u.userRepo.FindByID(db, stored.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return err
	}
	if user == nil {
		return ErrInvalidResetToken
	}

	if check := u.passwordPolicyFor(user.RoleID).Check(req.NewPassword); !check.Valid {
		return newValidationError(map[string]string{"new_password": check.Message})
	}

	if err := u.setPassword(ctx, user, req.NewPassword, entity.AuditActionPasswordReset); err != nil {
		return err
	}

	return u.revokeSessions(ctx, user.ID)
}

// revokeSessions runs after the new password is committed, so a failure
// here leaves old tokens valid and has to reach the caller.
func (u *authUsecase) revokeSessions(ctx context.Context, userID uuid.UUID) error {
	if err := u.sessions.RevokeAll(ctx, userID); err != nil {
		u.log.WithField("user_id", userID).Errorf("Failed to revoke sessions after password update: %+v", err)
		return errors.Join(ErrSessionsNotRevoked, err)
	}
	return nil
}

// setPassword stores a new hash, clears every reset token of the user and
// records the audit entry in one transaction.
func (u *authUsecase) setPassword(ctx context.Context, user *entity.User, password, action string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.userRepo.UpdatePassword(tx, user.ID, string(hashedPassword)); err != nil {
		u.log.Warnf("Failed to update password: %+v", err)
		return err
	}
	if err := u.resetTokenRepo.DeleteByUserID(tx, user.ID); err != nil {
		u.log.Warnf("Failed to delete reset tokens: %+v", err)
		return err
	}

	if err := u.auditService.LogAction(ctx, tx, &user.ID, action, "user", user.ID.String(), map[string]interface{}{
		"username": user.Username,
	}); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}
	return nil
}

func (u *authUsecase) passwordPolicyFor(roleID int) validator.PasswordPolicy {
	switch roleID {
	case entity.RoleIDPatient:
		return u.opts.RegistrationProfile.Password
	case entity.RoleIDReceptionist:
		return validator.AdminReceptionist.Password
	default:
		return validator.PasswordStrong
	}
}

func (u *authUsecase) currentUser(ctx context.Context) (*entity.User, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	user, err := u.userRepo.FindByID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (u *authUsecase) issueTokens(ctx context.Context, user *entity.User) (*dto.TokenResponse, error) {
	sub := jwt.Subject{UserID: user.ID, Username: user.Username, RoleID: user.RoleID}

	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(sub)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(sub)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if err := u.sessions.Save(ctx, user.ID, accessTokenID, refreshTokenID, u.jwtService.GetAccessExpiry(), u.jwtService.GetRefreshExpiry()); err != nil {
		u.log.Warnf("Failed to store tokens: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

// createPatientAccount inserts the user row and patient profile of a new
// patient inside tx. registeredBy is set when staff register on the patient's behalf.
func createPatientAccount(
	ctx context.Context,
	tx *gorm.DB,
	userRepo repository.UserRepository,
	patientProfileRepo repository.PatientProfileRepository,
	req *dto.RegisterPatientRequest,
	registeredBy *uuid.UUID,
) (*entity.User, error) {
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	// The unique index is case sensitive; old NICs may end in v or V
	existing, err := patientProfileRepo.FindByNIC(ctx, tx, req.NIC)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrNICAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username:      req.Username,
		Password:      string(hashedPassword),
		Email:         optionalString(req.Email),
		ContactNumber: req.ContactNumber,
		RoleID:        entity.RoleIDPatient,
		IsActive:      true,
	}
	if err := userRepo.Create(tx, user); err != nil {
		switch {
		case isDuplicateKeyError(err, "username"):
			return nil, ErrUsernameExists
		case isDuplicateKeyError(err, "email"):
			return nil, ErrEmailAlreadyExists
		case isForeignKeyError(err, "role"):
			return nil, ErrRoleNotFound
		}
		return nil, err
	}

	profile := &entity.PatientProfile{
		UserID:       user.ID,
		FullName:     req.FullName,
		NIC:          req.NIC,
		Gender:       optionalString(req.Gender),
		DateOfBirth:  dob,
		Address:      req.Address,
		RegisteredBy: registeredBy,
	}
	if err := patientProfileRepo.Create(ctx, tx, profile); err != nil {
		if isDuplicateKeyError(err, "nic") {
			return nil, ErrNICAlreadyExists
		}
		return nil, err
	}

	user.PatientProfile = profile
	user.Role = entity.Role{ID: entity.RoleIDPatient, RoleName: entity.RolePatient}
	return user, nil
}

func isRegistrationConflict(err error) bool {
	return errors.Is(err, ErrUsernameExists) ||
		errors.Is(err, ErrEmailAlreadyExists) ||
		errors.Is(err, ErrNICAlreadyExists) ||
		errors.Is(err, ErrInvalidDateFormat)
}
