package usecase

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"pubudu-echanneling/config"
	"pubudu-echanneling/internal/delivery/dto"
	"pubudu-echanneling/internal/delivery/http/middleware"
	"pubudu-echanneling/internal/domain/entity"
	"pubudu-echanneling/pkg/jwt"
	"pubudu-echanneling/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// These tests cover the paths that are decided before any database work.

type fakeSessions struct {
	revoked        []string
	consumed       []string
	allowReset     bool
	resetIdentity  string
	refreshPresent bool
	revokeAllErr   error
	revokedAll     int
}

func (f *fakeSessions) Save(ctx context.Context, userID uuid.UUID, accessID, refreshID string, accessTTL, refreshTTL time.Duration) error {
	return nil
}

func (f *fakeSessions) IsAccessValid(ctx context.Context, userID uuid.UUID, accessID string) (bool, error) {
	return true, nil
}

func (f *fakeSessions) ConsumeRefresh(ctx context.Context, userID uuid.UUID, refreshID string) (bool, error) {
	f.consumed = append(f.consumed, refreshID)
	return f.refreshPresent, nil
}

func (f *fakeSessions) Revoke(ctx context.Context, userID uuid.UUID, accessID string) error {
	f.revoked = append(f.revoked, accessID)
	return nil
}

func (f *fakeSessions) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	f.revokedAll++
	return f.revokeAllErr
}

func (f *fakeSessions) AllowResetRequest(ctx context.Context, identity string, window time.Duration) (bool, error) {
	f.resetIdentity = identity
	return f.allowReset, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testJWT() *jwt.JWTService {
	return jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: time.Hour,
	})
}

func newTestAuthUsecase(sessions *fakeSessions, profile validator.Profile) *authUsecase {
	return NewAuthUsecase(nil, quietLogger(), nil, nil, nil, nil, nil, testJWT(), sessions, nil, nil, AuthOptions{
		RegistrationProfile: profile,
		FrontendURL:         "http://localhost:3000",
	}).(*authUsecase)
}

func TestAuthUsecase_RegisterRejectsInvalidForm(t *testing.T) {
	u := newTestAuthUsecase(&fakeSessions{}, validator.PatientSelfRegistration)

	_, err := u.Register(context.Background(), validator.Form{
		"username":  "kamal",
		"password":  "weak",
		"full_name": "Kamal Perera",
		"nic":       "123456789V",
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if vErr.Errors["username"] == "" || vErr.Errors["password"] == "" {
		t.Errorf("expected username and password errors, got %v", vErr.Errors)
	}
	if _, ok := vErr.Errors["nic"]; ok {
		t.Errorf("valid NIC should not be reported, got %v", vErr.Errors)
	}
}

func TestAuthUsecase_LoginRequiresCredentials(t *testing.T) {
	u := newTestAuthUsecase(&fakeSessions{}, validator.LegacyServer)

	_, err := u.Login(context.Background(), validator.Form{"username": "a"})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(vErr.Errors) != 1 || vErr.Errors["password"] == "" {
		t.Errorf("expected only password error, got %v", vErr.Errors)
	}
}

func TestAuthUsecase_ForgotPasswordThrottled(t *testing.T) {
	sessions := &fakeSessions{allowReset: false}
	u := newTestAuthUsecase(sessions, validator.LegacyServer)

	err := u.ForgotPassword(context.Background(), &dto.ForgotPasswordRequest{Email: " Kamal@Example.com "})
	if !errors.Is(err, ErrResetRequestThrottle) {
		t.Fatalf("expected throttle error, got %v", err)
	}
	if sessions.resetIdentity != "kamal@example.com" {
		t.Errorf("throttle should key on the normalised email, got %q", sessions.resetIdentity)
	}
}

func TestAuthUsecase_Logout(t *testing.T) {
	sessions := &fakeSessions{}
	u := newTestAuthUsecase(sessions, validator.LegacyServer)

	userID := uuid.New()
	ctx := context.WithValue(middleware.WithUser(context.Background(), userID, entity.RoleIDPatient), middleware.TokenIDKey, "access-1")

	refresh, refreshID, err := testJWT().GenerateRefreshToken(jwt.Subject{UserID: userID, Username: "Kamal_P", RoleID: entity.RoleIDPatient})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := u.Logout(ctx, refresh); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "access-1" {
		t.Errorf("expected current access token revoked, got %v", sessions.revoked)
	}
	if len(sessions.consumed) != 1 || sessions.consumed[0] != refreshID {
		t.Errorf("expected refresh token consumed, got %v", sessions.consumed)
	}

	// someone else's refresh token is ignored
	other, _, _ := testJWT().GenerateRefreshToken(jwt.Subject{UserID: uuid.New(), Username: "Other_U", RoleID: entity.RoleIDPatient})
	if err := u.Logout(ctx, other); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions.consumed) != 1 {
		t.Errorf("foreign refresh token must not be consumed, got %v", sessions.consumed)
	}
}

func TestAuthUsecase_LogoutWithoutIdentity(t *testing.T) {
	u := newTestAuthUsecase(&fakeSessions{}, validator.LegacyServer)
	if err := u.Logout(context.Background(), ""); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthUsecase_RefreshRejectsAccessToken(t *testing.T) {
	sessions := &fakeSessions{refreshPresent: true}
	u := newTestAuthUsecase(sessions, validator.LegacyServer)

	access, _, _ := testJWT().GenerateAccessToken(jwt.Subject{UserID: uuid.New(), Username: "Kamal_P", RoleID: entity.RoleIDPatient})
	if _, err := u.RefreshToken(context.Background(), &dto.RefreshTokenRequest{RefreshToken: access}); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
	if len(sessions.consumed) != 0 {
		t.Error("an access token must never consume a refresh session")
	}
}

func TestAuthUsecase_PasswordPolicyByRole(t *testing.T) {
	u := newTestAuthUsecase(&fakeSessions{}, validator.LegacyServer)

	tests := []struct {
		roleID int
		want   validator.PasswordPolicy
	}{
		{entity.RoleIDPatient, validator.PasswordLegacy},
		{entity.RoleIDReceptionist, validator.PasswordStaff},
		{entity.RoleIDDoctor, validator.PasswordStrong},
		{entity.RoleIDAdmin, validator.PasswordStrong},
	}
	for _, tt := range tests {
		if got := u.passwordPolicyFor(tt.roleID); got != tt.want {
			t.Errorf("role %d: expected %s, got %s", tt.roleID, tt.want, got)
		}
	}
}

func TestAppointmentUsecase_BookRejectsBadCard(t *testing.T) {
	u := NewAppointmentUsecase(nil, quietLogger(), time.UTC, nil, nil, nil, nil, nil, nil, nil)
	ctx := middleware.WithUser(context.Background(), uuid.New(), entity.RoleIDPatient)

	_, err := u.BookAppointment(ctx, &dto.BookAppointmentRequest{
		ScheduleID:    1,
		PaymentOption: dto.PaymentOptionPayNow,
		Card:          &dto.CardDetails{CardHolder: "K Perera", CardNumber: "1234", Expiry: "01/20", CVV: "1"},
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(vErr.Errors) != 3 {
		t.Errorf("expected number, expiry and cvv errors, got %v", vErr.Errors)
	}
}

func TestAppointmentUsecase_RequiresIdentity(t *testing.T) {
	u := NewAppointmentUsecase(nil, quietLogger(), time.UTC, nil, nil, nil, nil, nil, nil, nil)

	if _, err := u.BookAppointment(context.Background(), &dto.BookAppointmentRequest{}); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
	if err := u.CancelAppointment(context.Background(), uuid.New()); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestPatientProfileUsecase_SearchArguments(t *testing.T) {
	u := NewPatientProfileUsecase(nil, quietLogger(), nil, nil, nil)

	if _, err := u.SearchPatients(context.Background(), "nic", "   "); !errors.Is(err, ErrEmptySearchQuery) {
		t.Errorf("expected ErrEmptySearchQuery, got %v", err)
	}
	if _, err := u.SearchPatients(context.Background(), "email", "a@b.lk"); !errors.Is(err, ErrInvalidSearchType) {
		t.Errorf("expected ErrInvalidSearchType, got %v", err)
	}
}

func TestPatientProfileUsecase_RegisterUsesStaffRules(t *testing.T) {
	u := NewPatientProfileUsecase(nil, quietLogger(), nil, nil, nil)

	// no special character is fine for staff, but the contact number is mandatory
	_, err := u.RegisterPatient(context.Background(), validator.Form{
		"username":  "Kamal_P",
		"password":  "Password1",
		"full_name": "Kamal Perera",
		"nic":       "123456789V",
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(vErr.Errors) != 1 || vErr.Errors["contact_number"] == "" {
		t.Errorf("expected only contact_number error, got %v", vErr.Errors)
	}
}

func TestDoctorProfileUsecase_CreateRejectsBadFee(t *testing.T) {
	u := NewDoctorProfileUsecase(nil, quietLogger(), nil, nil, nil, nil)

	_, err := u.CreateDoctor(context.Background(), validator.Form{
		"username":         "Doc_Silva",
		"password":         "Str0ng!Pass",
		"email":            "silva@pubudu.lk",
		"contact_number":   "0771234567",
		"full_name":        "Nimal Silva",
		"specialization":   "Cardiology",
		"license_no":       "SLMC1234",
		"consultation_fee": "-100",
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(vErr.Errors) != 1 || vErr.Errors["consultation_fee"] == "" {
		t.Errorf("expected only consultation_fee error, got %v", vErr.Errors)
	}
}
