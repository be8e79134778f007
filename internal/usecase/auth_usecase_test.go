package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"pubudu-echanneling/internal/delivery/dto"
	"pubudu-echanneling/internal/delivery/http/middleware"
	"pubudu-echanneling/internal/domain/entity"
	"pubudu-echanneling/internal/domain/repository"
	"pubudu-echanneling/pkg/validator"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeUsers struct {
	repository.UserRepository
	user        *entity.User
	updatedHash string
}

func (f *fakeUsers) FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	return f.user, nil
}

func (f *fakeUsers) UpdatePassword(db *gorm.DB, id uuid.UUID, hash string) error {
	f.updatedHash = hash
	return nil
}

type fakeResetTokens struct {
	repository.PasswordResetTokenRepository
	token   *entity.PasswordResetToken
	deleted int
}

func (f *fakeResetTokens) FindByHash(db *gorm.DB, hash string) (*entity.PasswordResetToken, error) {
	return f.token, nil
}

func (f *fakeResetTokens) DeleteByUserID(db *gorm.DB, userID uuid.UUID) error {
	f.deleted++
	return nil
}

func TestAuthUsecase_PasswordUpdateRevokesSessions(t *testing.T) {
	current, err := bcrypt.GenerateFromPassword([]byte("Old#Pass1"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	flows := []struct {
		name string
		run  func(u *authUsecase, userID uuid.UUID) error
	}{
		{"change password", func(u *authUsecase, userID uuid.UUID) error {
			ctx := middleware.WithUser(context.Background(), userID, entity.RoleIDDoctor)
			return u.ChangePassword(ctx, &dto.ChangePasswordRequest{CurrentPassword: "Old#Pass1", NewPassword: "Str0ng!Pass"})
		}},
		{"reset password", func(u *authUsecase, userID uuid.UUID) error {
			return u.ResetPassword(context.Background(), &dto.ResetPasswordRequest{Token: "ab", NewPassword: "Str0ng!Pass"})
		}},
	}

	for _, flow := range flows {
		for _, revokeErr := range []error{nil, errors.New("redis down")} {
			name := flow.name
			if revokeErr != nil {
				name += " with session store down"
			}
			t.Run(name, func(t *testing.T) {
				db, mock := newMockDB(t)
				mock.ExpectBegin()
				mock.ExpectCommit()

				user := &entity.User{ID: uuid.New(), Username: "Doc_Silva", Password: string(current), RoleID: entity.RoleIDDoctor, IsActive: true}
				users := &fakeUsers{user: user}
				tokens := &fakeResetTokens{token: &entity.PasswordResetToken{UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}}
				sessions := &fakeSessions{revokeAllErr: revokeErr}

				u := NewAuthUsecase(db, quietLogger(), users, nil, nil, nil, tokens, testJWT(), sessions, nil, &fakeAudit{}, AuthOptions{
					RegistrationProfile: validator.LegacyServer,
				}).(*authUsecase)

				err := flow.run(u, user.ID)

				if revokeErr == nil && err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if revokeErr != nil && !errors.Is(err, ErrSessionsNotRevoked) {
					t.Fatalf("expected ErrSessionsNotRevoked, got %v", err)
				}
				if sessions.revokedAll != 1 {
					t.Errorf("expected one RevokeAll, got %d", sessions.revokedAll)
				}
				if bcrypt.CompareHashAndPassword([]byte(users.updatedHash), []byte("Str0ng!Pass")) != nil {
					t.Error("new password was not stored")
				}
				if tokens.deleted != 1 {
					t.Errorf("expected reset tokens to be cleared once, got %d", tokens.deleted)
				}
				if err := mock.ExpectationsWereMet(); err != nil {
					t.Error(err)
				}
			})
		}
	}
}
