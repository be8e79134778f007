package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pubudu-echanneling/config"
	"pubudu-echanneling/internal/domain/entity"
	"pubudu-echanneling/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type stubSessions struct {
	valid bool
	err   error
}

func (s *stubSessions) Save(ctx context.Context, userID uuid.UUID, accessID, refreshID string, accessTTL, refreshTTL time.Duration) error {
	return nil
}

func (s *stubSessions) IsAccessValid(ctx context.Context, userID uuid.UUID, accessID string) (bool, error) {
	return s.valid, s.err
}

func (s *stubSessions) ConsumeRefresh(ctx context.Context, userID uuid.UUID, refreshID string) (bool, error) {
	return false, nil
}

func (s *stubSessions) Revoke(ctx context.Context, userID uuid.UUID, accessID string) error {
	return nil
}

func (s *stubSessions) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	return nil
}

func (s *stubSessions) AllowResetRequest(ctx context.Context, identity string, window time.Duration) (bool, error) {
	return true, nil
}

func newTestLogger(buf *bytes.Buffer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	return log
}

func TestAuthenticate(t *testing.T) {
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "secret", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})
	sub := jwt.Subject{UserID: uuid.New(), Username: "Kamal_P", RoleID: entity.RoleIDPatient}
	access, accessID, _ := jwtService.GenerateAccessToken(sub)
	refresh, _, _ := jwtService.GenerateRefreshToken(sub)

	tests := []struct {
		name     string
		header   string
		sessions *stubSessions
		want     int
	}{
		{"missing header", "", &stubSessions{valid: true}, http.StatusUnauthorized},
		{"not bearer", "Basic abc", &stubSessions{valid: true}, http.StatusUnauthorized},
		{"garbage token", "Bearer abc", &stubSessions{valid: true}, http.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, &stubSessions{valid: true}, http.StatusUnauthorized},
		{"revoked", "Bearer " + access, &stubSessions{valid: false}, http.StatusUnauthorized},
		{"store down", "Bearer " + access, &stubSessions{err: errors.New("redis down")}, http.StatusInternalServerError},
		{"valid", "Bearer " + access, &stubSessions{valid: true}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAuthMiddleware(jwtService, tt.sessions, newTestLogger(&bytes.Buffer{}))

			var gotUser uuid.UUID
			var gotToken string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser, _ = GetUserIDFromContext(r.Context())
				gotToken, _ = GetTokenIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			m.Authenticate(next).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
			if tt.want == http.StatusOK && (gotUser != sub.UserID || gotToken != accessID) {
				t.Errorf("identity not propagated: user=%s token=%s", gotUser, gotToken)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name string
		ctx  context.Context
		mw   func(http.Handler) http.Handler
		want int
	}{
		{"no identity", context.Background(), RequireAdmin, http.StatusUnauthorized},
		{"admin on admin route", WithUser(context.Background(), uuid.New(), entity.RoleIDAdmin), RequireAdmin, http.StatusOK},
		{"patient on admin route", WithUser(context.Background(), uuid.New(), entity.RoleIDPatient), RequireAdmin, http.StatusForbidden},
		{"doctor on doctor route", WithUser(context.Background(), uuid.New(), entity.RoleIDDoctor), RequireDoctor, http.StatusOK},
		{"receptionist on patient route", WithUser(context.Background(), uuid.New(), entity.RoleIDReceptionist), RequirePatient, http.StatusForbidden},
		{"receptionist on receptionist route", WithUser(context.Background(), uuid.New(), entity.RoleIDReceptionist), RequireReceptionist, http.StatusOK},
		{"either role", WithUser(context.Background(), uuid.New(), entity.RoleIDDoctor), RequireRole(entity.RoleIDAdmin, entity.RoleIDDoctor), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(tt.ctx)
			rec := httptest.NewRecorder()
			tt.mw(ok).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		called = false
		rec := httptest.NewRecorder()
		NewCORSMiddleware("http://localhost:3000").Handle(next).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))

		if rec.Code != http.StatusOK || called {
			t.Errorf("expected 200 without reaching handler, got %d called=%v", rec.Code, called)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
			t.Errorf("unexpected origin %q", got)
		}
		if rec.Header().Get("Vary") != "Origin" {
			t.Error("a fixed origin must vary on Origin")
		}
	})

	t.Run("wildcard by default", func(t *testing.T) {
		called = false
		rec := httptest.NewRecorder()
		NewCORSMiddleware("").Handle(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if !called || rec.Code != http.StatusNoContent {
			t.Errorf("expected request to pass through, got %d", rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("expected wildcard origin")
		}
		if rec.Header().Get("Vary") != "" {
			t.Error("wildcard origin does not vary")
		}
	})
}

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		status    int
		wantLevel string
	}{
		{http.StatusOK, `"level":"info"`},
		{http.StatusNotFound, `"level":"info"`},
		{http.StatusInternalServerError, `"level":"error"`},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		m := NewLoggingMiddleware(newTestLogger(&buf))
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(tt.status) })

		rec := httptest.NewRecorder()
		m.Handle(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))

		out := buf.String()
		if !strings.Contains(out, tt.wantLevel) {
			t.Errorf("status %d: expected %s in %s", tt.status, tt.wantLevel, out)
		}
		if !strings.Contains(out, `"path":"/api/v1/auth/login"`) || !strings.Contains(out, `"method":"POST"`) {
			t.Errorf("status %d: missing request fields in %s", tt.status, out)
		}
	}
}
