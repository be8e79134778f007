package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pubudu-echanneling/internal/delivery/dto"
	"pubudu-echanneling/internal/usecase"
	"pubudu-echanneling/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Fakes embed the usecase interface so each test only implements what it calls.

type fakeAuthUsecase struct {
	usecase.AuthUsecase
	registerErr error
	forgotErr   error
	passwordErr error
	logoutToken string
}

func (f *fakeAuthUsecase) Register(ctx context.Context, form validator.Form) (*dto.UserResponse, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &dto.UserResponse{Username: form.String("username")}, nil
}

func (f *fakeAuthUsecase) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	return f.forgotErr
}

func (f *fakeAuthUsecase) ChangePassword(ctx context.Context, req *dto.ChangePasswordRequest) error {
	return f.passwordErr
}

func (f *fakeAuthUsecase) Logout(ctx context.Context, refreshToken string) error {
	f.logoutToken = refreshToken
	return nil
}

type fakeAppointmentUsecase struct {
	usecase.AppointmentUsecase
	err    error
	filter *dto.AppointmentFilterRequest
}

func (f *fakeAppointmentUsecase) BookAppointment(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.AppointmentResponse{ScheduleID: req.ScheduleID, Status: "pending"}, nil
}

func (f *fakeAppointmentUsecase) CancelAppointment(ctx context.Context, id uuid.UUID) error {
	return f.err
}

func (f *fakeAppointmentUsecase) GetMyAppointments(ctx context.Context, filter *dto.AppointmentFilterRequest) (*dto.AppointmentListResponse, error) {
	f.filter = filter
	return &dto.AppointmentListResponse{}, f.err
}

type fakeAuditLogUsecase struct {
	usecase.AuditLogUsecase
}

func (f *fakeAuditLogUsecase) GetAllAuditLogs(ctx context.Context, filter *dto.AuditLogFilterRequest) (*dto.AuditLogListResponse, error) {
	// the real usecase normalises paging in place
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	return &dto.AuditLogListResponse{Logs: []dto.AuditLogResponse{{ID: 1}}, Total: 45}, nil
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   map[string]string `json:"error"`
	Meta    *struct {
		Page       int `json:"page"`
		TotalPages int `json:"total_pages"`
	} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid response body %q: %v", rec.Body.String(), err)
	}
	return env
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantField  string
	}{
		{"created", `{"username":"Kamal_P"}`, nil, http.StatusCreated, ""},
		{"malformed json", `{"username":`, nil, http.StatusBadRequest, ""},
		{"rule failure", `{}`, &usecase.ValidationError{Errors: map[string]string{"nic": "NIC is required"}}, http.StatusBadRequest, "nic"},
		{"duplicate username", `{}`, usecase.ErrUsernameExists, http.StatusConflict, ""},
		{"duplicate nic", `{}`, usecase.ErrNICAlreadyExists, http.StatusConflict, ""},
		{"unexpected", `{}`, errors.New("db down"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&fakeAuthUsecase{registerErr: tt.err}, validator.NewValidator())
			rec := httptest.NewRecorder()
			h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			env := decodeEnvelope(t, rec)
			if tt.wantField != "" && env.Error[tt.wantField] == "" {
				t.Errorf("expected field error for %s, got %v", tt.wantField, env.Error)
			}
		})
	}
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"changed", nil, http.StatusOK, "Password changed successfully, please login again"},
		{"wrong current password", usecase.ErrInvalidPassword, http.StatusBadRequest, "Current password is incorrect"},
		{"sessions still valid", errors.Join(usecase.ErrSessionsNotRevoked, errors.New("redis down")), http.StatusInternalServerError, "Password changed, but other sessions could not be signed out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&fakeAuthUsecase{passwordErr: tt.err}, validator.NewValidator())
			rec := httptest.NewRecorder()
			body := `{"current_password":"Old#Pass1","new_password":"Str0ng!Pass"}`
			h.ChangePassword(rec, httptest.NewRequest(http.MethodPut, "/api/v1/auth/change-password", strings.NewReader(body)))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if env := decodeEnvelope(t, rec); env.Message != tt.wantMessage {
				t.Errorf("unexpected message %q", env.Message)
			}
		})
	}
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"accepted", `{"email":"kamal@example.com"}`, nil, http.StatusOK},
		{"bad email", `{"email":"kamal"}`, nil, http.StatusBadRequest},
		{"throttled", `{"email":"kamal@example.com"}`, usecase.ErrResetRequestThrottle, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&fakeAuthUsecase{forgotErr: tt.err}, validator.NewValidator())
			rec := httptest.NewRecorder()
			h.ForgotPassword(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/forgot-password", strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAuthHandler_LogoutBodyIsOptional(t *testing.T) {
	fake := &fakeAuthUsecase{}
	h := NewAuthHandler(fake, validator.NewValidator())

	rec := httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", http.NoBody))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 without body, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", strings.NewReader(`{"refresh_token":"abc"}`)))
	if rec.Code != http.StatusOK || fake.logoutToken != "abc" {
		t.Errorf("expected refresh token forwarded, got %d %q", rec.Code, fake.logoutToken)
	}
}

func TestAppointmentHandler_BookAppointment(t *testing.T) {
	payLater := `{"schedule_id":3,"payment_option":"pay_later"}`

	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"pay later", payLater, nil, http.StatusCreated},
		{"unknown option", `{"schedule_id":3,"payment_option":"later"}`, nil, http.StatusBadRequest},
		{"pay now without card", `{"schedule_id":3,"payment_option":"pay_now"}`, nil, http.StatusBadRequest},
		{"card rejected", payLater, &usecase.ValidationError{Errors: map[string]string{"card.cvv": "CVV must be 3 or 4 digits"}}, http.StatusBadRequest},
		{"session full", payLater, usecase.ErrSlotsFull, http.StatusConflict},
		{"double booking", payLater, usecase.ErrAlreadyBooked, http.StatusConflict},
		{"session started", payLater, usecase.ErrSchedulePast, http.StatusBadRequest},
		{"no such session", payLater, usecase.ErrScheduleNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAppointmentHandler(&fakeAppointmentUsecase{err: tt.err}, validator.NewValidator())
			rec := httptest.NewRecorder()
			h.BookAppointment(rec, httptest.NewRequest(http.MethodPost, "/api/v1/patient/appointments", strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAppointmentHandler_CancelAppointment(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		err        error
		wantStatus int
	}{
		{"cancelled", uuid.NewString(), nil, http.StatusOK},
		{"bad id", "42", nil, http.StatusBadRequest},
		{"someone else's", uuid.NewString(), usecase.ErrAppointmentNotOwned, http.StatusForbidden},
		{"already completed", uuid.NewString(), usecase.ErrAppointmentNotCancellable, http.StatusBadRequest},
		{"missing", uuid.NewString(), usecase.ErrAppointmentNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAppointmentHandler(&fakeAppointmentUsecase{err: tt.err}, validator.NewValidator())
			req := httptest.NewRequest(http.MethodDelete, "/api/v1/patient/appointments/"+tt.id, nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.id})
			rec := httptest.NewRecorder()
			h.CancelAppointment(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAppointmentHandler_ListFilter(t *testing.T) {
	fake := &fakeAppointmentUsecase{}
	h := NewAppointmentHandler(fake, validator.NewValidator())

	rec := httptest.NewRecorder()
	h.GetMyAppointments(rec, httptest.NewRequest(http.MethodGet, "/api/v1/patient/appointments?status=upcoming&date=2025-03-14", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if fake.filter.Status != "upcoming" || fake.filter.Date != "2025-03-14" {
		t.Errorf("filter not forwarded: %+v", fake.filter)
	}

	rec = httptest.NewRecorder()
	h.GetMyAppointments(rec, httptest.NewRequest(http.MethodGet, "/api/v1/patient/appointments?status=lost", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %d", rec.Code)
	}
}

func TestValidationHandler(t *testing.T) {
	h := NewValidationHandler()

	t.Run("list profiles", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ListProfiles(rec, httptest.NewRequest(http.MethodGet, "/api/v1/validation/profiles", nil))

		var profiles []validator.Profile
		if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &profiles); err != nil {
			t.Fatalf("unexpected data: %v", err)
		}
		if len(profiles) != len(validator.Profiles()) {
			t.Errorf("expected %d profiles, got %d", len(validator.Profiles()), len(profiles))
		}
	})

	t.Run("unknown profile", func(t *testing.T) {
		req := mux.SetURLVars(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)), map[string]string{"name": "nope"})
		rec := httptest.NewRecorder()
		h.ValidateForm(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("doctor form uses doctor fields", func(t *testing.T) {
		req := mux.SetURLVars(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)), map[string]string{"name": "admin_doctor"})
		rec := httptest.NewRecorder()
		h.ValidateForm(rec, req)

		var result validator.Result
		if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &result); err != nil {
			t.Fatalf("unexpected data: %v", err)
		}
		if result.IsValid {
			t.Fatal("empty form must be invalid")
		}
		for _, field := range []string{"license_no", "specialization", "email", "contact_number"} {
			if result.Errors[field] == "" {
				t.Errorf("expected %s to be required, got %v", field, result.Errors)
			}
		}
		if _, ok := result.Errors["nic"]; ok {
			t.Error("doctor accounts have no NIC")
		}
	})

	t.Run("single field", func(t *testing.T) {
		req := mux.SetURLVars(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"value":"1234567890"}`)),
			map[string]string{"name": "patient_self_registration", "field": "contact_number"})
		rec := httptest.NewRecorder()
		h.ValidateField(rec, req)

		var check dto.FieldCheckResponse
		if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &check); err != nil {
			t.Fatalf("unexpected data: %v", err)
		}
		if check.Valid || check.Error == "" || check.Field != "contact_number" {
			t.Errorf("expected mobile rule to reject 1234567890, got %+v", check)
		}
	})
}

func TestAuditLogHandler_Paging(t *testing.T) {
	h := NewAuditLogHandler(&fakeAuditLogUsecase{})

	rec := httptest.NewRecorder()
	h.GetAllAuditLogs(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/audit-logs?page=x", nil))
	env := decodeEnvelope(t, rec)
	if env.Meta == nil || env.Meta.Page != 1 || env.Meta.TotalPages != 3 {
		t.Errorf("unexpected meta %+v", env.Meta)
	}

	rec = httptest.NewRecorder()
	h.GetAllAuditLogs(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/audit-logs?user_id=bad", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad user id, got %d", rec.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	up := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("refused") }

	rec := httptest.NewRecorder()
	NewHealthHandler(map[string]HealthCheck{"database": up, "redis": up}).Health(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	NewHealthHandler(map[string]HealthCheck{"database": up, "redis": down}).Health(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"redis":"down"`) {
		t.Errorf("expected failing dependency named, got %s", rec.Body.String())
	}
}
