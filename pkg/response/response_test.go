package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	return body
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, http.StatusCreated, "Created", map[string]string{"id": "1"})

	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}
	body := decode(t, rec)
	if body["success"] != true || body["message"] != "Created" {
		t.Errorf("unexpected body %v", body)
	}
	if _, ok := body["error"]; ok {
		t.Error("success envelope should not carry error")
	}
}

func TestValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationError(rec, map[string]string{"nic": "Invalid NIC format"})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	body := decode(t, rec)
	if body["success"] != false {
		t.Error("expected success=false")
	}
	errs, ok := body["error"].(map[string]interface{})
	if !ok || errs["nic"] != "Invalid NIC format" {
		t.Errorf("unexpected error map %v", body["error"])
	}
}

func TestDefaultMessages(t *testing.T) {
	cases := []struct {
		name   string
		write  func(http.ResponseWriter)
		status int
		msg    string
	}{
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "") }, http.StatusUnauthorized, "Unauthorized"},
		{"forbidden", func(w http.ResponseWriter) { Forbidden(w, "") }, http.StatusForbidden, "Forbidden"},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "") }, http.StatusNotFound, "Resource not found"},
		{"conflict", func(w http.ResponseWriter) { Conflict(w, "") }, http.StatusConflict, "Resource already exists"},
		{"internal", func(w http.ResponseWriter) { InternalServerError(w, "") }, http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.write(rec)
			if rec.Code != tc.status {
				t.Errorf("expected %d, got %d", tc.status, rec.Code)
			}
			if body := decode(t, rec); body["message"] != tc.msg {
				t.Errorf("expected message %q, got %v", tc.msg, body["message"])
			}
		})
	}
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(2, 10, 25)
	if meta.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", meta.TotalPages)
	}
	if NewMeta(1, 0, 5).TotalPages != 0 {
		t.Error("expected zero pages when limit is zero")
	}
}
