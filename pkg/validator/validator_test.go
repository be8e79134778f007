package validator

import "testing"

type bookingRequest struct {
	DoctorID    string `json:"doctor_id" validate:"required"`
	NIC         string `json:"nic" validate:"omitempty,nic"`
	Phone       string `json:"contact_number" validate:"omitempty,sl_mobile"`
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,iso_date"`
	Gender      string `json:"gender" validate:"omitempty,gender"`
	LicenseNo   string `json:"license_no" validate:"omitempty,license_no"`
	Method      string `json:"payment_method" validate:"omitempty,oneof=pay_now pay_later"`
}

func TestCustomValidator_CustomTags(t *testing.T) {
	v := NewValidator()

	err := v.Validate(bookingRequest{
		NIC:         "12345",
		Phone:       "1234567890",
		DateOfBirth: "1990/01/01",
		Gender:      "unknown",
		LicenseNo:   "abc",
		Method:      "later",
	})
	if err == nil {
		t.Fatal("expected validation errors")
	}

	errs := v.FormatValidationErrors(err)
	want := map[string]string{
		"doctor_id":      "doctor_id is required",
		"nic":            "Invalid NIC format",
		"contact_number": "Invalid phone format (e.g., 0771234567)",
		"date_of_birth":  "Date of birth must use YYYY-MM-DD",
		"gender":         "Invalid gender value",
		"license_no":     "License number must be 8 letters or digits",
		"payment_method": "payment_method must be one of: pay_now pay_later",
	}
	for field, msg := range want {
		if errs[field] != msg {
			t.Errorf("%s: got %q, want %q", field, errs[field], msg)
		}
	}
}

func TestCustomValidator_Valid(t *testing.T) {
	v := NewValidator()
	err := v.Validate(bookingRequest{
		DoctorID:    "d1",
		NIC:         "123456789V",
		Phone:       "0771234567",
		DateOfBirth: "1990-01-01",
		Gender:      "female",
		LicenseNo:   "SLMC1234",
		Method:      "pay_now",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", v.FormatValidationErrors(err))
	}
}

func TestFormatValidationErrors_NonValidationError(t *testing.T) {
	v := NewValidator()
	if errs := v.FormatValidationErrors(nil); len(errs) != 0 {
		t.Errorf("expected empty map, got %v", errs)
	}
}
