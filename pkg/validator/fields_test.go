package validator

import "testing"

func TestIsValidNIC(t *testing.T) {
	cases := []struct {
		nic  string
		want bool
	}{
		{"123456789V", true},
		{"123456789v", true},
		{"123456789X", true},
		{"123456789x", true},
		{"123456789123", true},
		{"12345", false},
		{"123456789", false},
		{"12345678912", false},
		{"1234567891234", false},
		{"123456789A", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := IsValidNIC(tc.nic); got != tc.want {
			t.Errorf("IsValidNIC(%q) = %v, want %v", tc.nic, got, tc.want)
		}
	}
}

func TestIsValidContactNumber_CoercesNumbers(t *testing.T) {
	if IsValidContactNumber(771234567) {
		t.Error("expected 9-digit number to be rejected")
	}
	if !IsValidContactNumber(1234567890) {
		t.Error("expected 10-digit int to be accepted")
	}
	if !IsValidContactNumber(float64(1234567890)) {
		t.Error("expected 10-digit float (JSON number) to be accepted")
	}
	if !IsValidContactNumber("0771234567") {
		t.Error("expected 10-digit string to be accepted")
	}
	if IsValidContactNumber(nil) {
		t.Error("expected nil to be rejected")
	}
	if IsValidContactNumber([]interface{}{"0771234567"}) {
		t.Error("expected slice to be rejected")
	}
}

// The ten-digit rule and the mobile rule intentionally disagree on numbers
// without a leading zero.
func TestContactRules_Discrepancy(t *testing.T) {
	if !IsValidContactNumber("1234567890") {
		t.Error("tenDigits should accept 1234567890")
	}
	if IsValidSriLankanMobile("1234567890") {
		t.Error("sriLankanMobile should reject 1234567890")
	}
	if !IsValidSriLankanMobile("0771234567") {
		t.Error("sriLankanMobile should accept 0771234567")
	}
	if IsValidSriLankanMobile(771234567) {
		t.Error("sriLankanMobile should reject a number that lost its leading zero")
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "jane.doe@pubudu.lk"}
	invalid := []string{"", "plain", "a@b", "a b@c.com", "@b.com"}

	for _, e := range valid {
		if !IsValidEmail(e) {
			t.Errorf("expected %q to be valid", e)
		}
	}
	for _, e := range invalid {
		if IsValidEmail(e) {
			t.Errorf("expected %q to be invalid", e)
		}
	}
}

func TestIsValidUsername_Legacy(t *testing.T) {
	if !IsValidUsername("abc") {
		t.Error("expected 3 characters to be accepted")
	}
	if IsValidUsername("ab") {
		t.Error("expected 2 characters to be rejected")
	}
	if IsValidUsername("has space") {
		t.Error("expected spaces to be rejected")
	}
}

func TestIsValidPassword_Legacy(t *testing.T) {
	check := IsValidPassword("12345")
	if check.Valid || check.Message != "Password must be at least 6 characters" {
		t.Errorf("unexpected check for short password: %+v", check)
	}
	if !IsValidPassword("123456").Valid {
		t.Error("expected 6 characters to be accepted")
	}
}

func TestIsValidDate_Strict(t *testing.T) {
	cases := map[string]bool{
		"1990-05-17":  true,
		"2024-02-29":  true,
		"2023-02-29":  false,
		"17/05/1990":  false,
		"May 17 1990": false,
		"1990-5-17":   false,
		"":            false,
	}
	for in, want := range cases {
		if got := IsValidDate(in); got != want {
			t.Errorf("IsValidDate(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsValidLicenseNo(t *testing.T) {
	if !IsValidLicenseNo("SLMC1234") {
		t.Error("expected 8 alphanumerics to be accepted")
	}
	if IsValidLicenseNo("SLMC123") || IsValidLicenseNo("SLMC12345") || IsValidLicenseNo("SLMC-123") {
		t.Error("expected anything but 8 alphanumerics to be rejected")
	}
}

func TestSanitize(t *testing.T) {
	if got := Sanitize("  <b>Kamal</b> "); got != "bKamal/b" {
		t.Errorf("Sanitize returned %q", got)
	}
}

func TestValidators_Idempotent(t *testing.T) {
	inputs := []string{"123456789V", "0771234567", "bad", ""}
	for _, in := range inputs {
		if IsValidNIC(in) != IsValidNIC(in) ||
			IsValidContactNumber(in) != IsValidContactNumber(in) ||
			IsValidEmail(in) != IsValidEmail(in) ||
			IsValidDate(in) != IsValidDate(in) {
			t.Errorf("validators disagree with themselves on %q", in)
		}
	}

	form := Form{"username": "x", "nic": "bad"}
	first := ValidatePatientRegistration(form)
	second := ValidatePatientRegistration(form)
	if len(first.Errors) != len(second.Errors) {
		t.Fatal("repeated validation produced different error sets")
	}
	for k, v := range first.Errors {
		if second.Errors[k] != v {
			t.Errorf("error for %s changed between runs: %q vs %q", k, v, second.Errors[k])
		}
	}
}
