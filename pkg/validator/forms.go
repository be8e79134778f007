package validator

import (
	"strings"

	"github.com/spf13/cast"
)

// Form is a flat record of submitted form fields.
type Form map[string]interface{}

// Result is the outcome of validating a whole form.
type Result struct {
	IsValid bool              `json:"is_valid"`
	Errors  map[string]string `json:"errors"`
}

const (
	FieldUsername       = "username"
	FieldPassword       = "password"
	FieldEmail          = "email"
	FieldContactNumber  = "contact_number"
	FieldFullName       = "full_name"
	FieldNIC            = "nic"
	FieldGender         = "gender"
	FieldDateOfBirth    = "date_of_birth"
	FieldAddress        = "address"
	FieldSpecialization = "specialization"
	FieldLicenseNo      = "license_no"
)

var fieldLabels = map[string]string{
	FieldUsername:       "Username",
	FieldPassword:       "Password",
	FieldEmail:          "Email",
	FieldContactNumber:  "Contact number",
	FieldFullName:       "Full name",
	FieldNIC:            "NIC",
	FieldGender:         "Gender",
	FieldDateOfBirth:    "Date of birth",
	FieldAddress:        "Address",
	FieldSpecialization: "Specialization",
	FieldLicenseNo:      "License number",
}

// Genders lists the accepted gender values.
var Genders = []string{"MALE", "FEMALE", "OTHER"}

type formSpec struct {
	required []string
	optional []string
}

var (
	patientForm = formSpec{
		required: []string{FieldUsername, FieldPassword, FieldFullName, FieldNIC},
		optional: []string{FieldEmail, FieldContactNumber, FieldGender, FieldDateOfBirth},
	}
	doctorForm = formSpec{
		required: []string{FieldUsername, FieldPassword, FieldFullName, FieldSpecialization, FieldLicenseNo},
		optional: []string{FieldEmail, FieldContactNumber},
	}
	receptionistForm = formSpec{
		required: []string{FieldUsername, FieldPassword, FieldFullName, FieldNIC},
		optional: []string{FieldEmail, FieldContactNumber},
	}
)

// Label returns the human-readable name of a form field.
func Label(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return field
}

// IsBlank reports whether a form value counts as not provided.
func IsBlank(v interface{}) bool {
	if v == nil {
		return true
	}
	s, ok := coerceString(v)
	if !ok {
		return false
	}
	return strings.TrimSpace(s) == ""
}

// isMissing is IsBlank except for passwords, where whitespace is content.
func isMissing(field string, v interface{}) bool {
	if field != FieldPassword {
		return IsBlank(v)
	}
	s, ok := coerceString(v)
	return v == nil || (ok && s == "")
}

// String returns the trimmed string form of a field, or "" when absent.
func (f Form) String(field string) string {
	v, ok := f[field]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

// ValidateField checks a single present value against the profile and returns an
// error message, or "" when the value is acceptable. Blank values are not errors here;
// required-ness is decided by the form.
func (p Profile) ValidateField(field string, value interface{}) string {
	if isMissing(field, value) {
		return ""
	}
	s, ok := coerceString(value)
	if !ok {
		return "Invalid " + strings.ToLower(Label(field))
	}

	switch field {
	case FieldUsername:
		return p.Username.Check(s)
	case FieldPassword:
		if check := p.Password.Check(s); !check.Valid {
			return check.Message
		}
	case FieldEmail:
		if !IsValidEmail(s) {
			return "Invalid email format"
		}
	case FieldContactNumber:
		return p.Contact.Check(value)
	case FieldFullName:
		minLen := p.MinFullName
		if minLen == 0 {
			minLen = 2
		}
		// Measured after sanitizing, as stored
		if len(Sanitize(s)) < minLen {
			return "Full name must be at least " + cast.ToString(minLen) + " characters"
		}
	case FieldNIC:
		if !IsValidNIC(s) {
			return "Invalid NIC format"
		}
	case FieldGender:
		if !isGender(s) {
			return "Invalid gender value"
		}
	case FieldDateOfBirth:
		if !IsValidDate(s) {
			return "Invalid date format, use YYYY-MM-DD"
		}
	case FieldLicenseNo:
		if !IsValidLicenseNo(s) {
			return "License number must be 8 letters or digits"
		}
	}
	return ""
}

// ValidatePatientRegistration validates a patient registration form under this profile.
func (p Profile) ValidatePatientRegistration(data Form) Result {
	return p.validate(patientForm, data)
}

// ValidateDoctorAccount validates an admin-created doctor account form.
func (p Profile) ValidateDoctorAccount(data Form) Result {
	return p.validate(doctorForm, data)
}

// ValidateReceptionistAccount validates an admin-created receptionist account form.
func (p Profile) ValidateReceptionistAccount(data Form) Result {
	return p.validate(receptionistForm, data)
}

func (p Profile) validate(spec formSpec, data Form) Result {
	errs := make(map[string]string)

	required := make(map[string]bool, len(spec.required)+len(p.Required))
	for _, f := range spec.required {
		required[f] = true
	}
	for _, f := range p.Required {
		required[f] = true
	}

	fields := append(append([]string{}, spec.required...), spec.optional...)
	for _, field := range fields {
		value := data[field]
		if isMissing(field, value) {
			if required[field] {
				errs[field] = Label(field) + " is required"
			}
			continue
		}
		if msg := p.ValidateField(field, value); msg != "" {
			errs[field] = msg
		}
	}

	return Result{IsValid: len(errs) == 0, Errors: errs}
}

// ValidatePatientRegistration applies the legacy server rules.
func ValidatePatientRegistration(data Form) Result {
	return LegacyServer.ValidatePatientRegistration(data)
}

// ValidateLogin only checks presence of credentials.
func ValidateLogin(data Form) Result {
	errs := make(map[string]string)
	if IsBlank(data[FieldUsername]) {
		errs[FieldUsername] = "Username is required"
	}
	if isMissing(FieldPassword, data[FieldPassword]) {
		errs[FieldPassword] = "Password is required"
	}
	return Result{IsValid: len(errs) == 0, Errors: errs}
}

func isGender(s string) bool {
	for _, g := range Genders {
		if strings.EqualFold(s, g) {
			return true
		}
	}
	return false
}
