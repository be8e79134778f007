package validator

import (
	"regexp"
	"strings"
	"unicode"
)

// UsernamePolicy names one of the username formats in use.
type UsernamePolicy string

const (
	UsernameLegacy UsernamePolicy = "legacy"
	UsernamePerson UsernamePolicy = "person"
	UsernameDoctor UsernamePolicy = "doctor"
)

var (
	personUsernameRegex = regexp.MustCompile(`^[A-Z][A-Za-z0-9_]{3,14}$`)
	doctorUsernameRegex = regexp.MustCompile(`^Doc_[A-Z][A-Za-z0-9_]{0,45}$`)
	specialCharRegex    = regexp.MustCompile(`[@#$!%*?&]`)
)

// Check returns an error message, or "" when username satisfies the policy.
func (p UsernamePolicy) Check(username string) string {
	switch p {
	case UsernamePerson:
		if len(username) < 4 || len(username) > 15 {
			return "Username must be 4-15 characters"
		}
		if !unicode.IsUpper(rune(username[0])) {
			return "Username must start with a capital letter"
		}
		if !strings.Contains(username, "_") {
			return "Username must contain an underscore (_)"
		}
		if !personUsernameRegex.MatchString(username) {
			return "Username can only contain letters, numbers, and underscores"
		}
	case UsernameDoctor:
		if !strings.HasPrefix(username, "Doc_") {
			return "Doctor username must start with 'Doc_'"
		}
		if !doctorUsernameRegex.MatchString(username) {
			return "Doctor username must be 'Doc_' followed by a capital letter and letters, numbers, or underscores"
		}
	default:
		if !legacyUsernameRegex.MatchString(username) {
			return "Username must be 3-50 characters, alphanumeric and underscore only"
		}
	}
	return ""
}

// PasswordPolicy names one of the password strength rules in use.
type PasswordPolicy string

const (
	PasswordLegacy PasswordPolicy = "legacy"
	PasswordStrong PasswordPolicy = "strong"
	PasswordStaff  PasswordPolicy = "staff"
)

func (p PasswordPolicy) MinLength() int {
	if p == PasswordLegacy {
		return 6
	}
	return 8
}

func (p PasswordPolicy) Check(password string) PasswordCheck {
	if len(password) < p.MinLength() {
		if p == PasswordLegacy {
			return PasswordCheck{Message: "Password must be at least 6 characters"}
		}
		return PasswordCheck{Message: "Password must be at least 8 characters"}
	}
	if p == PasswordLegacy {
		return PasswordCheck{Valid: true}
	}

	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	switch {
	case !lower:
		return PasswordCheck{Message: "Password must contain lowercase letters"}
	case !upper:
		return PasswordCheck{Message: "Password must contain uppercase letters"}
	case !digit:
		return PasswordCheck{Message: "Password must contain numbers"}
	case p == PasswordStrong && !specialCharRegex.MatchString(password):
		return PasswordCheck{Message: "Password must contain a special character (@, #, $, !, %, *, ?, &)"}
	}
	return PasswordCheck{Valid: true}
}

// ContactRule names one of the two contact number rules.
type ContactRule string

const (
	ContactTenDigits       ContactRule = "tenDigits"
	ContactSriLankanMobile ContactRule = "sriLankanMobile"
)

func (c ContactRule) Check(number interface{}) string {
	if c == ContactSriLankanMobile {
		if !IsValidSriLankanMobile(number) {
			return "Invalid phone format (e.g., 0771234567)"
		}
		return ""
	}
	if !IsValidContactNumber(number) {
		return "Contact number must be 10 digits"
	}
	return ""
}

// Profile bundles the rules one registration surface enforces.
type Profile struct {
	Name        string         `json:"name"`
	Username    UsernamePolicy `json:"username_policy"`
	Password    PasswordPolicy `json:"password_policy"`
	Contact     ContactRule    `json:"contact_rule"`
	MinFullName int            `json:"min_full_name"`
	// Required lists fields that are mandatory on top of each form's own required set.
	Required []string `json:"required,omitempty"`
}

var (
	LegacyServer = Profile{
		Name:        "legacy_server",
		Username:    UsernameLegacy,
		Password:    PasswordLegacy,
		Contact:     ContactTenDigits,
		MinFullName: 2,
	}
	PatientSelfRegistration = Profile{
		Name:        "patient_self_registration",
		Username:    UsernamePerson,
		Password:    PasswordStrong,
		Contact:     ContactSriLankanMobile,
		MinFullName: 2,
	}
	ReceptionistAssisted = Profile{
		Name:        "receptionist_assisted",
		Username:    UsernamePerson,
		Password:    PasswordStaff,
		Contact:     ContactSriLankanMobile,
		MinFullName: 2,
		Required:    []string{FieldContactNumber},
	}
	AdminDoctor = Profile{
		Name:        "admin_doctor",
		Username:    UsernameDoctor,
		Password:    PasswordStrong,
		Contact:     ContactSriLankanMobile,
		MinFullName: 3,
		Required:    []string{FieldEmail, FieldContactNumber},
	}
	AdminReceptionist = Profile{
		Name:        "admin_receptionist",
		Username:    UsernamePerson,
		Password:    PasswordStaff,
		Contact:     ContactSriLankanMobile,
		MinFullName: 3,
		Required:    []string{FieldEmail, FieldContactNumber},
	}
)

// Profiles returns every known profile in a stable order.
func Profiles() []Profile {
	return []Profile{LegacyServer, PatientSelfRegistration, ReceptionistAssisted, AdminDoctor, AdminReceptionist}
}

// LookupProfile finds a profile by name.
func LookupProfile(name string) (Profile, bool) {
	for _, p := range Profiles() {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}
