package validator

import (
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// DateLayout is the only accepted calendar date format.
const DateLayout = "2006-01-02"

var (
	emailRegex           = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	oldNICRegex          = regexp.MustCompile(`^[0-9]{9}[vVxX]$`)
	newNICRegex          = regexp.MustCompile(`^[0-9]{12}$`)
	tenDigitsRegex       = regexp.MustCompile(`^[0-9]{10}$`)
	sriLankanMobileRegex = regexp.MustCompile(`^0[0-9]{9}$`)
	legacyUsernameRegex  = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)
	licenseNoRegex       = regexp.MustCompile(`^[a-zA-Z0-9]{8}$`)
)

// PasswordCheck is the outcome of a password policy check.
type PasswordCheck struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidNIC accepts the old (9 digits + V/X) and new (12 digits) national ID formats.
func IsValidNIC(nic string) bool {
	return oldNICRegex.MatchString(nic) || newNICRegex.MatchString(nic)
}

// IsValidContactNumber reports whether number is exactly ten digits.
// Strings and numeric values are both accepted.
func IsValidContactNumber(number interface{}) bool {
	s, ok := coerceString(number)
	return ok && tenDigitsRegex.MatchString(s)
}

// IsValidSriLankanMobile reports whether number is ten digits with a leading zero.
func IsValidSriLankanMobile(number interface{}) bool {
	s, ok := coerceString(number)
	return ok && sriLankanMobileRegex.MatchString(s)
}

func IsValidUsername(username string) bool {
	return legacyUsernameRegex.MatchString(username)
}

func IsValidPassword(password string) PasswordCheck {
	return PasswordLegacy.Check(password)
}

// IsValidDate accepts only YYYY-MM-DD calendar dates.
func IsValidDate(date string) bool {
	_, err := time.Parse(DateLayout, date)
	return err == nil
}

func IsValidLicenseNo(licenseNo string) bool {
	return licenseNoRegex.MatchString(licenseNo)
}

// Sanitize trims input and strips angle brackets.
func Sanitize(input string) string {
	return strings.NewReplacer("<", "", ">", "").Replace(strings.TrimSpace(input))
}

// coerceString converts scalar form values to their string form. Maps, slices and
// other composite values are rejected.
func coerceString(v interface{}) (string, bool) {
	switch v.(type) {
	case nil:
		return "", false
	case map[string]interface{}, []interface{}:
		return "", false
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	return s, true
}
