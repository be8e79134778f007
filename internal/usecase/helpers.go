package usecase

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pubudu-echanneling/internal/delivery/dto"

	"github.com/jackc/pgx/v5/pgconn"
)

const dateLayout = "2006-01-02"

var (
	ErrInvalidDateFormat = errors.New("invalid date format, use YYYY-MM-DD")
	ErrForbidden         = errors.New("you don't have permission to access this resource")
	ErrUnauthenticated   = errors.New("user is not authenticated")
)

// ValidationError carries per-field messages from the registration rule
// engine so handlers can answer with the same error map the browser shows.
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Errors))
}

func newValidationError(errs map[string]string) error {
	return &ValidationError{Errors: errs}
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation
// containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}

// isForeignKeyError checks if the error is a PostgreSQL foreign key violation
// containing the specified constraint name
func isForeignKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23503 = foreign_key_violation
		if pgErr.Code == "23503" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}

// generateBookingCode generates a unique booking code: BK-YYYYMMDD-XXXXXX
func generateBookingCode(scheduleDate time.Time) string {
	dateStr := scheduleDate.Format("20060102")
	randomBytes := make([]byte, 3)
	rand.Read(randomBytes)
	return fmt.Sprintf("BK-%s-%06X", dateStr, randomBytes)
}

// generateTransactionID generates a payment reference: TXN-YYYYMMDDHHMMSS-XXXXXXXX
func generateTransactionID(now time.Time) string {
	randomBytes := make([]byte, 4)
	rand.Read(randomBytes)
	return fmt.Sprintf("TXN-%s-%08X", now.Format("20060102150405"), randomBytes)
}

// newResetToken returns the token mailed to the user and the hash that is stored.
func newResetToken() (token, hash string, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("generate reset token: %w", err)
	}
	token = hex.EncodeToString(raw)
	return token, hashResetToken(token), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(token)))
	return hex.EncodeToString(sum[:])
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}
	return &t, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// validateCard checks card details by format only; nothing is charged.
// All problems are reported at once, keyed like the request body.
func validateCard(card *dto.CardDetails, now time.Time) error {
	errs := make(map[string]string)
	if card == nil {
		errs["card"] = "Card details are required for pay now"
		return newValidationError(errs)
	}

	number := strings.NewReplacer(" ", "", "-", "").Replace(card.CardNumber)
	if len(number) != 16 || !allDigits(number) {
		errs["card.card_number"] = "Card number must be 16 digits"
	}

	if msg := checkExpiry(card.Expiry, now); msg != "" {
		errs["card.expiry"] = msg
	}

	if l := len(card.CVV); l < 3 || l > 4 || !allDigits(card.CVV) {
		errs["card.cvv"] = "CVV must be 3 or 4 digits"
	}

	if strings.TrimSpace(card.CardHolder) == "" {
		errs["card.card_holder"] = "Card holder is required"
	}

	if len(errs) > 0 {
		return newValidationError(errs)
	}
	return nil
}

// checkExpiry accepts MM/YY; a card is valid through the end of its expiry month.
func checkExpiry(expiry string, now time.Time) string {
	parts := strings.Split(strings.TrimSpace(expiry), "/")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 || !allDigits(parts[0]) || !allDigits(parts[1]) {
		return "Expiry must be in MM/YY format"
	}
	month, _ := strconv.Atoi(parts[0])
	year, _ := strconv.Atoi(parts[1])
	if month < 1 || month > 12 {
		return "Expiry must be in MM/YY format"
	}

	firstOfNextMonth := time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, now.Location())
	if !now.Before(firstOfNextMonth) {
		return "Card has expired"
	}
	return ""
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
