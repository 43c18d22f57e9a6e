package indicators

import (
	"fmt"
	"regexp"
	"time"

	apperrors "github.com/jrsteele09/go-indicator-client/internal/errors"
)

// Reporting periods are bounded below by the system's first year of data and
// above by a small planning horizon.
const (
	minYear          = 2020
	maxYearsAhead    = 5
	minPasswordChars = 6
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return &apperrors.ValidationError{Field: "email", Reason: "invalid email address"}
	}
	return nil
}

func ValidatePeriod(p Period) error {
	if p.Month < 1 || p.Month > 12 {
		return &apperrors.ValidationError{Field: "month", Reason: "must be between 1 and 12"}
	}
	maxYear := time.Now().Year() + maxYearsAhead
	if p.Year < minYear || p.Year > maxYear {
		return &apperrors.ValidationError{
			Field:  "year",
			Reason: fmt.Sprintf("must be between %d and %d", minYear, maxYear),
		}
	}
	return nil
}

// Validate checks a batch before it is ever handed to the gateway. Each
// entry needs a numerator and a positive denominator unless it is explicitly
// marked not applicable.
func (b EntryBatch) Validate() error {
	if b.Unit == "" {
		return &apperrors.ValidationError{Field: "unit", Reason: "unit is required"}
	}
	if err := ValidatePeriod(b.Period); err != nil {
		return err
	}
	if len(b.Entries) == 0 {
		return &apperrors.ValidationError{Field: "entries", Reason: "at least one indicator value is required"}
	}

	for i, value := range b.Entries {
		field := fmt.Sprintf("entries[%d]", i)
		if value.Indicator == "" {
			return &apperrors.ValidationError{Field: field, Reason: "indicator name is required"}
		}
		if value.NotApplicable {
			continue
		}
		if value.Numerator < 0 {
			return &apperrors.ValidationError{Field: field, Reason: "numerator must not be negative"}
		}
		if value.Denominator <= 0 {
			return &apperrors.ValidationError{Field: field, Reason: "denominator must be positive"}
		}
	}
	return nil
}

// Validate checks a registration before submission. Password strength beyond
// length is enforced remotely.
func (r Registration) Validate() error {
	if r.DisplayName == "" {
		return &apperrors.ValidationError{Field: "display_name", Reason: "name is required"}
	}
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	if len(r.Password) < minPasswordChars {
		return &apperrors.ValidationError{
			Field:  "password",
			Reason: fmt.Sprintf("must be at least %d characters", minPasswordChars),
		}
	}
	if r.Unit == "" {
		return &apperrors.ValidationError{Field: "unit", Reason: "unit is required"}
	}
	return nil
}
