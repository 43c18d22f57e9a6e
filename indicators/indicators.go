// Package indicators holds the domain model of the reporting service:
// organizational units, the indicator dictionary, and monthly indicator
// entries submitted in batches.
package indicators

import "fmt"

// Unit is an organizational subdivision (ward, ICU, emergency room) that
// scopes data visibility for operators.
type Unit struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	PhotoURL string `json:"photo_url,omitempty"`
}

func (u Unit) ScopeUnit() string { return u.Name }

// Indicator is one dictionary definition of a quality indicator.
type Indicator struct {
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	NumeratorLabel   string `json:"numerator_label,omitempty"`
	DenominatorLabel string `json:"denominator_label,omitempty"`
}

// Entry is one reported indicator value for a unit and period.
type Entry struct {
	Unit          string  `json:"unit"`
	Indicator     string  `json:"indicator"`
	Month         int     `json:"month"`
	Year          int     `json:"year"`
	Numerator     float64 `json:"numerator"`
	Denominator   float64 `json:"denominator"`
	NotApplicable bool    `json:"not_applicable,omitempty"`
}

func (e Entry) ScopeUnit() string { return e.Unit }

// Rate returns the entry's percentage rate, or 0 when not applicable or the
// denominator is zero.
func (e Entry) Rate() float64 {
	if e.NotApplicable || e.Denominator == 0 {
		return 0
	}
	return e.Numerator / e.Denominator * 100
}

// Status classifies an entry's rate against a target ceiling: at or under
// target is green, within the tolerance band above it yellow, beyond that
// red. Entries without data are gray.
type Status string

const (
	StatusGreen  Status = "green"
	StatusYellow Status = "yellow"
	StatusRed    Status = "red"
	StatusGray   Status = "gray"
)

func (e Entry) Status(target, tolerance float64) Status {
	if e.NotApplicable || e.Denominator == 0 {
		return StatusGray
	}
	rate := e.Rate()
	switch {
	case rate <= target:
		return StatusGreen
	case rate <= target+tolerance:
		return StatusYellow
	default:
		return StatusRed
	}
}

// Period identifies a reporting month.
type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// EntryBatch is one batched submission: every value reported for a unit and
// period in a single call. Partial application on the remote is possible on
// failure, so batches are never retried automatically.
type EntryBatch struct {
	Unit    string       `json:"unit"`
	Period  Period       `json:"period"`
	Entries []BatchValue `json:"entries"`
}

// BatchValue is one indicator's value inside a batch.
type BatchValue struct {
	Indicator     string  `json:"indicator"`
	Numerator     float64 `json:"numerator"`
	Denominator   float64 `json:"denominator"`
	NotApplicable bool    `json:"not_applicable,omitempty"`
}

// EntryFilter narrows an entry-report query.
type EntryFilter struct {
	Unit   string
	Period Period
}

// AdminUser is the administrator's view of a registered account.
type AdminUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Unit        string `json:"unit"`
}

// Registration is the payload for creating a new account. New accounts are
// always created as operators.
type Registration struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Unit        string `json:"unit"`
	LicenseNo   string `json:"license_no,omitempty"`
}
