// Package opendata provides a client for the structured personnel-change
// feed: a paginated tabular endpoint queried by publication-date range.
package opendata

import (
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Record is one personnel-change row from the feed. The free-text description
// is parsed into the typed fields at fetch time; a Record is immutable once
// returned.
type Record struct {
	AgencyName      string     `json:"agency_name"`
	Description     string     `json:"description"`
	PublicationDate time.Time  `json:"publication_date"`
	EffectiveDate   *time.Time `json:"effective_date,omitempty"`
	TitleCode       string     `json:"title_code,omitempty"`
	TitleText       string     `json:"title_text,omitempty"`
	ReasonCode      string     `json:"reason_code,omitempty"`
	Provisional     string     `json:"provisional_status,omitempty"`
	Salary          float64    `json:"salary,omitempty"`
	EmployeeName    string     `json:"employee_name"`
}

// ParseDescription fills the typed fields from the semicolon-delimited
// "Key: Value; Key: Value" description text. Unrecognized keys are ignored;
// a value that fails to parse leaves its field zero rather than erroring.
func (r *Record) ParseDescription() {
	for _, part := range strings.Split(r.Description, ";") {
		k, v, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(k))
		val := strings.TrimSpace(v)
		if val == "" {
			continue
		}

		switch key {
		case "effective date":
			if t, err := time.Parse("01/02/2006", val); err == nil {
				r.EffectiveDate = &t
			} else {
				zap.L().Debug("opendata: unparseable effective date", zap.String("value", val))
			}
		case "provisional status":
			r.Provisional = val
		case "title code":
			r.TitleCode = val
		case "title", "civil service title", "employee title":
			r.TitleText = val
		case "reason for change":
			r.ReasonCode = strings.ToUpper(val)
		case "salary":
			cleaned := strings.NewReplacer(",", "", "$", "").Replace(val)
			if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
				r.Salary = f
			}
		case "employee name":
			r.EmployeeName = val
		}
	}
}
