// Package crol provides a client for the City Record notice board: a
// session-based search form whose results are parsed with pattern matching
// rather than a full DOM schema. The brittle scraping lives behind
// ParseNotices so it can be hardened without touching matching or scoring.
package crol

import (
	"strings"
	"time"
)

// Notice is one parsed personnel-change entry from the notice board.
type Notice struct {
	EmployeeName  string     `json:"employee_name"`
	AgencyName    string     `json:"agency_name"`
	Action        string     `json:"action"`
	NoticeDate    *time.Time `json:"notice_date,omitempty"`
	EffectiveDate *time.Time `json:"effective_date,omitempty"`
	Title         string     `json:"title,omitempty"`
	DetailURL     string     `json:"detail_url,omitempty"`
}

var departureActions = map[string]bool{
	"RESIGNED":   true,
	"RETIRED":    true,
	"TERMINATED": true,
	"DECEASED":   true,
}

// IsDeparture reports whether the notice records someone leaving a post.
func (n Notice) IsDeparture() bool {
	return departureActions[strings.ToUpper(strings.TrimSpace(n.Action))]
}
