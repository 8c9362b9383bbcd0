package model

import (
	"github.com/civic-atlas/appointments-watch/pkg/crol"
)

// DepartureMatch pairs a registry officer with one departure-type notice from
// the notice board. Name and agency confidence are computed independently;
// the overall confidence is their mean.
type DepartureMatch struct {
	OfficerName      string      `json:"officer_name"`
	OfficerOrg       string      `json:"officer_org"`
	Notice           crol.Notice `json:"notice"`
	NameConfidence   float64     `json:"name_confidence"`
	AgencyConfidence float64     `json:"agency_confidence"`
	Overall          float64     `json:"overall"`
}

// DepartureResult is the outcome of checking one registry officer against the
// notice board. A fetch or parse failure is captured in Err instead of
// aborting the batch.
type DepartureResult struct {
	RegistryID   string           `json:"registry_id"`
	OrgName      string           `json:"org_name"`
	OfficerName  string           `json:"officer_name"`
	Matches      []DepartureMatch `json:"matches,omitempty"`
	HasDeparture bool             `json:"has_departure"`
	Err          string           `json:"error,omitempty"`
}

// Best returns the highest-confidence accepted match, or nil when none.
func (r DepartureResult) Best() *DepartureMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}
