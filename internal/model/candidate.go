package model

import (
	"github.com/civic-atlas/appointments-watch/pkg/opendata"
)

// Candidate pairs one feed record with its best registry match and the
// computed score. Created during matching, scored once, then immutable;
// the report sink consumes it as-is.
type Candidate struct {
	Record         opendata.Record `json:"record"`
	Match          *OrgMatch       `json:"match,omitempty"`
	CurrentOfficer string          `json:"current_officer,omitempty"`
	NameSimilarity float64         `json:"name_similarity"`
	Evidence       []string        `json:"evidence,omitempty"`
	Breakdown      ScoreBreakdown  `json:"breakdown"`
	Action         Action          `json:"action"`
}

// Matched reports whether any registry organization was resolved.
func (c Candidate) Matched() bool {
	return c.Match != nil && c.Match.Type != MatchNone
}
