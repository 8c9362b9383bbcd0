package model

// MatchType identifies which matcher strategy produced an OrgMatch.
type MatchType string

const (
	MatchExact         MatchType = "exact"
	MatchAlternateName MatchType = "alternate_name"
	MatchAcronym       MatchType = "acronym"
	MatchSourceName    MatchType = "source_name"
	MatchFuzzy         MatchType = "fuzzy"
	MatchNone          MatchType = "none"
)

// OrgMatch resolves a raw agency string to one registry organization.
// A raw string may produce several OrgMatch candidates, at most one per
// registry id, ordered by descending confidence.
type OrgMatch struct {
	RegistryID   string    `json:"registry_id"`
	MatchedName  string    `json:"matched_name"`
	Type         MatchType `json:"match_type"`
	Confidence   float64   `json:"confidence"`
	MatchedField string    `json:"matched_field"`
	MatchedValue string    `json:"matched_value"`
}
