package model

// Organization is one row of the external registry of tracked organizations.
// The registry is consumed read-only; this tool never writes back to it.
type Organization struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	AlternateNames []string          `json:"alternate_names,omitempty"`
	Acronym        string            `json:"acronym,omitempty"`
	SourceAliases  map[string]string `json:"source_aliases,omitempty"`
	CurrentOfficer string            `json:"current_officer,omitempty"`
}

// HasOfficer reports whether the registry currently lists a principal officer.
func (o Organization) HasOfficer() bool {
	return o.CurrentOfficer != ""
}
