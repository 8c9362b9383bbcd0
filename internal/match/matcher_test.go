package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civic-atlas/appointments-watch/internal/model"
	"github.com/civic-atlas/appointments-watch/internal/normalize"
)

func testOrgs() []model.Organization {
	return []model.Organization{
		{
			ID:             "org-dob",
			Name:           "Department of Buildings",
			AlternateNames: []string{"Buildings Department"},
			Acronym:        "DOB",
			SourceAliases:  map[string]string{"opendata": "DEPT OF BUILDINGS NYC"},
		},
		{
			ID:      "org-law",
			Name:    "Law Department",
			Acronym: "LAW",
		},
		{
			ID:   "org-hpd",
			Name: "Department of Housing Preservation and Development",
		},
	}
}

func newTestMatcher() *Matcher {
	return New(normalize.New(normalize.DefaultRules()), testOrgs())
}

func TestMatch_Exact(t *testing.T) {
	matches := newTestMatcher().Match("DEPT OF BUILDINGS")

	require.Len(t, matches, 1)
	assert.Equal(t, "org-dob", matches[0].RegistryID)
	assert.Equal(t, model.MatchExact, matches[0].Type)
	assert.InDelta(t, 1.0, matches[0].Confidence, 0.001)
	assert.Equal(t, "name", matches[0].MatchedField)
}

func TestMatch_AlternateName(t *testing.T) {
	matches := newTestMatcher().Match("Buildings Dept")

	require.Len(t, matches, 1)
	assert.Equal(t, "org-dob", matches[0].RegistryID)
	assert.Equal(t, model.MatchAlternateName, matches[0].Type)
	assert.InDelta(t, 0.9, matches[0].Confidence, 0.001)
}

func TestMatch_Acronym(t *testing.T) {
	matches := newTestMatcher().Match("DOB")

	require.Len(t, matches, 1)
	assert.Equal(t, "org-dob", matches[0].RegistryID)
	assert.Equal(t, model.MatchAcronym, matches[0].Type)
	assert.InDelta(t, 0.85, matches[0].Confidence, 0.001)
}

func TestMatch_SourceAlias(t *testing.T) {
	matches := newTestMatcher().Match("Dept of Buildings NYC")

	require.Len(t, matches, 1)
	assert.Equal(t, model.MatchSourceName, matches[0].Type)
	assert.InDelta(t, 0.8, matches[0].Confidence, 0.001)
}

func TestMatch_FuzzyFallback(t *testing.T) {
	// One token off the canonical name; no lexical index hits.
	matches := newTestMatcher().Match("Department of Housing Preservation Development")

	require.Len(t, matches, 1)
	assert.Equal(t, "org-hpd", matches[0].RegistryID)
	assert.Equal(t, model.MatchFuzzy, matches[0].Type)
	// Fuzzy confidence is scaled below every lexical strategy.
	assert.Less(t, matches[0].Confidence, 0.8)
	assert.GreaterOrEqual(t, matches[0].Confidence, fuzzyFloor*fuzzyScale)
}

func TestMatch_FuzzyNeverCompetesWithLexical(t *testing.T) {
	matches := newTestMatcher().Match("Law Department")

	require.Len(t, matches, 1)
	assert.Equal(t, model.MatchExact, matches[0].Type)
}

func TestMatch_BelowFuzzyFloor(t *testing.T) {
	assert.Empty(t, newTestMatcher().Match("Parks and Recreation"))
}

func TestMatch_Empty(t *testing.T) {
	m := newTestMatcher()
	assert.Nil(t, m.Match(""))
	assert.Nil(t, m.Match("   "))
}

func TestMatch_OneEntryPerOrganization(t *testing.T) {
	// Exact name and alternate name both resolve to org-dob; the higher
	// strategy wins and the org appears once.
	orgs := []model.Organization{{
		ID:             "org-dob",
		Name:           "Department of Buildings",
		AlternateNames: []string{"Department of Buildings"},
	}}
	m := New(normalize.New(normalize.DefaultRules()), orgs)

	matches := m.Match("Department of Buildings")

	require.Len(t, matches, 1)
	assert.Equal(t, model.MatchExact, matches[0].Type)
	assert.InDelta(t, 1.0, matches[0].Confidence, 0.001)
}

func TestMatch_SortedByConfidenceThenID(t *testing.T) {
	orgs := []model.Organization{
		{ID: "org-b", Name: "Department of Finance", Acronym: "DOF"},
		{ID: "org-a", Name: "Division of Finance", AlternateNames: []string{"Department of Finance"}},
	}
	m := New(normalize.New(normalize.DefaultRules()), orgs)

	matches := m.Match("Department of Finance")

	require.Len(t, matches, 2)
	assert.Equal(t, "org-b", matches[0].RegistryID)
	assert.InDelta(t, 1.0, matches[0].Confidence, 0.001)
	assert.Equal(t, "org-a", matches[1].RegistryID)
	assert.InDelta(t, 0.9, matches[1].Confidence, 0.001)
}
