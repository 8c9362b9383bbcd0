package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civic-atlas/appointments-watch/internal/model"
	"github.com/civic-atlas/appointments-watch/pkg/crol"
	"github.com/civic-atlas/appointments-watch/pkg/opendata"
)

func sampleCandidate() model.Candidate {
	eff := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
	return model.Candidate{
		Record: opendata.Record{
			AgencyName:    "LAW DEPARTMENT",
			EmployeeName:  "WALKER,GLEN M",
			ReasonCode:    "APPOINTED",
			EffectiveDate: &eff,
		},
		Match: &model.OrgMatch{
			RegistryID:  "org-law",
			MatchedName: "Law Department",
			Type:        model.MatchExact,
			Confidence:  1.0,
		},
		CurrentOfficer: "Maria Torres",
		NameSimilarity: 0.1,
		Evidence:       []string{"opendata:LAW DEPARTMENT:2026-02-20"},
		Breakdown:      model.ScoreBreakdown{Total: 92, Level: model.LevelHigh},
		Action:         model.ActionUpdateOfficer,
	}
}

func TestFormatReport(t *testing.T) {
	sum := Summary{RunID: "run-1", Scanned: 10, Matched: 3, Scored: 3, Skipped: 2}
	out := FormatReport([]model.Candidate{sampleCandidate()}, sum)

	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "Scanned: 10")
	assert.Contains(t, out, "WALKER,GLEN M")
	assert.Contains(t, out, "Law Department [org-law]")
	assert.Contains(t, out, "UPDATE_OFFICER")
	assert.NotContains(t, out, "partial")
}

func TestFormatReport_PartialAndEmpty(t *testing.T) {
	out := FormatReport(nil, Summary{RunID: "run-2", Partial: true})

	assert.Contains(t, out, "partial")
	assert.Contains(t, out, "No candidates above threshold.")
}

func TestWriteCandidatesCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCandidatesCSV(&buf, []model.Candidate{sampleCandidate()}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, candidateHeaders, rows[0])
	row := rows[1]
	assert.Equal(t, "org-law", row[0])
	assert.Equal(t, "exact", row[2])
	assert.Equal(t, "1.00", row[3])
	assert.Equal(t, "WALKER,GLEN M", row[4])
	assert.Equal(t, "2026-02-20", row[7])
	assert.Equal(t, "92", row[8])
	assert.Equal(t, "UPDATE_OFFICER", row[10])
}

func TestWriteCandidatesCSV_NoMatch(t *testing.T) {
	c := sampleCandidate()
	c.Match = nil

	var buf bytes.Buffer
	require.NoError(t, WriteCandidatesCSV(&buf, []model.Candidate{c}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Empty(t, rows[1][0])
	assert.Equal(t, string(model.MatchNone), rows[1][2])
}

func TestWriteCandidatesJSON(t *testing.T) {
	var buf bytes.Buffer
	sum := Summary{RunID: "run-3", Scanned: 1}
	require.NoError(t, WriteCandidatesJSON(&buf, []model.Candidate{sampleCandidate()}, sum))

	var out struct {
		Summary    Summary           `json:"summary"`
		Candidates []model.Candidate `json:"candidates"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "run-3", out.Summary.RunID)
	require.Len(t, out.Candidates, 1)
	assert.Equal(t, model.ActionUpdateOfficer, out.Candidates[0].Action)
}

func departureResults() []model.DepartureResult {
	date := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	return []model.DepartureResult{
		{
			RegistryID:  "org-law",
			OrgName:     "Law Department",
			OfficerName: "Glen M Walker",
			Matches: []model.DepartureMatch{{
				OfficerName:      "Glen M Walker",
				OfficerOrg:       "Law Department",
				Notice:           crol.Notice{EmployeeName: "WALKER,GLEN M", AgencyName: "LAW", Action: "RETIRED", NoticeDate: &date},
				NameConfidence:   1.0,
				AgencyConfidence: 0.9,
				Overall:          0.95,
			}},
			HasDeparture: true,
		},
		{RegistryID: "org-dob", OrgName: "Department of Buildings", OfficerName: "Maria Torres"},
		{RegistryID: "org-hpd", OrgName: "HPD", OfficerName: "A Person", Err: "board down"},
	}
}

func TestFormatDepartureReport(t *testing.T) {
	out := FormatDepartureReport(departureResults())

	assert.Contains(t, out, "Checked 3 officers: 1 possible departures, 1 clear, 1 errors")
	assert.Contains(t, out, "Glen M Walker")
	assert.Contains(t, out, "RETIRED")
	assert.Contains(t, out, "board down")
	assert.NotContains(t, out, "Maria Torres")
}

func TestWriteDeparturesCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDeparturesCSV(&buf, departureResults()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, departureHeaders, rows[0])

	hit := rows[1]
	assert.Equal(t, "org-law", hit[0])
	assert.Equal(t, "true", hit[3])
	assert.Equal(t, "RETIRED", hit[4])
	assert.Equal(t, "2026-02-01", hit[6])
	assert.Equal(t, "0.95", hit[9])

	clean := rows[2]
	assert.Equal(t, "false", clean[3])
	assert.Empty(t, clean[4])

	errored := rows[3]
	assert.Equal(t, "board down", errored[10])
}

func TestWriteDeparturesJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDeparturesJSON(&buf, departureResults()))

	var out []model.DepartureResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 3)
	assert.True(t, out[0].HasDeparture)
	require.NotNil(t, out[0].Best())
	assert.InDelta(t, 0.95, out[0].Best().Overall, 0.001)
}
