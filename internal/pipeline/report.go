package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/civic-atlas/appointments-watch/internal/model"
)

// FormatReport renders the scan outcome as a human-readable markdown digest
// for analyst review.
func FormatReport(candidates []model.Candidate, sum Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Appointments Scan %s\n\n", sum.RunID)

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Scanned: %d\n", sum.Scanned)
	fmt.Fprintf(&b, "- Matched: %d\n", sum.Matched)
	fmt.Fprintf(&b, "- Scored: %d\n", sum.Scored)
	fmt.Fprintf(&b, "- Skipped (below threshold): %d\n", sum.Skipped)
	fmt.Fprintf(&b, "- Errored: %d\n", sum.Errored)
	if sum.Partial {
		b.WriteString("- NOTE: feed fetch was incomplete; results are partial\n")
	}
	b.WriteString("\n")

	b.WriteString("## Candidates\n")
	if len(candidates) == 0 {
		b.WriteString("No candidates above threshold.\n")
		return b.String()
	}

	for _, c := range candidates {
		org := "(no match)"
		if c.Matched() {
			org = fmt.Sprintf("%s [%s]", c.Match.MatchedName, c.Match.RegistryID)
		}
		fmt.Fprintf(&b, "- **%s** | %s: %d (%s) -> %s\n",
			c.Record.EmployeeName, org, c.Breakdown.Total, c.Breakdown.Level, c.Action)
		fmt.Fprintf(&b, "  org %.0f / title %.0f / name %.0f / recency %.0f / evidence %.0f\n",
			c.Breakdown.OrgMatch, c.Breakdown.TitleRelevance, c.Breakdown.NameDifferentiation,
			c.Breakdown.Recency, c.Breakdown.Evidence)
	}
	return b.String()
}

var candidateHeaders = []string{
	"registry_id", "matched_org", "match_type", "match_confidence",
	"employee_name", "agency_raw", "reason", "effective_date",
	"score", "level", "action", "name_similarity", "evidence",
}

// WriteCandidatesCSV writes the per-candidate contract rows.
func WriteCandidatesCSV(w io.Writer, candidates []model.Candidate) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(candidateHeaders); err != nil {
		return eris.Wrap(err, "report: write header")
	}

	for _, c := range candidates {
		registryID, orgName, matchType, matchConf := "", "", string(model.MatchNone), ""
		if c.Matched() {
			registryID = c.Match.RegistryID
			orgName = c.Match.MatchedName
			matchType = string(c.Match.Type)
			matchConf = strconv.FormatFloat(c.Match.Confidence, 'f', 2, 64)
		}
		effective := ""
		if c.Record.EffectiveDate != nil {
			effective = c.Record.EffectiveDate.Format("2006-01-02")
		}

		row := []string{
			registryID, orgName, matchType, matchConf,
			c.Record.EmployeeName, c.Record.AgencyName, c.Record.ReasonCode, effective,
			strconv.Itoa(c.Breakdown.Total), string(c.Breakdown.Level), string(c.Action),
			strconv.FormatFloat(c.NameSimilarity, 'f', 2, 64),
			strings.Join(c.Evidence, ";"),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "report: write row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "report: flush csv")
	}
	return nil
}

// WriteCandidatesJSON writes the summary and full candidate objects.
func WriteCandidatesJSON(w io.Writer, candidates []model.Candidate, sum Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	out := struct {
		Summary    Summary           `json:"summary"`
		Candidates []model.Candidate `json:"candidates"`
	}{Summary: sum, Candidates: candidates}
	if err := enc.Encode(out); err != nil {
		return eris.Wrap(err, "report: encode json")
	}
	return nil
}

// FormatDepartureReport renders the departure-check outcome as markdown.
func FormatDepartureReport(results []model.DepartureResult) string {
	var b strings.Builder

	b.WriteString("# Departure Check\n\n")

	departed, clean, errored := 0, 0, 0
	for _, r := range results {
		switch {
		case r.Err != "":
			errored++
		case r.HasDeparture:
			departed++
		default:
			clean++
		}
	}
	fmt.Fprintf(&b, "Checked %d officers: %d possible departures, %d clear, %d errors\n\n",
		len(results), departed, clean, errored)

	for _, r := range results {
		if !r.HasDeparture {
			continue
		}
		best := r.Best()
		fmt.Fprintf(&b, "- **%s** (%s): %s per %s notice, confidence %.2f (name %.2f / agency %.2f)\n",
			r.OfficerName, r.OrgName, best.Notice.Action, best.Notice.AgencyName,
			best.Overall, best.NameConfidence, best.AgencyConfidence)
	}

	if errored > 0 {
		b.WriteString("\n## Errors\n")
		for _, r := range results {
			if r.Err != "" {
				fmt.Fprintf(&b, "- %s (%s): %s\n", r.OfficerName, r.OrgName, r.Err)
			}
		}
	}
	return b.String()
}

var departureHeaders = []string{
	"registry_id", "org_name", "officer_name", "has_departure",
	"action", "notice_agency", "notice_date",
	"name_confidence", "agency_confidence", "overall", "error",
}

// WriteDeparturesCSV writes the per-officer contract rows: the best match's
// fields when one exists, or the captured error.
func WriteDeparturesCSV(w io.Writer, results []model.DepartureResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(departureHeaders); err != nil {
		return eris.Wrap(err, "report: write header")
	}

	for _, r := range results {
		action, agency, date, nameConf, agencyConf, overall := "", "", "", "", "", ""
		if best := r.Best(); best != nil {
			action = best.Notice.Action
			agency = best.Notice.AgencyName
			if best.Notice.NoticeDate != nil {
				date = best.Notice.NoticeDate.Format("2006-01-02")
			}
			nameConf = strconv.FormatFloat(best.NameConfidence, 'f', 2, 64)
			agencyConf = strconv.FormatFloat(best.AgencyConfidence, 'f', 2, 64)
			overall = strconv.FormatFloat(best.Overall, 'f', 2, 64)
		}

		row := []string{
			r.RegistryID, r.OrgName, r.OfficerName, strconv.FormatBool(r.HasDeparture),
			action, agency, date, nameConf, agencyConf, overall, r.Err,
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "report: write row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "report: flush csv")
	}
	return nil
}

// WriteDeparturesJSON writes the full departure results.
func WriteDeparturesJSON(w io.Writer, results []model.DepartureResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return eris.Wrap(err, "report: encode json")
	}
	return nil
}
