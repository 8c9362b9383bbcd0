// Package registry loads the external curated registry of tracked
// organizations and their current principal officers. The registry is input
// only; nothing in this tool mutates it.
package registry

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/civic-atlas/appointments-watch/internal/model"
)

// Per-source alias columns recognized in the registry CSV. The column suffix
// is the source name the alias applies to.
var aliasColumns = map[string]string{
	"opendata_name": "opendata",
	"crol_name":     "crol",
}

// Load reads the registry CSV. The header row is required; alternate names
// are semicolon-delimited within their column. An unreadable registry is
// fatal for the run, so errors here propagate.
func Load(path string) ([]model.Organization, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "registry: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "registry: read csv")
	}
	if len(rows) < 1 {
		return nil, eris.New("registry: empty file")
	}

	headers := rows[0]
	var orgs []model.Organization
	for i, row := range rows[1:] {
		rec := mapRow(headers, row)

		org := model.Organization{
			ID:             strings.TrimSpace(rec["id"]),
			Name:           strings.TrimSpace(rec["name"]),
			Acronym:        strings.TrimSpace(rec["acronym"]),
			CurrentOfficer: strings.TrimSpace(rec["current_officer"]),
		}
		if org.ID == "" || org.Name == "" {
			zap.L().Debug("registry: skipping row without id or name", zap.Int("row", i+2))
			continue
		}

		for _, alt := range strings.Split(rec["alternate_names"], ";") {
			if alt = strings.TrimSpace(alt); alt != "" {
				org.AlternateNames = append(org.AlternateNames, alt)
			}
		}

		for col, source := range aliasColumns {
			if v := strings.TrimSpace(rec[col]); v != "" {
				if org.SourceAliases == nil {
					org.SourceAliases = map[string]string{}
				}
				org.SourceAliases[source] = v
			}
		}

		orgs = append(orgs, org)
	}

	if len(orgs) == 0 {
		return nil, eris.Errorf("registry: no usable rows in %s", path)
	}

	zap.L().Info("registry loaded", zap.String("path", path), zap.Int("organizations", len(orgs)))
	return orgs, nil
}

// mapRow pairs each header with the corresponding value in the row. Short
// rows yield empty strings for the missing columns.
func mapRow(headers []string, row []string) map[string]string {
	rec := make(map[string]string, len(headers))
	for i, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		if i < len(row) {
			rec[key] = row[i]
		} else {
			rec[key] = ""
		}
	}
	return rec
}
