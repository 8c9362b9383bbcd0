// Package match resolves raw agency strings against the registry. Strategies
// run in fixed priority order and merge by registry id, so lexical matches
// always outrank fuzzy ones and each organization appears at most once per
// query.
package match

import (
	"sort"
	"strings"

	"github.com/civic-atlas/appointments-watch/internal/model"
	"github.com/civic-atlas/appointments-watch/internal/normalize"
)

// Strategy confidence values, highest priority first.
const (
	confExact     = 1.0
	confAlternate = 0.9
	confAcronym   = 0.85
	confSource    = 0.8
	fuzzyScale    = 0.7
	fuzzyFloor    = 0.7
)

// Matcher indexes the registry for lookup by normalized name, alternate
// name, acronym, and per-source alias.
type Matcher struct {
	norm *normalize.Normalizer
	orgs []model.Organization

	byCanonical map[string][]int
	byAlternate map[string][]int
	byAcronym   map[string][]int
	bySource    map[string][]int

	canonicalTokens [][]string
}

// New builds a Matcher over the registry snapshot.
func New(norm *normalize.Normalizer, orgs []model.Organization) *Matcher {
	m := &Matcher{
		norm:            norm,
		orgs:            orgs,
		byCanonical:     map[string][]int{},
		byAlternate:     map[string][]int{},
		byAcronym:       map[string][]int{},
		bySource:        map[string][]int{},
		canonicalTokens: make([][]string, len(orgs)),
	}

	for i, org := range orgs {
		canon := norm.Agency(org.Name)
		m.byCanonical[canon] = append(m.byCanonical[canon], i)
		m.canonicalTokens[i] = strings.Fields(canon)

		for _, alt := range org.AlternateNames {
			key := norm.Agency(alt)
			m.byAlternate[key] = append(m.byAlternate[key], i)
		}
		if org.Acronym != "" {
			key := strings.ToLower(strings.TrimSpace(org.Acronym))
			m.byAcronym[key] = append(m.byAcronym[key], i)
		}
		for _, alias := range org.SourceAliases {
			key := norm.Agency(alias)
			m.bySource[key] = append(m.bySource[key], i)
		}
	}
	return m
}

// Match returns registry candidates for a raw agency string, sorted by
// descending confidence. An empty result means "no organization match" and
// is a normal outcome, not an error.
func (m *Matcher) Match(rawAgency string) []model.OrgMatch {
	norm := m.norm.Agency(rawAgency)
	if norm == "" {
		return nil
	}

	found := map[string]model.OrgMatch{}
	keep := func(idx int, mt model.MatchType, conf float64, field, value string) {
		org := m.orgs[idx]
		cur, ok := found[org.ID]
		if ok && cur.Confidence >= conf {
			return
		}
		found[org.ID] = model.OrgMatch{
			RegistryID:   org.ID,
			MatchedName:  org.Name,
			Type:         mt,
			Confidence:   conf,
			MatchedField: field,
			MatchedValue: value,
		}
	}

	for _, idx := range m.byCanonical[norm] {
		keep(idx, model.MatchExact, confExact, "name", m.orgs[idx].Name)
	}
	for _, idx := range m.byAlternate[norm] {
		keep(idx, model.MatchAlternateName, confAlternate, "alternate_names", rawAgency)
	}
	for _, idx := range m.byAcronym[strings.ToLower(strings.TrimSpace(rawAgency))] {
		keep(idx, model.MatchAcronym, confAcronym, "acronym", m.orgs[idx].Acronym)
	}
	for _, idx := range m.bySource[norm] {
		keep(idx, model.MatchSourceName, confSource, "source_alias", rawAgency)
	}

	// Fuzzy is a fallback only: it never competes with a lexical match.
	if len(found) == 0 {
		m.fuzzy(norm, keep)
	}

	out := make([]model.OrgMatch, 0, len(found))
	for _, om := range found {
		out = append(out, om)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].RegistryID < out[j].RegistryID
	})
	return out
}

// fuzzy matches by token overlap against canonical names. Similarity below
// the floor is rejected; accepted scores are scaled so even a perfect token
// overlap stays below every lexical strategy.
func (m *Matcher) fuzzy(norm string, keep func(int, model.MatchType, float64, string, string)) {
	queryTokens := strings.Fields(norm)
	if len(queryTokens) == 0 {
		return
	}
	for idx := range m.orgs {
		sim := jaccard(queryTokens, m.canonicalTokens[idx])
		if sim < fuzzyFloor {
			continue
		}
		keep(idx, model.MatchFuzzy, sim*fuzzyScale, "name", m.orgs[idx].Name)
	}
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	inter := 0
	union := len(set)
	seen := make(map[string]bool, len(b))
	for _, t := range b {
		if seen[t] {
			continue
		}
		seen[t] = true
		if set[t] {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}
