// Package score turns a matched candidate into a 0-100 confidence score and
// a recommended action. Both functions are pure: the same candidate always
// produces the same breakdown, which is what makes the tie-break policy
// auditable in isolation.
package score

import (
	"math"
	"time"

	"github.com/civic-atlas/appointments-watch/internal/model"
	"github.com/civic-atlas/appointments-watch/internal/normalize"
)

// Component maxima.
const (
	maxOrgMatch       = 40.0
	maxTitleRelevance = 20.0
	maxNameDiff       = 25.0
	maxRecency        = 10.0
	maxEvidence       = 5.0
)

// Scorer computes score breakdowns using the normalizer's title dictionaries.
type Scorer struct {
	norm *normalize.Normalizer
}

// NewScorer returns a Scorer over the given normalizer.
func NewScorer(norm *normalize.Normalizer) *Scorer {
	return &Scorer{norm: norm}
}

// Score computes the five-component breakdown for a candidate as of now.
// The total is rounded and clamped to [0,100].
func (s *Scorer) Score(c model.Candidate, now time.Time) model.ScoreBreakdown {
	b := model.ScoreBreakdown{
		TitleRelevance: s.norm.TitleRelevance(c.Record.TitleCode, c.Record.TitleText) * maxTitleRelevance,
		Recency:        recencyWeight(c.Record.EffectiveDate, now) * maxRecency,
		Evidence:       evidenceScore(len(c.Evidence)),
	}

	if c.Matched() {
		b.OrgMatch = c.Match.Confidence * maxOrgMatch
	}

	b.NameDifferentiation = nameDifferentiation(c) * maxNameDiff

	total := math.Round(b.OrgMatch + b.TitleRelevance + b.NameDifferentiation + b.Recency + b.Evidence)
	switch {
	case total < 0:
		total = 0
	case total > 100:
		total = 100
	}
	b.Total = int(total)
	b.Level = model.LevelFor(b.Total)
	return b
}

// nameDifferentiation weighs similarity to the current officer. What counts
// as a good signal depends on the event: for a separation, matching the
// officer on file confirms the right person left; for an appointment, a
// near-identical name is probably the same person and not a real change.
func nameDifferentiation(c model.Candidate) float64 {
	if c.CurrentOfficer == "" {
		return 1.0
	}

	sim := c.NameSimilarity
	if model.ClassifyReason(c.Record.ReasonCode) == model.ReasonSeparation {
		if sim > 0.8 {
			return 0.8
		}
		return 0.3
	}

	switch {
	case sim > 0.9:
		return 0
	case sim > 0.7:
		return 0.3
	case sim > 0.5:
		return 0.6
	default:
		return 1.0
	}
}

// recencyWeight favors changes effective within the last week and decays to
// near zero past two months. A future effective date is a pre-announcement;
// an unknown date is neutral.
func recencyWeight(effective *time.Time, now time.Time) float64 {
	if effective == nil {
		return 0.5
	}
	if effective.After(now) {
		return 0.8
	}

	age := now.Sub(*effective)
	switch {
	case age <= 7*24*time.Hour:
		return 1.0
	case age <= 14*24*time.Hour:
		return 0.8
	case age <= 30*24*time.Hour:
		return 0.5
	case age <= 60*24*time.Hour:
		return 0.3
	default:
		return 0.1
	}
}

func evidenceScore(sources int) float64 {
	switch {
	case sources >= 3:
		return 5.0
	case sources == 2:
		return 4.0
	case sources == 1:
		return 2.5
	default:
		return 0
	}
}
