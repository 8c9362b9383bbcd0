// Package pipeline wires the fetch, match, and score stages into the two
// run flows: the forward scan over the feed and the report contract both
// flows expose to the external sink.
package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/civic-atlas/appointments-watch/internal/fetch"
	"github.com/civic-atlas/appointments-watch/internal/match"
	"github.com/civic-atlas/appointments-watch/internal/model"
	"github.com/civic-atlas/appointments-watch/internal/normalize"
	"github.com/civic-atlas/appointments-watch/internal/score"
	"github.com/civic-atlas/appointments-watch/pkg/crol"
	"github.com/civic-atlas/appointments-watch/pkg/opendata"
)

// Summary counts what a run saw. Partial success is the normal case and is
// reported, not failed.
type Summary struct {
	RunID   string    `json:"run_id"`
	Started time.Time `json:"started"`
	Scanned int       `json:"scanned"`
	Matched int       `json:"matched"`
	Scored  int       `json:"scored"`
	Skipped int       `json:"skipped"`
	Errored int       `json:"errored"`
	Partial bool      `json:"partial"`
}

// Scanner runs the forward scan: feed records against the registry.
type Scanner struct {
	feed    opendata.Client
	notices crol.Client
	matcher *match.Matcher
	scorer  *score.Scorer
	orgs    map[string]model.Organization

	// MinScore drops candidates scoring below it. Corroborate spends extra
	// request budget looking for a second source per matched candidate.
	MinScore    int
	Corroborate bool
}

// NewScanner builds a Scanner over a registry snapshot. The notice client is
// only used when Corroborate is enabled and may be nil otherwise.
func NewScanner(feed opendata.Client, notices crol.Client, norm *normalize.Normalizer, orgs []model.Organization) *Scanner {
	byID := make(map[string]model.Organization, len(orgs))
	for _, org := range orgs {
		byID[org.ID] = org
	}
	return &Scanner{
		feed:    feed,
		notices: notices,
		matcher: match.New(norm, orgs),
		scorer:  score.NewScorer(norm),
		orgs:    byID,
	}
}

// Scan fetches the feed for the date range and returns scored candidates
// sorted by descending total, plus the run summary. Only a completely
// unloadable feed is fatal; a partial fetch downgrades to a partial run.
func (s *Scanner) Scan(ctx context.Context, since, until time.Time) ([]model.Candidate, Summary, error) {
	sum := Summary{RunID: uuid.New().String(), Started: time.Now()}

	records, err := s.feed.Fetch(ctx, since, until)
	if err != nil {
		if len(records) == 0 {
			return nil, sum, eris.Wrap(err, "pipeline: load feed")
		}
		zap.L().Warn("feed fetch incomplete, scanning partial results",
			zap.Int("records", len(records)),
			zap.Error(err),
		)
		sum.Partial = true
	}

	now := time.Now()
	var candidates []model.Candidate
	for _, rec := range records {
		sum.Scanned++

		if rec.EmployeeName == "" {
			sum.Errored++
			zap.L().Debug("skipping record without employee name", zap.String("agency", rec.AgencyName))
			continue
		}

		cand := model.Candidate{
			Record:   rec,
			Evidence: []string{feedCitation(rec)},
		}

		if matches := s.matcher.Match(rec.AgencyName); len(matches) > 0 {
			best := matches[0]
			cand.Match = &best
			sum.Matched++

			if org, ok := s.orgs[best.RegistryID]; ok && org.HasOfficer() {
				cand.CurrentOfficer = org.CurrentOfficer
				cand.NameSimilarity = normalize.NameSimilarity(rec.EmployeeName, org.CurrentOfficer)
			}

			if s.Corroborate && s.notices != nil {
				cand.Evidence = append(cand.Evidence, s.corroborate(ctx, rec, since, until)...)
			}
		}

		cand.Breakdown = s.scorer.Score(cand, now)
		cand.Action = score.Decide(cand)
		sum.Scored++

		if cand.Breakdown.Total < s.MinScore {
			sum.Skipped++
			continue
		}
		candidates = append(candidates, cand)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Breakdown.Total > candidates[j].Breakdown.Total
	})

	zap.L().Info("scan complete",
		zap.String("run_id", sum.RunID),
		zap.Int("scanned", sum.Scanned),
		zap.Int("matched", sum.Matched),
		zap.Int("scored", sum.Scored),
		zap.Int("skipped", sum.Skipped),
		zap.Int("errored", sum.Errored),
		zap.Bool("partial", sum.Partial),
	)
	return candidates, sum, nil
}

// corroborate searches the notice board for the record's employee and cites
// any hit as additional evidence. A budget-exhausted or failed lookup just
// means no extra evidence.
func (s *Scanner) corroborate(ctx context.Context, rec opendata.Record, since, until time.Time) []string {
	name := normalize.NewName(rec.EmployeeName)
	query := name.Full()
	if query == "" {
		return nil
	}

	notices, err := s.notices.Search(ctx, query, since, until)
	if err != nil {
		if !eris.Is(err, fetch.ErrBudgetExhausted) {
			zap.L().Debug("corroboration lookup failed", zap.String("query", query), zap.Error(err))
		}
		return nil
	}

	var cites []string
	for _, n := range notices {
		if normalize.NameSimilarity(rec.EmployeeName, n.EmployeeName) >= 0.9 {
			cites = append(cites, noticeCitation(n))
		}
	}
	return cites
}

func feedCitation(rec opendata.Record) string {
	return "opendata:" + rec.AgencyName + ":" + rec.PublicationDate.Format("2006-01-02")
}

func noticeCitation(n crol.Notice) string {
	if n.DetailURL != "" {
		return "crol:" + n.DetailURL
	}
	return "crol:" + n.AgencyName + ":" + n.Action
}
