// Package departure cross-checks officers currently on the registry against
// the notice board: an officer with an accepted departure notice has likely
// already left their post. Name and agency live in independently-normalized
// spaces, so each side carries its own confidence and both must clear a gate
// before a match is accepted.
package departure

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/civic-atlas/appointments-watch/internal/model"
	"github.com/civic-atlas/appointments-watch/internal/normalize"
	"github.com/civic-atlas/appointments-watch/pkg/crol"
)

// Acceptance gates. A match below either gate is discarded no matter how
// strong the other side is.
const (
	minNameConfidence   = 0.6
	minAgencyConfidence = 0.3
)

// Name-confidence weights.
const (
	lastNameWeight   = 0.5
	firstNameWeight  = 0.4
	middleNameWeight = 0.1
)

// Checker runs the departure cross-check for a batch of registry officers.
type Checker struct {
	norm        *normalize.Normalizer
	client      crol.Client
	concurrency int
}

// NewChecker builds a Checker. Concurrency below 1 runs the batch serially;
// any parallelism still funnels through the run's shared request limiter.
func NewChecker(norm *normalize.Normalizer, client crol.Client, concurrency int) *Checker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Checker{norm: norm, client: client, concurrency: concurrency}
}

// CheckAll checks every organization with a listed officer. A failed lookup
// is recorded on that officer's result and never aborts the batch.
func (c *Checker) CheckAll(ctx context.Context, orgs []model.Organization, since, until time.Time) []model.DepartureResult {
	var candidates []model.Organization
	for _, org := range orgs {
		if org.HasOfficer() {
			candidates = append(candidates, org)
		}
	}

	results := make([]model.DepartureResult, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, org := range candidates {
		i, org := i, org
		g.Go(func() error {
			results[i] = c.Check(gctx, org, since, until)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Check looks up one officer on the notice board and scores any
// departure-type notices against them.
func (c *Checker) Check(ctx context.Context, org model.Organization, since, until time.Time) model.DepartureResult {
	res := model.DepartureResult{
		RegistryID:  org.ID,
		OrgName:     org.Name,
		OfficerName: org.CurrentOfficer,
	}

	officer := normalize.NewName(org.CurrentOfficer)
	query := officer.Full()
	if query == "" {
		return res
	}

	notices, err := c.client.Search(ctx, query, since, until)
	if err != nil {
		zap.L().Warn("departure lookup failed",
			zap.String("officer", org.CurrentOfficer),
			zap.String("org", org.Name),
			zap.Error(err),
		)
		res.Err = err.Error()
		return res
	}

	for _, n := range notices {
		if !n.IsDeparture() {
			continue
		}

		nameConf := c.nameConfidence(officer, normalize.NewName(n.EmployeeName))
		agencyConf := c.agencyConfidence(org.Name, n.AgencyName)
		if nameConf < minNameConfidence || agencyConf < minAgencyConfidence {
			continue
		}

		res.Matches = append(res.Matches, model.DepartureMatch{
			OfficerName:      org.CurrentOfficer,
			OfficerOrg:       org.Name,
			Notice:           n,
			NameConfidence:   nameConf,
			AgencyConfidence: agencyConf,
			Overall:          (nameConf + agencyConf) / 2,
		})
	}

	sort.Slice(res.Matches, func(i, j int) bool {
		return res.Matches[i].Overall > res.Matches[j].Overall
	})
	res.HasDeparture = len(res.Matches) > 0
	return res
}

// nameConfidence scores two parsed names. Last name carries half the weight;
// first name gets partial credit for a prefix or initial match; middle names
// compare on the initial alone.
func (c *Checker) nameConfidence(officer, notice normalize.Name) float64 {
	conf := 0.0

	if officer.Last != "" && strings.EqualFold(officer.Last, notice.Last) {
		conf += lastNameWeight
	}

	of, nf := strings.ToLower(officer.First), strings.ToLower(notice.First)
	switch {
	case of != "" && of == nf:
		conf += firstNameWeight
	case of != "" && nf != "" && (strings.HasPrefix(of, nf) || strings.HasPrefix(nf, of)):
		conf += firstNameWeight / 2
	}

	om, nm := initial(officer.Middle), initial(notice.Middle)
	if om != "" && om == nm {
		conf += middleNameWeight
	}

	return conf
}

// agencyConfidence scores a registry organization name against a notice's
// agency label. Direct containment is the strong signal; the curated
// abbreviation table covers the board's short labels; token overlap is the
// last resort, with the generic agency words stripped first.
func (c *Checker) agencyConfidence(orgName, noticeAgency string) float64 {
	org := c.norm.Agency(orgName)
	notice := c.norm.Agency(noticeAgency)
	if org == "" || notice == "" {
		return 0
	}

	if strings.Contains(org, notice) || strings.Contains(notice, org) {
		return 0.9
	}

	abbrevs := c.norm.Rules().NoticeAgencyAbbreviations
	if exp, ok := abbrevs[notice]; ok && c.norm.Agency(exp) == org {
		return 0.85
	}
	if exp, ok := abbrevs[org]; ok && c.norm.Agency(exp) == notice {
		return 0.85
	}

	return tokenOverlap(c.norm.AgencyTokens(orgName), c.norm.AgencyTokens(noticeAgency)) * 0.7
}

// tokenOverlap is the share of overlapping tokens relative to the smaller
// side, so a short board label is not penalized for the registry's longer
// formal name.
func tokenOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	inter := 0
	for _, t := range b {
		if set[t] {
			inter++
		}
	}
	smaller := len(a)
	if len(b) < smaller {
		smaller = len(b)
	}
	return float64(inter) / float64(smaller)
}

func initial(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return ""
	}
	return s[:1]
}
