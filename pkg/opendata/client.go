package opendata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/civic-atlas/appointments-watch/internal/fetch"
	"github.com/civic-atlas/appointments-watch/internal/resilience"
)

// Config configures the feed client.
type Config struct {
	BaseURL  string `mapstructure:"base_url"`
	Dataset  string `mapstructure:"dataset"`
	PageSize int    `mapstructure:"page_size"`
	MaxPages int    `mapstructure:"max_pages"`
}

// Client fetches personnel-change records for a publication-date range.
type Client interface {
	Fetch(ctx context.Context, since, until time.Time) ([]Record, error)
}

// Option configures the HTTP client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p resilience.Policy) Option {
	return func(c *httpClient) { c.retry = p }
}

type httpClient struct {
	cfg     Config
	http    *http.Client
	limiter *fetch.Limiter
	cache   fetch.Cache
	retry   resilience.Policy
}

// NewClient creates a feed client. Both the limiter and cache are required:
// every page request is serialized through the run's limiter, and a cache hit
// skips the network entirely.
func NewClient(cfg Config, limiter *fetch.Limiter, cache fetch.Cache, opts ...Option) Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 1000
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 20
	}
	c := &httpClient{
		cfg:     cfg,
		limiter: limiter,
		cache:   cache,
		retry:   resilience.DefaultPolicy(),
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rawRow is the wire shape of one feed row.
type rawRow struct {
	AgencyName      string `json:"agency_name"`
	Description     string `json:"description"`
	PublicationDate string `json:"publication_date"`
}

// Fetch pages through the feed newest-first until a page comes back short,
// the page ceiling is reached, or the run's request budget runs out. A budget
// hit returns the records collected so far along with fetch.ErrBudgetExhausted
// so the caller can report a partial scan.
func (c *httpClient) Fetch(ctx context.Context, since, until time.Time) ([]Record, error) {
	var records []Record

	for page := 0; page < c.cfg.MaxPages; page++ {
		offset := page * c.cfg.PageSize
		rows, err := c.fetchPage(ctx, since, until, offset)
		if err != nil {
			if len(records) > 0 {
				return records, err
			}
			return nil, err
		}

		for _, row := range rows {
			rec, ok := c.toRecord(row)
			if !ok {
				continue
			}
			records = append(records, rec)
		}

		if len(rows) < c.cfg.PageSize {
			break
		}
	}

	zap.L().Info("feed fetch complete",
		zap.Int("records", len(records)),
		zap.Time("since", since),
		zap.Time("until", until),
	)
	return records, nil
}

func (c *httpClient) fetchPage(ctx context.Context, since, until time.Time, offset int) ([]rawRow, error) {
	key := fetch.Key("opendata", c.cfg.Dataset,
		since.Format("2006-01-02"), until.Format("2006-01-02"),
		strconv.Itoa(c.cfg.PageSize), strconv.Itoa(offset))

	if payload, ok := c.cache.Get(key); ok {
		var rows []rawRow
		if err := json.Unmarshal(payload, &rows); err == nil {
			return rows, nil
		}
		zap.L().Debug("opendata: corrupt cache entry, refetching", zap.Int("offset", offset))
	}

	if err := c.limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	reqURL := c.pageURL(since, until, offset)
	body, err := resilience.DoVal(ctx, c.retry, "opendata.page", func(ctx context.Context) ([]byte, error) {
		return c.get(ctx, reqURL)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "opendata: fetch page offset=%d", offset)
	}

	var rows []rawRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, eris.Wrap(err, "opendata: unmarshal page")
	}

	c.cache.Set(key, body)
	return rows, nil
}

func (c *httpClient) pageURL(since, until time.Time, offset int) string {
	q := url.Values{}
	q.Set("$where", fmt.Sprintf("publication_date between '%s' and '%s'",
		since.Format("2006-01-02T00:00:00"), until.Format("2006-01-02T23:59:59")))
	q.Set("$order", "publication_date DESC")
	q.Set("$limit", strconv.Itoa(c.cfg.PageSize))
	q.Set("$offset", strconv.Itoa(offset))
	return fmt.Sprintf("%s/resource/%s.json?%s", c.cfg.BaseURL, c.cfg.Dataset, q.Encode())
}

func (c *httpClient) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "opendata: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "opendata: read body")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("opendata: status %d", resp.StatusCode)
		if resilience.RetryableStatus(resp.StatusCode) {
			return nil, resilience.NewStatusError(err, resp.StatusCode)
		}
		return nil, err
	}
	return body, nil
}

// toRecord converts a wire row, parsing the publication date and description.
// Rows with an unparseable publication date are skipped.
func (c *httpClient) toRecord(row rawRow) (Record, bool) {
	pub, ok := parseFeedTime(row.PublicationDate)
	if !ok {
		zap.L().Debug("opendata: skipping row with bad publication date",
			zap.String("value", row.PublicationDate),
			zap.String("agency", row.AgencyName),
		)
		return Record{}, false
	}

	rec := Record{
		AgencyName:      row.AgencyName,
		Description:     row.Description,
		PublicationDate: pub,
	}
	rec.ParseDescription()
	return rec, true
}

var feedTimeLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseFeedTime(s string) (time.Time, bool) {
	for _, layout := range feedTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
