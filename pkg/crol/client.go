package crol

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/civic-atlas/appointments-watch/internal/fetch"
	"github.com/civic-atlas/appointments-watch/internal/resilience"
)

// Config configures the notice-board client. SectionID is fixed to the
// personnel-changes section of the board.
type Config struct {
	BaseURL   string `mapstructure:"base_url"`
	SectionID string `mapstructure:"section_id"`
	MaxPages  int    `mapstructure:"max_pages"`
}

// Client searches the notice board for personnel-change notices.
type Client interface {
	Search(ctx context.Context, query string, since, until time.Time) ([]Notice, error)
}

// Option configures the HTTP client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client (for testing). The client should
// carry a cookie jar; the board requires a session.
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

	sessionMu  sync.Mutex
	hasSession bool
}

// NewClient creates a notice-board client sharing the run's limiter and cache.
func NewClient(cfg Config, limiter *fetch.Limiter, cache fetch.Cache, opts ...Option) Client {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 10
	}
	if cfg.SectionID == "" {
		cfg.SectionID = "personnel-changes"
	}
	jar, _ := cookiejar.New(nil)
	c := &httpClient{
		cfg:     cfg,
		limiter: limiter,
		cache:   cache,
		retry:   resilience.DefaultPolicy(),
		http: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search pages through the board's search results for a query, stopping at
// the "Displaying X-Y of Z" end marker, a page with no new notices, or the
// page ceiling. Returned notices are deduplicated across pages.
func (c *httpClient) Search(ctx context.Context, query string, since, until time.Time) ([]Notice, error) {
	var notices []Notice
	seen := map[string]bool{}

	for page := 1; page <= c.cfg.MaxPages; page++ {
		html, err := c.fetchResultPage(ctx, query, since, until, page)
		if err != nil {
			if len(notices) > 0 {
				return notices, err
			}
			return nil, err
		}

		added := 0
		for _, n := range ParseNotices(html) {
			k := n.EmployeeName + "|" + n.AgencyName + "|" + n.Action + "|" + n.DetailURL
			if seen[k] {
				continue
			}
			seen[k] = true
			notices = append(notices, n)
			added++
		}

		if added == 0 {
			break
		}
		if _, to, total, ok := DisplayRange(html); ok && to >= total {
			break
		}
	}

	zap.L().Debug("notice search complete",
		zap.String("query", query),
		zap.Int("notices", len(notices)),
	)
	return notices, nil
}

func (c *httpClient) fetchResultPage(ctx context.Context, query string, since, until time.Time, page int) (string, error) {
	key := fetch.Key("crol", c.cfg.SectionID, query,
		since.Format("2006-01-02"), until.Format("2006-01-02"),
		strconv.Itoa(page))

	if payload, ok := c.cache.Get(key); ok {
		return string(payload), nil
	}

	if err := c.ensureSession(ctx); err != nil {
		return "", err
	}

	if err := c.limiter.Acquire(ctx); err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("SearchText", query)
	form.Set("SectionId", c.cfg.SectionID)
	form.Set("DateFrom", since.Format("01/02/2006"))
	form.Set("DateTo", until.Format("01/02/2006"))
	form.Set("PageNumber", strconv.Itoa(page))

	html, err := resilience.DoVal(ctx, c.retry, "crol.search", func(ctx context.Context) (string, error) {
		return c.postForm(ctx, c.cfg.BaseURL+"/search", form)
	})
	if err != nil {
		return "", eris.Wrapf(err, "crol: search page %d", page)
	}

	c.cache.Set(key, []byte(html))
	return html, nil
}

// ensureSession bootstraps the board's session cookie with a single GET.
// Cache-only runs never open a session. The mutex serializes concurrent
// searches so only one caller bootstraps; a failed bootstrap stays retryable
// on the next call.
func (c *httpClient) ensureSession(ctx context.Context) error {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	if c.hasSession {
		return nil
	}
	if err := c.limiter.Acquire(ctx); err != nil {
		return err
	}

	err := resilience.Do(ctx, c.retry, "crol.session", func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL, nil)
		if err != nil {
			return eris.Wrap(err, "crol: create session request")
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close() //nolint:errcheck
		_, _ = io.Copy(io.Discard, resp.Body)

		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("crol: session status %d", resp.StatusCode)
			if resilience.RetryableStatus(resp.StatusCode) {
				return resilience.NewStatusError(err, resp.StatusCode)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return eris.Wrap(err, "crol: open session")
	}

	c.hasSession = true
	return nil
}

func (c *httpClient) postForm(ctx context.Context, reqURL string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", eris.Wrap(err, "crol: create search request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		err := eris.Errorf("crol: status %d", resp.StatusCode)
		if resilience.RetryableStatus(resp.StatusCode) {
			return "", resilience.NewStatusError(err, resp.StatusCode)
		}
		return "", err
	}

	body, err := decodeBody(resp)
	if err != nil {
		return "", err
	}
	return body, nil
}

// decodeBody converts the response to UTF-8 using the declared charset.
// Older board pages still declare windows-1252.
func decodeBody(resp *http.Response) (string, error) {
	var r io.Reader = resp.Body

	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil {
		if cs, ok := params["charset"]; ok && !strings.EqualFold(cs, "utf-8") {
			if enc, err := htmlindex.Get(cs); err == nil {
				r = enc.NewDecoder().Reader(r)
			}
		}
	}

	body, err := io.ReadAll(io.LimitReader(r, 4<<20))
	if err != nil {
		return "", eris.Wrap(err, "crol: read body")
	}
	return string(body), nil
}
