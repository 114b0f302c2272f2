// Package adiga fetches raw admission-table HTML from the source site.
//
// The source exposes a single POST form endpoint. The CSRF token and session
// cookie expire and must be refreshed by an operator; there is no automated
// refresh.
package adiga

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/jinhak-lab/admitscan/internal/resilience"
)

// Fetcher retrieves one university's raw admissions HTML.
type Fetcher interface {
	FetchUniversity(ctx context.Context, code string) (string, error)
}

// Config holds endpoint and session settings.
type Config struct {
	Endpoint   string
	CSRFToken  string
	Cookie     string
	CycleParam string // admission cycle selector, e.g. "2025"
	TrackParam string // track category selector (수시/정시)
	Timeout    time.Duration
}

// Client implements Fetcher over resty.
type Client struct {
	cfg  Config
	http *resty.Client
}

// NewClient creates a source client. Endpoint, CSRF token, and cookie are
// required; their absence is a configuration fault, not a retryable error.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, eris.New("adiga: endpoint is required")
	}
	if cfg.CSRFToken == "" || cfg.Cookie == "" {
		return nil, eris.New("adiga: csrf token and cookie are required (refresh them from a browser session)")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	http := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "Mozilla/5.0 (compatible; admitscan/1.0)").
		SetHeader("Cookie", cfg.Cookie)

	return &Client{cfg: cfg, http: http}, nil
}

// FetchUniversity POSTs the form for one university code and returns the
// HTML fragment body. Non-2xx responses are errors; 5xx and 429 are marked
// transient so the caller's retry policy can distinguish them.
func (c *Client) FetchUniversity(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", eris.New("adiga: university code is required")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"_csrf":     c.cfg.CSRFToken,
			"srchSyr":   c.cfg.CycleParam,
			"srchSem":   c.cfg.TrackParam,
			"univCd":    code,
			"menuId":    "PCODEPGRR1",
			"srchGubun": "competition",
		}).
		Post(c.cfg.Endpoint)
	if err != nil {
		return "", eris.Wrapf(err, "adiga: fetch university %s", code)
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		err := eris.Errorf("adiga: fetch university %s: status %d", code, status)
		if resilience.IsTransientHTTPStatus(status) {
			return "", resilience.NewTransientError(err, status)
		}
		return "", err
	}

	body := resp.String()
	zap.L().Debug("adiga: fetched university page",
		zap.String("code", code),
		zap.Int("bytes", len(body)),
	)

	return body, nil
}
