package curation

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sw33tLie/curaudit/pkg/whttp"
)

const (
	AuditPackagesPath = "/xray/api/v1/curation/audit/packages"
	DefaultPageSize   = 1000

	// CursorLayout renders created_at_start as UTC with second precision.
	CursorLayout = "2006-01-02T15:04:05-07:00"

	maxErrorBody = 512
)

// Config holds what is needed to talk to the audit API.
type Config struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
	Proxy    string
}

// PageQuery selects one page of audit events.
type PageQuery struct {
	CreatedAtStart time.Time
	Offset         int
	PageSize       int
}

func (q PageQuery) Values() url.Values {
	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	return url.Values{
		"include_total":    {"false"},
		"order_by":         {"id"},
		"direction":        {"asc"},
		"num_of_rows":      {strconv.Itoa(size)},
		"created_at_start": {FormatCursor(q.CreatedAtStart)},
		"offset":           {strconv.Itoa(q.Offset)},
	}
}

// FormatCursor renders t the way the audit API expects created_at_start.
func FormatCursor(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(CursorLayout)
}

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("curation audit request failed with status %d: %s", e.StatusCode, e.Body)
}

// Client is a single authenticated session against the audit API.
type Client struct {
	endpoint string
	auth     whttp.BasicAuth
	http     *retryablehttp.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("curation API base URL is empty")
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid curation API base URL %q: %w", cfg.BaseURL, err)
	}

	httpClient, err := whttp.NewClient(whttp.ClientOptions{Timeout: cfg.Timeout, Proxy: cfg.Proxy})
	if err != nil {
		return nil, err
	}

	return &Client{
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + AuditPackagesPath,
		auth:     whttp.BasicAuth{Username: cfg.Username, Password: cfg.Password},
		http:     httpClient,
	}, nil
}

// HTTPClient exposes the underlying session as a plain *http.Client.
func (c *Client) HTTPClient() *http.Client {
	return c.http.StandardClient()
}

// Close releases the connections held by the session.
func (c *Client) Close() {
	c.http.HTTPClient.CloseIdleConnections()
}

// FetchPage issues one request. Any failure, including a non-2xx status, is returned as is.
func (c *Client) FetchPage(ctx context.Context, q PageQuery) (Page, error) {
	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{
		Method:    http.MethodGet,
		URL:       c.endpoint,
		Query:     q.Values(),
		BasicAuth: &c.auth,
	}, c.http)
	if err != nil {
		return Page{}, fmt.Errorf("fetch audit page (offset %d): %w", q.Offset, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body := strings.TrimSpace(res.BodyString)
		if len(body) > maxErrorBody {
			// The cut may split a multi-byte rune; drop the partial bytes.
			body = strings.ToValidUTF8(body[:maxErrorBody], "") + "..."
		}
		return Page{}, &StatusError{StatusCode: res.StatusCode, Body: body}
	}

	page, err := ParsePage(res.BodyString)
	if err != nil {
		return Page{}, fmt.Errorf("decode audit page (offset %d): %w", q.Offset, err)
	}
	return page, nil
}
