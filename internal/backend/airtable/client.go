// Package airtable implements service.Service against an Airtable-compatible REST API.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"

	"github.com/sandeepkv93/todoflow/internal/model"
	"github.com/sandeepkv93/todoflow/internal/service"
)

const (
	// DefaultBaseURL is the hosted Airtable API.
	DefaultBaseURL = "https://api.airtable.com"

	// APITimeout is the default timeout for a single API call.
	APITimeout = 5 * time.Second

	// PageSize is the number of records requested per list page.
	PageSize = 100

	// maxListPages bounds offset pagination so a misbehaving server cannot loop forever.
	maxListPages = 100
)

var (
	ErrMissingToken = errors.New("airtable: token is required")
	ErrMissingTable = errors.New("airtable: base id and table are required")
	ErrTooManyPages = errors.New("airtable: list exceeded the page limit")
)

// Options configures a Client.
type Options struct {
	BaseURL string
	BaseID  string
	Table   string
	Token   string
	Timeout time.Duration

	// HTTPClient supplies the base transport; the bearer credential is layered on top.
	HTTPClient *http.Client
	Logger     hclog.Logger
}

// Client implements service.Service over HTTP.
type Client struct {
	http     *http.Client
	endpoint string
	timeout  time.Duration
	maxPages int
	log      hclog.Logger
}

var _ service.Service = (*Client)(nil)

// New creates a client that attaches a static bearer token to every request.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, ErrMissingToken
	}
	if strings.TrimSpace(opts.BaseID) == "" || strings.TrimSpace(opts.Table) == "" {
		return nil, ErrMissingTable
	}
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = APITimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	// Keep the caller's transport (tests, proxies) underneath the oauth2 transport.
	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token, TokenType: "Bearer"})

	return &Client{
		http:     oauth2.NewClient(ctx, tokenSource),
		endpoint: base + "/v0/" + url.PathEscape(opts.BaseID) + "/" + url.PathEscape(opts.Table),
		timeout:  timeout,
		maxPages: maxListPages,
		log:      logger.Named("airtable"),
	}, nil
}

type recordsEnvelope struct {
	Records []model.Record `json:"records"`
	Offset  string         `json:"offset,omitempty"`
}

// ListRecords fetches every page of records matching q. A server that keeps
// returning an offset past the page limit yields ErrTooManyPages.
func (c *Client) ListRecords(ctx context.Context, q service.Query) ([]model.Record, error) {
	params := ListParams(q)
	params.Set("pageSize", fmt.Sprint(PageSize))

	out := make([]model.Record, 0)
	for page := 0; page < c.maxPages; page++ {
		var resp recordsEnvelope
		if err := c.do(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil, &resp); err != nil {
			return nil, wrapError(err)
		}
		out = append(out, resp.Records...)
		if resp.Offset == "" {
			return out, nil
		}
		params.Set("offset", resp.Offset)
	}
	c.log.Warn("list exceeded page limit", "pages", c.maxPages, "records", len(out), "offset", params.Get("offset"))
	return nil, fmt.Errorf("%w: %d pages", ErrTooManyPages, c.maxPages)
}

// CreateRecord appends a single record.
func (c *Client) CreateRecord(ctx context.Context, fields model.Fields) ([]model.Record, error) {
	body := recordsEnvelope{Records: []model.Record{{Fields: fields}}}
	var resp recordsEnvelope
	if err := c.do(ctx, http.MethodPost, c.endpoint, body, &resp); err != nil {
		return nil, wrapError(err)
	}
	return resp.Records, nil
}

// PatchRecord overwrites the given fields of one record.
func (c *Client) PatchRecord(ctx context.Context, id string, fields model.Fields) ([]model.Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("airtable: record id is required")
	}
	body := recordsEnvelope{Records: []model.Record{{ID: id, Fields: fields}}}
	var resp recordsEnvelope
	if err := c.do(ctx, http.MethodPatch, c.endpoint, body, &resp); err != nil {
		return nil, wrapError(err)
	}
	return resp.Records, nil
}

// ListParams encodes the view parameters as Airtable list query parameters.
func ListParams(q service.Query) url.Values {
	params := url.Values{}
	if q.SortField != "" {
		params.Set("sort[0][field]", q.SortField)
		if q.SortDirection != "" {
			params.Set("sort[0][direction]", q.SortDirection)
		}
	}
	if q.Search != "" {
		params.Set("filterByFormula", service.SearchFormula(q.Search))
	}
	return params
}

func (c *Client) do(ctx context.Context, method, target string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", "method", method, "url", target, "error", err)
		return err
	}
	defer resp.Body.Close()
	c.log.Debug("request", "method", method, "url", target, "status", resp.StatusCode, "duration", time.Since(start))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseAPIError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
