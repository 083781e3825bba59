// Package catalog is the HTTP client for the data.gouv.nc records API.
//
// A Client turns a FilterSet into one GET request against the dataset's
// records endpoint and normalizes the JSON answer into a QueryResult.
// Requests are single attempts: there is no retry and no client-side cache.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dbsmedya/goreef/internal/logger"
	"github.com/dbsmedya/goreef/internal/types"
)

// DefaultLimit is the page size used when FetchRecords is called without one.
const DefaultLimit = 100

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 64 << 10

// QueryResult is the normalized answer of one records request.
type QueryResult struct {
	Total   int64          `json:"total" yaml:"total"`
	Results []types.Record `json:"results" yaml:"results"`
}

// recordsResponse mirrors the explore v2.1 records payload.
type recordsResponse struct {
	TotalCount interface{}    `json:"total_count"`
	Total      interface{}    `json:"total"`
	Results    []types.Record `json:"results"`
}

// Client queries the catalog records endpoint.
type Client struct {
	baseURL string
	http    *http.Client
	ua      string
	logger  *logger.Logger
	metrics *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.ua = ua }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics enables request instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a Client for the given records endpoint.
// The default HTTP client has no timeout; cancel through the context instead.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		ua:      "goreef/1.0",
		logger:  logger.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the records endpoint the client queries.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// BuildQuery translates filters into request parameters.
// limit is always set; every active facet adds one refine clause of the
// form field:"value" in FacetFields order; q is set when non-empty.
func BuildQuery(filters types.FilterSet, limit int) url.Values {
	if limit <= 0 {
		limit = DefaultLimit
	}

	qs := url.Values{}
	qs.Set("limit", strconv.Itoa(limit))

	for _, f := range types.FacetFields {
		if filters.Active(f) {
			qs.Add("refine", refineClause(f, *filters.Value(f)))
		}
	}
	if filters.Active(types.FieldQ) {
		qs.Set("q", *filters.Q)
	}
	return qs
}

var refineEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func refineClause(f types.Field, value string) string {
	return fmt.Sprintf(`%s:"%s"`, f, refineEscaper.Replace(value))
}

// RecordsURL returns the full request URL for filters and limit.
// Query parameters already present on the base URL are kept.
func (c *Client) RecordsURL(filters types.FilterSet, limit int) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid catalog base URL: %w", err)
	}

	qs := u.Query()
	for k, vs := range BuildQuery(filters, limit) {
		qs[k] = vs
	}
	u.RawQuery = qs.Encode()
	return u.String(), nil
}

// FetchRecords issues one GET for the given filters and returns the page of rows.
// Any failure is reported as a *RequestFailure.
func (c *Client) FetchRecords(ctx context.Context, filters types.FilterSet, limit int) (*QueryResult, error) {
	reqURL, err := c.RecordsURL(filters, limit)
	if err != nil {
		return nil, &RequestFailure{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &RequestFailure{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.ua)

	c.logger.Debugw("API call", "url", reqURL)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(outcomeTransportError, time.Since(start), 0)
		return nil, &RequestFailure{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		elapsed := time.Since(start)
		c.metrics.observe(outcomeHTTPError, elapsed, 0)
		c.logger.Warnw("API error",
			"status", resp.StatusCode,
			"duration", elapsed)
		return nil, &RequestFailure{
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
			Body:       string(body),
		}
	}

	var payload recordsResponse
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		c.metrics.observe(outcomeDecodeError, time.Since(start), 0)
		return nil, &RequestFailure{
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}

	result := &QueryResult{
		Total:   types.ToInt64(payload.TotalCount),
		Results: payload.Results,
	}
	if result.Total == 0 {
		result.Total = types.ToInt64(payload.Total)
	}
	if result.Results == nil {
		result.Results = []types.Record{}
	}

	elapsed := time.Since(start)
	c.metrics.observe(outcomeOK, elapsed, len(result.Results))
	c.logger.Debugw("API response",
		"total", result.Total,
		"rows", len(result.Results),
		"duration", elapsed)

	return result, nil
}
