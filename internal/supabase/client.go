// Package supabase is a small PostgREST client covering the table calls the
// CRM makes against a hosted Supabase project: filtered select, insert,
// update and delete, each returning the affected rows.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// CodeUniqueViolation is the Postgres SQLSTATE PostgREST forwards for
// duplicate keys.
const CodeUniqueViolation = "23505"

type Client struct {
	restURL *url.URL
	apiKey  string
	schema  string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithSchema(schema string) Option {
	return func(c *Client) { c.schema = schema }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func New(projectURL, apiKey string, opts ...Option) (*Client, error) {
	if projectURL == "" || apiKey == "" {
		return nil, fmt.Errorf("supabase: url and key are required")
	}
	u, err := url.Parse(strings.TrimRight(projectURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("supabase: parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("supabase: url %q must be http(s)", projectURL)
	}
	u.Path += "/rest/v1"
	c := &Client{
		restURL: u,
		apiKey:  apiKey,
		schema:  "public",
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// From starts a query against table.
func (c *Client) From(table string) *Query {
	return &Query{client: c, table: table, params: url.Values{}}
}

// Ping checks that the REST endpoint answers and accepts the key.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, c.restURL.String()+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("supabase: ping: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("supabase: ping: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, target string, body []byte) (*http.Request, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return nil, fmt.Errorf("supabase: build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodGet || method == http.MethodHead {
		req.Header.Set("Accept-Profile", c.schema)
	} else {
		req.Header.Set("Content-Profile", c.schema)
	}
	return req, nil
}

// Query is a single-use request builder. Filters are ANDed.
type Query struct {
	client *Client
	table  string
	params url.Values
}

func (q *Query) Select(columns string) *Query {
	q.params.Set("select", columns)
	return q
}

func (q *Query) Eq(column string, value any) *Query {
	q.params.Add(column, "eq."+formatValue(value))
	return q
}

// Or adds a disjunction built from filters such as ILike.
func (q *Query) Or(filters ...string) *Query {
	q.params.Add("or", "("+strings.Join(filters, ",")+")")
	return q
}

func (q *Query) Order(column string, ascending bool) *Query {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.params.Set("order", column+"."+dir)
	return q
}

func (q *Query) Limit(n int) *Query {
	q.params.Set("limit", strconv.Itoa(n))
	return q
}

// ILike renders a case-insensitive substring filter for use inside Or.
// PostgREST reads '*' as '%' and has no escape for it, so '*' in substr
// is dropped.
func ILike(column, substr string) string {
	substr = strings.ReplaceAll(substr, "*", "")
	return column + ".ilike." + quote("*"+escapeLike(substr)+"*")
}

// Get runs a select and decodes the rows into out.
func (q *Query) Get(ctx context.Context, out any) error {
	return q.do(ctx, http.MethodGet, nil, out)
}

// Insert posts row and decodes the inserted rows into out.
func (q *Query) Insert(ctx context.Context, row any, out any) error {
	return q.do(ctx, http.MethodPost, row, out)
}

// Update patches every row matching the filters and decodes them into out.
func (q *Query) Update(ctx context.Context, patch any, out any) error {
	return q.do(ctx, http.MethodPatch, patch, out)
}

// Delete removes every row matching the filters and decodes them into out.
func (q *Query) Delete(ctx context.Context, out any) error {
	return q.do(ctx, http.MethodDelete, nil, out)
}

func (q *Query) do(ctx context.Context, method string, payload any, out any) error {
	var body []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("supabase: encode %s body: %w", q.table, err)
		}
		body = b
	}
	target := q.client.restURL.String() + "/" + url.PathEscape(q.table)
	if enc := q.params.Encode(); enc != "" {
		target += "?" + enc
	}
	req, err := q.client.newRequest(ctx, method, target, body)
	if err != nil {
		return err
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := q.client.http.Do(req)
	if err != nil {
		return fmt.Errorf("supabase: %s %s: %w", method, q.table, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("supabase: read %s response: %w", q.table, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("supabase: decode %s rows: %w", q.table, err)
	}
	return nil
}

// APIError is the error body PostgREST returns for failed calls.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase: status %d code %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase: status %d: %s", e.Status, e.Message)
}

func (e *APIError) IsUniqueViolation() bool {
	return e.Code == CodeUniqueViolation
}

func decodeError(status int, raw []byte) error {
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
	}
	return apiErr
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}

// quote wraps a filter value in double quotes so PostgREST reserved
// characters (commas, parentheses, dots) are taken literally.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
