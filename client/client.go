package client

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

	"github.com/rs/zerolog"
)

// Client talks to the Springboard backend. Every call is a single request:
// no retries, and no timeout unless one was configured.
type Client struct {
	httpClient     *http.Client
	timeout        time.Duration
	baseURL        string
	detailLikePath bool
	logger         zerolog.Logger
}

type Option func(*Client)

// WithHTTPClient swaps the transport, e.g. for httptest servers.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds every request. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithDetailLikePath sends card likes to /api/{name}/like instead of the
// canonical /apis/{name}/like.
func WithDetailLikePath(enabled bool) Option {
	return func(c *Client) { c.detailLikePath = enabled }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend URL: unsupported scheme %q", parsed.Scheme)
	}

	c := &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Search runs GET /api/search?prompt=...
func (c *Client) Search(ctx context.Context, prompt string) (SearchResponse, error) {
	var raw struct {
		Reply json.RawMessage `json:"reply"`
	}
	path := "/api/search?prompt=" + url.QueryEscape(prompt)
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return SearchResponse{}, err
	}
	return parseSearchReply(raw.Reply)
}

// parseSearchReply accepts an array of candidates. Any other reply shape
// (string, object, null, missing) means "no results". Entries without an
// apiName are dropped.
func parseSearchReply(reply json.RawMessage) (SearchResponse, error) {
	trimmed := bytes.TrimSpace(reply)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return SearchResponse{}, nil
	}

	var candidates []Candidate
	if err := json.Unmarshal(trimmed, &candidates); err != nil {
		return SearchResponse{}, fmt.Errorf("%w: search reply: %v", ErrDecode, err)
	}

	kept := candidates[:0]
	for _, c := range candidates {
		if c.APIName != "" {
			kept = append(kept, c)
		}
	}
	return SearchResponse{Candidates: kept, IsList: true}, nil
}

// Detail runs GET /api/details/{apiName}
func (c *Client) Detail(ctx context.Context, apiName string) (APIDetail, error) {
	var detail APIDetail
	err := c.do(ctx, http.MethodGet, "/api/details/"+url.PathEscape(apiName), nil, &detail)
	return detail, err
}

// LikeCard likes a search result card. The canonical endpoint answers
// {likes}; the detail-view endpoint may answer with anything, in which case
// Likes is nil.
func (c *Client) LikeCard(ctx context.Context, apiName string) (LikeResponse, error) {
	if !c.detailLikePath {
		return c.LikeAPI(ctx, apiName)
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/"+url.PathEscape(apiName)+"/like", nil, &raw); err != nil {
		return LikeResponse{}, err
	}
	var resp LikeResponse
	// The detail-view endpoint has no fixed body; ignore what we can't read.
	_ = json.Unmarshal(raw, &resp)
	return resp, nil
}

// LikeAPI runs POST /apis/{id}/like and returns the new count.
func (c *Client) LikeAPI(ctx context.Context, id string) (LikeResponse, error) {
	var resp LikeResponse
	if err := c.do(ctx, http.MethodPost, "/apis/"+url.PathEscape(id)+"/like", nil, &resp); err != nil {
		return LikeResponse{}, err
	}
	if resp.Likes == nil {
		return LikeResponse{}, fmt.Errorf("%w: like response has no likes", ErrDecode)
	}
	return resp, nil
}

// ListAPIs runs GET /apis
func (c *Client) ListAPIs(ctx context.Context) ([]APISummary, error) {
	var apis []APISummary
	if err := c.do(ctx, http.MethodGet, "/apis", nil, &apis); err != nil {
		return nil, err
	}
	return apis, nil
}

// CheckDuplicates runs POST /api/check-duplicates
func (c *Client) CheckDuplicates(ctx context.Context, api NewAPI) (DuplicateReport, error) {
	var report DuplicateReport
	err := c.do(ctx, http.MethodPost, "/api/check-duplicates", api, &report)
	return report, err
}

// Submit runs POST /api/add
func (c *Client) Submit(ctx context.Context, api NewAPI) (SubmitResponse, error) {
	var resp SubmitResponse
	err := c.do(ctx, http.MethodPost, "/api/add", api, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request done")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(snippet)}
	}

	if out == nil {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: failed to read body: %w", method, path, err)
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrDecode, method, path, err)
	}
	return nil
}

// ErrDecode marks a response whose body did not have the expected shape.
var ErrDecode = errors.New("unexpected response body")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
}
