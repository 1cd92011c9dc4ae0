// Package catalog is a client for the discography catalog API. Every
// outbound request passes through a single serializing gate so the process
// as a whole never exceeds one request per second.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cesargomez89/yearspin/internal/constants"
)

const DefaultUserAgent = "yearspin/1.0 (https://github.com/cesargomez89/yearspin)"

// APIError is a non-2xx response from the catalog. The client never retries.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalog returned status %d: %s", e.Status, e.Body)
}

// SearchOptions narrows a catalog search.
type SearchOptions struct {
	Type    string // "master"
	PerPage int
	Sort    string // "year,asc"
}

// SearchResult is one candidate entry from a catalog search. Title carries
// the catalog's combined "Artist - Title" form.
type SearchResult struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Year   string `json:"year"`
	Format string `json:"format"`
}

// Master is the catalog's abstract work; MainReleaseID names its canonical
// pressing.
type Master struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	Year          int     `json:"year"`
	MainReleaseID int     `json:"main_release"`
	Tracklist     []Track `json:"tracklist"`
}

type Track struct {
	Position string `json:"position"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
}

// Release is one specific pressing of a master.
type Release struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Released string   `json:"released"` // YYYY, YYYY-MM, or YYYY-MM-DD
	Formats  []Format `json:"formats"`
}

type Format struct {
	Name         string   `json:"name"`
	Descriptions []string `json:"descriptions"`
}

type searchResponse struct {
	Results []SearchResult `json:"results"`
}

type Client struct {
	httpClient  *http.Client
	baseURL     string
	siteURL     string
	token       string
	userAgent   string
	minInterval time.Duration
	lastRequest time.Time
	mu          sync.Mutex
}

func NewClient(baseURL, siteURL, token string) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		siteURL:   strings.TrimSuffix(siteURL, "/"),
		token:     token,
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: constants.CatalogHTTPTimeout,
		},
		minInterval: constants.CatalogRequestInterval,
	}
}

// Search queries the catalog database and returns candidates in the order
// the catalog sorted them.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error) {
	q := url.Values{}
	q.Set("q", query)
	if opts.Type != "" {
		q.Set("type", opts.Type)
	}
	if opts.PerPage > 0 {
		q.Set("per_page", fmt.Sprintf("%d", opts.PerPage))
	}
	if opts.Sort != "" {
		parts := strings.SplitN(opts.Sort, ",", 2)
		q.Set("sort", parts[0])
		if len(parts) == 2 {
			q.Set("sort_order", parts[1])
		}
	}

	u := fmt.Sprintf("%s/database/search?%s", c.baseURL, q.Encode())

	var result searchResponse
	if err := c.getJSON(ctx, u, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// GetMaster fetches a master by id.
func (c *Client) GetMaster(ctx context.Context, id int) (*Master, error) {
	u := fmt.Sprintf("%s/masters/%d", c.baseURL, id)

	var master Master
	if err := c.getJSON(ctx, u, &master); err != nil {
		return nil, err
	}
	return &master, nil
}

// GetRelease fetches a release by id.
func (c *Client) GetRelease(ctx context.Context, id int) (*Release, error) {
	u := fmt.Sprintf("%s/releases/%d", c.baseURL, id)

	var release Release
	if err := c.getJSON(ctx, u, &release); err != nil {
		return nil, err
	}
	return &release, nil
}

// MasterURL returns the public citation URL for a master.
func (c *Client) MasterURL(id int) string {
	return fmt.Sprintf("%s/master/%d", c.siteURL, id)
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Discogs token="+c.token)

	resp, err := c.do(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// do serializes every outbound call behind the gate: the next request may
// not leave before lastRequest + minInterval. Holding the mutex across the
// sleep and the request itself is what makes the gate process-wide.
func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if elapsed := time.Since(c.lastRequest); elapsed < c.minInterval {
		timer := time.NewTimer(c.minInterval - elapsed)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	c.lastRequest = time.Now()

	return c.httpClient.Do(req)
}
