package melodix

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Config configures the Melodix API client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
}

// APIError describes a non-2xx response from the Melodix backend. The
// message keeps both the status and the requested URL so swallowed errors
// still tell operators which call failed.
type APIError struct {
	Status int
	URL    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("melodix: api error %d fetching %s", e.Status, e.URL)
}

// Client talks to the Melodix backend REST API. It issues plain GETs with
// no retries and no auth handling: the browser session cookie travels on
// the injected http.Client's jar, and a missing client falls back to
// http.DefaultClient without imposing a timeout.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// New builds a client for the Melodix backend.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("melodix: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		client:    httpClient,
	}, nil
}

// Summary fetches the aggregate dashboard payload in one round trip.
func (c *Client) Summary(ctx context.Context) (Summary, error) {
	var out Summary
	if err := c.get(ctx, "/api/dashboard/summary", nil, &out); err != nil {
		return Summary{}, err
	}
	return out, nil
}

// TopArtists fetches the viewer's ranked artists for a time range.
func (c *Client) TopArtists(ctx context.Context, timeRange string, limit int) ([]Artist, error) {
	var out struct {
		Artists []Artist `json:"artists"`
	}
	if err := c.get(ctx, "/api/top/artists", rangeQuery(timeRange, limit), &out); err != nil {
		return nil, err
	}
	return out.Artists, nil
}

// TopTracks fetches the viewer's ranked tracks for a time range.
func (c *Client) TopTracks(ctx context.Context, timeRange string, limit int) ([]Track, error) {
	var out struct {
		Tracks []Track `json:"tracks"`
	}
	if err := c.get(ctx, "/api/top/tracks", rangeQuery(timeRange, limit), &out); err != nil {
		return nil, err
	}
	return out.Tracks, nil
}

// Recommendations fetches recommendation cards, optionally narrowed by a
// mood preset or a free-text query.
func (c *Client) Recommendations(ctx context.Context, mood, query string) (RecommendationSet, error) {
	values := url.Values{}
	if mood != "" {
		values.Set("mood", mood)
	}
	if query != "" {
		values.Set("query", query)
	}
	var out RecommendationSet
	if err := c.get(ctx, "/api/recommendations", values, &out); err != nil {
		return RecommendationSet{}, err
	}
	return out, nil
}

// Me fetches the viewer's profile.
func (c *Client) Me(ctx context.Context) (Profile, error) {
	var out Profile
	if err := c.get(ctx, "/api/me", nil, &out); err != nil {
		return Profile{}, err
	}
	return out, nil
}

// Recent fetches the most recently played tracks.
func (c *Client) Recent(ctx context.Context, limit int) ([]RecentTrack, error) {
	values := url.Values{}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	var out struct {
		Tracks []RecentTrack `json:"tracks"`
	}
	if err := c.get(ctx, "/api/recent", values, &out); err != nil {
		return nil, err
	}
	return out.Tracks, nil
}

// Genres fetches the genre distribution on its own.
func (c *Client) Genres(ctx context.Context) (GenreDistribution, error) {
	var out struct {
		Genres GenreDistribution `json:"genres"`
	}
	if err := c.get(ctx, "/api/genres", nil, &out); err != nil {
		return nil, err
	}
	return out.Genres, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, target any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("melodix: build request %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("melodix: fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, URL: endpoint}
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("melodix: decode %s: %w", endpoint, err)
	}
	return nil
}

func rangeQuery(timeRange string, limit int) url.Values {
	values := url.Values{}
	if timeRange != "" {
		values.Set("time_range", timeRange)
	}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	return values
}
