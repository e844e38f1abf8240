// Package nws is a minimal client for the api.weather.gov observation API.
package nws

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the production National Weather Service API.
	DefaultBaseURL = "https://api.weather.gov/"

	// DefaultUserAgent identifies this exporter to the NWS API, which
	// requires a User-Agent with contact information.
	DefaultUserAgent = "nws-exporter (+https://github.com/wxgauge/nws-exporter)"

	acceptGeoJSON = "application/geo+json"
)

// ErrorKind classifies a failed API request.
type ErrorKind string

const (
	ErrTransport        ErrorKind = "transport"
	ErrDecode           ErrorKind = "decode"
	ErrUnknownStation   ErrorKind = "unknown_station"
	ErrUnexpectedStatus ErrorKind = "unexpected_status"
)

// Error describes a failed api.weather.gov request. Callers branch on Kind
// rather than matching error strings.
type Error struct {
	Kind    ErrorKind
	Station string
	URL     string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrUnknownStation:
		return fmt.Sprintf("station %q not found at %s", e.Station, e.URL)
	case ErrUnexpectedStatus:
		return fmt.Sprintf("unexpected status %d from %s", e.Status, e.URL)
	default:
		return fmt.Sprintf("%s failure for %s: %v", e.Kind, e.URL, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Client issues observation and station-metadata requests against the NWS
// API. It is safe for concurrent use; the underlying transport pools
// connections across fetches.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a client for the given API base URL. An empty baseURL or
// userAgent selects the package defaults. The timeout bounds each individual
// request; callers may impose a tighter deadline per call via context.
func NewClient(baseURL, userAgent string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q: missing scheme or host", baseURL)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}, nil
}

// stationURL builds the metadata URL for a station. The identifier is
// percent-encoded into the path segment so unexpected characters cannot
// alter the request path.
func (c *Client) stationURL(station string) string {
	return c.baseURL + "stations/" + url.PathEscape(station)
}

func (c *Client) observationURL(station string) string {
	return c.stationURL(station) + "/observations/latest"
}

// LatestObservation fetches the most recent observation for a station.
func (c *Client) LatestObservation(ctx context.Context, station string) (*Observation, error) {
	endpoint := c.observationURL(station)
	body, err := c.get(ctx, station, endpoint)
	if err != nil {
		return nil, err
	}

	var obs Observation
	if err := json.Unmarshal(body, &obs); err != nil {
		return nil, &Error{Kind: ErrDecode, Station: station, URL: endpoint, Err: err}
	}
	return &obs, nil
}

// Station fetches station metadata: the canonical station URL, the external
// identifier, and the human-readable name.
func (c *Client) Station(ctx context.Context, station string) (*Station, error) {
	endpoint := c.stationURL(station)
	body, err := c.get(ctx, station, endpoint)
	if err != nil {
		return nil, err
	}

	var st Station
	if err := json.Unmarshal(body, &st); err != nil {
		return nil, &Error{Kind: ErrDecode, Station: station, URL: endpoint, Err: err}
	}
	return &st, nil
}

func (c *Client) get(ctx context.Context, station, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Error{Kind: ErrTransport, Station: station, URL: endpoint, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", acceptGeoJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: ErrTransport, Station: station, URL: endpoint, Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Printf("[nws] Warning: failed to close response body: %v", closeErr)
		}
	}()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &Error{Kind: ErrUnknownStation, Station: station, URL: endpoint, Status: resp.StatusCode}
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &Error{Kind: ErrUnexpectedStatus, Station: station, URL: endpoint, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: ErrTransport, Station: station, URL: endpoint, Err: err}
	}
	return body, nil
}
