package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// Result is one geocoded match: a coordinate plus a display name.
type Result struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	PlaceName string  `json:"placeName"`
}

// Client wraps the Mapbox forward-geocoding API, restricted to the one best
// postal-code/place/address/locality match in the configured countries.
type Client struct {
	token      string
	endpoint   string
	countries  string
	types      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientConfig carries the knobs NewClient needs; zero values get defaults.
type ClientConfig struct {
	Token             string
	Endpoint          string
	Countries         string
	Types             string
	RequestsPerSecond float64
}

// NewClient builds a geocoding client. Returns nil when no token is
// configured: geocoding degrades gracefully to "never resolves".
func NewClient(cfg ClientConfig) *Client {
	if cfg.Token == "" {
		return nil
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.mapbox.com/geocoding/v5/mapbox.places"
	}
	if cfg.Countries == "" {
		cfg.Countries = "us,ca"
	}
	if cfg.Types == "" {
		cfg.Types = "postcode,place,address,locality"
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	return &Client{
		token:     cfg.Token,
		endpoint:  cfg.Endpoint,
		countries: cfg.Countries,
		types:     cfg.Types,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}
}

type forwardResponse struct {
	Features []struct {
		PlaceName string    `json:"place_name"`
		Center    []float64 `json:"center"` // [lng, lat]
	} `json:"features"`
}

// Forward resolves a free-text query to its single best match. A clean "no
// match" comes back as (nil, nil).
func (c *Client) Forward(ctx context.Context, query string) (*Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("geocode: rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("access_token", c.token)
	params.Set("limit", "1")
	params.Set("country", c.countries)
	params.Set("types", c.types)

	u := fmt.Sprintf("%s/%s.json?%s", c.endpoint, url.PathEscape(query), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("geocode: building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode: API returned HTTP %d", resp.StatusCode)
	}

	var body forwardResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("geocode: decoding response: %w", err)
	}

	if len(body.Features) == 0 || len(body.Features[0].Center) < 2 {
		return nil, nil
	}

	feature := body.Features[0]
	return &Result{
		Lat:       feature.Center[1],
		Lng:       feature.Center[0],
		PlaceName: feature.PlaceName,
	}, nil
}
