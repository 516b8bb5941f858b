// Package geo resolves coordinates and free-text addresses into the canonical
// location descriptor the storefront handlers work from.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the Google Maps web API host. Geocoding calls go out
// directly, not through the scraping proxy.
const DefaultBaseURL = "https://maps.googleapis.com"

// Location is the canonical descriptor for one geographic position.
// Immutable within a request.
type Location struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PostalCode       string
	PlaceID          string
	Locality         string
}

// GeocodeError reports a non-OK status from the geocoding provider.
type GeocodeError struct {
	Status  string
	Message string
}

func (e *GeocodeError) Error() string {
	msg := "geocoding failed with status " + e.Status
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Config holds geocoder configuration
type Config struct {
	Keys    []string // API key pool, sampled uniformly per call
	BaseURL string   // DefaultBaseURL when empty
	Timeout time.Duration
}

// Client calls the geocoding provider with a per-call random key from the
// pool, spreading quota across keys.
type Client struct {
	httpClient *http.Client
	baseURL    string
	keys       []string
}

// NewClient creates a geocoding client
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		keys:       cfg.Keys,
	}
}

// pickKey selects one API key uniformly at random.
func (c *Client) pickKey() string {
	if len(c.keys) == 0 {
		return ""
	}
	return c.keys[rand.Intn(len(c.keys))]
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress  string `json:"formatted_address"`
		PlaceID           string `json:"place_id"`
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Reverse resolves a coordinate into a Location. The returned descriptor
// keeps the caller's exact coordinates; only address fields come from the
// provider.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (*Location, error) {
	params := url.Values{}
	params.Set("latlng", formatCoord(lat)+","+formatCoord(lon))

	loc, err := c.geocode(ctx, params)
	if err != nil {
		return nil, err
	}
	loc.Lat = lat
	loc.Lon = lon
	return loc, nil
}

// Forward resolves a free-text address into a Location, coordinates included.
func (c *Client) Forward(ctx context.Context, address string) (*Location, error) {
	params := url.Values{}
	params.Set("address", address)
	return c.geocode(ctx, params)
}

func (c *Client) geocode(ctx context.Context, params url.Values) (*Location, error) {
	params.Set("key", c.pickKey())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/maps/api/geocode/json?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("geocode decode: %w", err)
	}

	if body.Status != "OK" {
		return nil, &GeocodeError{Status: body.Status, Message: body.ErrorMessage}
	}
	if len(body.Results) == 0 {
		return nil, &GeocodeError{Status: "ZERO_RESULTS"}
	}

	first := body.Results[0]
	loc := &Location{
		Lat:              first.Geometry.Location.Lat,
		Lon:              first.Geometry.Location.Lng,
		FormattedAddress: first.FormattedAddress,
		PlaceID:          first.PlaceID,
	}
	for _, comp := range first.AddressComponents {
		for _, typ := range comp.Types {
			switch typ {
			case "postal_code":
				loc.PostalCode = comp.LongName
			case "locality":
				loc.Locality = comp.LongName
			}
		}
	}
	return loc, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
