package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

var ErrNoLocation = errors.New("weather: geocoding returned no match")

type forwardResponse struct {
	Data []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Locality  string  `json:"locality"`
		Label     string  `json:"label"`
	} `json:"data"`
}

// Geocoder resolves a free-text query through the positionstack forward API.
type Geocoder struct {
	http    *resty.Client
	baseURL string
	token   string
}

func NewGeocoder(baseURL, token string, timeout time.Duration) *Geocoder {
	if baseURL == "" {
		baseURL = DefaultGeocodingBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Geocoder{
		http:    resty.New().SetTimeout(timeout),
		baseURL: baseURL,
		token:   token,
	}
}

// Forward returns the first match for query, optionally restricted to a
// country code.
func (g *Geocoder) Forward(ctx context.Context, query, country string) (Location, error) {
	params := map[string]string{
		"access_key": g.token,
		"query":      query,
	}
	if country != "" {
		params["country"] = country
	}

	var out forwardResponse
	resp, err := g.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&out).
		Get(g.baseURL)
	if err != nil {
		return Location{}, fmt.Errorf("geocode %q: %w", query, err)
	}
	if resp.IsError() {
		return Location{}, fmt.Errorf("geocode %q: %w: %s", query, ErrUnexpectedStatus, resp.Status())
	}
	if len(out.Data) == 0 {
		return Location{}, fmt.Errorf("geocode %q: %w", query, ErrNoLocation)
	}

	first := out.Data[0]
	loc := Location{Latitude: first.Latitude, Longitude: first.Longitude, Locality: first.Locality}
	if loc.Locality == "" {
		loc.Locality = first.Label
	}
	return loc, nil
}
