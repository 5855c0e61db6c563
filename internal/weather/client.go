// Package weather fetches and models the forecast shown by the kiosk.
package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

var ErrUnexpectedStatus = errors.New("weather: unexpected response status")

const (
	DefaultBaseURL          = "http://api.openweathermap.org/data/2.5/onecall"
	DefaultGeocodingBaseURL = "http://api.positionstack.com/v1/forward"
)

// Location is where the forecast is fetched for.
type Location struct {
	Latitude  float64
	Longitude float64
	Locality  string
}

type ClientOptions struct {
	BaseURL string
	Token   string
	Units   string
	Exclude []string
	Timeout time.Duration
}

// Client calls the One Call endpoint.
type Client struct {
	http     *resty.Client
	opts     ClientOptions
	location Location
	logger   *slog.Logger
}

func NewClient(opts ClientOptions, loc Location, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Units == "" {
		opts.Units = "metric"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	httpClient := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: httpClient, opts: opts, location: loc, logger: logger}
}

func (c *Client) Location() Location { return c.location }

// Fetch returns the decoded payload or an error wrapping ErrUnexpectedStatus
// for any non-2xx answer.
func (c *Client) Fetch(ctx context.Context) (OneCall, error) {
	var out OneCall
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":     strconv.FormatFloat(c.location.Latitude, 'f', -1, 64),
			"lon":     strconv.FormatFloat(c.location.Longitude, 'f', -1, 64),
			"exclude": strings.Join(c.opts.Exclude, ","),
			"units":   c.opts.Units,
			"appid":   c.opts.Token,
		}).
		SetResult(&out).
		Get(c.opts.BaseURL)
	if err != nil {
		return OneCall{}, fmt.Errorf("fetch weather: %w", err)
	}
	if resp.IsError() {
		return OneCall{}, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status())
	}
	c.logger.Debug("weather fetched", "status", resp.StatusCode(), "elapsed", resp.Time(), "daily", len(out.Daily), "alerts", len(out.Alerts))
	return out, nil
}
