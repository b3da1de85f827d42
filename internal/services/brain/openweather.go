package brain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
)

const defaultOWMBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// OWMConfig configures the OpenWeather current-conditions client.
type OWMConfig struct {
	BaseURL string
	APIKey  string
	City    string
	Timeout time.Duration
}

// OWMClient fetches current conditions for a fixed city. Calls go through
// a circuit breaker so a dead provider fails fast instead of burning the
// request timeout on every refresh.
type OWMClient struct {
	cfg     OWMConfig
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

var _ WeatherClient = (*OWMClient)(nil)

func NewOWMClient(cfg OWMConfig) *OWMClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOWMBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &OWMClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:     "openweather",
			Interval: 60 * time.Second,
			Timeout:  30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 3
			},
		}),
	}
}

// owmCurrent is the strict shape we accept from the provider. Anything
// else is a failure, never best-effort field access.
type owmCurrent struct {
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Cod int `json:"cod"`
}

// Current implements WeatherClient.
func (c *OWMClient) Current(ctx context.Context) (Observation, error) {
	res, err := c.breaker.Execute(func() (any, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		return Observation{}, err
	}
	return res.(Observation), nil
}

func (c *OWMClient) fetch(ctx context.Context) (Observation, error) {
	if c.cfg.APIKey == "" {
		return Observation{}, fmt.Errorf("missing api key")
	}

	q := url.Values{}
	q.Set("q", c.cfg.City)
	q.Set("units", "metric")
	q.Set("appid", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Observation{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Observation{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return Observation{}, fmt.Errorf("owm status %d: %s", resp.StatusCode, string(b))
	}

	var out owmCurrent
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Observation{}, fmt.Errorf("owm decode: %w", err)
	}
	if out.Cod != http.StatusOK {
		return Observation{}, fmt.Errorf("owm cod %d", out.Cod)
	}
	if len(out.Weather) == 0 {
		return Observation{}, fmt.Errorf("owm response missing weather block")
	}

	return Observation{
		Condition: out.Weather[0].Main,
		Temp:      out.Main.Temp,
		Humidity:  out.Main.Humidity,
	}, nil
}
