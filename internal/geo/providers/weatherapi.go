package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"
)

// WeatherAPITimezone looks up the IANA timezone for a coordinate pair via the
// WeatherAPI.com current-conditions endpoint, which reports the zone as
// location.tz_id.
type WeatherAPITimezone struct {
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPITimezone(client *http.Client, apiKey string) *WeatherAPITimezone {
	return &WeatherAPITimezone{
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/current.json",
		client:  client,
		circuit: newBreaker("weatherapi-timezone"),
	}
}

func (t *WeatherAPITimezone) TimezoneAt(ctx context.Context, lat, lon float64) (string, error) {
	if t.apiKey == "" {
		return "", fmt.Errorf("weatherapi api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", t.apiKey)
		values.Set("q", fmt.Sprintf("%f,%f", lat, lon))

		u := fmt.Sprintf("%s?%s", t.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, t.client, t.circuit, buildRequest)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var payload struct {
		Location struct {
			TzID string `json:"tz_id"`
		} `json:"location"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}

	if payload.Location.TzID == "" {
		return "", fmt.Errorf("weatherapi response is missing tz_id")
	}
	return payload.Location.TzID, nil
}

// CheckConnectivity reports whether the weather endpoint is reachable.
func (t *WeatherAPITimezone) CheckConnectivity(ctx context.Context) error {
	return checkReachable(ctx, t.client, t.baseURL)
}
