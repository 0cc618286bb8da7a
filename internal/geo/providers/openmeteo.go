package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"
)

// OpenMeteoTimezone resolves the IANA timezone for a coordinate pair via the
// Open-Meteo forecast endpoint with timezone=auto. Open-Meteo requires no API
// key, so it serves as the timezone source when no WeatherAPI key is set.
type OpenMeteoTimezone struct {
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoTimezone(client *http.Client) *OpenMeteoTimezone {
	return &OpenMeteoTimezone{
		baseURL: "https://api.open-meteo.com/v1/forecast",
		client:  client,
		circuit: newBreaker("openmeteo-timezone"),
	}
}

func (t *OpenMeteoTimezone) TimezoneAt(ctx context.Context, lat, lon float64) (string, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", lat))
		values.Set("longitude", fmt.Sprintf("%f", lon))
		values.Set("timezone", "auto")

		u := fmt.Sprintf("%s?%s", t.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, t.client, t.circuit, buildRequest)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var payload struct {
		Timezone string `json:"timezone"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}

	if payload.Timezone == "" {
		return "", fmt.Errorf("open-meteo response is missing timezone")
	}
	return payload.Timezone, nil
}

// CheckConnectivity reports whether the forecast endpoint is reachable.
func (t *OpenMeteoTimezone) CheckConnectivity(ctx context.Context) error {
	return checkReachable(ctx, t.client, t.baseURL)
}
