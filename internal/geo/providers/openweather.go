package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/i474232898/user-geo-service/internal/geo"
)

// OpenWeatherGeocoder resolves a postal code to coordinates using the
// OpenWeatherMap zip geocoding endpoint.
type OpenWeatherGeocoder struct {
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherGeocoder(client *http.Client, apiKey string) *OpenWeatherGeocoder {
	return &OpenWeatherGeocoder{
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/geo/1.0/zip",
		client:  client,
		circuit: newBreaker("openweather-geocoding"),
	}
}

func (g *OpenWeatherGeocoder) GeocodeZip(ctx context.Context, zipCode, country string) (geo.Resolution, error) {
	if g.apiKey == "" {
		return geo.Resolution{}, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("zip", fmt.Sprintf("%s,%s", zipCode, country))
		values.Set("appid", g.apiKey)

		u := fmt.Sprintf("%s?%s", g.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequest(ctx, g.client, g.circuit, buildRequest)
	if err != nil {
		return geo.Resolution{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Name    string  `json:"name"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
		Country string  `json:"country"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return geo.Resolution{}, err
	}

	return geo.Resolution{
		City:    payload.Name,
		Country: payload.Country,
		Lat:     payload.Lat,
		Lon:     payload.Lon,
	}, nil
}

// CheckConnectivity reports whether the geocoding endpoint is reachable.
func (g *OpenWeatherGeocoder) CheckConnectivity(ctx context.Context) error {
	return checkReachable(ctx, g.client, g.baseURL)
}
