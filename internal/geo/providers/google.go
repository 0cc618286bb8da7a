package providers

import (
	"context"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/user-geo-service/internal/geo"
)

// GoogleGeocoder resolves postal codes through the Google Geocoding API using
// the kelvins/geocoder bindings. The library keeps its API key in a package
// global, so construct at most one of these per process.
type GoogleGeocoder struct{}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{}
}

// GeocodeZip resolves coordinates for a postal code. The library does not
// accept a context; its calls are bounded by the default transport timeout.
func (g *GoogleGeocoder) GeocodeZip(_ context.Context, zipCode, country string) (geo.Resolution, error) {
	loc, err := geocoder.Geocoding(geocoder.Address{
		PostalCode: zipCode,
		Country:    country,
	})
	if err != nil {
		return geo.Resolution{}, err
	}

	// Google does not echo a locality for plain zip lookups.
	return geo.Resolution{
		Country: country,
		Lat:     loc.Latitude,
		Lon:     loc.Longitude,
	}, nil
}
