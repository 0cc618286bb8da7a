package providers

import (
	"context"
	"errors"

	"github.com/i474232898/user-geo-service/internal/geo"
)

// ZipGeocoder converts a postal code + country pair into coordinates.
type ZipGeocoder interface {
	GeocodeZip(ctx context.Context, zipCode, country string) (geo.Resolution, error)
}

// TimezoneSource reports the IANA timezone at a coordinate pair.
type TimezoneSource interface {
	TimezoneAt(ctx context.Context, lat, lon float64) (string, error)
}

// ChainResolver implements geo.Resolver by chaining a zip geocoding call with
// a coordinates-to-timezone lookup. A failure in either call surfaces as a
// single geo.ResolutionError wrapping the upstream cause; there is no partial
// result.
type ChainResolver struct {
	geocoder ZipGeocoder
	timezone TimezoneSource
}

func NewChainResolver(geocoder ZipGeocoder, timezone TimezoneSource) *ChainResolver {
	return &ChainResolver{
		geocoder: geocoder,
		timezone: timezone,
	}
}

func (r *ChainResolver) Resolve(ctx context.Context, zipCode, country string) (geo.Resolution, error) {
	res, err := r.geocoder.GeocodeZip(ctx, zipCode, country)
	if err != nil {
		return geo.Resolution{}, &geo.ResolutionError{ZipCode: zipCode, Country: country, Err: err}
	}

	tz, err := r.timezone.TimezoneAt(ctx, res.Lat, res.Lon)
	if err != nil {
		return geo.Resolution{}, &geo.ResolutionError{ZipCode: zipCode, Country: country, Err: err}
	}
	res.Timezone = tz

	if res.Country == "" {
		res.Country = country
	}
	return res, nil
}

// CheckConnectivity probes whichever chained components support it and joins
// their failures.
func (r *ChainResolver) CheckConnectivity(ctx context.Context) error {
	type checker interface {
		CheckConnectivity(ctx context.Context) error
	}

	var errs []error
	if c, ok := r.geocoder.(checker); ok {
		if err := c.CheckConnectivity(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if c, ok := r.timezone.(checker); ok {
		if err := c.CheckConnectivity(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
