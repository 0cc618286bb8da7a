package geo

import (
	"context"
	"fmt"
)

// Resolution is the geolocation data derived from a postal code lookup:
// the resolved locality, coordinates, and the IANA timezone at those
// coordinates.
type Resolution struct {
	City     string
	Country  string
	Lat      float64
	Lon      float64
	Timezone string
}

// Resolver converts a postal code and country into a full Resolution.
type Resolver interface {
	Resolve(ctx context.Context, zipCode, country string) (Resolution, error)
}

// ResolutionError reports a failed geolocation lookup. The upstream cause is
// preserved verbatim; a bad zip and a network failure look the same to callers.
type ResolutionError struct {
	ZipCode string
	Country string
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s,%s: %v", e.ZipCode, e.Country, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }
