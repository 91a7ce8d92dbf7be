// Package location decides which place a weather request is for: device
// coordinates when geolocation succeeds, a fixed fallback city otherwise.
package location

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"weatherdash/internal/weather"
)

// Geolocator reports the device's current coordinates.
type Geolocator interface {
	Locate(ctx context.Context) (weather.Coordinates, error)
}

// Resolver produces the location reference handed to the aggregator at
// session start. The geolocation attempt is bounded by a timeout so that an
// unresponsive provider cannot block the fallback branch.
type Resolver struct {
	geo          Geolocator
	fallbackCity string
	timeout      time.Duration
	log          zerolog.Logger
}

func NewResolver(geo Geolocator, fallbackCity string, timeout time.Duration, log zerolog.Logger) *Resolver {
	return &Resolver{
		geo:          geo,
		fallbackCity: fallbackCity,
		timeout:      timeout,
		log:          log,
	}
}

// Resolve attempts geolocation and falls back to the configured city on any
// failure, including the timeout elapsing.
func (r *Resolver) Resolve(ctx context.Context) weather.LocationRef {
	if r.geo == nil {
		return weather.LocationRef{City: r.fallbackCity}
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	coords, err := r.geo.Locate(ctx)
	if err != nil {
		r.log.Debug().Err(err).Str("fallback", r.fallbackCity).Msg("geolocation failed; using fallback city")
		return weather.LocationRef{City: r.fallbackCity}
	}

	return weather.LocationRef{Coords: &coords}
}
