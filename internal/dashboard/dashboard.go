// Package dashboard orchestrates the client-side session: resolving a
// location, fetching the merged weather snapshot, and keeping the favorites
// registry in sync.
package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"weatherdash/internal/favorites"
	"weatherdash/internal/location"
	"weatherdash/internal/weather"
)

// WeatherFetcher produces a snapshot for a location reference.
type WeatherFetcher interface {
	FetchWeather(ctx context.Context, ref weather.LocationRef) (*weather.Snapshot, error)
}

// Dashboard holds the display state for one signed-in session. Overlapping
// fetches may complete in any order; each carries a sequence number assigned
// at initiation, and only the highest-numbered result is committed, so the
// most recently initiated request wins the display.
type Dashboard struct {
	resolver *location.Resolver
	fetcher  WeatherFetcher
	registry *favorites.Registry
	log      zerolog.Logger

	seq atomic.Uint64

	mu      sync.Mutex
	highest uint64
	current *weather.Snapshot
}

func New(resolver *location.Resolver, fetcher WeatherFetcher, registry *favorites.Registry, log zerolog.Logger) *Dashboard {
	return &Dashboard{
		resolver: resolver,
		fetcher:  fetcher,
		registry: registry,
		log:      log,
	}
}

// StartSession loads the user's favorites and shows weather for the resolved
// location: device coordinates when geolocation succeeds within its timeout,
// the fallback city otherwise. A favorites load failure is absorbed by the
// registry and does not block the session.
func (d *Dashboard) StartSession(ctx context.Context, userID uuid.UUID) error {
	d.registry.Load(ctx, userID)
	ref := d.resolver.Resolve(ctx)
	return d.refresh(ctx, ref)
}

// Search shows weather for an explicitly searched city, which takes
// precedence over geolocation for this request.
func (d *Dashboard) Search(ctx context.Context, city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return errors.New("search term must not be empty")
	}
	return d.refresh(ctx, weather.LocationRef{City: city})
}

func (d *Dashboard) refresh(ctx context.Context, ref weather.LocationRef) error {
	n := d.seq.Add(1)

	snap, err := d.fetcher.FetchWeather(ctx, ref)
	if err != nil {
		// The previously displayed snapshot, if any, stays.
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if n < d.highest {
		d.log.Debug().Uint64("seq", n).Uint64("highest", d.highest).Msg("discarding stale aggregation result")
		return nil
	}
	d.highest = n
	d.current = snap
	return nil
}

// Current returns the displayed snapshot, nil when none has loaded yet.
func (d *Dashboard) Current() *weather.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// AddFavorite saves the currently displayed location as a favorite.
func (d *Dashboard) AddFavorite(ctx context.Context, userID uuid.UUID) (favorites.AddOutcome, error) {
	snap := d.Current()
	if snap == nil {
		return favorites.OutcomeFailed, errors.New("no weather loaded yet")
	}
	return d.registry.Add(ctx, userID, snap)
}

// LoadFavorites refreshes the registry cache from the server. A failure
// degrades to an empty list.
func (d *Dashboard) LoadFavorites(ctx context.Context, userID uuid.UUID) []favorites.Entry {
	return d.registry.Load(ctx, userID)
}

// Favorites returns the cached favorites in insertion order.
func (d *Dashboard) Favorites() []favorites.Entry {
	return d.registry.Entries()
}
