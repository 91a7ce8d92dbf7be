// Package scheduler runs the periodic refresh of favorited cities so the
// favorites list can show an up-to-date conditions summary.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"weatherdash/internal/store"
	"weatherdash/internal/weather"
)

// Aggregator produces a snapshot for a location reference.
type Aggregator interface {
	Aggregate(ctx context.Context, ref weather.LocationRef) (*weather.Snapshot, error)
}

// CityLister enumerates the distinct favorited cities to refresh.
type CityLister interface {
	ListCities(ctx context.Context) ([]string, error)
}

// Scheduler periodically aggregates weather for every favorited city and
// stores the result in the snapshot cache.
type Scheduler struct {
	scheduler *gocron.Scheduler
	agg       Aggregator
	cities    CityLister
	cache     *store.SnapshotCache
	interval  time.Duration
	log       zerolog.Logger
}

// New creates a new Scheduler.
func New(agg Aggregator, cities CityLister, cache *store.SnapshotCache, interval time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		agg:       agg,
		cities:    cities,
		cache:     cache,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the periodic refresh job and starts the underlying
// scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.refreshAll)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) refreshAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	cities, err := s.cities.ListCities(ctx)
	cancel()
	if err != nil {
		s.log.Error().Err(err).Msg("refresh: listing favorited cities failed")
		return
	}
	if len(cities) == 0 {
		return
	}

	s.log.Debug().Int("cities", len(cities)).Msg("refresh: starting favorite weather refresh")

	var wg sync.WaitGroup
	for _, city := range cities {
		wg.Add(1)
		go func(city string) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			snap, err := s.agg.Aggregate(ctx, weather.LocationRef{City: city})
			if err != nil {
				// Keep the last good snapshot rather than overwriting it.
				s.log.Warn().Err(err).Str("city", city).Msg("refresh: fetch failed")
				return
			}
			s.cache.Put(city, snap)
		}(city)
	}
	wg.Wait()

	s.log.Debug().Msg("refresh: completed favorite weather refresh")
}
