package weather

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Aggregator fans out to the configured data sources and merges their results
// into one Snapshot.
type Aggregator struct {
	current  CurrentSource
	air      AirQualitySource
	forecast ForecastSource
	history  HistorySource
	log      zerolog.Logger
}

// NewAggregator creates an Aggregator. current is required; the optional
// sources may be nil, in which case the corresponding snapshot field is
// always absent.
func NewAggregator(current CurrentSource, air AirQualitySource, forecast ForecastSource, history HistorySource, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		current:  current,
		air:      air,
		forecast: forecast,
		history:  history,
		log:      log,
	}
}

// Aggregate produces a merged Snapshot for ref.
//
// The current-conditions fetch is mandatory: its failure fails the whole call
// and no snapshot is produced. The provider's response supplies the canonical
// coordinates and location name used for the optional fetches. Air quality,
// forecast and historical data are fetched concurrently; each failure degrades
// only its own field. The returned snapshot is complete when this method
// returns, so callers never observe a partial merge.
func (a *Aggregator) Aggregate(ctx context.Context, ref LocationRef) (*Snapshot, error) {
	obs, err := a.fetchCurrent(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("current conditions: %w", err)
	}

	name := obs.City
	if name == "" {
		name = ref.City
	}
	coords := obs.Coordinates

	snap := &Snapshot{
		LocationName: name,
		Coordinates:  &coords,
		Current:      obs.Conditions,
		FetchedAt:    time.Now().UTC(),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	if a.air != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			aq, err := a.air.AirQuality(ctx, coords)
			if err != nil {
				a.log.Warn().Err(err).Str("location", name).Msg("air quality fetch failed; field omitted")
				return
			}
			mu.Lock()
			snap.AirQuality = aq
			mu.Unlock()
		}()
	}

	if a.forecast != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			periods, err := a.forecast.Forecast(ctx, coords)
			if err != nil {
				a.log.Warn().Err(err).Str("location", name).Msg("forecast fetch failed; field omitted")
				return
			}
			mu.Lock()
			snap.Forecast = periods
			mu.Unlock()
		}()
	}

	if a.history != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hist, err := a.history.History(ctx, name)
			if err != nil {
				a.log.Warn().Err(err).Str("location", name).Msg("historical fetch failed; field omitted")
				return
			}
			mu.Lock()
			snap.Historical = hist
			mu.Unlock()
		}()
	}

	wg.Wait()
	return snap, nil
}

func (a *Aggregator) fetchCurrent(ctx context.Context, ref LocationRef) (CurrentObservation, error) {
	if ref.Coords != nil {
		return a.current.CurrentByCoords(ctx, *ref.Coords)
	}
	return a.current.CurrentByCity(ctx, ref.City)
}
