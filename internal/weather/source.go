package weather

import (
	"context"
)

// CurrentObservation is a current-conditions response together with the
// canonical location the provider resolved the request to. Subsequent
// by-coordinate and by-name fetches use these values, not the original input.
type CurrentObservation struct {
	City        string
	Coordinates Coordinates
	Conditions  CurrentConditions
}

// CurrentSource is the mandatory data source. Aggregation fails as a whole
// when it fails.
type CurrentSource interface {
	CurrentByCoords(ctx context.Context, c Coordinates) (CurrentObservation, error)
	CurrentByCity(ctx context.Context, city string) (CurrentObservation, error)
}

// AirQualitySource fetches air quality by coordinates. Optional.
type AirQualitySource interface {
	AirQuality(ctx context.Context, c Coordinates) (*AirQualityReading, error)
}

// ForecastSource fetches an upcoming forecast by coordinates. Optional.
type ForecastSource interface {
	Forecast(ctx context.Context, c Coordinates) ([]ForecastPeriod, error)
}

// HistorySource fetches past weather by city name. Optional.
type HistorySource interface {
	History(ctx context.Context, city string) (*HistoricalReading, error)
}
