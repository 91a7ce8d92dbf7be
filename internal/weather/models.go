package weather

import (
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LocationRef identifies the place to aggregate weather for: either device
// coordinates or a free-text city name. A search term always arrives as City.
type LocationRef struct {
	City   string
	Coords *Coordinates
}

// CurrentConditions holds the normalized current-weather reading for a location.
type CurrentConditions struct {
	TemperatureC float64   `json:"temperatureC"`
	FeelsLikeC   float64   `json:"feelsLikeC"`
	HumidityPct  float64   `json:"humidityPercent"`
	PressureHpa  float64   `json:"pressureHpa"`
	WindSpeedMS  float64   `json:"windSpeed"`
	Condition    Condition `json:"condition"`
	Description  string    `json:"description,omitempty"`
	ObservedAt   time.Time `json:"observedAt"` // always UTC
}

// AirQualityReading is a normalized air-quality measurement.
// Index follows the OpenWeather scale: 1 (good) through 5 (very poor).
type AirQualityReading struct {
	Index int     `json:"index"`
	PM25  float64 `json:"pm25"`
	PM10  float64 `json:"pm10"`
	Ozone float64 `json:"ozone"`
	NO2   float64 `json:"no2"`
}

// ForecastPeriod is one forecast interval. Sequences are ordered by At ascending.
type ForecastPeriod struct {
	At           time.Time `json:"at"`
	TemperatureC float64   `json:"temperatureC"`
	Condition    Condition `json:"condition"`
}

// HistoricalReading summarizes one past day of weather for a location.
type HistoricalReading struct {
	Date      time.Time `json:"date"`
	MaxTempC  float64   `json:"maxTempC"`
	MinTempC  float64   `json:"minTempC"`
	AvgTempC  float64   `json:"avgTempC"`
	Condition Condition `json:"condition"`
}

// Snapshot is the merged weather view for a location at fetch time.
//
// Current is mandatory: a Snapshot is never constructed without it. Optional
// fields are independently nil depending on their own fetch outcome and are
// rendered as "not available" by callers.
type Snapshot struct {
	LocationName string             `json:"locationName"`
	Coordinates  *Coordinates       `json:"coordinates,omitempty"`
	Current      CurrentConditions  `json:"current"`
	AirQuality   *AirQualityReading `json:"airQuality,omitempty"`
	Forecast     []ForecastPeriod   `json:"forecast,omitempty"`
	Historical   *HistoricalReading `json:"historical,omitempty"`
	FetchedAt    time.Time          `json:"fetchedAt"`
}
