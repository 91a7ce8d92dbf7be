package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"weatherdash/internal/common"
	"weatherdash/internal/weather"
)

// WeatherAPIProvider talks to WeatherAPI.com. It serves historical data,
// which that API looks up by city name rather than coordinates.
type WeatherAPIProvider struct {
	apiKey  string
	baseURL string
	rc      *resilientClient
}

var _ weather.HistorySource = (*WeatherAPIProvider)(nil)

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1",
		rc:      newResilientClient(client, "weatherapi"),
	}
}

// History returns yesterday's daily summary for the named city.
func (p *WeatherAPIProvider) History(ctx context.Context, city string) (*weather.HistoricalReading, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("weatherapi api key is not configured")
	}

	day := time.Now().UTC().AddDate(0, 0, -1)

	values := url.Values{}
	values.Set("key", p.apiKey)
	values.Set("q", city)
	values.Set("dt", day.Format("2006-01-02"))

	var payload struct {
		Forecast struct {
			Forecastday []struct {
				Date string `json:"date"`
				Day  struct {
					MaxTempC  float64 `json:"maxtemp_c"`
					MinTempC  float64 `json:"mintemp_c"`
					AvgTempC  float64 `json:"avgtemp_c"`
					Condition struct {
						Text string `json:"text"`
					} `json:"condition"`
				} `json:"day"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}

	u := fmt.Sprintf("%s/history.json?%s", p.baseURL, values.Encode())
	if err := p.rc.getJSON(ctx, u, &payload); err != nil {
		return nil, err
	}
	if len(payload.Forecast.Forecastday) == 0 {
		return nil, fmt.Errorf("history response contained no days")
	}

	entry := payload.Forecast.Forecastday[0]
	date, err := time.Parse("2006-01-02", entry.Date)
	if err != nil {
		date = day
	}

	return &weather.HistoricalReading{
		Date:      date.UTC(),
		MaxTempC:  entry.Day.MaxTempC,
		MinTempC:  entry.Day.MinTempC,
		AvgTempC:  entry.Day.AvgTempC,
		Condition: mapWeatherAPICondition(entry.Day.Condition.Text),
	}, nil
}

func mapWeatherAPICondition(text string) weather.Condition {
	switch {
	case text == "":
		return weather.ConditionUnknown
	case common.HasAny(text, "rain", "shower", "drizzle"):
		return weather.ConditionRain
	case common.HasAny(text, "snow", "sleet", "blizzard"):
		return weather.ConditionSnow
	case common.HasAny(text, "thunder", "storm"):
		return weather.ConditionStorm
	case common.HasAny(text, "mist", "fog"):
		return weather.ConditionMist
	case common.HasAny(text, "cloud", "overcast"):
		return weather.ConditionCloudy
	case common.HasAny(text, "sunny", "clear"):
		return weather.ConditionClear
	default:
		return weather.ConditionUnknown
	}
}
