package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"weatherdash/internal/weather"
)

// OpenWeatherProvider talks to OpenWeatherMap. It serves current conditions
// (the mandatory source), air quality and the upcoming forecast.
type OpenWeatherProvider struct {
	apiKey  string
	baseURL string
	rc      *resilientClient
}

var (
	_ weather.CurrentSource    = (*OpenWeatherProvider)(nil)
	_ weather.AirQualitySource = (*OpenWeatherProvider)(nil)
	_ weather.ForecastSource   = (*OpenWeatherProvider)(nil)
)

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5",
		rc:      newResilientClient(client, "openweather"),
	}
}

// currentPayload mirrors the /weather response.
type currentPayload struct {
	Name  string `json:"name"`
	Dt    int64  `json:"dt"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

func (p *OpenWeatherProvider) CurrentByCoords(ctx context.Context, c weather.Coordinates) (weather.CurrentObservation, error) {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", c.Lat))
	values.Set("lon", fmt.Sprintf("%f", c.Lon))
	return p.fetchCurrent(ctx, values)
}

func (p *OpenWeatherProvider) CurrentByCity(ctx context.Context, city string) (weather.CurrentObservation, error) {
	values := url.Values{}
	values.Set("q", city)
	return p.fetchCurrent(ctx, values)
}

func (p *OpenWeatherProvider) fetchCurrent(ctx context.Context, values url.Values) (weather.CurrentObservation, error) {
	if p.apiKey == "" {
		return weather.CurrentObservation{}, fmt.Errorf("openweather api key is not configured")
	}

	values.Set("appid", p.apiKey)
	values.Set("units", "metric")

	var payload currentPayload
	u := fmt.Sprintf("%s/weather?%s", p.baseURL, values.Encode())
	if err := p.rc.getJSON(ctx, u, &payload); err != nil {
		return weather.CurrentObservation{}, err
	}

	ts := time.Unix(payload.Dt, 0).UTC()
	if payload.Dt == 0 {
		ts = time.Now().UTC()
	}

	cond := weather.ConditionUnknown
	desc := ""
	if len(payload.Weather) > 0 {
		cond = mapOpenWeatherCondition(payload.Weather[0].Main)
		desc = payload.Weather[0].Description
	}

	return weather.CurrentObservation{
		City: payload.Name,
		Coordinates: weather.Coordinates{
			Lat: payload.Coord.Lat,
			Lon: payload.Coord.Lon,
		},
		Conditions: weather.CurrentConditions{
			TemperatureC: payload.Main.Temp,
			FeelsLikeC:   payload.Main.FeelsLike,
			HumidityPct:  payload.Main.Humidity,
			PressureHpa:  payload.Main.Pressure,
			WindSpeedMS:  payload.Wind.Speed,
			Condition:    cond,
			Description:  desc,
			ObservedAt:   ts,
		},
	}, nil
}

func (p *OpenWeatherProvider) AirQuality(ctx context.Context, c weather.Coordinates) (*weather.AirQualityReading, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("lat", fmt.Sprintf("%f", c.Lat))
	values.Set("lon", fmt.Sprintf("%f", c.Lon))

	var payload struct {
		List []struct {
			Main struct {
				AQI int `json:"aqi"`
			} `json:"main"`
			Components struct {
				PM25  float64 `json:"pm2_5"`
				PM10  float64 `json:"pm10"`
				Ozone float64 `json:"o3"`
				NO2   float64 `json:"no2"`
			} `json:"components"`
		} `json:"list"`
	}

	u := fmt.Sprintf("%s/air_pollution?%s", p.baseURL, values.Encode())
	if err := p.rc.getJSON(ctx, u, &payload); err != nil {
		return nil, err
	}
	if len(payload.List) == 0 {
		return nil, fmt.Errorf("air pollution response contained no readings")
	}

	first := payload.List[0]
	return &weather.AirQualityReading{
		Index: first.Main.AQI,
		PM25:  first.Components.PM25,
		PM10:  first.Components.PM10,
		Ozone: first.Components.Ozone,
		NO2:   first.Components.NO2,
	}, nil
}

func (p *OpenWeatherProvider) Forecast(ctx context.Context, c weather.Coordinates) ([]weather.ForecastPeriod, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")
	values.Set("lat", fmt.Sprintf("%f", c.Lat))
	values.Set("lon", fmt.Sprintf("%f", c.Lon))

	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp float64 `json:"temp"`
			} `json:"main"`
			Weather []struct {
				Main string `json:"main"`
			} `json:"weather"`
		} `json:"list"`
	}

	u := fmt.Sprintf("%s/forecast?%s", p.baseURL, values.Encode())
	if err := p.rc.getJSON(ctx, u, &payload); err != nil {
		return nil, err
	}
	if len(payload.List) == 0 {
		return nil, fmt.Errorf("forecast response contained no periods")
	}

	periods := make([]weather.ForecastPeriod, 0, len(payload.List))
	for _, item := range payload.List {
		cond := weather.ConditionUnknown
		if len(item.Weather) > 0 {
			cond = mapOpenWeatherCondition(item.Weather[0].Main)
		}
		periods = append(periods, weather.ForecastPeriod{
			At:           time.Unix(item.Dt, 0).UTC(),
			TemperatureC: item.Main.Temp,
			Condition:    cond,
		})
	}
	return periods, nil
}

func mapOpenWeatherCondition(main string) weather.Condition {
	switch main {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionCloudy
	case "Rain", "Drizzle":
		return weather.ConditionRain
	case "Snow":
		return weather.ConditionSnow
	case "Thunderstorm":
		return weather.ConditionStorm
	case "Mist", "Fog", "Haze":
		return weather.ConditionMist
	default:
		return weather.ConditionUnknown
	}
}
