package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"weatherdash/internal/weather"
)

// IPGeolocator approximates the device position from its public IP address
// using the ip-api.com JSON endpoint.
type IPGeolocator struct {
	client  *http.Client
	baseURL string
}

var _ Geolocator = (*IPGeolocator)(nil)

func NewIPGeolocator(client *http.Client) *IPGeolocator {
	return &IPGeolocator{
		client:  client,
		baseURL: "http://ip-api.com/json/",
	}
}

func (g *IPGeolocator) Locate(ctx context.Context) (weather.Coordinates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL, nil)
	if err != nil {
		return weather.Coordinates{}, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return weather.Coordinates{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return weather.Coordinates{}, fmt.Errorf("geolocation request failed with status %d", resp.StatusCode)
	}

	var payload struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Coordinates{}, err
	}
	if payload.Status != "success" {
		return weather.Coordinates{}, fmt.Errorf("geolocation lookup failed: %s", payload.Message)
	}

	return weather.Coordinates{Lat: payload.Lat, Lon: payload.Lon}, nil
}
