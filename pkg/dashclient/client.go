// Package dashclient is the HTTP client for the weatherdash API, used by the
// dashctl CLI and anything else driving a session remotely.
package dashclient

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"weatherdash/internal/favorites"
	"weatherdash/internal/weather"
)

// apiError mirrors the server's error envelope.
type apiError struct {
	Message string `json:"message"`
}

// Client talks to a weatherdash server. It implements favorites.API and the
// dashboard's WeatherFetcher, so a Dashboard can run entirely against a
// remote server.
type Client struct {
	http *resty.Client
}

func New(baseURL string) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second)
	return &Client{http: rc}
}

// SetToken attaches a bearer token to every subsequent request.
func (c *Client) SetToken(token string) {
	c.http.SetAuthToken(token)
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"name": name, "email": email, "password": password}).
		SetError(&apiErr).
		Post("/api/v1/auth/register")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("register failed: %s", errMessage(resp, apiErr))
	}
	return nil
}

// Login exchanges credentials for a bearer token and attaches it to the
// client.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/api/v1/auth/login")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("login failed: %s", errMessage(resp, apiErr))
	}

	c.SetToken(out.AccessToken)
	return out.AccessToken, nil
}

// FetchWeather requests the merged snapshot for ref.
func (c *Client) FetchWeather(ctx context.Context, ref weather.LocationRef) (*weather.Snapshot, error) {
	req := c.http.R().SetContext(ctx)
	if ref.Coords != nil {
		req.SetQueryParam("lat", strconv.FormatFloat(ref.Coords.Lat, 'f', -1, 64))
		req.SetQueryParam("lon", strconv.FormatFloat(ref.Coords.Lon, 'f', -1, 64))
	} else {
		req.SetQueryParam("city", ref.City)
	}

	var snap weather.Snapshot
	var apiErr apiError
	resp, err := req.SetResult(&snap).SetError(&apiErr).Get("/api/v1/weather")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("weather fetch failed: %s", errMessage(resp, apiErr))
	}
	return &snap, nil
}

// ListFavorites returns the user's favorites. Identity travels in the bearer
// token; userID is part of the registry contract but not the wire call.
func (c *Client) ListFavorites(ctx context.Context, userID uuid.UUID) ([]favorites.Entry, error) {
	var out struct {
		Favorites []struct {
			ID      string                     `json:"id"`
			City    string                     `json:"city"`
			Current *weather.CurrentConditions `json:"current"`
		} `json:"favorites"`
	}
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		Get("/api/v1/favorites")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("listing favorites failed: %s", errMessage(resp, apiErr))
	}

	entries := make([]favorites.Entry, 0, len(out.Favorites))
	for _, f := range out.Favorites {
		entries = append(entries, favorites.Entry{
			ID:      f.ID,
			City:    f.City,
			Summary: f.Current,
		})
	}
	return entries, nil
}

// AddFavorite saves a city and returns the new favorite's id. A 409 from the
// server maps to favorites.ErrAlreadyFavorite so callers can branch on it.
func (c *Client) AddFavorite(ctx context.Context, userID uuid.UUID, city string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"city": city}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/api/v1/favorites")
	if err != nil {
		return "", err
	}
	if resp.StatusCode() == http.StatusConflict {
		return "", favorites.ErrAlreadyFavorite
	}
	if resp.IsError() {
		return "", fmt.Errorf("adding favorite failed: %s", errMessage(resp, apiErr))
	}
	return out.ID, nil
}

func errMessage(resp *resty.Response, apiErr apiError) string {
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return resp.Status()
}
