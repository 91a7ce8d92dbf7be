package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherdash/internal/auth"
	"weatherdash/internal/favorites"
	"weatherdash/internal/store"
	"weatherdash/internal/weather"
)

type stubAggregator struct {
	snap *weather.Snapshot
	err  error
}

func (s *stubAggregator) Aggregate(context.Context, weather.LocationRef) (*weather.Snapshot, error) {
	return s.snap, s.err
}

func newTestApp(agg Aggregator, snapshots *store.SnapshotCache) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": true, "message": err.Error()})
		},
	})

	mem := store.NewMemoryStore()
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)

	RegisterRoutes(app, Deps{
		Auth:       auth.NewService(mem, tokens, zerolog.Nop()),
		Tokens:     tokens,
		Favorites:  favorites.NewService(mem, zerolog.Nop()),
		Aggregator: agg,
		Snapshots:  snapshots,
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func registerAndLogin(t *testing.T, app *fiber.App) string {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"name": "Asha", "email": "asha@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"email": "asha@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		AccessToken string `json:"accessToken"`
	}
	decodeBody(t, resp, &out)
	require.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(&stubAggregator{}, nil)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"name": "Asha", "email": "not-an-email", "password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	app := newTestApp(&stubAggregator{}, nil)

	body := fiber.Map{"name": "Asha", "email": "asha@example.com", "password": "secret123"}
	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestFavoritesFlow(t *testing.T) {
	app := newTestApp(&stubAggregator{}, nil)
	token := registerAndLogin(t, app)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/favorites/", token, fiber.Map{"city": "Paris"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID   string `json:"id"`
		City string `json:"city"`
	}
	decodeBody(t, resp, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Paris", created.City)

	// Same city in different case must conflict.
	resp = doJSON(t, app, http.MethodPost, "/api/v1/favorites/", token, fiber.Map{"city": "paris"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/favorites/", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Favorites []struct {
			ID   string `json:"id"`
			City string `json:"city"`
		} `json:"favorites"`
	}
	decodeBody(t, resp, &list)
	require.Len(t, list.Favorites, 1)
	assert.Equal(t, "Paris", list.Favorites[0].City)
}

func TestFavoritesListIncludesRefreshedSummary(t *testing.T) {
	snapshots := store.NewSnapshotCache(time.Hour)
	snapshots.Put("Paris", &weather.Snapshot{
		LocationName: "Paris",
		Current:      weather.CurrentConditions{TemperatureC: 18.5, Condition: weather.ConditionCloudy},
	})

	app := newTestApp(&stubAggregator{}, snapshots)
	token := registerAndLogin(t, app)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/favorites/", token, fiber.Map{"city": "Paris"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/favorites/", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Favorites []struct {
			City    string                     `json:"city"`
			Current *weather.CurrentConditions `json:"current"`
		} `json:"favorites"`
	}
	decodeBody(t, resp, &list)
	require.Len(t, list.Favorites, 1)
	require.NotNil(t, list.Favorites[0].Current)
	assert.Equal(t, 18.5, list.Favorites[0].Current.TemperatureC)
}

func TestFavoritesRequireAuthentication(t *testing.T) {
	app := newTestApp(&stubAggregator{}, nil)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/favorites/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/favorites/", "not-a-jwt", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestWeatherEndpoint(t *testing.T) {
	snap := &weather.Snapshot{
		LocationName: "New Delhi",
		Current:      weather.CurrentConditions{TemperatureC: 31},
	}
	app := newTestApp(&stubAggregator{snap: snap}, nil)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/weather?city=New+Delhi", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got weather.Snapshot
	decodeBody(t, resp, &got)
	assert.Equal(t, "New Delhi", got.LocationName)
}

func TestWeatherEndpointMandatoryFailure(t *testing.T) {
	app := newTestApp(&stubAggregator{err: errors.New("current conditions: upstream down")}, nil)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/weather?city=Nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWeatherEndpointQueryValidation(t *testing.T) {
	app := newTestApp(&stubAggregator{}, nil)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/weather", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/weather?lat=48.8", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/weather?lat=abc&lon=2.3", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
