// Package httpapi wires the HTTP handlers into the Fiber app.
package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"weatherdash/internal/auth"
	"weatherdash/internal/favorites"
	"weatherdash/internal/store"
	"weatherdash/internal/weather"
)

var validate = validator.New()

const aggregateTimeout = 25 * time.Second

// Aggregator produces a snapshot for a location reference.
type Aggregator interface {
	Aggregate(ctx context.Context, ref weather.LocationRef) (*weather.Snapshot, error)
}

// Deps bundles everything the handlers need.
type Deps struct {
	Auth       *auth.Service
	Tokens     *auth.TokenIssuer
	Favorites  *favorites.Service
	Aggregator Aggregator
	Snapshots  *store.SnapshotCache
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	v1.Post("/auth/register", registerHandler(deps))
	v1.Post("/auth/login", loginHandler(deps))

	v1.Get("/weather", weatherHandler(deps))

	fav := v1.Group("/favorites", auth.Middleware(deps.Tokens))
	fav.Post("/", addFavoriteHandler(deps))
	fav.Get("/", listFavoritesHandler(deps))
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func registerHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		user, err := deps.Auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrEmailTaken) {
				return fiber.NewError(fiber.StatusConflict, "user already exists")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to register user")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": user.ID})
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func loginHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		token, err := deps.Auth.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrUserNotFound):
				return fiber.NewError(fiber.StatusNotFound, "user not found")
			case errors.Is(err, auth.ErrInvalidCredentials):
				return fiber.NewError(fiber.StatusUnauthorized, "invalid password")
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "failed to log in")
			}
		}

		return c.JSON(fiber.Map{"accessToken": token})
	}
}

func weatherHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ref, err := parseLocationRef(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), aggregateTimeout)
		defer cancel()

		snap, err := deps.Aggregator.Aggregate(ctx, ref)
		if err != nil {
			// Mandatory-source failure: no snapshot, never a partial one.
			return fiber.NewError(fiber.StatusNotFound, "no weather data for requested location")
		}

		return c.JSON(snap)
	}
}

// parseLocationRef accepts either ?city= or ?lat=&lon=.
func parseLocationRef(c *fiber.Ctx) (weather.LocationRef, error) {
	city := c.Query("city")
	latStr := c.Query("lat")
	lonStr := c.Query("lon")

	if city != "" {
		return weather.LocationRef{City: city}, nil
	}
	if latStr == "" || lonStr == "" {
		return weather.LocationRef{}, errors.New("either city or lat and lon query parameters are required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return weather.LocationRef{}, errors.New("invalid lat value")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return weather.LocationRef{}, errors.New("invalid lon value")
	}

	return weather.LocationRef{Coords: &weather.Coordinates{Lat: lat, Lon: lon}}, nil
}

type addFavoriteRequest struct {
	City string `json:"city" validate:"required"`
}

func addFavoriteHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident, ok := auth.IdentityFromCtx(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "no identity")
		}

		var req addFavoriteRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		fav, err := deps.Favorites.Add(c.UserContext(), ident.UserID, req.City)
		if err != nil {
			switch {
			case errors.Is(err, favorites.ErrAlreadyFavorite):
				return fiber.NewError(fiber.StatusConflict, "city is already a favorite")
			case errors.Is(err, favorites.ErrEmptyCity):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "failed to add favorite")
			}
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":   fav.ID,
			"city": fav.City,
		})
	}
}

// favoriteResponse is one favorites-list entry, enriched with the last
// refreshed current conditions when the cache has them.
type favoriteResponse struct {
	ID      string                     `json:"id"`
	City    string                     `json:"city"`
	Current *weather.CurrentConditions `json:"current,omitempty"`
}

func listFavoritesHandler(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident, ok := auth.IdentityFromCtx(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "no identity")
		}

		favs, err := deps.Favorites.List(c.UserContext(), ident.UserID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch favorites")
		}

		out := make([]favoriteResponse, 0, len(favs))
		for _, f := range favs {
			entry := favoriteResponse{ID: f.ID.String(), City: f.City}
			if deps.Snapshots != nil {
				if snap, ok := deps.Snapshots.Latest(f.City); ok {
					current := snap.Current
					entry.Current = &current
				}
			}
			out = append(out, entry)
		}

		return c.JSON(fiber.Map{"favorites": out})
	}
}
