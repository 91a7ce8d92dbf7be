package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	httpapi "weatherdash/internal/api/http"
	"weatherdash/internal/auth"
	"weatherdash/internal/config"
	"weatherdash/internal/favorites"
	"weatherdash/internal/scheduler"
	"weatherdash/internal/store"
	"weatherdash/internal/weather"
	"weatherdash/internal/weather/providers"
)

// userStore is what the server needs from its persistence layer.
type userStore interface {
	auth.UserStore
	favorites.Store
	scheduler.CityLister
}

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("ACCESS_TOKEN_SECRET must be set")
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Persistence: Postgres when configured, in-memory otherwise.
	var db userStore
	if cfg.DatabaseURL != "" {
		pg, err := store.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open database")
		}
		defer pg.Close()
		db = pg
	} else {
		log.Warn().Msg("DATABASE_URL not set; using in-memory store")
		db = store.NewMemoryStore()
	}

	// Weather data sources: OpenWeather serves current conditions, air
	// quality and forecast; WeatherAPI serves historical data by city name.
	openWeather := providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey)
	weatherAPI := providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey)
	aggregator := weather.NewAggregator(openWeather, openWeather, openWeather, weatherAPI, log)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := auth.NewService(db, tokens, log)
	favSvc := favorites.NewService(db, log)

	// Background refresh of favorited cities feeding the list summaries.
	snapshots := store.NewSnapshotCache(cfg.SnapshotMaxAge)
	sched := scheduler.New(aggregator, db, snapshots, cfg.RefreshInterval, log)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start refresh scheduler")
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weatherdash",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weatherdash",
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Auth:       authSvc,
		Tokens:     tokens,
		Favorites:  favSvc,
		Aggregator: aggregator,
		Snapshots:  snapshots,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}
