// dashctl is a terminal client for a weatherdash server: sign in, look up
// weather for your location or a searched city, and manage favorite cities.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"weatherdash/internal/auth"
	"weatherdash/internal/dashboard"
	"weatherdash/internal/favorites"
	"weatherdash/internal/location"
	"weatherdash/internal/weather"
	"weatherdash/pkg/dashclient"
)

var (
	serverURL  string
	token      string
	geoTimeout time.Duration
	fallback   string
)

func main() {
	root := &cobra.Command{
		Use:           "dashctl",
		Short:         "Terminal client for the weatherdash service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&serverURL, "server", getenvDefault("WEATHERDASH_SERVER", "http://localhost:8080"), "weatherdash server base URL")
	root.PersistentFlags().StringVar(&token, "token", os.Getenv("WEATHERDASH_TOKEN"), "bearer token from a previous login")
	root.PersistentFlags().DurationVar(&geoTimeout, "geo-timeout", 5*time.Second, "how long to wait for IP geolocation before falling back")
	root.PersistentFlags().StringVar(&fallback, "fallback-city", "New Delhi", "city to use when geolocation fails")

	root.AddCommand(registerCmd(), loginCmd(), weatherCmd(), favCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <name> <email> <password>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := dashclient.New(serverURL)
			if err := client.Register(cmd.Context(), args[0], args[1], args[2]); err != nil {
				return err
			}
			fmt.Println("registered; log in with: dashctl login", args[1], "<password>")
			return nil
		},
	}
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Log in and print a bearer token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := dashclient.New(serverURL)
			tok, err := client.Login(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Println(tok)
			fmt.Fprintln(os.Stderr, "export WEATHERDASH_TOKEN to use it in later commands")
			return nil
		},
	}
}

func weatherCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weather [city]",
		Short: "Show weather for your location, or for a searched city",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, userID := newDashboard()

			var err error
			if len(args) == 1 {
				err = d.Search(cmd.Context(), args[0])
			} else {
				err = d.StartSession(cmd.Context(), userID)
			}
			if err != nil {
				return err
			}

			printSnapshot(d.Current())
			return nil
		},
	}
}

func favCmd() *cobra.Command {
	fav := &cobra.Command{
		Use:   "fav",
		Short: "Manage favorite cities",
	}

	fav.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your favorite cities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, userID := newDashboard()
			entries := loadFavorites(cmd, d, userID)
			if len(entries) == 0 {
				fmt.Println("no favorites yet")
				return nil
			}
			for _, e := range entries {
				if e.Summary != nil {
					fmt.Printf("%s\t%.1f°C %s\n", e.City, e.Summary.TemperatureC, e.Summary.Condition)
				} else {
					fmt.Printf("%s\t(no recent data)\n", e.City)
				}
			}
			return nil
		},
	})

	fav.AddCommand(&cobra.Command{
		Use:   "add <city>",
		Short: "Save a city as a favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, userID := newDashboard()
			loadFavorites(cmd, d, userID)

			if err := d.Search(cmd.Context(), args[0]); err != nil {
				return err
			}

			outcome, err := d.AddFavorite(cmd.Context(), userID)
			switch outcome {
			case favorites.OutcomeAdded:
				fmt.Printf("%s added to favorites\n", d.Current().LocationName)
			case favorites.OutcomeAlreadyFavorite:
				fmt.Printf("%s is already a favorite\n", d.Current().LocationName)
			default:
				return err
			}
			return nil
		},
	})

	return fav
}

// newDashboard assembles the client-side session against the remote server.
// The user id is decoded from the bearer token the way the server put it
// there; without a token it stays zero and favorites degrade to empty.
func newDashboard() (*dashboard.Dashboard, uuid.UUID) {
	log := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)

	client := dashclient.New(serverURL)
	var userID uuid.UUID
	if token != "" {
		client.SetToken(token)
		if ident, err := auth.IdentityFromToken(token); err == nil {
			userID = ident.UserID
		}
	}

	geo := location.NewIPGeolocator(&http.Client{Timeout: geoTimeout})
	resolver := location.NewResolver(geo, fallback, geoTimeout, log)
	registry := favorites.NewRegistry(client, log)

	return dashboard.New(resolver, client, registry, log), userID
}

func loadFavorites(cmd *cobra.Command, d *dashboard.Dashboard, userID uuid.UUID) []favorites.Entry {
	return d.LoadFavorites(cmd.Context(), userID)
}

func printSnapshot(snap *weather.Snapshot) {
	if snap == nil {
		fmt.Println("no weather data")
		return
	}

	fmt.Printf("%s", snap.LocationName)
	if snap.Coordinates != nil {
		fmt.Printf(" (%.3f, %.3f)", snap.Coordinates.Lat, snap.Coordinates.Lon)
	}
	fmt.Println()
	fmt.Printf("  now:      %.1f°C (feels %.1f°C), %s, humidity %.0f%%, wind %.1f m/s\n",
		snap.Current.TemperatureC, snap.Current.FeelsLikeC, snap.Current.Condition,
		snap.Current.HumidityPct, snap.Current.WindSpeedMS)

	if snap.AirQuality != nil {
		fmt.Printf("  air:      index %d, pm2.5 %.1f, pm10 %.1f\n",
			snap.AirQuality.Index, snap.AirQuality.PM25, snap.AirQuality.PM10)
	} else {
		fmt.Println("  air:      not available")
	}

	if len(snap.Forecast) > 0 {
		p := snap.Forecast[0]
		fmt.Printf("  next:     %.1f°C, %s at %s\n", p.TemperatureC, p.Condition, p.At.Local().Format("Mon 15:04"))
	} else {
		fmt.Println("  forecast: not available")
	}

	if snap.Historical != nil {
		fmt.Printf("  yesterday: %.1f°C to %.1f°C, %s\n",
			snap.Historical.MinTempC, snap.Historical.MaxTempC, snap.Historical.Condition)
	} else {
		fmt.Println("  yesterday: not available")
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
