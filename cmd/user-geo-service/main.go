package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jonboulle/clockwork"

	httpapi "github.com/i474232898/user-geo-service/internal/api/http"
	"github.com/i474232898/user-geo-service/internal/config"
	"github.com/i474232898/user-geo-service/internal/events"
	"github.com/i474232898/user-geo-service/internal/geo/providers"
	"github.com/i474232898/user-geo-service/internal/observability"
	"github.com/i474232898/user-geo-service/internal/scheduler"
	"github.com/i474232898/user-geo-service/internal/store"
	"github.com/i474232898/user-geo-service/internal/user"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	metrics := observability.NewMetrics()

	// Shared HTTP client for outbound resolver calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Zip geocoding: OpenWeather when its key is set, otherwise the Google
	// geocoder fallback.
	var geocoder providers.ZipGeocoder
	if cfg.OpenWeatherAPIKey != "" {
		geocoder = providers.NewOpenWeatherGeocoder(httpClient, cfg.OpenWeatherAPIKey)
	} else {
		geocoder = providers.NewGoogleGeocoder(cfg.GoogleAPIKey)
	}

	// Timezone lookup: WeatherAPI when its key is set, otherwise the keyless
	// Open-Meteo endpoint.
	var timezone providers.TimezoneSource
	if cfg.WeatherAPIKey != "" {
		timezone = providers.NewWeatherAPITimezone(httpClient, cfg.WeatherAPIKey)
	} else {
		timezone = providers.NewOpenMeteoTimezone(httpClient)
	}

	resolver := providers.NewChainResolver(geocoder, timezone)

	// Key-value gateway: Redis when configured, in-memory otherwise.
	var userStore user.Store
	if cfg.RedisAddr != "" {
		redisStore := store.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer redisStore.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisStore.Ping(pingCtx); err != nil {
			cancel()
			log.Fatalf("failed to connect to redis at %s: %v", cfg.RedisAddr, err)
		}
		cancel()
		userStore = redisStore
	} else {
		userStore = store.NewMemoryStore()
	}

	// Optional change-event publishing.
	var publisher user.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		writer := events.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer writer.Close()
		publisher = writer
	}

	svc := user.NewService(userStore, resolver, clockwork.NewRealClock(), metrics, publisher)

	// Periodic upstream connectivity probe feeding the health endpoint.
	probe := scheduler.New(resolver, cfg.ProbeInterval, metrics)
	if err := probe.Start(); err != nil {
		log.Fatalf("failed to start connectivity probe: %v", err)
	}
	defer probe.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "user-geo-service",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, svc, probe)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
