package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/verdeando/internal/backend"
	"github.com/UnknownOlympus/verdeando/internal/config"
	"github.com/UnknownOlympus/verdeando/internal/events"
	"github.com/UnknownOlympus/verdeando/internal/exchange"
	"github.com/UnknownOlympus/verdeando/internal/geocoding"
	"github.com/UnknownOlympus/verdeando/internal/location"
	"github.com/UnknownOlympus/verdeando/internal/metrics"
	"github.com/UnknownOlympus/verdeando/internal/models"
	"github.com/UnknownOlympus/verdeando/internal/news"
	"github.com/UnknownOlympus/verdeando/internal/proximity"
	"github.com/UnknownOlympus/verdeando/internal/registry"
	"github.com/UnknownOlympus/verdeando/internal/retry"
	"github.com/UnknownOlympus/verdeando/internal/rewards"
	"github.com/UnknownOlympus/verdeando/internal/service"
	"github.com/UnknownOlympus/verdeando/internal/session"
	"github.com/UnknownOlympus/verdeando/internal/station"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// healthCheck reports whether a dependency of the station is reachable.
type healthCheck func(ctx context.Context) error

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	client := backend.NewClient(backend.Config{
		BaseURL:   cfg.Backend.BaseURL,
		Timeout:   cfg.Backend.Timeout,
		RateLimit: cfg.Backend.RateLimit,
		Metrics:   appMetrics,
		Logger:    logger,
	})

	// Create geocoding provider using factory pattern based on configuration.
	geoProvider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:      geocoding.ProviderType(cfg.Geocoder.Type),
		APIKey:    cfg.Geocoder.APIKey,
		RateLimit: cfg.Geocoder.RateLimit,
		Country:   cfg.Geocoder.Country,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("Failed to create geocoding provider: %v", err)
	}
	geoProvider = geocoding.Instrument(geoProvider, cfg.Geocoder.Type, appMetrics)
	logger.InfoContext(ctx, "Geocoding provider initialized", "type", cfg.Geocoder.Type)

	store, storeHealth, closeStore, err := newSessionStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}
	defer closeStore()

	sessions := session.NewManager(client, store, logger)
	if err = startSession(ctx, sessions, cfg.Credentials, logger); err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}

	greenPoints := registry.NewStore(client, geoProvider, appMetrics, logger)
	if _, err = greenPoints.Reload(ctx); err != nil {
		// Verification reloads an empty registry on its own, so the station can start without it.
		logger.WarnContext(ctx, "Initial green point load failed", "error", err)
	}

	locator, err := newLocationProvider(cfg.Location, geoProvider, logger)
	if err != nil {
		log.Fatalf("Failed to set up location source: %v", err)
	}

	policy := retry.Policy{MaxAttempts: cfg.Verification.Attempts, Delay: cfg.Verification.Delay}
	verifier := proximity.NewVerifier(greenPoints, policy, cfg.Verification.Tolerance, appMetrics, logger)
	coordinator := exchange.NewCoordinator(client, sessions, locator, verifier, appMetrics, logger)
	feed := news.NewFeed(client, logger)
	catalog := rewards.NewService(client, sessions, logger)
	calendar := events.NewCalendar(client, logger)

	refresher := service.NewRefresher(logger, appMetrics, cfg.Refresh.Workers, cfg.Refresh.Interval,
		service.Job{Name: "registry", Run: func(ctx context.Context) error {
			_, err := greenPoints.Reload(ctx)
			return err
		}},
		service.Job{Name: "exchanges", Run: func(ctx context.Context) error {
			_, err := coordinator.List(ctx)
			return err
		}},
		service.Job{Name: "session", Run: func(ctx context.Context) error {
			_, err := sessions.Refresh(ctx)
			return err
		}},
	)

	api := station.NewServer(sessions, coordinator, greenPoints, feed, catalog, client, calendar, logger)

	// Log that the application has started.
	logger.InfoContext(ctx, "Station started. Press Ctrl+C to stop.")

	// Start the monitoring server in a goroutine to allow main to listen for signals.
	go startMonitoringServer(ctx, logger, reg, storeHealth, cfg.Port)

	go refresher.Run(ctx)

	// Serve the station API until the context is canceled (e.g., by Ctrl+C).
	if err = api.Run(ctx, cfg.APIPort); err != nil {
		logger.ErrorContext(ctx, "Station API stopped with error", "error", err)
	}

	// Log graceful shutdown completion.
	logger.InfoContext(ctx, "Station stopped gracefully.")
}

// newSessionStore opens the configured session store. It returns the store, a health check
// for the monitoring server and a function releasing its connections.
func newSessionStore(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
) (session.Store, healthCheck, func(), error) {
	switch cfg.Session.Store {
	case "redis":
		client, err := session.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.DB)
		if err != nil {
			return nil, nil, nil, err
		}
		check := func(ctx context.Context) error { return client.Ping(ctx).Err() }
		closeFn := func() { _ = client.Close() }

		return session.NewRedisStore(client, cfg.Session.Key, cfg.Session.TTL), check, closeFn, nil
	case "postgres":
		dtb, err := session.NewDatabase(
			ctx, cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
		)
		if err != nil {
			return nil, nil, nil, err
		}
		store := session.NewPostgresStore(dtb, cfg.Session.Key, log)
		if err = store.EnsureSchema(ctx); err != nil {
			dtb.Close()
			return nil, nil, nil, err
		}

		return store, dtb.Ping, dtb.Close, nil
	case "memory", "":
		return session.NewMemoryStore(), func(context.Context) error { return nil }, func() {}, nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported session store: %s", cfg.Session.Store)
	}
}

// startSession restores a persisted session or logs in with the configured credentials.
func startSession(
	ctx context.Context,
	sessions *session.Manager,
	creds config.CredentialsConfig,
	log *slog.Logger,
) error {
	err := sessions.Restore(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, session.ErrNoSession) {
		log.WarnContext(ctx, "Persisted session could not be restored", "error", err)
	}

	if creds.Email == "" {
		return errors.New("no persisted session and no credentials configured")
	}

	_, err = sessions.Login(ctx, models.Credentials{Email: creds.Email, Password: creds.Password})

	return err
}

// newLocationProvider selects where the station's position comes from.
func newLocationProvider(
	cfg config.LocationConfig,
	geoProvider geocoding.Provider,
	log *slog.Logger,
) (location.Provider, error) {
	switch cfg.Source {
	case "static":
		return location.NewStatic(models.Coordinates{Latitude: cfg.Latitude, Longitude: cfg.Longitude}), nil
	case "address":
		if cfg.Address == "" {
			return nil, errors.New("location source address requires a station address")
		}
		return location.NewAddress(geoProvider, cfg.Address, log), nil
	case "disabled":
		return location.Denied{}, nil
	default:
		return nil, fmt.Errorf("unsupported location source: %s", cfg.Source)
	}
}

// startMonitoringServer starts an HTTP server that provides health check and metrics endpoints.
// It listens on the specified port and logs the server's status and any errors encountered.
//
// Parameters:
// - ctx: A context.Context for managing cancellation and timeouts.
// - log: A logger for logging server events and errors.
// - reg: A registry with Prometheus collectors.
// - check: A health check of the session store (ping)
// - port: The port number on which the server will listen.
func startMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	check healthCheck,
	port int,
) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, _ *http.Request) {
		log.DebugContext(ctx, "Performing health checks...")
		status, body := http.StatusOK, "OK"
		if err := check(ctx); err != nil {
			status, body = http.StatusServiceUnavailable, "session store ping failed"
		}
		writer.WriteHeader(status)
		_, err := writer.Write([]byte(body))
		if err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}

		log.DebugContext(ctx, "Health checks completed", "status", status)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.InfoContext(ctx, "Starting monitoring server", "port", port)
	readTimeout := 5
	writeTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.ErrorContext(ctx, "Monitoring server failed", "error", err)
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
