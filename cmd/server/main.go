package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adeolu/swiftride/internal/cache"
	"github.com/adeolu/swiftride/internal/config"
	"github.com/adeolu/swiftride/internal/database"
	"github.com/adeolu/swiftride/internal/geo"
	"github.com/adeolu/swiftride/internal/handler"
	"github.com/adeolu/swiftride/internal/middleware"
	"github.com/adeolu/swiftride/internal/repository"
	"github.com/adeolu/swiftride/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// New Relic is optional; the middleware tolerates a nil application.
	var nrApp *newrelic.Application
	if cfg.NewRelicEnabled && cfg.NewRelicLicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelicAppName),
			newrelic.ConfigLicense(cfg.NewRelicLicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigInfoLogger(os.Stdout),
		)
		if err != nil {
			log.Printf("Warning: failed to initialize New Relic: %v", err)
		} else if err := nrApp.WaitForConnection(10 * time.Second); err != nil {
			log.Printf("Warning: New Relic connection timeout: %v", err)
		} else {
			log.Println("New Relic connected")
		}
	}

	db, err := database.NewPostgres(
		cfg.DatabaseURL,
		cfg.DBMaxConnections,
		cfg.DBMaxIdleConnections,
	)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	redis, err := database.NewRedis(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()
	log.Println("Connected to Redis")

	rideCache := cache.NewRideCache(redis.Client, cfg.GeocodeCacheTTL)

	userRepo := repository.NewUserRepository(db.DB)
	driverRepo := repository.NewDriverRepository(db.DB)
	vehicleRepo := repository.NewVehicleRepository(db.DB)
	rideRepo := repository.NewRideRepository(db.DB)

	// Without a maps API key the resolver runs on fallback regions and
	// haversine estimates alone.
	var geocoder geo.Geocoder
	if cfg.MapsAPIKey != "" {
		geocoder, err = geo.NewGoogleGeocoder(cfg.MapsAPIKey)
		if err != nil {
			log.Fatalf("Failed to initialize geocoder: %v", err)
		}
	} else {
		log.Println("MAPS_API_KEY not set, resolving locations from fallback regions only")
	}
	resolver := geo.NewResolver(geocoder, rideCache, cfg)

	pricingService := service.NewPricingService(cfg)
	assignmentService := service.NewAssignmentService(db.DB, rideRepo, driverRepo, vehicleRepo, rideCache)
	rideService := service.NewRideService(rideRepo, userRepo, driverRepo, resolver, pricingService, assignmentService, rideCache)
	driverService := service.NewDriverService(driverRepo, vehicleRepo, rideRepo)

	userHandler := handler.NewUserHandler(userRepo, rideService)
	rideHandler := handler.NewRideHandler(rideService, assignmentService)
	driverHandler := handler.NewDriverHandler(driverService, rideService)
	adminHandler := handler.NewAdminHandler(driverService, assignmentService, vehicleRepo)

	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if nrApp != nil {
		r.Use(middleware.NewRelic(nrApp))
	}

	rateLimiter := middleware.NewRateLimiter(redis.Client, 100, time.Minute)
	r.Use(rateLimiter.Handler)

	idempotency := middleware.NewIdempotency(redis.Client)
	r.Use(idempotency.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := db.Health(ctx); err != nil {
			http.Error(w, "database unhealthy", http.StatusServiceUnavailable)
			return
		}
		if err := redis.Health(ctx); err != nil {
			http.Error(w, "redis unhealthy", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","services":{"database":"up","redis":"up"}}`))
	})

	r.Route("/v1", func(r chi.Router) {
		userHandler.RegisterRoutes(r)
		rideHandler.RegisterRoutes(r)
		driverHandler.RegisterRoutes(r)
		adminHandler.RegisterRoutes(r)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Server starting on port %s", cfg.Port)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped gracefully")
}
