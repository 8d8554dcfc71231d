package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/atollhop/ops-api/cache"
	"github.com/atollhop/ops-api/handlers"
	"github.com/atollhop/ops-api/repository"
	"github.com/atollhop/ops-api/schedule"
)

// lookups bundles the island and direct-route resolvers the raw-schedule
// builder needs.
type lookups struct {
	islands *repository.IslandRepository
	routes  *repository.RouteRepository
}

func (l *lookups) FindIslandID(ctx context.Context, name string) (*int64, error) {
	return l.islands.FindIslandID(ctx, name)
}

func (l *lookups) FindDirectRouteID(ctx context.Context, origin, destination string) (*int64, error) {
	return l.routes.FindDirectRouteID(ctx, origin, destination)
}

func main() {
	// Load base .env first, then .env.local (which overrides for local development)
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	ctx := context.Background()
	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()
	log.Println("Database connection established")

	scheduleRepo := repository.NewScheduleRepository(pool)
	routeRepo := repository.NewRouteRepository(pool)
	islandRepo := repository.NewIslandRepository(pool)

	var builderLookups schedule.Lookups = &lookups{islands: islandRepo, routes: routeRepo}

	// Optional Redis cache in front of the builder's lookups
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		ttl := 10 * time.Minute
		if v := os.Getenv("REDIS_CACHE_TTL"); v != "" {
			if parsed, err := time.ParseDuration(v); err == nil {
				ttl = parsed
			}
		}
		db := 0
		if v := os.Getenv("REDIS_DB"); v != "" {
			db, _ = strconv.Atoi(v)
		}
		cached, err := cache.NewLookupCache(addr, os.Getenv("REDIS_PASSWORD"), db, ttl, builderLookups)
		if err != nil {
			log.Printf("Redis cache disabled: %v", err)
		} else {
			defer cached.Close()
			builderLookups = cached
			log.Printf("Redis lookup cache enabled at %s", addr)
		}
	}

	scheduleHandler := handlers.NewScheduleHandler(scheduleRepo, builderLookups)
	routeHandler := handlers.NewRouteHandler(routeRepo)
	islandHandler := handlers.NewIslandHandler(islandRepo)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{getEnv("CORS_ORIGIN", "http://localhost:3000")},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Health check endpoint with database connectivity test
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := pool.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":    "error",
				"database":  "disconnected",
				"timestamp": time.Now().UTC(),
				"error":     err.Error(),
			})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "ok",
			"database":  "connected",
			"timestamp": time.Now().UTC(),
		})
	})

	// Schedule endpoints
	r.Post("/api/schedules/batch", scheduleHandler.BatchInsert)
	r.Post("/api/schedules/preview", scheduleHandler.Preview)
	r.Get("/api/schedules", scheduleHandler.List)

	// Route endpoints
	r.Post("/api/routes", routeHandler.Search)
	r.Post("/api/routes/add", routeHandler.Add)

	// Island and dropdown endpoints
	r.Get("/api/islands", islandHandler.Search)
	r.Get("/api/locations", islandHandler.Locations)
	r.Get("/api/transport-types", islandHandler.TransportTypes)

	// Static file serving (if configured)
	if staticDir := os.Getenv("STATIC_DIR"); staticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(staticDir)))
	}

	port := getEnv("PORT", "8080")

	log.Printf("Ops API starting on :%s", port)
	log.Println("Schedule endpoints:")
	log.Println("  POST /api/schedules/batch")
	log.Println("  POST /api/schedules/preview")
	log.Println("  GET  /api/schedules")
	log.Println("Route endpoints:")
	log.Println("  POST /api/routes")
	log.Println("  POST /api/routes/add")
	log.Println("Lookup endpoints:")
	log.Println("  GET  /api/islands")
	log.Println("  GET  /api/locations")
	log.Println("  GET  /api/transport-types")
	log.Println("Health:")
	log.Println("  GET  /health (with database check)")

	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
