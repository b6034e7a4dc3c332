package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/joho/godotenv"

	"github.com/pasos-retail/api/internal/cache"
	"github.com/pasos-retail/api/internal/config"
	"github.com/pasos-retail/api/internal/database"
	"github.com/pasos-retail/api/internal/router"
	"github.com/pasos-retail/api/internal/service"
	"github.com/pasos-retail/api/internal/weborders"
	"github.com/pasos-retail/api/internal/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	ctx := context.Background()

	if err := database.Migrate(migrateURL(cfg.DatabaseURL)); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	store, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer store.Close()
	log.Println("Connected to database")

	var resumeCache cache.ResumeCache = cache.NoopResumeCache{}
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisResumeCache(cfg.RedisAddr, cfg.RedisPassword, 0)
		if err := redisCache.Ping(ctx); err != nil {
			log.Fatalf("Unable to ping redis: %v", err)
		}
		defer redisCache.Close()
		resumeCache = redisCache
		log.Println("Connected to redis")
	} else {
		log.Println("REDIS_ADDR not set, resume caching disabled")
	}

	var webOrders service.WebOrderSource
	if cfg.WebOrdersURL != "" {
		webOrders = weborders.NewClient(cfg.WebOrdersURL, cfg.WebOrdersAPIKey)
		log.Printf("Mirroring web orders from %s", cfg.WebOrdersURL)
	}

	summarySvc := service.NewSummaryService(store, webOrders, resumeCache)

	hub := ws.NewHub()
	go hub.Run()

	r := router.New(cfg, store, summarySvc, hub)

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal(err)
	}
}

// migrateURL rewrites the connection URL for golang-migrate's pgx/v5 driver.
func migrateURL(databaseURL string) string {
	if strings.HasPrefix(databaseURL, "postgres://") {
		return "pgx5://" + strings.TrimPrefix(databaseURL, "postgres://")
	}
	return databaseURL
}
