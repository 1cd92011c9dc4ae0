package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/cesargomez89/yearspin/internal/catalog"
	"github.com/cesargomez89/yearspin/internal/config"
	"github.com/cesargomez89/yearspin/internal/httpapp"
	"github.com/cesargomez89/yearspin/internal/jobstore"
	"github.com/cesargomez89/yearspin/internal/logger"
	"github.com/cesargomez89/yearspin/internal/queue"
	"github.com/cesargomez89/yearspin/internal/resolver"
	"github.com/cesargomez89/yearspin/internal/sampler"
	"github.com/cesargomez89/yearspin/internal/store"
	"github.com/cesargomez89/yearspin/internal/streaming"
	"github.com/cesargomez89/yearspin/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	// Lookup cache
	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Job state
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	jobs := jobstore.New(rdb)

	// Upstream clients
	catalogClient := catalog.NewClient(cfg.CatalogURL, cfg.CatalogSiteURL, cfg.CatalogAPIToken)
	streamingClient := streaming.NewClient(cfg.StreamingURL, cfg.StreamingTokenURL, cfg.StreamingClientID, cfg.StreamingClientSecret)

	// Pipeline
	songSampler := sampler.New(streamingClient)
	songResolver := resolver.New(catalogClient, db, appLogger)
	jobWorker := worker.New(songResolver, jobs, appLogger)
	publisher := queue.NewPublisher(cfg.QueueURL, cfg.QueueToken)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := httpapp.NewHandler(songSampler, songResolver, jobs, publisher, jobWorker, rdb, cfg.QueueToken, appLogger)
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server exited")
}
