package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/tastoria/backend/config"
	"github.com/tastoria/backend/internal/database"
	"github.com/tastoria/backend/internal/middleware"
	"github.com/tastoria/backend/internal/router"
	"github.com/tastoria/backend/internal/server"
	"github.com/tastoria/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis is an accelerator, not a dependency: when it is down the cache
	// degrades to a no-op and rate limiting is disabled.
	var cache service.Cache = service.NewNoopCache()
	var redisClient *redis.Client
	if client, err := database.NewRedisClient(cfg); err != nil {
		log.Printf("[Main] redis unavailable, running without cache: %v", err)
	} else {
		redisClient = client
		cache = service.NewRedisCache(client)
	}

	recipeService := service.NewRecipeService(db, cache)
	tokenService := service.NewTokenService(cfg.JWTSecret)

	var llm service.LLMClient
	if svc, err := service.NewLLMService(cfg.LLMAPIKey, cfg.LLMAPIURL); err != nil {
		log.Printf("[Main] LLM service disabled: %v", err)
	} else {
		llm = svc
	}

	var images service.ImageGenerator
	if !cfg.ImagesDisabled {
		if s3Config, err := config.NewS3Config(context.Background(), cfg); err != nil {
			log.Printf("[Main] image storage disabled: %v", err)
		} else if svc, err := service.NewImageService(cfg.ImageAPIKey, cfg.ImageAPIURL, s3Config); err != nil {
			log.Printf("[Main] image generation disabled: %v", err)
		} else {
			images = svc
		}
	}

	ingestService := service.NewIngestService(db, llm, images)

	var limiter *middleware.RateLimiter
	if redisClient != nil {
		limiter = middleware.NewGenerationRateLimiter(redisClient)
	}

	engine := router.New(router.Deps{
		DB:              db,
		Recipes:         recipeService,
		Ingest:          ingestService,
		Validator:       tokenService,
		Images:          images,
		GenerateLimiter: limiter,
	})

	srv := server.New(engine, cfg.ServerHost+":"+cfg.ServerPort)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
