package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"memora-backend/internal/config"
	"memora-backend/internal/database"
	"memora-backend/internal/fsrs"
	"memora-backend/internal/handlers"
	"memora-backend/internal/middleware"
	"memora-backend/internal/repository"
	"memora-backend/internal/router"
	"memora-backend/internal/services"
	"memora-backend/internal/websocket"
	"memora-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting Memora Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Step 5: Initialize Scheduler ────
	scheduler, err := fsrs.NewScheduler(fsrs.Config{
		DesiredRetention:  cfg.DesiredRetention,
		MaximumInterval:   cfg.MaximumInterval,
		LearningThreshold: cfg.LearningSteps,
		EnableFuzzing:     cfg.EnableFuzzing,
	})
	if err != nil {
		log.Fatalf("✗ Scheduler initialization failed: %v", err)
	}
	log.Printf("✓ Scheduler ready (retention %.2f, max interval %d days)", cfg.DesiredRetention, cfg.MaximumInterval)

	// ──── Initialize Repositories ────
	itemRepo := repository.NewItemRepo(pool)
	schedulerRepo := repository.NewSchedulerRepo(pool)
	quizRepo := repository.NewQuizRepo(pool)
	progressRepo := repository.NewProgressRepo(pool)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	eventService := services.NewEventService(redisClients.PubSub, redisClients.Queue)
	reviewService := services.NewReviewService(itemRepo, schedulerRepo, scheduler, eventService)
	quizService := services.NewQuizService(itemRepo, quizRepo, reviewService, eventService)
	progressService := services.NewProgressService(progressRepo, redisClients.Queue, eventService)

	// ──── Initialize Handlers ────
	itemHandler := handlers.NewItemHandler(itemRepo)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	quizHandler := handlers.NewQuizHandler(quizService)
	progressHandler := handlers.NewProgressHandler(progressService)

	// ──── Step 6: Start Progress Worker Pool ────
	workerPool := worker.NewPool(redisClients.Queue, progressService, cfg.WorkerCount)
	workerPool.Start()
	log.Printf("✓ Worker pool started (%d goroutines)", cfg.WorkerCount)

	// ──── Step 7: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret)
	log.Println("✓ WebSocket hub started")

	// ──── Step 8: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		itemHandler,
		reviewHandler,
		quizHandler,
		progressHandler,
		wsHub,
		redisClients.Queue,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Memora Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
