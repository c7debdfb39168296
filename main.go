// @title Jungian Journals API
// @version 1.0
// @description Content, recommendations, membership and admin dashboard API for Jungian Journals.
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @securityDefinitions.apikey AdminAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jungianjournals/journals-backend/config"
	"github.com/jungianjournals/journals-backend/db"
	"github.com/jungianjournals/journals-backend/handlers"
	"github.com/jungianjournals/journals-backend/internal/auth"
	"github.com/jungianjournals/journals-backend/internal/events"
	"github.com/jungianjournals/journals-backend/internal/payments/toss"
	"github.com/jungianjournals/journals-backend/internal/storage"
	"github.com/jungianjournals/journals-backend/internal/store/postgres"
	"github.com/jungianjournals/journals-backend/internal/websocket"
	"github.com/jungianjournals/journals-backend/logger"
	"github.com/jungianjournals/journals-backend/middleware"
	"github.com/jungianjournals/journals-backend/router"
	"github.com/jungianjournals/journals-backend/services"
	"github.com/redis/go-redis/v9"
)

const subscriptionExpiryInterval = time.Hour

func main() {
	// Initialize logger
	logger.InitLogger()
	log := logger.GetLogger()
	defer func() { _ = logger.Close() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	validator := auth.NewConfigValidator(cfg)
	validator.PrintValidationResults(validator.ValidateAuthConfig())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	if err := db.RunMigrations(cfg.Database.URL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	poolConfig, err := config.ConfigurePostgresPool(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to configure database pool: %v", err)
	}

	dbClient, err := db.Connect(ctx, poolConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbClient.Close()
	pool := dbClient.GetPool()

	redisClient := redis.NewClient(config.ConfigureRedisOptions(&cfg.Redis))
	if err := config.TestRedisConnection(redisClient); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() { _ = redisClient.Close() }()

	// Infrastructure
	publisher := events.NewRedisPublisher(redisClient, events.Config{
		Channel:          cfg.Events.Channel,
		RecentKey:        cfg.Events.Channel + ":recent",
		RecentLimit:      cfg.Events.RecentActivityLimit,
		PublishTimeout:   time.Duration(cfg.Events.PublishTimeoutSeconds) * time.Second,
		SubscribeTimeout: events.DefaultConfig().SubscribeTimeout,
		EventBufferSize:  cfg.Events.BufferSize,
	})

	fileStorage, err := storage.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize file storage: %v", err)
	}

	supabaseService, err := services.NewSupabaseService(&cfg.Supabase)
	if err != nil {
		log.Fatalf("Failed to initialize Supabase client: %v", err)
	}

	jwtValidator, err := middleware.NewJWTValidator(&cfg.Supabase)
	if err != nil {
		log.Fatalf("Failed to initialize JWT validator: %v", err)
	}

	workerPool := services.NewWorkerPool(cfg.WorkerPool)
	workerPool.Start()

	// Stores
	videoStore := postgres.NewVideoStore(pool)
	blogStore := postgres.NewBlogStore(pool)
	historyStore := postgres.NewViewHistoryStore(pool)
	subscriptionStore := postgres.NewSubscriptionStore(pool)
	paymentStore := postgres.NewPaymentStore(pool)

	// Services
	subscriptionService := services.NewSubscriptionService(subscriptionStore, supabaseService, publisher)
	recommendationService := services.NewRecommendationService(videoStore, historyStore, supabaseService,
		services.NewRecommendationCache(redisClient, cfg.Recommendation.CacheTTL), cfg.Recommendation)
	contentService := services.NewContentService(services.ContentServiceDeps{
		Videos:    videoStore,
		Blogs:     blogStore,
		History:   historyStore,
		Premium:   subscriptionService,
		Files:     fileStorage,
		Publisher: publisher,
		Cache:     recommendationService,
	}, cfg.Storage.MaxUploadBytes)
	paymentService, err := services.NewPaymentService(services.PaymentServiceDeps{
		Payments:  paymentStore,
		Gateway:   toss.NewClient(cfg.Payment.TossAPIURL, cfg.Payment.TossSecretKey, time.Duration(cfg.Payment.TimeoutSeconds)*time.Second),
		Directory: supabaseService,
		Email:     services.NewEmailService(&cfg.Email),
		Jobs:      workerPool,
		Publisher: publisher,
	}, cfg.Payment, cfg.Server.FrontendURL)
	if err != nil {
		log.Fatalf("Failed to initialize payment service: %v", err)
	}
	analyticsService := services.NewAnalyticsService(videoStore, blogStore, historyStore, subscriptionStore, supabaseService, publisher)
	authService := services.NewAuthService(supabaseService, cfg.Admin, cfg.Server.FrontendURL)

	healthService := services.NewHealthService(pool, redisClient, cfg.Server.Version)
	healthService.SetPoolUsageGetter(func() (int32, int32) {
		stat := pool.Stat()
		return stat.AcquiredConns(), stat.MaxConns()
	})

	workerPool.Every(subscriptionExpiryInterval, subscriptionService.ExpiryJob())

	// Realtime dashboard
	hub := websocket.NewHub(publisher)

	r := router.SetupRouter(router.Dependencies{
		Config:                cfg,
		JWTValidator:          jwtValidator,
		Redis:                 redisClient,
		HealthHandler:         handlers.NewHealthHandler(healthService),
		ContentHandler:        handlers.NewContentHandler(contentService),
		RecommendationHandler: handlers.NewRecommendationHandler(recommendationService, contentService),
		MemberHandler:         handlers.NewMemberHandler(subscriptionService, paymentService),
		AuthHandler:           handlers.NewAuthHandler(authService),
		AdminHandler:          handlers.NewAdminHandler(analyticsService, paymentService, contentService, cfg.Storage.MaxUploadBytes),
		ActivityWSHandler:     websocket.NewHandler(hub, &cfg.Server),
		Logger:                log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("Starting server", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.WorkerPool.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	if err := hub.Shutdown(shutdownCtx); err != nil {
		log.Warnw("Activity hub shutdown failed", "error", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown failed", "error", err)
	}
	if err := workerPool.Shutdown(shutdownCtx); err != nil {
		log.Warnw("Worker pool shutdown failed", "error", err)
	}
	if err := publisher.Shutdown(shutdownCtx); err != nil {
		log.Warnw("Activity publisher shutdown failed", "error", err)
	}
	log.Info("Server stopped")
}
