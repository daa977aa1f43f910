package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"pasugo/internal/config"
	"pasugo/internal/handlers/shared"
	"pasugo/internal/middleware"
	"pasugo/internal/repositories/mongodb"
	"pasugo/internal/services"
	"pasugo/internal/validators"
	"pasugo/pkg/cache"
	"pasugo/pkg/database"
	"pasugo/pkg/logger"
	"pasugo/pkg/maps"
	"pasugo/pkg/storage"
	"pasugo/pkg/websocket"
	"pasugo/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.App.LogLevel, cfg.App.LogFormat)
	log.WithField("version", cfg.App.Version).Info("starting pasugo server")

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validators.Register(); err != nil {
		log.WithError(err).Fatal("failed to register validators")
	}

	db, err := database.NewMongoDB(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to mongodb")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Close(ctx); err != nil {
			log.WithError(err).Error("failed to close mongodb connection")
		}
	}()

	if err := db.EnsureIndexes(context.Background()); err != nil {
		log.WithError(err).Fatal("failed to create indexes")
	}

	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	defer redisCache.Close()
	cacheService := services.NewCacheService(redisCache)

	var mapsProvider maps.Provider
	if cfg.Maps.APIKey != "" {
		mapsProvider, err = maps.NewGoogleMapsProvider(cfg.Maps)
		if err != nil {
			log.WithError(err).Warn("maps provider unavailable, estimates will use straight-line fallback")
		}
	} else {
		log.Warn("no maps api key configured, estimates will use straight-line fallback")
	}

	var storageProvider storage.Provider
	if cfg.Storage.Provider == "s3" {
		storageProvider, err = storage.NewS3Provider(context.Background(), cfg.Storage)
	} else {
		storageProvider, err = storage.NewLocalProvider(cfg.Storage)
	}
	if err != nil {
		log.WithError(err).Fatal("failed to initialize storage")
	}

	// Repositories.
	userRepo := mongodb.NewUserRepository(db.Database)
	riderRepo := mongodb.NewRiderRepository(db.Database)
	requestRepo := mongodb.NewRequestRepository(db.Database)
	locationRepo := mongodb.NewLocationRepository(db.Database)
	conversationRepo := mongodb.NewConversationRepository(db.Database)
	messageRepo := mongodb.NewMessageRepository(db.Database)
	presenceRepo := mongodb.NewPresenceRepository(db.Database)
	notificationRepo := mongodb.NewNotificationRepository(db.Database)

	// Services.
	notificationService := services.NewNotificationService(notificationRepo)
	geoService := services.NewGeoService(mapsProvider, cfg.App.Currency, cacheService)
	discoveryService := services.NewDiscoveryService(riderRepo, userRepo, locationRepo)
	locationService := services.NewLocationService(locationRepo)
	requestService := services.NewRequestService(requestRepo, riderRepo, userRepo, conversationRepo, notificationService, cfg.App.Currency)
	messagingService := services.NewMessagingService(conversationRepo, messageRepo, presenceRepo, userRepo, riderRepo)
	riderService := services.NewRiderService(riderRepo, userRepo)
	uploadService := services.NewUploadService(storageProvider)

	// Realtime.
	hub := websocket.NewHub()
	wsHandler := websocket.NewHandler(hub, messagingService, cfg.WebSocket, cfg.Security.JWTSecret)

	// Background maintenance.
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	go locationService.RunCleanup(cleanupCtx, 6*time.Hour)

	router := gin.New()
	router.Use(
		middleware.RecoveryMiddleware(),
		middleware.RequestIDMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins),
	)
	if len(cfg.Security.TrustedProxies) > 0 {
		if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
			log.WithError(err).Fatal("invalid trusted proxies")
		}
	}

	routes.Setup(router, routes.Handlers{
		Request:      shared.NewRequestHandler(requestService, geoService),
		Rider:        shared.NewRiderHandler(riderService, discoveryService, requestService),
		Location:     shared.NewLocationHandler(locationService),
		Messaging:    shared.NewMessagingHandler(messagingService, hub),
		Notification: shared.NewNotificationHandler(notificationService),
		Upload:       shared.NewUploadHandler(uploadService),
		Admin:        shared.NewAdminHandler(requestService, riderService),
		WS:           wsHandler,
	}, cfg.Security.JWTSecret)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.App.Port).Info("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	stopCleanup()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	log.Info("server stopped")
}
