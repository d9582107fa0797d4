package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hostel-complaint-api/config"
	"hostel-complaint-api/controllers"
	"hostel-complaint-api/middleware"
	"hostel-complaint-api/routes"
	"hostel-complaint-api/services"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if logFile := config.InitLogging(); logFile != nil {
		defer logFile.Close()
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	if enabled, err := config.InitSentry(cfg); err != nil {
		log.Printf("Warning: %v", err)
	} else if enabled {
		defer sentry.Flush(2 * time.Second)
	}

	config.InitDB(cfg)
	if err := config.AutoMigrate(config.DB); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	ctx := context.Background()
	accounts := services.NewAccountService(config.DB)
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		created, err := accounts.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName)
		if err != nil {
			log.Printf("Warning: admin seed failed: %v", err)
		} else if created {
			log.Printf("Seeded admin account %s", cfg.AdminEmail)
		}
	}

	messages, err := services.NewMessageCatalog(cfg.MessageLanguage)
	if err != nil {
		log.Fatal("Failed to load message catalog:", err)
	}

	var hub services.NotificationHub = services.NopNotificationHub{}
	redisClient, err := config.InitRedis(ctx, cfg)
	if err != nil {
		log.Printf("Warning: live notifications disabled: %v", err)
	} else if redisClient != nil {
		defer redisClient.Close()
		hub = services.NewRedisNotificationHub(redisClient)
	}

	var activity services.ActivityLogger = services.NopActivityLogger{}
	mongoClient, err := config.InitMongo(ctx, cfg)
	if err != nil {
		log.Printf("Warning: activity log disabled: %v", err)
	} else if mongoClient != nil {
		defer mongoClient.Disconnect(context.Background())
		mongoLogger := services.NewMongoActivityLogger(mongoClient.Database(cfg.MongoDatabase))
		if err := mongoLogger.EnsureIndexes(ctx); err != nil {
			log.Printf("Warning: activity log indexes: %v", err)
		}
		activity = mongoLogger
	}

	storage, err := imageStorage(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to configure image storage:", err)
	}

	emitterOpts := []services.EmitterOption{services.WithNotificationHub(hub)}
	if cfg.SMTP.Enabled() {
		emitterOpts = append(emitterOpts, services.WithMailer(config.NewSMTPMailer(cfg.SMTP)))
	}

	complaints := services.NewGormComplaintStore(config.DB)
	notifications := services.NewGormNotificationStore(config.DB)
	users := services.NewGormUserDirectory(config.DB)
	emitter := services.NewNotificationEmitter(notifications, messages, emitterOpts...)
	engine := services.NewLifecycleEngine(complaints, users, emitter, services.WithActivityLogger(activity))
	authenticator := middleware.NewAuthenticator(cfg.JWTSecret, cfg.JWTExpireHours, users)

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = config.LogWriter

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())

	routes.SetupRoutes(router, routes.Dependencies{
		Auth:          authenticator,
		Accounts:      controllers.NewAuthController(accounts, authenticator),
		Complaints:    controllers.NewComplaintController(engine, complaints, services.NewImageUploader(storage)),
		Admin:         controllers.NewAdminController(engine, complaints, services.NewAnalyticsAggregator(complaints, nil), services.NewStudentService(config.DB, complaints), activity),
		Notifications: controllers.NewNotificationController(notifications, hub, cfg.AllowedOrigins),
		Announcements: controllers.NewAnnouncementController(services.NewAnnouncementService(config.DB)),
		Images:        controllers.NewImageController(complaints, storage),

		RateLimitPerSec: cfg.RateLimitPerSec,
		LogAccessToken:  cfg.LogAccessToken,
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           corsHandler.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s (%s)", cfg.ServerPort, cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	if err := engine.Drain(shutdownCtx); err != nil {
		log.Printf("Background tasks did not finish: %v", err)
	}
	log.Println("Server stopped")
}

func imageStorage(ctx context.Context, cfg *config.AppConfig) (services.ImageStorage, error) {
	if cfg.StorageDriver == "s3" {
		if cfg.S3Bucket == "" {
			return nil, errors.New("S3_BUCKET must be set when STORAGE_DRIVER=s3")
		}
		client, err := config.NewS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return services.NewS3ImageStorage(client, cfg.S3Bucket, cfg.S3Prefix), nil
	}
	return services.NewDiskImageStorage(cfg.UploadPath)
}
