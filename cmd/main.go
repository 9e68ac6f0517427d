package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gestion-service/internal/config"
	"gestion-service/internal/events"
	"gestion-service/internal/handlers"
	"gestion-service/internal/middleware"
	"gestion-service/internal/models"
	"gestion-service/internal/notifications"
	"gestion-service/internal/pricing"
	"gestion-service/internal/repository"
	"gestion-service/internal/workers"
)

// @title Gestion API
// @version 1.0.0
// @description Business management service for a window and door fittings distributor

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.bearer BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis client
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
		redisOpts = &redis.Options{
			Addr: "localhost:6379",
		}
	}
	redisClient := redis.NewClient(redisOpts)

	// Test Redis connection
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
	} else {
		log.Println("✓ Redis connected successfully")
	}
	cancel()

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository(db, redisClient)
	clientsRepo := repository.NewClientsRepository(db)
	budgetsRepo := repository.NewBudgetsRepository(db)
	worksRepo := repository.NewWorksRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	notificationsRepo := repository.NewNotificationsRepository(db)

	// Initialize event publisher only if NATS_URL is set
	var eventsPublisher *events.Publisher
	natsURL := os.Getenv("NATS_URL")
	if natsURL != "" {
		eventsPublisher, err = events.NewPublisher(natsURL, logger)
		if err != nil {
			log.Printf("WARNING: Failed to initialize events publisher: %v (continuing without event publishing)", err)
		} else {
			log.Println("✓ Events publisher initialized (NATS connected)")
		}
	} else {
		log.Println("NATS_URL not set, skipping event publishing initialization")
	}
	defer eventsPublisher.Close()

	// Initialize notification channels
	notificationLogger := logrus.NewEntry(logger).WithField("component", "notifications")
	notifier := notifications.NewService(notificationsRepo, notificationLogger,
		notifications.NewEmailSender(notifications.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}),
		notifications.NewWhatsAppSender(cfg.WhatsAppAPIURL, cfg.WhatsAppToken),
	)

	// Initialize the price batch resolver over the category tables
	categories := pricing.DefaultCategories()
	resolverLogger := logrus.NewEntry(logger).WithField("component", "pricing")
	resolver := pricing.NewResolver(catalogRepo, categories, resolverLogger)

	// Initialize handlers
	pricesHandler := handlers.NewPricesHandler(resolver, eventsPublisher, resolverLogger)
	catalogHandler := handlers.NewCatalogHandler(catalogRepo, categories)
	clientsHandler := handlers.NewClientsHandler(clientsRepo, eventsPublisher)
	budgetsHandler := handlers.NewBudgetsHandler(budgetsRepo, eventsPublisher)
	worksHandler := handlers.NewWorksHandler(worksRepo, eventsPublisher)
	calendarHandler := handlers.NewCalendarHandler(calendarRepo)
	notificationsHandler := handlers.NewNotificationsHandler(notifier, notificationsRepo)
	healthHandler := handlers.NewHealthHandler(db, redisClient)

	// Start the reminder worker
	reminderWorker := workers.NewReminderWorker(
		calendarRepo,
		clientsRepo,
		notifier,
		eventsPublisher,
		logrus.NewEntry(logger).WithField("component", "reminder_worker"),
		models.NotificationChannelEmail,
		cfg.SMTPFrom,
		time.Duration(cfg.ReminderIntervalMinutes)*time.Minute,
	)
	reminderWorker.Start()
	defer reminderWorker.Stop()

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	// Health check endpoints (no auth required)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// The import dispatcher talks to this endpoint
	router.POST("/api/update-prices", pricesHandler.UpdatePrices)

	// Protected API routes
	api := router.Group("/api/v1")
	if cfg.Environment == "development" {
		api.Use(middleware.DevelopmentAuthMiddleware())
	} else {
		api.Use(middleware.RequireAuth(cfg.JWTSecret))
	}

	{
		catalog := api.Group("/catalog")
		{
			catalog.GET("/export", catalogHandler.ExportPriceList)
			catalog.GET("/import-template", catalogHandler.DownloadImportTemplate)
			catalog.GET("/:category", catalogHandler.ListItems)
			catalog.POST("/:category", catalogHandler.CreateItem)
			catalog.GET("/:category/:id", catalogHandler.GetItem)
			catalog.PUT("/:category/:id", catalogHandler.UpdateItem)
			catalog.DELETE("/:category/:id", catalogHandler.DeleteItem)
			catalog.POST("/:category/:id/stock", catalogHandler.AdjustStock)
		}

		clients := api.Group("/clients")
		{
			clients.GET("", clientsHandler.ListClients)
			clients.POST("", clientsHandler.CreateClient)
			clients.GET("/:id", clientsHandler.GetClient)
			clients.PUT("/:id", clientsHandler.UpdateClient)
			clients.DELETE("/:id", clientsHandler.DeleteClient)
		}

		budgets := api.Group("/budgets")
		{
			budgets.GET("", budgetsHandler.ListBudgets)
			budgets.POST("", budgetsHandler.CreateBudget)
			budgets.GET("/:id", budgetsHandler.GetBudget)
			budgets.PUT("/:id/status", budgetsHandler.UpdateBudgetStatus)
			budgets.DELETE("/:id", budgetsHandler.DeleteBudget)
		}

		works := api.Group("/works")
		{
			works.GET("", worksHandler.ListWorks)
			works.POST("", worksHandler.CreateWork)
			works.GET("/:id", worksHandler.GetWork)
			works.PUT("/:id", worksHandler.UpdateWork)
			works.DELETE("/:id", worksHandler.DeleteWork)
		}

		calendar := api.Group("/calendar")
		{
			calendar.GET("", calendarHandler.ListEvents)
			calendar.POST("", calendarHandler.CreateEvent)
			calendar.GET("/:id", calendarHandler.GetEvent)
			calendar.PUT("/:id", calendarHandler.UpdateEvent)
			calendar.DELETE("/:id", calendarHandler.DeleteEvent)
		}

		notificationsGroup := api.Group("/notifications")
		{
			notificationsGroup.GET("", notificationsHandler.ListNotifications)
			notificationsGroup.POST("", notificationsHandler.SendNotification)
		}
	}

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("Starting gestion-service")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}
	logger.Info("Server stopped")
}
