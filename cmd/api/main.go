package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/providoor/whatsapp-bot/internal/api/router"
	"github.com/providoor/whatsapp-bot/internal/catalog"
	appconfig "github.com/providoor/whatsapp-bot/internal/config"
	"github.com/providoor/whatsapp-bot/internal/conversation"
	"github.com/providoor/whatsapp-bot/internal/messaging"
	"github.com/providoor/whatsapp-bot/internal/observability/metrics"
	"github.com/providoor/whatsapp-bot/internal/orders"
	"github.com/providoor/whatsapp-bot/internal/ratings"
	"github.com/providoor/whatsapp-bot/internal/users"
	"github.com/providoor/whatsapp-bot/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting providoor whatsapp bot",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	botMetrics := metrics.NewBotMetrics(nil)

	// Initialize repositories
	var (
		usersRepo   users.Repository
		catalogRepo catalog.Repository
		ordersRepo  orders.Repository
		ratingsRepo ratings.Repository
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := pool.Ping(pingCtx); err != nil {
			cancel()
			logger.Error("database unreachable", "error", err)
			os.Exit(1)
		}
		cancel()

		usersRepo = users.NewPostgresRepository(pool)
		catalogRepo = catalog.NewPostgresRepository(pool)
		ordersRepo = orders.NewPostgresRepository(pool)
		ratingsRepo = ratings.NewPostgresRepository(pool)
		logger.Info("connected to postgres")
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory repositories")
		usersRepo = users.NewInMemoryRepository()
		catalogRepo = catalog.NewInMemoryRepository(demoDishes()...)
		ordersRepo = orders.NewInMemoryRepository()
		ratingsRepo = ratings.NewInMemoryRepository(nil)
	}

	// Initialize the rating classifier
	var classifier conversation.Classifier
	if cfg.GeminiAPIKey != "" {
		llm, err := conversation.NewGeminiLLMClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create Gemini client", "error", err)
			os.Exit(1)
		}
		defer func() { _ = llm.Close() }()
		classifier = conversation.NewRatingClassifier(llm, cfg.ClassifierTimeout, logger, botMetrics)
		logger.Info("rating classifier enabled", "model", cfg.GeminiModelID)
	} else {
		logger.Warn("GEMINI_API_KEY not set, free-text rating intake disabled")
	}

	// Initialize the outbound messenger
	var messenger conversation.ReplyMessenger
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		messenger = messaging.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppNumber, logger)
	} else {
		logger.Warn("Twilio credentials not set, outbound replies are logged only")
		messenger = messaging.NewDryRunSender(logger)
	}

	dispatcher := conversation.NewDispatcher(conversation.DispatcherConfig{
		Users:      usersRepo,
		Catalog:    catalogRepo,
		Orders:     ordersRepo,
		Ratings:    ratingsRepo,
		Classifier: classifier,
		Messenger:  messenger,
		Logger:     logger,
		Metrics:    botMetrics,
		BotNumber:  cfg.TwilioWhatsAppNumber,
		DishCount:  cfg.OrderDishCount,
	})

	messagingHandler := messaging.NewHandler(cfg.TwilioWebhookSecret, dispatcher, messenger, cfg.TwilioWhatsAppNumber, logger, botMetrics)

	// Setup router
	r := router.New(&router.Config{
		Logger:           logger,
		MessagingHandler: messagingHandler,
		MetricsHandler:   promhttp.Handler(),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// demoDishes seeds the in-memory catalog so local runs without a database
// can still synthesize orders.
func demoDishes() []catalog.Dish {
	return []catalog.Dish{
		{Name: "Charred Broccolini", Description: "Broccolini with almond cream and chilli oil", Price: 16, Course: "Entree", ChefName: "Anna Chen", Dietaries: "vegan, gluten free"},
		{Name: "Wagyu Rump Cap", Description: "Wagyu rump cap with bone marrow jus", Price: 48, Course: "Main", ChefName: "Marco Rossi", Dietaries: "gluten free"},
		{Name: "Mushroom Risotto", Description: "Pine mushroom risotto with pecorino", Price: 32, Course: "Main", ChefName: "Lucia Fontana", Dietaries: "vegetarian"},
		{Name: "Basque Cheesecake", Description: "Burnt cheesecake with muscat prunes", Price: 17, Course: "Dessert", ChefName: "Lucia Fontana", Dietaries: "vegetarian"},
	}
}
