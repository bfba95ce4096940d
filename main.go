package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"backend/internal/config"
	"backend/internal/crypto"
	"backend/internal/message_processor"
	"backend/internal/models"
	"backend/internal/notifier"
	"backend/internal/provider_client"
	"backend/internal/repository"
	"backend/internal/sentiment_client"
	"backend/internal/server"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err) // Should not happen in development
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	log := logrus.New()

	// Load configuration
	cfgPath := "configs/config.yml"
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Database connection
	db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	repository.MigrateDB(db, logger)

	// Initialize KeyManager for encryption/decryption
	keyManager, err := crypto.NewKeyManager()
	if err != nil {
		logger.Fatal("Failed to initialize KeyManager", zap.Error(err))
	}
	logger.Info("KeyManager initialized successfully")

	// System user holds the data key that message bodies are sealed under.
	authRepo := repository.NewAuthRepository(db, log)
	systemUser, err := authRepo.GetUserByUsername("admin")
	if err != nil {
		logger.Warn("System user 'admin' not found - encryption will fail until an operator is registered", zap.Error(err))
		systemUser = &models.User{ID: 1, DataKeyEncrypted: ""} // Placeholder
	}

	// Initialize repositories used by the background pipeline
	conversationRepo := repository.NewConversationRepository(db, logger)
	messageRepo := repository.NewMessageRepository(db, logger)
	alertRepo := repository.NewAlertRepository(db, logger)

	// Initialize provider client
	providerClient := provider_client.NewClient(cfg.Provider.URL, logger)

	// Initialize sentiment service client (optional)
	var sentimentClient *sentiment_client.Client
	if cfg.Sentiment.Enabled {
		sentimentClient = sentiment_client.NewClient(cfg.Sentiment.URL)
		logger.Info("Sentiment scoring enabled")
	}

	// Initialize ops notification bot
	bot, err := notifier.NewBot(cfg, conversationRepo, alertRepo, logger)
	if err != nil {
		logger.Warn("Failed to initialize notification bot, continuing without it", zap.Error(err))
		bot = nil
	}

	// Initialize message processor
	processor := message_processor.NewProcessor(
		providerClient,
		sentimentClient,
		conversationRepo,
		messageRepo,
		alertRepo,
		keyManager,
		bot,
		systemUser.ID,
		systemUser.DataKeyEncrypted,
		logger,
		cfg.Provider.PollInterval,
		cfg.Provider.ConversationProcessDelay,
	)

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Run notification bot in a goroutine (if enabled)
	if bot != nil {
		go func() {
			if err := bot.Start(ctx); err != nil {
				logger.Error("Notification bot failed", zap.Error(err))
			}
		}()
	}

	// Run message processor in a goroutine
	go processor.Run(ctx)

	// Initialize and run the server
	srv := server.NewServer(db, cfg, cfgPath, logger, log, bot, providerClient, sentimentClient, keyManager)
	srv.Run(cfg.Server.Port)

	<-ctx.Done()
	logger.Info("Application stopped.")
}
