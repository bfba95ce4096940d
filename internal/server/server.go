package server

import (
	"net/http"

	"backend/internal/config"
	"backend/internal/crypto"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/notifier"
	"backend/internal/permissions"
	"backend/internal/provider_client"
	"backend/internal/repository"
	"backend/internal/sentiment_client"
	"backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

type Server struct {
	router          *gin.Engine
	db              *sqlx.DB
	cfg             *config.Config
	configPath      string
	bot             *notifier.Bot
	providerClient  *provider_client.Client
	sentimentClient *sentiment_client.Client
	keyManager      *crypto.KeyManager
	logger          *zap.Logger
	log             *logrus.Logger
}

func NewServer(
	db *sqlx.DB,
	cfg *config.Config,
	configPath string,
	logger *zap.Logger,
	log *logrus.Logger,
	bot *notifier.Bot,
	providerClient *provider_client.Client,
	sentimentClient *sentiment_client.Client,
	keyManager *crypto.KeyManager,
) *Server {
	router := gin.Default()

	s := &Server{
		router:          router,
		db:              db,
		cfg:             cfg,
		configPath:      configPath,
		bot:             bot,
		providerClient:  providerClient,
		sentimentClient: sentimentClient,
		keyManager:      keyManager,
		logger:          logger,
		log:             log,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Repositories
	authRepo := repository.NewAuthRepository(s.db, s.log)
	clientRepo := repository.NewClientRepository(s.db, s.logger)
	conversationRepo := repository.NewConversationRepository(s.db, s.logger)
	messageRepo := repository.NewMessageRepository(s.db, s.logger)
	alertRepo := repository.NewAlertRepository(s.db, s.logger)

	// Services
	authService := service.NewAuthService(authRepo, s.keyManager, s.logger)
	provisioningService := service.NewProvisioningService(clientRepo, permissions.DefaultSchema(), s.logger)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, s.log)
	provisioningHandler := handler.NewProvisioningHandler(provisioningService, s.bot, s.logger)
	analyticsHandler := handler.NewAnalyticsHandler(conversationRepo, messageRepo, alertRepo, authRepo, s.keyManager, s.logger)
	conversationHandler := handler.NewConversationHandler(conversationRepo, messageRepo, authRepo, s.keyManager, s.logger)
	alertHandler := handler.NewAlertHandler(alertRepo, authRepo, s.keyManager, s.logger)
	settingsHandler := handler.NewSettingsHandler(s.cfg, s.configPath, s.logger)
	providerStatusHandler := handler.NewProviderStatusHandler(s.cfg, s.providerClient, s.sentimentClient, s.logger)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Authentication routes
	authGroup := s.router.Group("/api/auth")
	authGroup.POST("/register", authHandler.RegisterOperator)
	authGroup.POST("/login", authHandler.Login)

	// Authenticated routes
	authRequired := s.router.Group("/api")
	authRequired.Use(middleware.AuthMiddleware(s.logger))
	{
		authRequired.POST("/auth/logout", authHandler.Logout)

		// Client provisioning and permission management
		admin := authRequired.Group("/admin")
		{
			admin.GET("/permission-schema", provisioningHandler.GetSchema)
			admin.POST("/clients", provisioningHandler.CreateClient)
			admin.GET("/clients", provisioningHandler.ListClients)
			admin.GET("/clients/:id", provisioningHandler.GetClient)
			admin.PATCH("/clients/:id/permissions/toggle", provisioningHandler.TogglePermission)
		}

		// Analytics
		analytics := authRequired.Group("/analytics")
		{
			analytics.GET("/dashboard", analyticsHandler.GetDashboard)
			analytics.GET("/sms", analyticsHandler.GetSMSConversations)
		}

		// Conversations
		conversations := authRequired.Group("/conversations")
		{
			conversations.GET("", conversationHandler.GetAllConversations)
			conversations.GET("/:id", conversationHandler.GetConversationByID)
			conversations.PUT("/:id/monitoring", conversationHandler.UpdateMonitoringStatus)
		}

		// Alerts
		alerts := authRequired.Group("/alerts")
		{
			alerts.GET("", alertHandler.GetAllAlerts)
			alerts.GET("/:id", alertHandler.GetAlertByID)
			alerts.PUT("/:id/status", alertHandler.UpdateAlertStatus)
		}

		// Settings
		authRequired.GET("/settings", settingsHandler.GetSettings)
		authRequired.POST("/settings", settingsHandler.UpdateSettings)

		// Provider connectivity
		authRequired.GET("/config/provider", providerStatusHandler.GetProviderStatus)
		authRequired.POST("/config/provider/test", providerStatusHandler.TestProviderConnection)
	}
}

func (s *Server) Run(addr string) {
	s.log.Infof("Server starting on port %s...", addr)
	if err := s.router.Run(addr); err != nil {
		s.log.Fatalf("Server failed to start: %v", err)
	}
}
