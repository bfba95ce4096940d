package handler

import (
	"net/http"

	"backend/internal/config"
	"backend/internal/provider_client"
	"backend/internal/sentiment_client"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProviderStatusHandler interface {
	GetProviderStatus(c *gin.Context)
	TestProviderConnection(c *gin.Context)
}

type providerStatusHandler struct {
	cfg             *config.Config
	providerClient  *provider_client.Client
	sentimentClient *sentiment_client.Client
	logger          *zap.Logger
}

func NewProviderStatusHandler(cfg *config.Config, providerClient *provider_client.Client, sentimentClient *sentiment_client.Client, logger *zap.Logger) ProviderStatusHandler {
	return &providerStatusHandler{
		cfg:             cfg,
		providerClient:  providerClient,
		sentimentClient: sentimentClient,
		logger:          logger,
	}
}

// ProviderStatusResponse reports per-channel provider connectivity.
type ProviderStatusResponse struct {
	ProviderURL      string          `json:"provider_url"`
	Channels         map[string]bool `json:"channels"`
	SentimentEnabled bool            `json:"sentiment_enabled"`
	SentimentHealthy bool            `json:"sentiment_healthy"`
}

// GetProviderStatus handles GET /api/config/provider
func (h *providerStatusHandler) GetProviderStatus(c *gin.Context) {
	ctx := c.Request.Context()

	channels := make(map[string]bool, 3)
	for _, channel := range []string{"sms", "voice", "email"} {
		channels[channel] = h.providerClient.Ping(ctx, channel) == nil
	}

	sentimentHealthy := false
	if h.cfg.Sentiment.Enabled && h.sentimentClient != nil {
		sentimentHealthy = h.sentimentClient.Health(ctx) == nil
	}

	c.JSON(http.StatusOK, ProviderStatusResponse{
		ProviderURL:      h.cfg.Provider.URL,
		Channels:         channels,
		SentimentEnabled: h.cfg.Sentiment.Enabled,
		SentimentHealthy: sentimentHealthy,
	})
}

// TestProviderConnection handles POST /api/config/provider/test
func (h *providerStatusHandler) TestProviderConnection(c *gin.Context) {
	channel := c.DefaultQuery("channel", "sms")

	if err := h.providerClient.Ping(c.Request.Context(), channel); err != nil {
		h.logger.Error("Provider connection test failed", zap.String("channel", channel), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "channel": channel})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Provider connection OK", "channel": channel})
}
