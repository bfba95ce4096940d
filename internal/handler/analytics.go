package handler

import (
	"net/http"
	"time"

	"backend/internal/crypto"
	"backend/internal/grouping"
	"backend/internal/models"
	"backend/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AnalyticsHandler interface {
	GetDashboard(c *gin.Context)
	GetSMSConversations(c *gin.Context)
}

type analyticsHandler struct {
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
	alertRepo        repository.AlertRepository
	authRepo         repository.AuthRepository
	keyManager       *crypto.KeyManager
	logger           *zap.Logger
}

func NewAnalyticsHandler(
	conversationRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
	alertRepo repository.AlertRepository,
	authRepo repository.AuthRepository,
	keyManager *crypto.KeyManager,
	logger *zap.Logger,
) AnalyticsHandler {
	return &analyticsHandler{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		alertRepo:        alertRepo,
		authRepo:         authRepo,
		keyManager:       keyManager,
		logger:           logger,
	}
}

// DashboardStats represents the statistics for the dashboard
type DashboardStats struct {
	TotalConversations     int            `json:"total_conversations"`
	MonitoredConversations int            `json:"monitored_conversations"`
	TotalMessages          int            `json:"total_messages"`
	ChannelDistribution    map[string]int `json:"channel_distribution"`
	SentimentDistribution  map[string]int `json:"sentiment_distribution"`
	AvgResponseSeconds     float64        `json:"avg_response_seconds"`
	TotalAlerts            int            `json:"total_alerts"`
	NewAlerts              int            `json:"new_alerts"`
	Alerts24h              int            `json:"alerts_24h"`
	RecentAlerts           interface{}    `json:"recent_alerts"`
}

// GetDashboard handles GET /api/analytics/dashboard
func (h *analyticsHandler) GetDashboard(c *gin.Context) {
	conversations, err := h.conversationRepo.GetAll()
	if err != nil {
		h.logger.Error("Failed to get conversations for dashboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard data"})
		return
	}

	alerts, err := h.alertRepo.GetAll()
	if err != nil {
		h.logger.Error("Failed to get alerts for dashboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dashboard data"})
		return
	}

	monitored := 0
	totalMessages := 0
	channelDistribution := make(map[string]int)
	sentimentDistribution := make(map[string]int)
	var responseTotal float64
	responseSamples := 0

	for _, conv := range conversations {
		if conv.MonitoringActive {
			monitored++
		}
		totalMessages += conv.MessageCount
		channelDistribution[conv.Channel]++
		sentimentDistribution[conv.Sentiment]++
		if conv.AvgResponseSeconds > 0 {
			responseTotal += conv.AvgResponseSeconds
			responseSamples++
		}
	}

	avgResponse := 0.0
	if responseSamples > 0 {
		avgResponse = responseTotal / float64(responseSamples)
	}

	newAlerts := 0
	alerts24h := 0
	twentyFourHoursAgo := time.Now().Add(-24 * time.Hour)
	for _, alert := range alerts {
		if alert.Status == models.AlertStatusNew {
			newAlerts++
		}
		if alert.CreatedAt.After(twentyFourHoursAgo) {
			alerts24h++
		}
	}

	// Most recent 10 alerts; repo returns newest first.
	recentAlerts := alerts
	if len(recentAlerts) > 10 {
		recentAlerts = alerts[:10]
	}

	stats := DashboardStats{
		TotalConversations:     len(conversations),
		MonitoredConversations: monitored,
		TotalMessages:          totalMessages,
		ChannelDistribution:    channelDistribution,
		SentimentDistribution:  sentimentDistribution,
		AvgResponseSeconds:     avgResponse,
		TotalAlerts:            len(alerts),
		NewAlerts:              newAlerts,
		Alerts24h:              alerts24h,
		RecentAlerts:           recentAlerts,
	}

	c.JSON(http.StatusOK, stats)
}

// ContactThread is one contact's entry in the SMS master/detail view:
// metadata from the group's canonical record plus the group's messages
// concatenated in group order.
type ContactThread struct {
	Contact            string           `json:"contact"`     // display form, first appearance
	ContactKey         string           `json:"contact_key"` // digit-normalized grouping key
	StartedAt          time.Time        `json:"started_at"`
	Sentiment          string           `json:"sentiment"`
	MessageCount       int              `json:"message_count"`
	AvgResponseSeconds float64          `json:"avg_response_seconds"`
	Messages           []models.Message `json:"messages"`
}

// SMSConversationsResponse is the GET /api/analytics/sms payload.
type SMSConversationsResponse struct {
	Contacts []string        `json:"contacts"`
	Threads  []ContactThread `json:"threads"`
}

// GetSMSConversations handles GET /api/analytics/sms
func (h *analyticsHandler) GetSMSConversations(c *gin.Context) {
	businessID := c.Query("business_id")
	if businessID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "business_id is required"})
		return
	}

	from, err := parseTimeParam(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from timestamp, want RFC3339"})
		return
	}
	to, err := parseTimeParam(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to timestamp, want RFC3339"})
		return
	}

	rows, err := h.conversationRepo.GetByBusiness(businessID, "sms", from, to)
	if err != nil {
		h.logger.Error("Failed to get SMS conversations", zap.String("business_id", businessID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve conversations"})
		return
	}

	records := make([]models.Conversation, 0, len(rows))
	for _, row := range rows {
		record := *row
		messages, err := h.loadDecryptedMessages(record.ID)
		if err != nil {
			// A thread that cannot be read renders as "no messages found"
			// rather than failing the whole view.
			h.logger.Error("Failed to load messages for conversation", zap.Int64("conversation_id", record.ID), zap.Error(err))
			messages = nil
		}
		record.Messages = messages
		records = append(records, record)
	}

	groups := grouping.GroupByContact(records)
	contacts := grouping.Contacts(records)

	threads := make([]ContactThread, 0, len(contacts))
	for _, contact := range contacts {
		key := grouping.NormalizePhone(contact)
		group := groups[key]
		canonical, ok := grouping.CanonicalRecord(group)
		if !ok {
			continue
		}
		threads = append(threads, ContactThread{
			Contact:            contact,
			ContactKey:         key,
			StartedAt:          canonical.StartedAt,
			Sentiment:          canonical.Sentiment,
			MessageCount:       canonical.MessageCount,
			AvgResponseSeconds: canonical.AvgResponseSeconds,
			Messages:           grouping.FlattenMessages(group),
		})
	}

	c.JSON(http.StatusOK, SMSConversationsResponse{
		Contacts: contacts,
		Threads:  threads,
	})
}

func (h *analyticsHandler) loadDecryptedMessages(conversationID int64) ([]models.Message, error) {
	messages, err := h.messageRepo.GetByConversationID(conversationID)
	if err != nil {
		return nil, err
	}

	systemUser, err := h.authRepo.GetUserByUsername("admin")
	if err != nil {
		return nil, err
	}

	for i := range messages {
		body, err := h.keyManager.DecryptBody(messages[i].BodyEncrypted, systemUser.ID, systemUser.DataKeyEncrypted)
		if err != nil {
			h.logger.Error("Failed to decrypt message body",
				zap.Int64("message_id", messages[i].ID),
				zap.Error(err))
			continue
		}
		messages[i].Body = body
	}
	return messages, nil
}

func parseTimeParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
