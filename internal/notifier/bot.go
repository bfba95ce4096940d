package notifier

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"backend/internal/config"
	"backend/internal/models"
	"backend/internal/repository"
)

// Bot is the Telegram ops bot: it pushes provisioning and alert
// notifications to the configured ops chat and answers a couple of
// read-only commands.
type Bot struct {
	api              *tgbotapi.BotAPI
	logger           *zap.Logger
	conversationRepo repository.ConversationRepository
	alertRepo        repository.AlertRepository
	opsChatID        int64
}

// NewBot creates a new Telegram bot instance. Returns (nil, nil) when
// notifications are disabled.
func NewBot(cfg *config.Config, conversationRepo repository.ConversationRepository, alertRepo repository.AlertRepository, logger *zap.Logger) (*Bot, error) {
	if !cfg.Notifications.Enabled || cfg.Notifications.TelegramBotToken == "" {
		logger.Info("Telegram bot is disabled (notifications.enabled=false or token is empty)")
		return nil, nil
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Notifications.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot API: %w", err)
	}

	logger.Info("Telegram bot authorized", zap.String("username", botAPI.Self.UserName))

	return &Bot{
		api:              botAPI,
		logger:           logger,
		conversationRepo: conversationRepo,
		alertRepo:        alertRepo,
		opsChatID:        cfg.Notifications.OpsChatID,
	}, nil
}

// Start begins listening for updates from Telegram.
func (b *Bot) Start(ctx context.Context) error {
	if b == nil {
		return nil // Bot is disabled
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Telegram bot started, waiting for updates...")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Telegram bot shutting down...")
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			if update.Message != nil {
				b.handleMessage(update.Message)
			}
		}
	}
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.sendMessage(message.Chat.ID, "Ops bot online. Use /stats for a quick overview.")
	case "stats":
		b.handleStats(message.Chat.ID)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Available: /stats")
	}
}

func (b *Bot) handleStats(chatID int64) {
	conversations, err := b.conversationRepo.GetAll()
	if err != nil {
		b.logger.Error("Failed to load conversations for /stats", zap.Error(err))
		b.sendMessage(chatID, "Failed to load stats.")
		return
	}

	newAlerts, err := b.alertRepo.GetByStatus(models.AlertStatusNew)
	if err != nil {
		b.logger.Error("Failed to load alerts for /stats", zap.Error(err))
		b.sendMessage(chatID, "Failed to load stats.")
		return
	}

	monitored := 0
	totalMessages := 0
	for _, conv := range conversations {
		if conv.MonitoringActive {
			monitored++
		}
		totalMessages += conv.MessageCount
	}

	text := fmt.Sprintf(
		"Conversations: %d (%d monitored)\nMessages: %d\nOpen alerts: %d",
		len(conversations), monitored, totalMessages, len(newAlerts),
	)
	b.sendMessage(chatID, text)
}

// NotifyClientProvisioned pushes a provisioning event to the ops chat.
func (b *Bot) NotifyClientProvisioned(businessID, publicID string) error {
	if b == nil || b.opsChatID == 0 {
		return nil
	}
	text := fmt.Sprintf("New client provisioned\nBusiness: %s\nRecord: %s", businessID, publicID)
	return b.sendMessage(b.opsChatID, text)
}

// NotifyAlert pushes a new sentiment alert to the ops chat.
func (b *Bot) NotifyAlert(alert *models.Alert) error {
	if b == nil || b.opsChatID == 0 {
		return nil
	}
	text := fmt.Sprintf(
		"Sentiment alert\nContact: %s\nLabel: %s (%.0f%%)\nConversation: %d",
		alert.PhoneNumber, alert.Sentiment, alert.Confidence*100, alert.ConversationID,
	)
	return b.sendMessage(b.opsChatID, text)
}

func (b *Bot) sendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send Telegram message", zap.Error(err), zap.Int64("chat_id", chatID))
		return err
	}
	return nil
}
