package message_processor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"backend/internal/crypto"
	"backend/internal/models"
	"backend/internal/notifier"
	"backend/internal/provider_client"
	"backend/internal/repository"
	"backend/internal/sentiment_client"
)

// Messages scoring negative at or above this confidence raise an alert.
const negativeAlertThreshold = 0.8

// Processor polls the messaging provider, stores new messages encrypted at
// rest, scores them through the sentiment service and raises alerts.
type Processor struct {
	providerClient           *provider_client.Client
	sentimentClient          *sentiment_client.Client
	conversationRepo         repository.ConversationRepository
	messageRepo              repository.MessageRepository
	alertRepo                repository.AlertRepository
	keyManager               *crypto.KeyManager
	bot                      *notifier.Bot
	systemUserID             int64
	systemUserWrappedDK      string
	logger                   *zap.Logger
	pollInterval             int64
	conversationProcessDelay int64
}

// NewProcessor creates a new message processor. sentimentClient may be nil
// when scoring is disabled; bot may be nil when notifications are disabled.
func NewProcessor(
	providerClient *provider_client.Client,
	sentimentClient *sentiment_client.Client,
	conversationRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
	alertRepo repository.AlertRepository,
	keyManager *crypto.KeyManager,
	bot *notifier.Bot,
	systemUserID int64,
	systemUserWrappedDK string,
	logger *zap.Logger,
	pollInterval int64,
	conversationProcessDelay int64,
) *Processor {
	return &Processor{
		providerClient:           providerClient,
		sentimentClient:          sentimentClient,
		conversationRepo:         conversationRepo,
		messageRepo:              messageRepo,
		alertRepo:                alertRepo,
		keyManager:               keyManager,
		bot:                      bot,
		systemUserID:             systemUserID,
		systemUserWrappedDK:      systemUserWrappedDK,
		logger:                   logger,
		pollInterval:             pollInterval,
		conversationProcessDelay: conversationProcessDelay,
	}
}

// Run starts the periodic collection and scoring loop.
func (p *Processor) Run(ctx context.Context) {
	p.logger.Info("Message processor started.")

	ticker := time.NewTicker(time.Duration(p.pollInterval) * time.Second)
	defer ticker.Stop()

	// Initial conversation discovery on startup
	p.discoverConversations(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Message processor stopped.")
			return
		case <-ticker.C:
			p.logger.Info("Polling provider for new messages...")

			p.discoverConversations(ctx)

			conversations, err := p.conversationRepo.GetAll()
			if err != nil {
				p.logger.Error("Failed to get all conversations from DB", zap.Error(err))
				continue
			}

			if len(conversations) == 0 {
				p.logger.Info("No conversations known yet.")
				continue
			}

			for _, conv := range conversations {
				if !conv.MonitoringActive {
					p.logger.Debug("Skipping unmonitored conversation", zap.Int64("conversation_id", conv.ID))
					continue
				}

				p.processConversation(ctx, conv)

				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Duration(p.conversationProcessDelay) * time.Second):
				}
			}
		}
	}
}

// discoverConversations registers provider threads we have not seen before.
func (p *Processor) discoverConversations(ctx context.Context) {
	providerCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	threads, err := p.providerClient.GetConversations(providerCtx)
	if err != nil {
		p.logger.Error("Failed to list conversations from provider", zap.Error(err))
		return
	}

	for _, thread := range threads {
		existing, err := p.conversationRepo.GetByProviderConvID(thread.ID)
		if err != nil {
			p.logger.Error("Failed to look up conversation", zap.Int64("provider_conversation_id", thread.ID), zap.Error(err))
			continue
		}
		if existing != nil {
			continue
		}

		conv := &models.Conversation{
			ProviderConvID:   thread.ID,
			BusinessID:       thread.BusinessID,
			Channel:          thread.Channel,
			PhoneNumber:      thread.PhoneNumber,
			StartedAt:        thread.StartedAt,
			Sentiment:        sentiment_client.LabelNeutral,
			MonitoringActive: true,
		}
		if err := p.conversationRepo.Create(conv); err != nil {
			p.logger.Error("Failed to create conversation", zap.Int64("provider_conversation_id", thread.ID), zap.Error(err))
			continue
		}
		p.logger.Info("Discovered new conversation",
			zap.Int64("conversation_id", conv.ID),
			zap.String("business_id", conv.BusinessID),
			zap.String("channel", conv.Channel),
		)
	}
}

func (p *Processor) processConversation(ctx context.Context, conv *models.Conversation) {
	providerCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	incoming, err := p.providerClient.GetMessages(providerCtx, conv.ProviderConvID, conv.LastFetchedMessageID)
	cancel()
	if err != nil {
		p.logger.Error("Failed to get messages from provider", zap.Error(err), zap.Int64("conversation_id", conv.ID))
		return
	}

	if len(incoming) == 0 {
		return
	}

	p.logger.Info("Received messages from provider", zap.Int64("conversation_id", conv.ID), zap.Int("count", len(incoming)))

	maxMessageID := conv.LastFetchedMessageID
	var saved []models.Message
	var batch []sentiment_client.BatchMessage

	for _, msg := range incoming {
		encryptedBody, err := p.keyManager.EncryptBody(msg.Body, p.systemUserID, p.systemUserWrappedDK)
		if err != nil {
			p.logger.Error("Failed to encrypt message body", zap.Error(err), zap.Int64("provider_message_id", msg.ID))
			continue
		}

		providerMessageID := msg.ID
		toSave := models.Message{
			ConversationID:    conv.ID,
			ProviderMessageID: &providerMessageID,
			Direction:         msg.Direction,
			Status:            msg.Status,
			CreatedAt:         msg.CreatedAt,
			BodyEncrypted:     encryptedBody,
			TemplateID:        msg.TemplateID,
		}
		if err := p.messageRepo.Save(&toSave); err != nil {
			p.logger.Error("Failed to save message", zap.Error(err), zap.Int64("provider_message_id", msg.ID))
			continue
		}

		saved = append(saved, toSave)
		// Only inbound customer text carries sentiment worth scoring.
		if msg.Direction == models.DirectionInbound {
			batch = append(batch, sentiment_client.BatchMessage{ID: toSave.ID, Text: msg.Body})
		}
		if msg.ID > maxMessageID {
			maxMessageID = msg.ID
		}
	}

	if len(saved) > 0 {
		p.scoreAndAlert(ctx, conv, saved, batch)
	}

	if maxMessageID > conv.LastFetchedMessageID {
		if err := p.conversationRepo.UpdateLastFetchedMessageID(conv.ID, maxMessageID); err != nil {
			p.logger.Error("Failed to update last fetched message ID", zap.Error(err), zap.Int64("conversation_id", conv.ID))
		}
	}
}

func (p *Processor) scoreAndAlert(ctx context.Context, conv *models.Conversation, saved []models.Message, batch []sentiment_client.BatchMessage) {
	// Response-time stats don't need the scorer; refresh them regardless.
	allMessages, err := p.messageRepo.GetByConversationID(conv.ID)
	if err != nil {
		p.logger.Error("Failed to reload conversation messages", zap.Error(err), zap.Int64("conversation_id", conv.ID))
		return
	}
	avgResponse := averageResponseSeconds(allMessages)

	sentiment := conv.Sentiment
	if p.sentimentClient != nil && len(batch) > 0 {
		scoreCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		scores, err := p.sentimentClient.ScoreBatch(scoreCtx, batch)
		cancel()
		if err != nil {
			p.logger.Error("Failed to score message batch", zap.Error(err), zap.Int64("conversation_id", conv.ID))
		} else {
			sentiment = p.applyScores(conv, saved, scores, sentiment)
		}
	}

	if err := p.conversationRepo.UpdateSentiment(conv.ID, sentiment, avgResponse); err != nil {
		p.logger.Error("Failed to update conversation sentiment", zap.Error(err), zap.Int64("conversation_id", conv.ID))
	}
}

// applyScores stores per-message confidence, raises alerts for strongly
// negative messages and returns the label of the last scored message, which
// becomes the conversation-level sentiment.
func (p *Processor) applyScores(conv *models.Conversation, saved []models.Message, scores []sentiment_client.Score, current string) string {
	byID := make(map[int64]models.Message, len(saved))
	for _, msg := range saved {
		byID[msg.ID] = msg
	}

	sentiment := current
	for _, score := range scores {
		if err := p.messageRepo.UpdateAIConfidence(score.ID, score.Confidence); err != nil {
			p.logger.Error("Failed to store AI confidence", zap.Error(err), zap.Int64("message_id", score.ID))
		}
		sentiment = score.Label

		if score.Label != sentiment_client.LabelNegative || score.Confidence < negativeAlertThreshold {
			continue
		}

		msg, ok := byID[score.ID]
		if !ok {
			continue
		}
		alert := &models.Alert{
			ConversationID:   conv.ID,
			MessageID:        score.ID,
			Sentiment:        score.Label,
			Confidence:       score.Confidence,
			Status:           models.AlertStatusNew,
			ExcerptEncrypted: msg.BodyEncrypted,
		}
		if err := p.alertRepo.Create(alert); err != nil {
			p.logger.Error("Failed to create alert", zap.Error(err), zap.Int64("message_id", score.ID))
			continue
		}
		p.logger.Info("Raised sentiment alert",
			zap.Int64("alert_id", alert.ID),
			zap.Int64("conversation_id", conv.ID),
			zap.Float64("confidence", score.Confidence),
		)

		alert.BusinessID = conv.BusinessID
		alert.PhoneNumber = conv.PhoneNumber
		if err := p.bot.NotifyAlert(alert); err != nil {
			p.logger.Error("Failed to notify ops chat about alert", zap.Error(err))
		}
	}
	return sentiment
}

// averageResponseSeconds measures inbound-to-next-outbound gaps over the
// thread in stored order. Zero when the thread has no completed exchanges.
func averageResponseSeconds(messages []models.Message) float64 {
	var total float64
	var count int
	var pendingInbound *models.Message

	for i := range messages {
		msg := &messages[i]
		switch msg.Direction {
		case models.DirectionInbound:
			if pendingInbound == nil {
				pendingInbound = msg
			}
		case models.DirectionOutbound:
			if pendingInbound != nil {
				gap := msg.CreatedAt.Sub(pendingInbound.CreatedAt).Seconds()
				if gap >= 0 {
					total += gap
					count++
				}
				pendingInbound = nil
			}
		}
	}

	if count == 0 {
		return 0
	}
	return total / float64(count)
}
