package repository

import (
	"database/sql"
	"time"

	"backend/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type ConversationRepository interface {
	GetByProviderConvID(providerConvID int64) (*models.Conversation, error)
	GetByID(id int64) (*models.Conversation, error)
	Create(conv *models.Conversation) error
	GetAll() ([]*models.Conversation, error)
	GetByBusiness(businessID string, channel string, from, to *time.Time) ([]*models.Conversation, error)
	UpdateMonitoringStatus(id int64, active bool) error
	UpdateLastFetchedMessageID(id, lastFetchedMessageID int64) error
	UpdateSentiment(id int64, sentiment string, avgResponseSeconds float64) error
}

type conversationRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewConversationRepository(db *sqlx.DB, logger *zap.Logger) ConversationRepository {
	return &conversationRepository{db: db, logger: logger}
}

const conversationColumns = `id, provider_conversation_id, business_id, channel, phone_number, started_at, sentiment, avg_response_seconds, monitoring_active, last_fetched_message_id`

func (r *conversationRepository) GetByProviderConvID(providerConvID int64) (*models.Conversation, error) {
	var conv models.Conversation
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE provider_conversation_id = $1`
	err := r.db.Get(&conv, query, providerConvID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Conversation not found
		}
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) GetByID(id int64) (*models.Conversation, error) {
	var conv models.Conversation
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`
	err := r.db.Get(&conv, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) Create(conv *models.Conversation) error {
	query := `INSERT INTO conversations (provider_conversation_id, business_id, channel, phone_number, started_at, sentiment, avg_response_seconds, monitoring_active, last_fetched_message_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	return r.db.QueryRowx(query, conv.ProviderConvID, conv.BusinessID, conv.Channel, conv.PhoneNumber,
		conv.StartedAt, conv.Sentiment, conv.AvgResponseSeconds, conv.MonitoringActive, conv.LastFetchedMessageID).StructScan(conv)
}

func (r *conversationRepository) GetAll() ([]*models.Conversation, error) {
	var convs []*models.Conversation
	query := `
		SELECT
			c.id,
			c.provider_conversation_id,
			c.business_id,
			c.channel,
			c.phone_number,
			c.started_at,
			c.sentiment,
			c.avg_response_seconds,
			c.monitoring_active,
			c.last_fetched_message_id,
			COALESCE(COUNT(m.id), 0) as message_count,
			MAX(m.created_at) as last_message_date
		FROM conversations c
		LEFT JOIN messages m ON c.id = m.conversation_id
		GROUP BY c.id
		ORDER BY c.id
	`
	err := r.db.Select(&convs, query)
	if err != nil {
		return nil, err
	}
	return convs, nil
}

// GetByBusiness returns conversations for one business, preserving the order
// the provider delivered them in (insertion order). The analytics grouping
// relies on that order staying stable, so no timestamp sort here.
func (r *conversationRepository) GetByBusiness(businessID string, channel string, from, to *time.Time) ([]*models.Conversation, error) {
	var convs []*models.Conversation
	query := `
		SELECT
			c.id,
			c.provider_conversation_id,
			c.business_id,
			c.channel,
			c.phone_number,
			c.started_at,
			c.sentiment,
			c.avg_response_seconds,
			c.monitoring_active,
			c.last_fetched_message_id,
			COALESCE(COUNT(m.id), 0) as message_count,
			MAX(m.created_at) as last_message_date
		FROM conversations c
		LEFT JOIN messages m ON c.id = m.conversation_id
		WHERE c.business_id = $1
		  AND c.channel = $2
		  AND ($3::timestamptz IS NULL OR c.started_at >= $3)
		  AND ($4::timestamptz IS NULL OR c.started_at <= $4)
		GROUP BY c.id
		ORDER BY c.id
	`
	err := r.db.Select(&convs, query, businessID, channel, from, to)
	if err != nil {
		return nil, err
	}
	return convs, nil
}

func (r *conversationRepository) UpdateMonitoringStatus(id int64, active bool) error {
	query := `UPDATE conversations SET monitoring_active = $1 WHERE id = $2`
	_, err := r.db.Exec(query, active, id)
	return err
}

func (r *conversationRepository) UpdateLastFetchedMessageID(id, lastFetchedMessageID int64) error {
	query := `UPDATE conversations SET last_fetched_message_id = $1 WHERE id = $2`
	_, err := r.db.Exec(query, lastFetchedMessageID, id)
	return err
}

func (r *conversationRepository) UpdateSentiment(id int64, sentiment string, avgResponseSeconds float64) error {
	query := `UPDATE conversations SET sentiment = $1, avg_response_seconds = $2 WHERE id = $3`
	_, err := r.db.Exec(query, sentiment, avgResponseSeconds, id)
	return err
}
