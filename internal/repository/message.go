package repository

import (
	"database/sql"

	"backend/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type MessageRepository interface {
	Save(msg *models.Message) error
	GetByID(id int64) (*models.Message, error)
	GetByConversationID(conversationID int64) ([]models.Message, error)
	UpdateAIConfidence(id int64, confidence float64) error
}

type messageRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewMessageRepository(db *sqlx.DB, logger *zap.Logger) MessageRepository {
	return &messageRepository{db: db, logger: logger}
}

func (r *messageRepository) Save(msg *models.Message) error {
	query := `INSERT INTO messages (conversation_id, provider_message_id, direction, status, created_at, body_encrypted, ai_confidence, template_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	return r.db.QueryRowx(query, msg.ConversationID, msg.ProviderMessageID, msg.Direction, msg.Status,
		msg.CreatedAt, msg.BodyEncrypted, msg.AIConfidence, msg.TemplateID).StructScan(msg)
}

func (r *messageRepository) GetByID(id int64) (*models.Message, error) {
	var msg models.Message
	query := `SELECT id, conversation_id, provider_message_id, direction, status, created_at, body_encrypted, ai_confidence, template_id FROM messages WHERE id = $1`
	err := r.db.Get(&msg, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// GetByConversationID returns a thread's messages in insertion order. The
// grouping layer concatenates threads without re-sorting, so the order here
// is the order the UI sees.
func (r *messageRepository) GetByConversationID(conversationID int64) ([]models.Message, error) {
	var messages []models.Message
	query := `SELECT id, conversation_id, provider_message_id, direction, status, created_at, body_encrypted, ai_confidence, template_id FROM messages WHERE conversation_id = $1 ORDER BY id`
	err := r.db.Select(&messages, query, conversationID)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) UpdateAIConfidence(id int64, confidence float64) error {
	query := `UPDATE messages SET ai_confidence = $1 WHERE id = $2`
	_, err := r.db.Exec(query, confidence, id)
	return err
}
