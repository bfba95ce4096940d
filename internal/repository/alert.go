package repository

import (
	"database/sql"

	"backend/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type AlertRepository interface {
	Create(alert *models.Alert) error
	GetByID(id int64) (*models.Alert, error)
	GetAll() ([]*models.Alert, error)
	GetByStatus(status string) ([]*models.Alert, error)
	UpdateStatus(id int64, status string) error
}

type alertRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewAlertRepository(db *sqlx.DB, logger *zap.Logger) AlertRepository {
	return &alertRepository{db: db, logger: logger}
}

func (r *alertRepository) Create(alert *models.Alert) error {
	query := `INSERT INTO alerts (conversation_id, message_id, sentiment, confidence, status, excerpt_encrypted)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	return r.db.QueryRowx(query, alert.ConversationID, alert.MessageID, alert.Sentiment,
		alert.Confidence, alert.Status, alert.ExcerptEncrypted).StructScan(alert)
}

const alertSelect = `
	SELECT
		a.id,
		a.conversation_id,
		a.message_id,
		c.business_id,
		c.phone_number,
		a.sentiment,
		a.confidence,
		a.status,
		a.excerpt_encrypted,
		a.created_at
	FROM alerts a
	JOIN conversations c ON c.id = a.conversation_id
`

func (r *alertRepository) GetByID(id int64) (*models.Alert, error) {
	var alert models.Alert
	err := r.db.Get(&alert, alertSelect+` WHERE a.id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}

func (r *alertRepository) GetAll() ([]*models.Alert, error) {
	var alerts []*models.Alert
	err := r.db.Select(&alerts, alertSelect+` ORDER BY a.created_at DESC`)
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *alertRepository) GetByStatus(status string) ([]*models.Alert, error) {
	var alerts []*models.Alert
	err := r.db.Select(&alerts, alertSelect+` WHERE a.status = $1 ORDER BY a.created_at DESC`, status)
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *alertRepository) UpdateStatus(id int64, status string) error {
	query := `UPDATE alerts SET status = $1 WHERE id = $2`
	result, err := r.db.Exec(query, status, id)
	if err != nil {
		r.logger.Error("Failed to update alert status", zap.Int64("id", id), zap.String("status", status), zap.Error(err))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
