package repository

import (
	"database/sql"

	"backend/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ClientRepository persists provisioned client access codes and their
// feature permissions.
type ClientRepository interface {
	Create(client *models.Client) error
	GetByPublicID(publicID string) (*models.Client, error)
	GetByBusinessID(businessID string) (*models.Client, error)
	GetAll() ([]*models.Client, error)
	UpdatePermissions(publicID string, permissions models.PermissionMap) error
}

type clientRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewClientRepository creates a new client repository.
func NewClientRepository(db *sqlx.DB, logger *zap.Logger) ClientRepository {
	return &clientRepository{
		db:     db,
		logger: logger,
	}
}

func (r *clientRepository) Create(client *models.Client) error {
	query := `
		INSERT INTO clients (public_id, business_id, passcode, permissions)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		client.PublicID,
		client.BusinessID,
		client.Passcode,
		client.Permissions,
	).Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)

	if err != nil {
		r.logger.Error("Failed to create client", zap.Error(err))
		return err
	}

	return nil
}

func (r *clientRepository) GetByPublicID(publicID string) (*models.Client, error) {
	var client models.Client
	query := `
		SELECT id, public_id, business_id, passcode, permissions, created_at, updated_at
		FROM clients
		WHERE public_id = $1
	`

	err := r.db.Get(&client, query, publicID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get client by public ID", zap.String("public_id", publicID), zap.Error(err))
		return nil, err
	}

	return &client, nil
}

func (r *clientRepository) GetByBusinessID(businessID string) (*models.Client, error) {
	var client models.Client
	query := `
		SELECT id, public_id, business_id, passcode, permissions, created_at, updated_at
		FROM clients
		WHERE business_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	err := r.db.Get(&client, query, businessID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get client by business ID", zap.String("business_id", businessID), zap.Error(err))
		return nil, err
	}

	return &client, nil
}

func (r *clientRepository) GetAll() ([]*models.Client, error) {
	var clients []*models.Client
	query := `
		SELECT id, public_id, business_id, passcode, permissions, created_at, updated_at
		FROM clients
		ORDER BY created_at DESC
	`

	err := r.db.Select(&clients, query)
	if err != nil {
		r.logger.Error("Failed to list clients", zap.Error(err))
		return nil, err
	}

	return clients, nil
}

func (r *clientRepository) UpdatePermissions(publicID string, permissions models.PermissionMap) error {
	query := `
		UPDATE clients
		SET permissions = $1, updated_at = CURRENT_TIMESTAMP
		WHERE public_id = $2
	`

	result, err := r.db.Exec(query, permissions, publicID)
	if err != nil {
		r.logger.Error("Failed to update client permissions", zap.String("public_id", publicID), zap.Error(err))
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
