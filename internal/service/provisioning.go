package service

import (
	"errors"
	"fmt"
	"strings"

	"backend/internal/models"
	"backend/internal/permissions"
	"backend/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrMissingBusinessID          = errors.New("business id is required")
	ErrInvalidPasscode            = errors.New("passcode must be exactly 5 digits")
	ErrBusinessAlreadyProvisioned = errors.New("business already has an access code")
	ErrClientNotFound             = errors.New("client not found")
)

// ProvisioningService owns the admin flow that issues per-client access
// codes with feature permissions. Incoming permission maps are round-tripped
// through the schema (unflatten then flatten) so unknown or stale keys never
// reach storage and missing leaves pick up their declared defaults.
type ProvisioningService interface {
	Schema() permissions.Schema
	ProvisionClient(input models.ProvisionClientInput) (*models.Client, error)
	ListClients() ([]*models.Client, error)
	GetClient(publicID string) (*models.Client, error)
	TogglePermission(publicID, path string) (*models.Client, error)
}

type provisioningService struct {
	clientRepo repository.ClientRepository
	schema     permissions.Schema
	logger     *zap.Logger
}

func NewProvisioningService(clientRepo repository.ClientRepository, schema permissions.Schema, logger *zap.Logger) ProvisioningService {
	return &provisioningService{
		clientRepo: clientRepo,
		schema:     schema,
		logger:     logger,
	}
}

func (s *provisioningService) Schema() permissions.Schema {
	return s.schema
}

func (s *provisioningService) ProvisionClient(input models.ProvisionClientInput) (*models.Client, error) {
	businessID := strings.TrimSpace(input.BusinessID)
	if businessID == "" {
		return nil, ErrMissingBusinessID
	}
	if !validPasscode(input.Passcode) {
		return nil, ErrInvalidPasscode
	}

	existing, err := s.clientRepo.GetByBusinessID(businessID)
	if err != nil {
		s.logger.Error("Failed to check existing client", zap.String("business_id", businessID), zap.Error(err))
		return nil, fmt.Errorf("failed to check existing client: %w", err)
	}
	if existing != nil {
		return nil, ErrBusinessAlreadyProvisioned
	}

	clean, err := s.normalize(input.Permissions)
	if err != nil {
		return nil, err
	}

	client := &models.Client{
		PublicID:    uuid.NewString(),
		BusinessID:  businessID,
		Passcode:    input.Passcode,
		Permissions: clean,
	}

	if err := s.clientRepo.Create(client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.logger.Info("Client provisioned",
		zap.String("business_id", client.BusinessID),
		zap.String("public_id", client.PublicID),
	)
	return client, nil
}

func (s *provisioningService) ListClients() ([]*models.Client, error) {
	return s.clientRepo.GetAll()
}

func (s *provisioningService) GetClient(publicID string) (*models.Client, error) {
	client, err := s.clientRepo.GetByPublicID(publicID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, ErrClientNotFound
	}
	return client, nil
}

// TogglePermission flips one leaf on a stored client. The stored flat map is
// unflattened against the schema, toggled, and flattened back; a path the
// schema does not define surfaces permissions.ErrUnknownPath.
func (s *provisioningService) TogglePermission(publicID, path string) (*models.Client, error) {
	client, err := s.GetClient(publicID)
	if err != nil {
		return nil, err
	}

	state := permissions.Unflatten(permissions.Flat(client.Permissions), s.schema)
	next, err := permissions.ToggleLeaf(state, path)
	if err != nil {
		return nil, err
	}

	flat, err := permissions.Flatten(next, s.schema)
	if err != nil {
		return nil, err
	}

	client.Permissions = models.PermissionMap(flat)
	if err := s.clientRepo.UpdatePermissions(publicID, client.Permissions); err != nil {
		return nil, fmt.Errorf("failed to update permissions: %w", err)
	}

	s.logger.Info("Client permission toggled",
		zap.String("public_id", publicID),
		zap.String("path", path),
	)
	return client, nil
}

func (s *provisioningService) normalize(raw models.PermissionMap) (models.PermissionMap, error) {
	state := permissions.Unflatten(permissions.Flat(raw), s.schema)
	flat, err := permissions.Flatten(state, s.schema)
	if err != nil {
		return nil, err
	}
	return models.PermissionMap(flat), nil
}

// validPasscode accepts exactly 5 ASCII digits. Validated locally, before
// anything is stored.
func validPasscode(passcode string) bool {
	if len(passcode) != 5 {
		return false
	}
	for i := 0; i < len(passcode); i++ {
		if passcode[i] < '0' || passcode[i] > '9' {
			return false
		}
	}
	return true
}
