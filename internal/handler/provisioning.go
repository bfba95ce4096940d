package handler

import (
	"errors"
	"net/http"

	"backend/internal/models"
	"backend/internal/permissions"
	"backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OpsNotifier pushes provisioning events to the ops channel.
type OpsNotifier interface {
	NotifyClientProvisioned(businessID, publicID string) error
}

type ProvisioningHandler interface {
	GetSchema(c *gin.Context)
	CreateClient(c *gin.Context)
	ListClients(c *gin.Context)
	GetClient(c *gin.Context)
	TogglePermission(c *gin.Context)
}

type provisioningHandler struct {
	svc    service.ProvisioningService
	bot    OpsNotifier
	logger *zap.Logger
}

func NewProvisioningHandler(svc service.ProvisioningService, bot OpsNotifier, logger *zap.Logger) ProvisioningHandler {
	return &provisioningHandler{svc: svc, bot: bot, logger: logger}
}

type schemaLeaf struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Default bool   `json:"default"`
}

type schemaSection struct {
	Key    string       `json:"key"`
	Label  string       `json:"label"`
	Leaves []schemaLeaf `json:"leaves"`
}

// GetSchema handles GET /api/admin/permission-schema
func (h *provisioningHandler) GetSchema(c *gin.Context) {
	schema := h.svc.Schema()

	sections := make([]schemaSection, 0, len(schema))
	for _, section := range schema {
		out := schemaSection{Key: section.Key, Label: section.Label}
		for _, leaf := range section.Leaves {
			out.Leaves = append(out.Leaves, schemaLeaf{Key: leaf.Key, Label: leaf.Label, Default: leaf.Default})
		}
		sections = append(sections, out)
	}

	c.JSON(http.StatusOK, gin.H{"sections": sections})
}

// CreateClient handles POST /api/admin/clients
func (h *provisioningHandler) CreateClient(c *gin.Context) {
	var input models.ProvisionClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Error("Failed to bind provisioning request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client, err := h.svc.ProvisionClient(input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingBusinessID), errors.Is(err, service.ErrInvalidPasscode):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrBusinessAlreadyProvisioned):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			h.logger.Error("Failed to provision client", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to provision client"})
		}
		return
	}

	if h.bot != nil {
		if err := h.bot.NotifyClientProvisioned(client.BusinessID, client.PublicID); err != nil {
			h.logger.Error("Failed to notify ops chat about provisioning", zap.Error(err))
		}
	}

	c.JSON(http.StatusCreated, gin.H{"client": client})
}

// ListClients handles GET /api/admin/clients
func (h *provisioningHandler) ListClients(c *gin.Context) {
	clients, err := h.svc.ListClients()
	if err != nil {
		h.logger.Error("Failed to list clients", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list clients"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

// GetClient handles GET /api/admin/clients/:id
func (h *provisioningHandler) GetClient(c *gin.Context) {
	client, err := h.svc.GetClient(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
			return
		}
		h.logger.Error("Failed to get client", zap.String("public_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve client"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"client": client})
}

// TogglePermission handles PATCH /api/admin/clients/:id/permissions/toggle
func (h *provisioningHandler) TogglePermission(c *gin.Context) {
	var input models.TogglePermissionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Error("Failed to bind toggle request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client, err := h.svc.TogglePermission(c.Param("id"), input.Path)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClientNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		case errors.Is(err, permissions.ErrUnknownPath):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("Failed to toggle permission", zap.String("public_id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle permission"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"client": client})
}
