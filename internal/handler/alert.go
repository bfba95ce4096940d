package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"backend/internal/crypto"
	"backend/internal/models"
	"backend/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AlertHandler interface {
	GetAllAlerts(c *gin.Context)
	GetAlertByID(c *gin.Context)
	UpdateAlertStatus(c *gin.Context)
}

type alertHandler struct {
	alertRepo  repository.AlertRepository
	authRepo   repository.AuthRepository
	keyManager *crypto.KeyManager
	logger     *zap.Logger
}

func NewAlertHandler(alertRepo repository.AlertRepository, authRepo repository.AuthRepository, keyManager *crypto.KeyManager, logger *zap.Logger) AlertHandler {
	return &alertHandler{
		alertRepo:  alertRepo,
		authRepo:   authRepo,
		keyManager: keyManager,
		logger:     logger,
	}
}

// decryptExcerpt replaces the stored ciphertext with the readable excerpt.
func (h *alertHandler) decryptExcerpt(alert *models.Alert) {
	if alert.ExcerptEncrypted == "" {
		return
	}

	systemUser, err := h.authRepo.GetUserByUsername("admin")
	if err != nil {
		h.logger.Error("Failed to get system user for decryption", zap.Error(err))
		return
	}

	decrypted, err := h.keyManager.DecryptBody(alert.ExcerptEncrypted, systemUser.ID, systemUser.DataKeyEncrypted)
	if err != nil {
		h.logger.Error("Failed to decrypt alert excerpt",
			zap.Int64("alert_id", alert.ID),
			zap.Error(err))
		return
	}

	alert.ExcerptEncrypted = decrypted
}

// GetAllAlerts handles GET /api/alerts
func (h *alertHandler) GetAllAlerts(c *gin.Context) {
	var alerts []*models.Alert
	var err error

	if status := c.Query("status"); status != "" {
		alerts, err = h.alertRepo.GetByStatus(status)
	} else {
		alerts, err = h.alertRepo.GetAll()
	}
	if err != nil {
		h.logger.Error("Failed to get alerts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve alerts"})
		return
	}

	for _, alert := range alerts {
		h.decryptExcerpt(alert)
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// GetAlertByID handles GET /api/alerts/:id
func (h *alertHandler) GetAlertByID(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.logger.Error("Invalid alert ID", zap.String("id", idStr), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alert ID"})
		return
	}

	alert, err := h.alertRepo.GetByID(id)
	if err != nil {
		h.logger.Error("Failed to get alert", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve alert"})
		return
	}

	if alert == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
		return
	}

	h.decryptExcerpt(alert)
	c.JSON(http.StatusOK, gin.H{"alert": alert})
}

// UpdateAlertStatus handles PUT /api/alerts/:id/status
func (h *alertHandler) UpdateAlertStatus(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.logger.Error("Invalid alert ID", zap.String("id", idStr), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alert ID"})
		return
	}

	var input models.UpdateAlertStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Error("Failed to bind alert status update", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.alertRepo.UpdateStatus(id, input.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
			return
		}
		h.logger.Error("Failed to update alert status", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update alert status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Alert status updated successfully"})
}
