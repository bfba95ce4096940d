package handler

import (
	"net/http"
	"strconv"

	"backend/internal/crypto"
	"backend/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ConversationHandler interface {
	GetAllConversations(c *gin.Context)
	GetConversationByID(c *gin.Context)
	UpdateMonitoringStatus(c *gin.Context)
}

type conversationHandler struct {
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
	authRepo         repository.AuthRepository
	keyManager       *crypto.KeyManager
	logger           *zap.Logger
}

func NewConversationHandler(
	conversationRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
	authRepo repository.AuthRepository,
	keyManager *crypto.KeyManager,
	logger *zap.Logger,
) ConversationHandler {
	return &conversationHandler{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		authRepo:         authRepo,
		keyManager:       keyManager,
		logger:           logger,
	}
}

// GetAllConversations handles GET /api/conversations
func (h *conversationHandler) GetAllConversations(c *gin.Context) {
	conversations, err := h.conversationRepo.GetAll()
	if err != nil {
		h.logger.Error("Failed to get conversations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve conversations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// GetConversationByID handles GET /api/conversations/:id
func (h *conversationHandler) GetConversationByID(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.logger.Error("Invalid conversation ID", zap.String("id", idStr), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conversation ID"})
		return
	}

	conv, err := h.conversationRepo.GetByID(id)
	if err != nil {
		h.logger.Error("Failed to get conversation", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve conversation"})
		return
	}

	if conv == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}

	messages, err := h.messageRepo.GetByConversationID(id)
	if err != nil {
		h.logger.Error("Failed to get conversation messages", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve conversation"})
		return
	}

	systemUser, err := h.authRepo.GetUserByUsername("admin")
	if err != nil {
		h.logger.Error("Failed to get system user for decryption", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve conversation"})
		return
	}

	for i := range messages {
		body, err := h.keyManager.DecryptBody(messages[i].BodyEncrypted, systemUser.ID, systemUser.DataKeyEncrypted)
		if err != nil {
			h.logger.Error("Failed to decrypt message body", zap.Int64("message_id", messages[i].ID), zap.Error(err))
			continue
		}
		messages[i].Body = body
	}
	conv.Messages = messages
	conv.MessageCount = len(messages)

	c.JSON(http.StatusOK, gin.H{"conversation": conv})
}

// UpdateMonitoringRequest is the PUT /api/conversations/:id/monitoring body.
type UpdateMonitoringRequest struct {
	Active bool `json:"active"`
}

// UpdateMonitoringStatus handles PUT /api/conversations/:id/monitoring
func (h *conversationHandler) UpdateMonitoringStatus(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.logger.Error("Invalid conversation ID", zap.String("id", idStr), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conversation ID"})
		return
	}

	var req UpdateMonitoringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind JSON for monitoring update", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.conversationRepo.UpdateMonitoringStatus(id, req.Active)
	if err != nil {
		h.logger.Error("Failed to update monitoring status", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update monitoring status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Monitoring status updated successfully"})
}
