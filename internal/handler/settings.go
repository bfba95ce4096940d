package handler

import (
	"fmt"
	"net/http"
	"os"

	"backend/internal/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type SettingsHandler interface {
	GetSettings(c *gin.Context)
	UpdateSettings(c *gin.Context)
}

type settingsHandler struct {
	cfg        *config.Config
	configPath string
	logger     *zap.Logger
}

func NewSettingsHandler(cfg *config.Config, configPath string, logger *zap.Logger) SettingsHandler {
	return &settingsHandler{
		cfg:        cfg,
		configPath: configPath,
		logger:     logger,
	}
}

// SettingsResponse represents the current system settings
type SettingsResponse struct {
	AccessControl struct {
		RequirePasscode bool `json:"requirePasscode"`
	} `json:"accessControl"`
	Sentiment struct {
		Enabled bool `json:"enabled"`
	} `json:"sentiment"`
	Notifications struct {
		Enabled bool `json:"enabled"`
	} `json:"notifications"`
}

// GetSettings handles GET /api/settings
func (h *settingsHandler) GetSettings(c *gin.Context) {
	response := SettingsResponse{}
	response.AccessControl.RequirePasscode = h.cfg.AccessControl.RequirePasscode
	response.Sentiment.Enabled = h.cfg.Sentiment.Enabled
	response.Notifications.Enabled = h.cfg.Notifications.Enabled

	c.JSON(http.StatusOK, response)
}

// UpdateSettingsRequest represents the settings update request
type UpdateSettingsRequest struct {
	AccessControl *struct {
		RequirePasscode *bool `json:"requirePasscode"`
	} `json:"accessControl,omitempty"`
	Sentiment *struct {
		Enabled *bool `json:"enabled"`
	} `json:"sentiment,omitempty"`
}

// UpdateSettings handles POST /api/settings. The change is applied to the
// in-memory config and written back to the YAML file so it survives a
// restart.
func (h *settingsHandler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind settings request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Read current config file as generic map to preserve structure
	data, err := os.ReadFile(h.configPath)
	if err != nil {
		h.logger.Error("Failed to read config file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read config file"})
		return
	}

	var configData map[string]interface{}
	if err := yaml.Unmarshal(data, &configData); err != nil {
		h.logger.Error("Failed to parse config file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse config file"})
		return
	}

	if req.AccessControl != nil && req.AccessControl.RequirePasscode != nil {
		section := subMap(configData, "access_control")
		section["require_passcode"] = *req.AccessControl.RequirePasscode
		h.cfg.AccessControl.RequirePasscode = *req.AccessControl.RequirePasscode
		h.logger.Info("Access control setting updated", zap.Bool("require_passcode", *req.AccessControl.RequirePasscode))
	}

	if req.Sentiment != nil && req.Sentiment.Enabled != nil {
		section := subMap(configData, "sentiment")
		section["enabled"] = *req.Sentiment.Enabled
		h.cfg.Sentiment.Enabled = *req.Sentiment.Enabled
		h.logger.Info("Sentiment scoring setting updated", zap.Bool("enabled", *req.Sentiment.Enabled))
	}

	newData, err := yaml.Marshal(&configData)
	if err != nil {
		h.logger.Error("Failed to marshal config", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to marshal config"})
		return
	}

	if err := os.WriteFile(h.configPath, newData, 0644); err != nil {
		h.logger.Error("Failed to write config file", zap.Error(err), zap.String("path", h.configPath))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("Failed to write config file: %v", err),
		})
		return
	}

	h.logger.Info("Settings updated successfully", zap.String("path", h.configPath))

	c.JSON(http.StatusOK, gin.H{
		"message":          "Settings updated successfully",
		"restart_required": false, // Settings applied immediately in-memory
	})
}

func subMap(parent map[string]interface{}, key string) map[string]interface{} {
	child, ok := parent[key].(map[string]interface{})
	if !ok {
		child = make(map[string]interface{})
		parent[key] = child
	}
	return child
}
