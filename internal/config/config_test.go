package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	raw := `
database:
  url: "postgres://localhost:5432/app?sslmode=disable"
provider:
  url: "http://provider:8081"
  poll_interval_seconds: 30
  conversation_process_delay_seconds: 5
sentiment:
  url: "http://sentiment:8082"
  enabled: true
notifications:
  enabled: true
  telegram_bot_token: "token"
  ops_chat_id: 42
access_control:
  require_passcode: true
server:
  port: ":9090"
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost:5432/app?sslmode=disable", cfg.Database.URL)
	assert.Equal(t, "http://provider:8081", cfg.Provider.URL)
	assert.Equal(t, int64(30), cfg.Provider.PollInterval)
	assert.Equal(t, int64(5), cfg.Provider.ConversationProcessDelay)
	assert.True(t, cfg.Sentiment.Enabled)
	assert.True(t, cfg.Notifications.Enabled)
	assert.Equal(t, int64(42), cfg.Notifications.OpsChatID)
	assert.True(t, cfg.AccessControl.RequirePasscode)
	assert.Equal(t, ":9090", cfg.Server.Port)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
