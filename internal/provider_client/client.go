package provider_client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Conversation is a thread as the messaging provider reports it. This must
// match the structure returned by the provider's /conversations endpoint.
type Conversation struct {
	ID          int64     `json:"id"`
	BusinessID  string    `json:"business_id"`
	Channel     string    `json:"channel"` // "sms", "voice" or "email"
	PhoneNumber string    `json:"phone_number"`
	StartedAt   time.Time `json:"started_at"`
}

// Message is a single message as the provider reports it.
type Message struct {
	ID         int64     `json:"id"`
	Direction  string    `json:"direction"` // "inbound" or "outbound"
	Status     string    `json:"status"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
	TemplateID *string   `json:"template_id,omitempty"`
}

// Client for interacting with the messaging provider API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new provider API client.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// GetConversations fetches every known conversation thread from the provider.
func (c *Client) GetConversations(ctx context.Context) ([]Conversation, error) {
	url := fmt.Sprintf("%s/conversations", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Error("Failed to create request to provider", zap.Error(err))
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to make request to provider", zap.Error(err))
		return nil, fmt.Errorf("failed to make request to provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Provider returned non-OK status", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("provider returned status: %d", resp.StatusCode)
	}

	var response struct {
		Conversations []Conversation `json:"conversations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		c.logger.Error("Failed to decode provider response", zap.Error(err))
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}

	c.logger.Info("Successfully fetched conversations from provider", zap.Int("count", len(response.Conversations)))
	return response.Conversations, nil
}

// GetMessages fetches a conversation's messages newer than the last fetched
// message ID.
func (c *Client) GetMessages(ctx context.Context, conversationID, lastFetchedMessageID int64) ([]Message, error) {
	url := fmt.Sprintf("%s/conversations/%d/messages?after=%d", c.baseURL, conversationID, lastFetchedMessageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Error("Failed to create messages request to provider", zap.Error(err))
		return nil, fmt.Errorf("failed to create messages request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to make messages request to provider", zap.Error(err))
		return nil, fmt.Errorf("failed to make messages request to provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Provider returned non-OK status for messages", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("provider returned status for messages: %d", resp.StatusCode)
	}

	var response struct {
		Messages []Message `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		c.logger.Error("Failed to decode provider messages response", zap.Error(err))
		return nil, fmt.Errorf("failed to decode provider messages response: %w", err)
	}

	return response.Messages, nil
}

// Ping checks whether the provider API is reachable and configured for the
// given channel.
func (c *Client) Ping(ctx context.Context, channel string) error {
	url := fmt.Sprintf("%s/health?channel=%s", c.baseURL, channel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider health returned status: %d", resp.StatusCode)
	}
	return nil
}
