package sentiment_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Sentiment labels the scoring service produces.
const (
	LabelPositive = "positive"
	LabelNeutral  = "neutral"
	LabelNegative = "negative"
)

// Client is a client for the sentiment scoring service API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// BatchMessage is one message in a batch scoring request.
type BatchMessage struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// BatchScoreRequest is the batch scoring request body.
type BatchScoreRequest struct {
	Messages []BatchMessage `json:"messages"`
}

// Score is the result for a single message.
type Score struct {
	ID         int64   `json:"id"`
	Label      string  `json:"label"` // positive, neutral or negative
	Confidence float64 `json:"confidence"`
}

// BatchScoreResponse is the batch scoring response body.
type BatchScoreResponse struct {
	Results          []Score `json:"results"`
	Total            int     `json:"total"`
	ProcessingTimeMs float64 `json:"processing_time_ms"`
}

// NewClient creates a new sentiment service client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ScoreBatch scores a batch of message texts.
func (c *Client) ScoreBatch(ctx context.Context, messages []BatchMessage) ([]Score, error) {
	if len(messages) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(BatchScoreRequest{Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch request: %w", err)
	}

	url := fmt.Sprintf("%s/score/batch", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create batch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call sentiment service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sentiment service returned status: %d", resp.StatusCode)
	}

	var response BatchScoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode sentiment response: %w", err)
	}

	return response.Results, nil
}

// Health checks whether the sentiment service is up.
func (c *Client) Health(ctx context.Context) error {
	url := fmt.Sprintf("%s/health", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach sentiment service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sentiment service health returned status: %d", resp.StatusCode)
	}
	return nil
}
