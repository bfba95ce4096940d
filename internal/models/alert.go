package models

import "time"

// Alert statuses.
const (
	AlertStatusNew       = "new"
	AlertStatusReviewed  = "reviewed"
	AlertStatusDismissed = "dismissed"
)

// Alert flags a conversation whose messages scored strongly negative
// sentiment, for operator review.
type Alert struct {
	ID               int64     `db:"id" json:"id"`
	ConversationID   int64     `db:"conversation_id" json:"conversation_id"`
	MessageID        int64     `db:"message_id" json:"message_id"`
	BusinessID       string    `db:"business_id" json:"business_id"`
	PhoneNumber      string    `db:"phone_number" json:"phone_number"`
	Sentiment        string    `db:"sentiment" json:"sentiment"`
	Confidence       float64   `db:"confidence" json:"confidence"`
	Status           string    `db:"status" json:"status"` // new, reviewed, dismissed
	ExcerptEncrypted string    `db:"excerpt_encrypted" json:"excerpt"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// UpdateAlertStatusInput is the review action body.
type UpdateAlertStatusInput struct {
	Status string `json:"status" binding:"required,oneof=new reviewed dismissed"`
}
