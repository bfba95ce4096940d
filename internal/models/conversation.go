package models

import "time"

// Message direction relative to the business.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Conversation is one customer interaction thread on a channel. PhoneNumber
// is the contact identifier exactly as the provider delivered it, formatting
// included; grouping by contact happens downstream on the digit-normalized
// form.
type Conversation struct {
	ID                   int64      `db:"id" json:"id"`
	ProviderConvID       int64      `db:"provider_conversation_id" json:"-"`
	BusinessID           string     `db:"business_id" json:"business_id"`
	Channel              string     `db:"channel" json:"channel"` // "sms", "voice" or "email"
	PhoneNumber          string     `db:"phone_number" json:"phone_number"`
	StartedAt            time.Time  `db:"started_at" json:"started_at"`
	Sentiment            string     `db:"sentiment" json:"sentiment"`
	AvgResponseSeconds   float64    `db:"avg_response_seconds" json:"avg_response_seconds"`
	MonitoringActive     bool       `db:"monitoring_active" json:"is_monitored"` // Frontend expects "is_monitored"
	LastFetchedMessageID int64      `db:"last_fetched_message_id" json:"last_fetched_message_id"`

	// Statistics fields (computed from joined queries)
	MessageCount    int        `db:"message_count" json:"message_count"`
	LastMessageDate *time.Time `db:"last_message_date" json:"last_message_date"` // Nullable

	// Populated on detail/analytics reads, never stored directly.
	Messages []Message `db:"-" json:"messages,omitempty"`
}

// Message represents a message stored in the 'messages' table. Body is the
// decrypted text and is only set on read paths that hold the data key;
// BodyEncrypted is what actually lives in the database.
type Message struct {
	ID                int64     `db:"id" json:"id"`
	ConversationID    int64     `db:"conversation_id" json:"conversation_id"`
	ProviderMessageID *int64    `db:"provider_message_id" json:"provider_message_id,omitempty"`
	Direction         string    `db:"direction" json:"direction"` // inbound or outbound
	Status            string    `db:"status" json:"status"`       // queued, sent, delivered, failed
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	BodyEncrypted     string    `db:"body_encrypted" json:"-"`
	Body              string    `db:"-" json:"body"`
	AIConfidence      *float64  `db:"ai_confidence" json:"ai_confidence,omitempty"`
	TemplateID        *string   `db:"template_id" json:"template_id,omitempty"`
}
