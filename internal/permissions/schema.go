package permissions

// DefaultSchema is the current feature-permission table for client access
// codes. Navigation and core SMS analytics default to enabled for a new
// client; voice/email analytics and everything under admin start disabled
// and are switched on per contract.
func DefaultSchema() Schema {
	return Schema{
		{
			Key:   "navigation",
			Label: "Navigation",
			Leaves: []Leaf{
				{Key: "dashboard", Label: "Dashboard", Default: true},
				{Key: "conversations", Label: "Conversations", Default: true},
				{Key: "campaigns", Label: "Campaigns", Default: true},
				{Key: "settings", Label: "Settings", Default: false},
			},
		},
		{
			Key:   "analytics.sms",
			Label: "SMS Analytics",
			Leaves: []Leaf{
				{Key: "volume", Label: "Message Volume", Default: true},
				{Key: "response_time", Label: "Response Time", Default: true},
				{Key: "sentiment", Label: "Sentiment", Default: true},
				{Key: "conversation_viewer", Label: "Conversation Viewer", Default: false},
			},
		},
		{
			Key:   "analytics.voice",
			Label: "Voice Analytics",
			Leaves: []Leaf{
				{Key: "call_volume", Label: "Call Volume", Default: false},
				{Key: "duration", Label: "Call Duration", Default: false},
				{Key: "transcripts", Label: "Transcripts", Default: false},
			},
		},
		{
			Key:   "analytics.email",
			Label: "Email Analytics",
			Leaves: []Leaf{
				{Key: "open_rate", Label: "Open Rate", Default: false},
				{Key: "click_rate", Label: "Click Rate", Default: false},
			},
		},
		{
			Key:   "automation",
			Label: "Automation",
			Leaves: []Leaf{
				{Key: "templates", Label: "Message Templates", Default: true},
				{Key: "auto_reply", Label: "Auto Reply", Default: false},
			},
		},
		{
			Key:   "admin",
			Label: "Administration",
			Leaves: []Leaf{
				{Key: "client_provisioning", Label: "Client Provisioning", Default: false},
				{Key: "user_management", Label: "User Management", Default: false},
			},
		},
	}
}
