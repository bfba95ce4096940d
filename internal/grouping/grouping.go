// Package grouping turns a flat analytics payload of conversation records
// into the per-contact master/detail view the SMS dashboard renders. All
// functions are pure transforms over a snapshot of the input; nothing here
// does I/O or keeps state between calls.
package grouping

import (
	"strings"

	"backend/internal/models"
)

// NormalizePhone reduces a contact identifier to its decimal digits.
// "+1 (555) 123-4567" and "15551234567" normalize to the same key. Input
// with no digits normalizes to "", a valid group key meaning "unknown
// contact": every record without an extractable number lands in that one
// bucket.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}

// GroupByContact partitions records by normalized contact identifier.
// Grouping is stable: within each group records keep their original input
// order, they are not re-sorted by timestamp. Every input record lands in
// exactly one group.
func GroupByContact(records []models.Conversation) map[string][]models.Conversation {
	groups := make(map[string][]models.Conversation)
	for _, record := range records {
		key := NormalizePhone(record.PhoneNumber)
		groups[key] = append(groups[key], record)
	}
	return groups
}

// CanonicalRecord selects the record that represents a group's metadata
// (start time, sentiment, message count, average response time) in the UI:
// the positionally last record, i.e. the one most recently appended to the
// input, not the one with the latest timestamp. If the upstream payload is
// not timestamp-sorted the displayed metadata may not be the chronologically
// latest conversation; that trade is deliberate and we do not re-sort here.
// Returns false for an empty group.
func CanonicalRecord(group []models.Conversation) (models.Conversation, bool) {
	if len(group) == 0 {
		return models.Conversation{}, false
	}
	return group[len(group)-1], true
}

// FlattenMessages concatenates every member record's message list in group
// order. Message lists are not re-sorted, so timestamps across the
// concatenated sub-sequences may interleave; callers needing strict
// chronological order sort explicitly. Nil or empty message lists contribute
// nothing and are never an error.
func FlattenMessages(group []models.Conversation) []models.Message {
	var messages []models.Message
	for _, record := range group {
		messages = append(messages, record.Messages...)
	}
	return messages
}

// Contacts returns the contact identifiers to drive the selector list:
// de-duplicated by normalized key, in first-occurrence order, each shown in
// the original formatting of its first appearance even though grouping uses
// the normalized form.
func Contacts(records []models.Conversation) []string {
	var contacts []string
	seen := make(map[string]bool)
	for _, record := range records {
		key := NormalizePhone(record.PhoneNumber)
		if seen[key] {
			continue
		}
		seen[key] = true
		contacts = append(contacts, record.PhoneNumber)
	}
	return contacts
}
