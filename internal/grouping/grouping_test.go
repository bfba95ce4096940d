package grouping

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/models"
)

func conv(id int64, phone string, startedAt time.Time, messages ...models.Message) models.Conversation {
	return models.Conversation{
		ID:          id,
		BusinessID:  "biz-1",
		Channel:     "sms",
		PhoneNumber: phone,
		StartedAt:   startedAt,
		Messages:    messages,
	}
}

func msg(id int64, createdAt time.Time) models.Message {
	return models.Message{ID: id, Direction: models.DirectionInbound, Status: "delivered", CreatedAt: createdAt}
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "15551234567", NormalizePhone("+1 (555) 123-4567"))
	assert.Equal(t, "15551234567", NormalizePhone("15551234567"))
	assert.Equal(t, "", NormalizePhone(""))
	assert.Equal(t, "", NormalizePhone("unknown caller"))
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	for _, raw := range []string{"+1 (555) 123-4567", "555.123.4567 ext 9", "", "no digits", "00 49 30 123456"} {
		once := NormalizePhone(raw)
		assert.Equal(t, once, NormalizePhone(once), "normalize(normalize(%q))", raw)
	}
}

func TestGroupByContactFormattingVariants(t *testing.T) {
	now := time.Now()
	records := []models.Conversation{
		conv(1, "+1 (555) 123-4567", now),
		conv(2, "15551234567", now),
		conv(3, "+44 20 7946 0000", now),
	}

	groups := GroupByContact(records)
	require.Len(t, groups, 2)
	require.Len(t, groups["15551234567"], 2)
	assert.Equal(t, int64(1), groups["15551234567"][0].ID)
	assert.Equal(t, int64(2), groups["15551234567"][1].ID)
	require.Len(t, groups["442079460000"], 1)
}

func TestGroupByContactIsAPartition(t *testing.T) {
	now := time.Now()
	records := []models.Conversation{
		conv(1, "555-0001", now),
		conv(2, "555-0002", now),
		conv(3, "(555) 0001", now),
		conv(4, "", now),
		conv(5, "no number", now),
	}

	groups := GroupByContact(records)

	total := 0
	seen := make(map[int64]bool)
	for _, group := range groups {
		total += len(group)
		for _, record := range group {
			assert.False(t, seen[record.ID], "record %d appears twice", record.ID)
			seen[record.ID] = true
		}
	}
	assert.Equal(t, len(records), total)

	// Records without digits collapse into the single "" bucket.
	require.Len(t, groups[""], 2)
}

func TestCanonicalRecordIsPositional(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// Timestamps deliberately out of order: B is the newest but C is last.
	a := conv(1, "555-0001", base.Add(2*time.Hour))
	b := conv(2, "555-0001", base.Add(10*time.Hour))
	c := conv(3, "555-0001", base)

	canonical, ok := CanonicalRecord([]models.Conversation{a, b, c})
	require.True(t, ok)
	assert.Equal(t, int64(3), canonical.ID)

	_, ok = CanonicalRecord(nil)
	assert.False(t, ok)
}

func TestFlattenMessagesKeepsGroupOrder(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	group := []models.Conversation{
		conv(1, "555-0001", base, msg(10, base.Add(5*time.Hour)), msg(11, base.Add(6*time.Hour))),
		conv(2, "555-0001", base, msg(20, base), msg(21, base.Add(time.Minute))),
		conv(3, "555-0001", base, msg(30, base.Add(2*time.Hour)), msg(31, base.Add(3*time.Hour))),
	}

	flat := FlattenMessages(group)
	require.Len(t, flat, 6)

	// Group order, no re-sort: message 10 (late timestamp) still comes first.
	ids := make([]int64, len(flat))
	for i, m := range flat {
		ids[i] = m.ID
	}
	assert.Equal(t, []int64{10, 11, 20, 21, 30, 31}, ids)
}

func TestFlattenMessagesEmptyThreads(t *testing.T) {
	group := []models.Conversation{
		conv(1, "555-0001", time.Now()),
		{ID: 2, PhoneNumber: "555-0001", Messages: nil},
	}
	assert.Empty(t, FlattenMessages(group))
}

func TestContactsFirstSeenFormatting(t *testing.T) {
	now := time.Now()
	records := []models.Conversation{
		conv(1, "+1 (555) 123-4567", now),
		conv(2, "15551234567", now),
		conv(3, "555-0002", now),
	}

	contacts := Contacts(records)
	assert.Equal(t, []string{"+1 (555) 123-4567", "555-0002"}, contacts)
}

func TestContactsEmptyInput(t *testing.T) {
	assert.Empty(t, Contacts(nil))
}
