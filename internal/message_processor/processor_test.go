package message_processor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"backend/internal/models"
)

func m(direction string, at time.Time) models.Message {
	return models.Message{Direction: direction, CreatedAt: at}
}

func TestAverageResponseSeconds(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	messages := []models.Message{
		m(models.DirectionInbound, base),
		m(models.DirectionOutbound, base.Add(30*time.Second)),
		m(models.DirectionInbound, base.Add(2*time.Minute)),
		m(models.DirectionOutbound, base.Add(2*time.Minute+90*time.Second)),
	}

	assert.InDelta(t, 60.0, averageResponseSeconds(messages), 0.001) // (30+90)/2
}

func TestAverageResponseSecondsNoExchanges(t *testing.T) {
	base := time.Now()

	assert.Zero(t, averageResponseSeconds(nil))
	assert.Zero(t, averageResponseSeconds([]models.Message{m(models.DirectionInbound, base)}))
	assert.Zero(t, averageResponseSeconds([]models.Message{m(models.DirectionOutbound, base)}))
}

func TestAverageResponseSecondsIgnoresFollowUps(t *testing.T) {
	base := time.Now()

	// Two inbound messages before one reply count as one exchange, timed
	// from the first inbound.
	messages := []models.Message{
		m(models.DirectionInbound, base),
		m(models.DirectionInbound, base.Add(10*time.Second)),
		m(models.DirectionOutbound, base.Add(40*time.Second)),
	}

	assert.InDelta(t, 40.0, averageResponseSeconds(messages), 0.001)
}
