package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lembra/pkg/models"
)

func TestApplyAnswerCorrect(t *testing.T) {
	now := time.Now().UTC()
	card := &models.FlashCard{Progress: 0}

	ApplyAnswer(card, true, now)

	assert.Equal(t, 12.5, card.Progress)
	assert.Equal(t, 1, card.CorrectCount)
	assert.Equal(t, 0, card.IncorrectCount)
	require.NotNil(t, card.LastStudied)
	assert.Equal(t, now, *card.LastStudied)
}

func TestApplyAnswerEightCorrectReachesMax(t *testing.T) {
	now := time.Now().UTC()
	card := &models.FlashCard{Progress: 0}

	for i := 0; i < 8; i++ {
		ApplyAnswer(card, true, now)
	}
	assert.Equal(t, MaxScore, card.Progress)
	assert.Equal(t, 8, card.CorrectCount)

	// A ninth correct answer keeps the score at the cap
	ApplyAnswer(card, true, now)
	assert.Equal(t, MaxScore, card.Progress)
	assert.Equal(t, 9, card.CorrectCount)
}

func TestApplyAnswerIncorrectLeavesScore(t *testing.T) {
	now := time.Now().UTC()
	for _, start := range []float64{0, 12.5, 50, 100} {
		card := &models.FlashCard{Progress: start}
		ApplyAnswer(card, false, now)
		assert.Equal(t, start, card.Progress, "score must not move on an incorrect answer")
		assert.Equal(t, 1, card.IncorrectCount)
		assert.Equal(t, 0, card.CorrectCount)
		require.NotNil(t, card.LastStudied)
	}
}

func TestApplyAnswerClampsStoredScore(t *testing.T) {
	now := time.Now().UTC()

	card := &models.FlashCard{Progress: -10}
	ApplyAnswer(card, false, now)
	assert.Equal(t, 0.0, card.Progress)

	card = &models.FlashCard{Progress: 250}
	ApplyAnswer(card, true, now)
	assert.Equal(t, MaxScore, card.Progress)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-1))
	assert.Equal(t, 0.0, Clamp(0))
	assert.Equal(t, 62.5, Clamp(62.5))
	assert.Equal(t, MaxScore, Clamp(100))
	assert.Equal(t, MaxScore, Clamp(100.1))
}
