// Package progress computes the bounded mastery score a card carries.
package progress

import (
	"time"

	"github.com/example/lembra/pkg/models"
)

// CorrectIncrement is added to the mastery score on a correct answer.
// Eight consecutive correct answers take a fresh card from 0 to 100.
const CorrectIncrement = 12.5

// MaxScore is the upper bound of the mastery score
const MaxScore = 100.0

// ApplyAnswer updates a card for one study answer. A correct answer raises
// the mastery score by the fixed increment, clamped at the maximum; an
// incorrect answer leaves the score untouched (no penalty, no decay). The
// answer counters and the last-studied stamp are updated either way.
func ApplyAnswer(card *models.FlashCard, isCorrect bool, now time.Time) {
	card.Progress = Clamp(card.Progress)
	if isCorrect {
		card.Progress = Clamp(card.Progress + CorrectIncrement)
		card.CorrectCount++
	} else {
		card.IncorrectCount++
	}
	card.LastStudied = &now
}

// Clamp bounds a score to [0,100]
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
