// Package words manages the student's personal list of interesting words
// and the AI study flow built on top of it.
package words

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/example/lembra/internal/ai"
	"github.com/example/lembra/internal/database"
	"github.com/example/lembra/pkg/models"
)

// validationAttempts bounds how many times a rejected phrase is regenerated
// before the last candidate is used anyway
const validationAttempts = 2

// Service implements toggle semantics and the generate-validate study loop
type Service struct {
	repo   *database.InterestingWordRepository
	client *ai.Client
}

// NewService creates a words service
func NewService(repo *database.InterestingWordRepository, client *ai.Client) *Service {
	return &Service{repo: repo, client: client}
}

// Normalize lower-cases and trims a word the way it is stored
func Normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// Toggle flips a word's membership in the interesting list. Returns true
// when the word was added, false when it was removed. Uniqueness is enforced
// here with a lookup before insert, not by a storage constraint; two
// concurrent toggles of the same word can race, which is accepted.
func (s *Service) Toggle(ctx context.Context, word string) (bool, error) {
	normalized := Normalize(word)
	existing, err := s.repo.GetByWord(ctx, normalized)
	if err != nil {
		return false, err
	}
	if existing != nil {
		if err := s.repo.DeleteByWord(ctx, normalized); err != nil {
			return false, err
		}
		return false, nil
	}
	if _, err := s.repo.Create(ctx, normalized); err != nil {
		return false, err
	}
	return true, nil
}

// List returns all stored interesting words
func (s *Service) List(ctx context.Context) ([]models.InterestingWord, error) {
	return s.repo.GetAll(ctx)
}

// WordList returns just the word texts
func (s *Service) WordList(ctx context.Context) ([]string, error) {
	entries, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]string, len(entries))
	for i, e := range entries {
		list[i] = e.Word
	}
	return list, nil
}

// IsInteresting reports whether a word counts as interesting against the
// stored list. Exact matches always count; for words longer than 3
// characters a containment check runs in both directions against stored
// words longer than 3 characters. The containment rule is a heuristic kept
// from the original behavior and produces false positives for unrelated
// words sharing a 4-letter substring.
func IsInteresting(word string, stored []string) bool {
	normalized := Normalize(word)
	for _, w := range stored {
		if w == normalized {
			return true
		}
	}
	if len([]rune(normalized)) > 3 {
		for _, w := range stored {
			if len([]rune(w)) <= 3 {
				continue
			}
			if strings.Contains(normalized, w) || strings.Contains(w, normalized) {
				return true
			}
		}
	}
	return false
}

// UsesInteresting reports whether any whitespace-separated word of the
// phrase matches the stored list under IsInteresting
func UsesInteresting(phrase string, stored []string) bool {
	for _, w := range strings.Fields(phrase) {
		if IsInteresting(w, stored) {
			return true
		}
	}
	return false
}

// GenerateValidated produces a phrase from the interesting-words list,
// routing each candidate through the validator. A rejected candidate causes
// a bounded regeneration; when every attempt is rejected the last candidate
// is used unconditionally rather than surfacing an error.
func (s *Service) GenerateValidated(ctx context.Context, history []models.GeneratedPhrase) (*models.GeneratedPhrase, error) {
	list, err := s.WordList(ctx)
	if err != nil {
		return nil, err
	}

	var phrase *models.GeneratedPhrase
	for attempt := 1; attempt <= validationAttempts; attempt++ {
		phrase, err = s.client.GenerateInterestingWordsPhrase(ctx, list, history)
		if err != nil {
			return nil, err
		}
		if s.client.ValidatePhrase(ctx, phrase) {
			return phrase, nil
		}
		logrus.Debugf("generated phrase rejected on attempt %d/%d", attempt, validationAttempts)
	}
	// All attempts rejected; the quality gate never blocks studying
	return phrase, nil
}
