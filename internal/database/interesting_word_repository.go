package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/lembra/pkg/models"
)

// InterestingWordRepository handles database operations for interesting words.
// Word uniqueness is not a storage constraint; callers look up before insert.
type InterestingWordRepository struct{}

// NewInterestingWordRepository creates a new repository instance
func NewInterestingWordRepository() *InterestingWordRepository {
	return &InterestingWordRepository{}
}

// GetAll returns all interesting words
func (r *InterestingWordRepository) GetAll(ctx context.Context) ([]models.InterestingWord, error) {
	var words []models.InterestingWord
	err := DB.SelectContext(ctx, &words,
		"SELECT id, word, created_at, is_active FROM interesting_words ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to get interesting words: %w", err)
	}
	return words, nil
}

// GetByWord returns the stored entry for a normalized word, or nil
func (r *InterestingWordRepository) GetByWord(ctx context.Context, word string) (*models.InterestingWord, error) {
	var entry models.InterestingWord
	err := DB.GetContext(ctx, &entry,
		rebind("SELECT id, word, created_at, is_active FROM interesting_words WHERE word = ?"), word)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get interesting word: %w", err)
	}
	return &entry, nil
}

// Create inserts a new interesting word. The word is expected to be
// normalized (lower-cased, trimmed) by the caller.
func (r *InterestingWordRepository) Create(ctx context.Context, word string) (*models.InterestingWord, error) {
	entry := &models.InterestingWord{
		ID:        uuid.NewString(),
		Word:      word,
		CreatedAt: time.Now().UTC(),
		IsActive:  true,
	}
	_, err := DB.ExecContext(ctx,
		rebind("INSERT INTO interesting_words (id, word, created_at, is_active) VALUES (?, ?, ?, ?)"),
		entry.ID, entry.Word, entry.CreatedAt, entry.IsActive)
	if err != nil {
		return nil, fmt.Errorf("failed to create interesting word: %w", err)
	}
	return entry, nil
}

// DeleteByWord removes the entry for a normalized word. Toggling off is a
// hard delete, not a soft-delete.
func (r *InterestingWordRepository) DeleteByWord(ctx context.Context, word string) error {
	_, err := DB.ExecContext(ctx, rebind("DELETE FROM interesting_words WHERE word = ?"), word)
	if err != nil {
		return fmt.Errorf("failed to delete interesting word: %w", err)
	}
	return nil
}
