package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/lembra/pkg/models"
)

// CardRepository handles database operations for flash cards
type CardRepository struct{}

// NewCardRepository creates a new repository instance
func NewCardRepository() *CardRepository {
	return &CardRepository{}
}

const cardColumns = `id, portuguese, russian, verbs, explanation, category_id,
	correct_count, incorrect_count, last_studied, progress, examples`

// GetAll returns all cards
func (r *CardRepository) GetAll(ctx context.Context) ([]models.FlashCard, error) {
	var cards []models.FlashCard
	err := DB.SelectContext(ctx, &cards, "SELECT "+cardColumns+" FROM flashcards")
	if err != nil {
		return nil, fmt.Errorf("failed to get cards: %w", err)
	}
	return cards, nil
}

// GetByID returns a card by ID, or nil when it does not exist
func (r *CardRepository) GetByID(ctx context.Context, id string) (*models.FlashCard, error) {
	var card models.FlashCard
	err := DB.GetContext(ctx, &card, rebind("SELECT "+cardColumns+" FROM flashcards WHERE id = ?"), id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return &card, nil
}

// GetByCategory returns all cards owned by a category
func (r *CardRepository) GetByCategory(ctx context.Context, categoryID string) ([]models.FlashCard, error) {
	var cards []models.FlashCard
	err := DB.SelectContext(ctx, &cards,
		rebind("SELECT "+cardColumns+" FROM flashcards WHERE category_id = ?"), categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards by category: %w", err)
	}
	return cards, nil
}

// GetByCategorySortedByProgress returns a category's cards ordered by
// ascending mastery score, worst-known first. Ties keep store iteration order.
func (r *CardRepository) GetByCategorySortedByProgress(ctx context.Context, categoryID string) ([]models.FlashCard, error) {
	var cards []models.FlashCard
	err := DB.SelectContext(ctx, &cards,
		rebind("SELECT "+cardColumns+" FROM flashcards WHERE category_id = ? ORDER BY progress ASC"), categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards sorted by progress: %w", err)
	}
	return cards, nil
}

// Create inserts a new card, assigning an ID when absent
func (r *CardRepository) Create(ctx context.Context, card *models.FlashCard) error {
	if card.ID == "" {
		card.ID = uuid.NewString()
	}
	query := rebind(`
		INSERT INTO flashcards (id, portuguese, russian, verbs, explanation, category_id,
			correct_count, incorrect_count, last_studied, progress, examples)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := DB.ExecContext(ctx, query,
		card.ID,
		card.Portuguese,
		card.Russian,
		card.Verbs,
		card.Explanation,
		card.CategoryID,
		card.CorrectCount,
		card.IncorrectCount,
		card.LastStudied,
		card.Progress,
		card.Examples,
	)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

// Update modifies an existing card
func (r *CardRepository) Update(ctx context.Context, card *models.FlashCard) error {
	query := rebind(`
		UPDATE flashcards SET
			portuguese = ?,
			russian = ?,
			verbs = ?,
			explanation = ?,
			category_id = ?,
			correct_count = ?,
			incorrect_count = ?,
			last_studied = ?,
			progress = ?,
			examples = ?
		WHERE id = ?
	`)
	result, err := DB.ExecContext(ctx, query,
		card.Portuguese,
		card.Russian,
		card.Verbs,
		card.Explanation,
		card.CategoryID,
		card.CorrectCount,
		card.IncorrectCount,
		card.LastStudied,
		card.Progress,
		card.Examples,
		card.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("card %s not found", card.ID)
	}
	return nil
}

// Delete removes a card
func (r *CardRepository) Delete(ctx context.Context, id string) error {
	_, err := DB.ExecContext(ctx, rebind("DELETE FROM flashcards WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return nil
}

// DeleteByCategory removes every card owned by a category
func (r *CardRepository) DeleteByCategory(ctx context.Context, categoryID string) error {
	_, err := DB.ExecContext(ctx, rebind("DELETE FROM flashcards WHERE category_id = ?"), categoryID)
	if err != nil {
		return fmt.Errorf("failed to delete cards by category: %w", err)
	}
	return nil
}

// Clear removes all cards
func (r *CardRepository) Clear(ctx context.Context) error {
	_, err := DB.ExecContext(ctx, "DELETE FROM flashcards")
	if err != nil {
		return fmt.Errorf("failed to clear cards: %w", err)
	}
	return nil
}

// CountByCategory returns the true number of cards owned by a category
func (r *CardRepository) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	var count int
	err := DB.GetContext(ctx, &count,
		rebind("SELECT COUNT(*) FROM flashcards WHERE category_id = ?"), categoryID)
	if err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return count, nil
}
