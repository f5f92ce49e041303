package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/lembra/pkg/models"
)

// CategoryRepository handles database operations for categories
type CategoryRepository struct{}

// NewCategoryRepository creates a new repository instance
func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{}
}

// GetAll returns all categories ordered by creation time
func (r *CategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := DB.SelectContext(ctx, &categories,
		"SELECT id, name, created_at, word_count FROM categories ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// GetByID returns a category by ID, or nil when it does not exist
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	err := DB.GetContext(ctx, &category,
		rebind("SELECT id, name, created_at, word_count FROM categories WHERE id = ?"), id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// GetByName returns a category by display name, or nil when it does not exist
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	err := DB.GetContext(ctx, &category,
		rebind("SELECT id, name, created_at, word_count FROM categories WHERE name = ?"), name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category by name: %w", err)
	}
	return &category, nil
}

// Create inserts a new category with a zero word count
func (r *CategoryRepository) Create(ctx context.Context, name string) (*models.Category, error) {
	category := &models.Category{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		WordCount: 0,
	}
	_, err := DB.ExecContext(ctx,
		rebind("INSERT INTO categories (id, name, created_at, word_count) VALUES (?, ?, ?, ?)"),
		category.ID, category.Name, category.CreatedAt, category.WordCount)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// Update modifies an existing category
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	result, err := DB.ExecContext(ctx,
		rebind("UPDATE categories SET name = ?, word_count = ? WHERE id = ?"),
		category.Name, category.WordCount, category.ID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("category %s not found", category.ID)
	}
	return nil
}

// Delete removes a category. Card deletion does not cascade here; callers
// that want a cascade delete the cards explicitly first.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	_, err := DB.ExecContext(ctx, rebind("DELETE FROM categories WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

// UpdateWordCount refreshes the denormalized word count
func (r *CategoryRepository) UpdateWordCount(ctx context.Context, id string, count int) error {
	_, err := DB.ExecContext(ctx,
		rebind("UPDATE categories SET word_count = ? WHERE id = ?"), count, id)
	if err != nil {
		return fmt.Errorf("failed to update word count: %w", err)
	}
	return nil
}
