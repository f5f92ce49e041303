package models

import "time"

// Category represents a named, user-created grouping of flash cards
type Category struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	// WordCount is a denormalized display-only count of owned cards. It is
	// refreshed explicitly after membership changes and may transiently
	// diverge from the true count.
	WordCount int `json:"word_count" db:"word_count"`
}
