package models

import "time"

// InterestingWord is a user-flagged vocabulary item. The word text is stored
// lower-cased and trimmed; uniqueness is enforced by the toggle logic, not by
// a storage constraint.
type InterestingWord struct {
	ID        string    `json:"id" db:"id"`
	Word      string    `json:"word" db:"word"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	IsActive  bool      `json:"is_active" db:"is_active"`
}
