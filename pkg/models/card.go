package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// FlashCard represents a single study unit pairing a Portuguese phrase
// with its Russian translation and progress metadata
type FlashCard struct {
	ID             string      `json:"id" db:"id"`
	Portuguese     string      `json:"portuguese" db:"portuguese"`
	Russian        string      `json:"russian" db:"russian"`
	Verbs          string      `json:"verbs" db:"verbs"`
	Explanation    string      `json:"explanation" db:"explanation"`
	CategoryID     string      `json:"category_id" db:"category_id"`
	CorrectCount   int         `json:"correct_count" db:"correct_count"`
	IncorrectCount int         `json:"incorrect_count" db:"incorrect_count"`
	LastStudied    *time.Time  `json:"last_studied,omitempty" db:"last_studied"`
	Progress       float64     `json:"progress" db:"progress"` // mastery score, always within [0,100]
	Examples       ExampleList `json:"examples,omitempty" db:"examples"`
}

// ExamplePair is one example sentence pair attached to a card
type ExamplePair struct {
	Portuguese string `json:"portuguese"`
	Russian    string `json:"russian"`
}

// ExampleList stores example pairs as a JSON column
type ExampleList []ExamplePair

// Value implements driver.Valuer for database storage
func (e ExampleList) Value() (driver.Value, error) {
	if len(e) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal examples: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner for database retrieval
func (e *ExampleList) Scan(src interface{}) error {
	if src == nil {
		*e = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported examples column type %T", src)
	}
	if len(data) == 0 {
		*e = nil
		return nil
	}
	return json.Unmarshal(data, e)
}
