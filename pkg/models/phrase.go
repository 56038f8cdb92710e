package models

import "time"

// Difficulty levels for a phrase
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Phrase represents a source/target text pair to be memorized
type Phrase struct {
	ID         int64     `json:"id" db:"id"`
	SourceText string    `json:"source_text" db:"source_text"`
	TargetText string    `json:"target_text" db:"target_text"`
	Difficulty string    `json:"difficulty" db:"difficulty"` // easy/medium/hard
	Context    string    `json:"context" db:"context"`       // free-text example or usage note
	TotalScore float64   `json:"total_score" db:"total_score"`
	Learned    bool      `json:"learned" db:"learned"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	DateAdded  time.Time `json:"date_added" db:"date_added"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
