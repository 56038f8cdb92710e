package models

import "time"

// Attempt is one scored answer submission. Records are append-only and kept
// for audit and statistics; the selection and scoring paths never read them.
type Attempt struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	PhraseID  int64     `json:"phrase_id" db:"phrase_id"`
	Answer    string    `json:"answer" db:"answer"`
	Score     float64   `json:"score" db:"score"` // normalized level, 0.0-1.0
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
