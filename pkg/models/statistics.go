package models

import "time"

// Statistics summarizes learning progress for the /stats command.
type Statistics struct {
	TotalPhrases   int     `json:"total_phrases" db:"total_phrases"`
	LearnedPhrases int     `json:"learned_phrases" db:"learned_phrases"`
	LearningRate   float64 `json:"learning_rate" db:"learning_rate"` // percent learned
	AverageScore   float64 `json:"average_score" db:"average_score"`
	TotalAttempts  int     `json:"total_attempts" db:"total_attempts"`
}

// UserSettings holds per-user delivery preferences for scheduled exercises.
type UserSettings struct {
	UserID            int64      `json:"user_id" db:"user_id"`
	AutoSendEnabled   bool       `json:"auto_send_enabled" db:"auto_send_enabled"`
	SendIntervalHours int        `json:"send_interval_hours" db:"send_interval_hours"`
	LastSentAt        *time.Time `json:"last_sent_at" db:"last_sent_at"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}
