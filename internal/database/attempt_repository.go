package database

import (
	"context"
	"fmt"

	"github.com/example/phrasebot/pkg/models"
)

// AttemptRepository handles the append-only answer log
type AttemptRepository struct{}

// NewAttemptRepository creates a new repository instance
func NewAttemptRepository() *AttemptRepository {
	return &AttemptRepository{}
}

// Create appends an attempt record. Records are never updated or deleted.
func (r *AttemptRepository) Create(ctx context.Context, attempt *models.Attempt) error {
	query := `
		INSERT INTO attempts (user_id, phrase_id, answer, score)
		VALUES ($1, $2, $3, $4)
	`
	result, err := DB.ExecContext(ctx, query,
		attempt.UserID,
		attempt.PhraseID,
		attempt.Answer,
		attempt.Score,
	)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %v", err)
	}

	if DB.DriverName() != "postgres" {
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert ID: %v", err)
		}
		attempt.ID = id
	}

	return nil
}

// ListByPhrase returns the most recent attempts for a phrase, newest first
func (r *AttemptRepository) ListByPhrase(ctx context.Context, phraseID int64, limit int) ([]models.Attempt, error) {
	var attempts []models.Attempt
	query := `
		SELECT * FROM attempts
		WHERE phrase_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	err := DB.SelectContext(ctx, &attempts, query, phraseID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %v", err)
	}
	return attempts, nil
}

// CountByUser returns the total number of attempts a user has made
func (r *AttemptRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := DB.GetContext(ctx, &count, "SELECT COUNT(*) FROM attempts WHERE user_id = $1", userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count attempts: %v", err)
	}
	return count, nil
}
