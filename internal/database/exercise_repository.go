package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/phrasebot/pkg/models"
)

// ErrNoPendingExercise is returned when a user has no exercise awaiting an answer.
var ErrNoPendingExercise = errors.New("no pending exercise")

// ExerciseRepository persists the per-user pending-exercise marker so an
// in-flight exercise survives a restart. The in-process cache in the learning
// engine is only a mirror of these rows.
type ExerciseRepository struct{}

// NewExerciseRepository creates a new repository instance
func NewExerciseRepository() *ExerciseRepository {
	return &ExerciseRepository{}
}

// Replace stores the marker for a user, overwriting any previous one. A fresh
// phrase request silently discards an unanswered exercise.
func (r *ExerciseRepository) Replace(ctx context.Context, exercise *models.PendingExercise) error {
	var query string
	if DB.DriverName() == "postgres" {
		query = `
			INSERT INTO pending_exercises (user_id, phrase_id, source_text, target_text, direction, created_at)
			VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
			ON CONFLICT (user_id) DO UPDATE SET
				phrase_id = EXCLUDED.phrase_id,
				source_text = EXCLUDED.source_text,
				target_text = EXCLUDED.target_text,
				direction = EXCLUDED.direction,
				created_at = CURRENT_TIMESTAMP
		`
	} else {
		query = `
			INSERT OR REPLACE INTO pending_exercises (user_id, phrase_id, source_text, target_text, direction, created_at)
			VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		`
	}

	_, err := DB.ExecContext(ctx, query,
		exercise.UserID,
		exercise.PhraseID,
		exercise.SourceText,
		exercise.TargetText,
		exercise.Direction,
	)
	if err != nil {
		return fmt.Errorf("failed to store pending exercise: %v", err)
	}
	return nil
}

// Get returns the pending exercise for a user, or ErrNoPendingExercise
func (r *ExerciseRepository) Get(ctx context.Context, userID int64) (*models.PendingExercise, error) {
	var exercise models.PendingExercise
	err := DB.GetContext(ctx, &exercise, "SELECT * FROM pending_exercises WHERE user_id = $1", userID)
	if err == sql.ErrNoRows {
		return nil, ErrNoPendingExercise
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending exercise: %v", err)
	}
	return &exercise, nil
}

// Delete removes the marker once the exercise has been scored
func (r *ExerciseRepository) Delete(ctx context.Context, userID int64) error {
	_, err := DB.ExecContext(ctx, "DELETE FROM pending_exercises WHERE user_id = $1", userID)
	if err != nil {
		return fmt.Errorf("failed to delete pending exercise: %v", err)
	}
	return nil
}

// LoadAll returns every persisted marker, used to rebuild the in-process
// cache on startup
func (r *ExerciseRepository) LoadAll(ctx context.Context) ([]models.PendingExercise, error) {
	var exercises []models.PendingExercise
	err := DB.SelectContext(ctx, &exercises, "SELECT * FROM pending_exercises")
	if err != nil {
		return nil, fmt.Errorf("failed to load pending exercises: %v", err)
	}
	return exercises, nil
}
