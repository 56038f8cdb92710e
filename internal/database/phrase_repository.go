package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/example/phrasebot/pkg/models"
)

// Sentinel errors callers branch on with errors.Is.
var (
	// ErrPhraseNotFound is returned for unknown or deactivated phrase ids.
	ErrPhraseNotFound = errors.New("phrase not found")
	// ErrDuplicatePhrase is returned when inserting a phrase whose source text already exists.
	ErrDuplicatePhrase = errors.New("phrase already exists")
)

// PhraseRepository handles database operations for phrases
type PhraseRepository struct{}

// NewPhraseRepository creates a new repository instance
func NewPhraseRepository() *PhraseRepository {
	return &PhraseRepository{}
}

// isUniqueViolation reports whether err is a unique-constraint error from
// either driver. The pre-insert duplicate check is only a fast path; two
// concurrent inserts can both pass it and the loser surfaces here.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// Create inserts a new phrase. Phrases are unique by source text; inserting a
// duplicate returns ErrDuplicatePhrase.
func (r *PhraseRepository) Create(ctx context.Context, phrase *models.Phrase) error {
	existing, err := r.GetBySourceText(ctx, phrase.SourceText)
	if err != nil && !errors.Is(err, ErrPhraseNotFound) {
		return fmt.Errorf("failed to check for duplicate phrase: %v", err)
	}
	if existing != nil {
		return ErrDuplicatePhrase
	}

	if phrase.Difficulty == "" {
		phrase.Difficulty = models.DifficultyMedium
	}

	if DB.DriverName() == "postgres" {
		query := `
			INSERT INTO phrases (source_text, target_text, difficulty, context)
			VALUES ($1, $2, $3, $4)
			RETURNING id, date_added, updated_at
		`
		err := DB.QueryRowContext(ctx, query,
			phrase.SourceText,
			phrase.TargetText,
			phrase.Difficulty,
			phrase.Context,
		).Scan(&phrase.ID, &phrase.DateAdded, &phrase.UpdatedAt)
		if isUniqueViolation(err) {
			return ErrDuplicatePhrase
		}
		return err
	}

	// SQLite has no RETURNING
	query := `
		INSERT INTO phrases (source_text, target_text, difficulty, context)
		VALUES ($1, $2, $3, $4)
	`
	result, err := DB.ExecContext(ctx, query,
		phrase.SourceText,
		phrase.TargetText,
		phrase.Difficulty,
		phrase.Context,
	)
	if isUniqueViolation(err) {
		return ErrDuplicatePhrase
	}
	if err != nil {
		return fmt.Errorf("failed to create phrase: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %v", err)
	}
	phrase.ID = id

	err = DB.QueryRowContext(ctx, "SELECT date_added, updated_at FROM phrases WHERE id = $1", phrase.ID).
		Scan(&phrase.DateAdded, &phrase.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to get timestamps: %v", err)
	}
	phrase.IsActive = true

	return nil
}

// GetByID returns a phrase by ID
func (r *PhraseRepository) GetByID(ctx context.Context, id int64) (*models.Phrase, error) {
	var phrase models.Phrase
	err := DB.GetContext(ctx, &phrase, "SELECT * FROM phrases WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrPhraseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get phrase by ID: %v", err)
	}
	return &phrase, nil
}

// GetBySourceText returns a phrase matching the source text exactly
func (r *PhraseRepository) GetBySourceText(ctx context.Context, sourceText string) (*models.Phrase, error) {
	var phrase models.Phrase
	err := DB.GetContext(ctx, &phrase, "SELECT * FROM phrases WHERE source_text = $1", sourceText)
	if err == sql.ErrNoRows {
		return nil, ErrPhraseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get phrase by source text: %v", err)
	}
	return &phrase, nil
}

// GetEligible returns phrases that are candidates for dispensing: active and
// not yet learned. An empty result is the normal "all caught up" condition.
func (r *PhraseRepository) GetEligible(ctx context.Context) ([]models.Phrase, error) {
	var phrases []models.Phrase
	query := `
		SELECT * FROM phrases
		WHERE is_active AND NOT learned
		ORDER BY id
	`
	err := DB.SelectContext(ctx, &phrases, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get eligible phrases: %v", err)
	}
	return phrases, nil
}

// GetAll returns all phrases, including learned and deactivated ones
func (r *PhraseRepository) GetAll(ctx context.Context) ([]models.Phrase, error) {
	var phrases []models.Phrase
	err := DB.SelectContext(ctx, &phrases, "SELECT * FROM phrases ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to get phrases: %v", err)
	}
	return phrases, nil
}

// Update modifies the text attributes of an existing phrase. Progress fields
// are only touched by ApplyScore and SeedProgress.
func (r *PhraseRepository) Update(ctx context.Context, phrase *models.Phrase) error {
	query := `
		UPDATE phrases SET
			target_text = $1,
			difficulty = $2,
			context = $3,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
	`
	result, err := DB.ExecContext(ctx, query,
		phrase.TargetText,
		phrase.Difficulty,
		phrase.Context,
		phrase.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update phrase: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rows == 0 {
		return ErrPhraseNotFound
	}

	return nil
}

// Deactivate soft-deletes a phrase. Deactivated phrases are excluded from
// selection but their rows and history are kept.
func (r *PhraseRepository) Deactivate(ctx context.Context, id int64) error {
	result, err := DB.ExecContext(ctx,
		"UPDATE phrases SET is_active = FALSE, updated_at = CURRENT_TIMESTAMP WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to deactivate phrase: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rows == 0 {
		return ErrPhraseNotFound
	}

	return nil
}

// SeedProgress sets the cumulative score of a phrase directly, marking it
// learned if the threshold is already met. Used by the bulk feed when an
// imported row carries prior progress.
func (r *PhraseRepository) SeedProgress(ctx context.Context, id int64, total, threshold float64) error {
	learned := total >= threshold
	result, err := DB.ExecContext(ctx,
		"UPDATE phrases SET total_score = $1, learned = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3",
		total, learned, id)
	if err != nil {
		return fmt.Errorf("failed to seed progress: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rows == 0 {
		return ErrPhraseNotFound
	}

	return nil
}

// ApplyScore adds a normalized score to a phrase's cumulative total, flipping
// the learned flag exactly once when the threshold is crossed. The read and
// the write run in one transaction so concurrent submissions for the same
// phrase cannot lose an increment. Once a phrase is learned the call is a
// no-op reporting the unchanged total.
func (r *PhraseRepository) ApplyScore(ctx context.Context, phraseID int64, score, threshold float64) (*models.ProgressUpdate, error) {
	tx, err := DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	var current struct {
		TotalScore float64 `db:"total_score"`
		Learned    bool    `db:"learned"`
		IsActive   bool    `db:"is_active"`
	}
	err = tx.GetContext(ctx, &current,
		"SELECT total_score, learned, is_active FROM phrases WHERE id = $1", phraseID)
	if err == sql.ErrNoRows {
		return nil, ErrPhraseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read phrase progress: %v", err)
	}
	if !current.IsActive {
		return nil, ErrPhraseNotFound
	}

	if current.Learned {
		return &models.ProgressUpdate{
			NewTotal:    current.TotalScore,
			JustLearned: false,
			Changed:     false,
		}, nil
	}

	newTotal := current.TotalScore + score
	justLearned := newTotal >= threshold

	_, err = tx.ExecContext(ctx,
		"UPDATE phrases SET total_score = $1, learned = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3",
		newTotal, justLearned, phraseID)
	if err != nil {
		return nil, fmt.Errorf("failed to update phrase progress: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit progress update: %v", err)
	}

	return &models.ProgressUpdate{
		NewTotal:    newTotal,
		JustLearned: justLearned,
		Changed:     true,
	}, nil
}
