package learning

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/example/phrasebot/internal/database"
	"github.com/example/phrasebot/internal/progress"
	"github.com/example/phrasebot/internal/scoring"
	"github.com/example/phrasebot/internal/selection"
	"github.com/example/phrasebot/pkg/models"
)

// Oracle grades a translation answer. Implemented by the ai package.
type Oracle interface {
	Analyze(ctx context.Context, source, target, answer string, direction models.Direction) (*models.OracleResult, error)
}

// Exporter mirrors progress changes to an external sheet, best effort
type Exporter interface {
	UpdateProgress(sourceText string, total float64) error
}

// Engine ties phrase selection, grading and progress tracking together.
// It is the single entry point the bot and the scheduler talk to.
type Engine struct {
	phrases   *database.PhraseRepository
	attempts  *database.AttemptRepository
	exercises *database.ExerciseRepository
	stats     *database.StatsRepository
	selector  *selection.Selector
	tracker   *progress.Tracker
	oracle    Oracle
	exporter  Exporter

	mu      sync.Mutex
	pending map[int64]*models.PendingExercise
}

// NewEngine creates the engine. Oracle and exporter may be nil; grading then
// falls back to lexical matching and progress stays local.
func NewEngine(oracle Oracle, exporter Exporter) *Engine {
	phrases := database.NewPhraseRepository()
	return &Engine{
		phrases:   phrases,
		attempts:  database.NewAttemptRepository(),
		exercises: database.NewExerciseRepository(),
		stats:     database.NewStatsRepository(),
		selector:  selection.New(),
		tracker:   progress.NewTracker(phrases),
		oracle:    oracle,
		exporter:  exporter,
		pending:   make(map[int64]*models.PendingExercise),
	}
}

// LoadPending rebuilds the in-process exercise cache from the database,
// called once at startup so unanswered exercises survive a restart
func (e *Engine) LoadPending(ctx context.Context) error {
	stored, err := e.exercises.LoadAll(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range stored {
		ex := stored[i]
		e.pending[ex.UserID] = &ex
	}
	return nil
}

// GetNextPhrase draws a phrase from the eligible pool and records it as the
// user's pending exercise, replacing any unanswered one. Returns nil when
// every phrase has been learned.
func (e *Engine) GetNextPhrase(ctx context.Context, userID int64, policy selection.Policy, direction models.Direction) (*models.ExerciseView, error) {
	pool, err := e.phrases.GetEligible(ctx)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, nil
	}

	var phrase *models.Phrase
	if policy == selection.PolicyWeighted {
		phrase = e.selector.SelectWeighted(time.Now(), pool)
	} else {
		phrase = e.selector.SelectUniform(pool)
	}
	if phrase == nil {
		return nil, nil
	}

	exercise := &models.PendingExercise{
		UserID:     userID,
		PhraseID:   phrase.ID,
		SourceText: phrase.SourceText,
		TargetText: phrase.TargetText,
		Direction:  direction,
		CreatedAt:  time.Now(),
	}
	if err := e.exercises.Replace(ctx, exercise); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.pending[userID] = exercise
	e.mu.Unlock()

	return &models.ExerciseView{
		PhraseID:   phrase.ID,
		Prompt:     exercise.Prompt(),
		Direction:  direction,
		Difficulty: phrase.Difficulty,
	}, nil
}

// SubmitAnswer grades the user's answer against their pending exercise,
// updates progress and clears the marker. Returns
// database.ErrNoPendingExercise when nothing is awaiting an answer.
func (e *Engine) SubmitAnswer(ctx context.Context, userID int64, answer string) (*models.ScoreResult, error) {
	exercise, err := e.currentExercise(ctx, userID)
	if err != nil {
		return nil, err
	}

	verdict, fellBack := e.grade(ctx, exercise, answer)
	score := scoring.Normalize(verdict.Score)

	update, err := e.tracker.Record(ctx, exercise.PhraseID, score)
	if err != nil {
		return nil, err
	}

	// attempt history is audit only, a write failure must not eat the answer
	if err := e.attempts.Create(ctx, &models.Attempt{
		UserID:   userID,
		PhraseID: exercise.PhraseID,
		Answer:   answer,
		Score:    score,
	}); err != nil {
		log.Printf("Failed to record attempt for phrase %d: %v", exercise.PhraseID, err)
	}

	if err := e.exercises.Delete(ctx, userID); err != nil {
		log.Printf("Failed to clear pending exercise for user %d: %v", userID, err)
	}
	e.mu.Lock()
	delete(e.pending, userID)
	e.mu.Unlock()

	if e.exporter != nil && update.Changed {
		if err := e.exporter.UpdateProgress(exercise.SourceText, update.NewTotal); err != nil {
			log.Printf("Failed to export progress for %q: %v", exercise.SourceText, err)
		}
	}

	result := &models.ScoreResult{
		PhraseID:     exercise.PhraseID,
		Direction:    exercise.Direction,
		Score:        score,
		NewTotal:     update.NewTotal,
		Threshold:    e.tracker.Threshold,
		JustLearned:  update.JustLearned,
		Feedback:     verdict.Feedback,
		FellBack:     fellBack,
		Suggestions:  verdict.Suggestions,
		Alternatives: verdict.Alternatives,
		Note:         verdict.Note,
	}
	if score < 1.0 {
		result.CorrectText = exercise.Expected()
	}
	return result, nil
}

// Stats returns the learning overview for a user
func (e *Engine) Stats(ctx context.Context, userID int64) (*models.Statistics, error) {
	return e.stats.GetUserStatistics(ctx, userID)
}

func (e *Engine) currentExercise(ctx context.Context, userID int64) (*models.PendingExercise, error) {
	e.mu.Lock()
	exercise := e.pending[userID]
	e.mu.Unlock()
	if exercise != nil {
		return exercise, nil
	}

	exercise, err := e.exercises.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.pending[userID] = exercise
	e.mu.Unlock()
	return exercise, nil
}

// grade asks the oracle, falling back to lexical overlap when the oracle is
// absent or fails
func (e *Engine) grade(ctx context.Context, exercise *models.PendingExercise, answer string) (*models.OracleResult, bool) {
	if e.oracle != nil {
		verdict, err := e.oracle.Analyze(ctx, exercise.SourceText, exercise.TargetText, answer, exercise.Direction)
		if err == nil && verdict != nil {
			return verdict, false
		}
		if err != nil {
			log.Printf("Oracle failed for phrase %d, using lexical fallback: %v", exercise.PhraseID, err)
		}
	}

	score, feedback := scoring.FallbackScore(answer, exercise.Expected())
	return &models.OracleResult{Score: score, Feedback: feedback}, true
}

// IsNoPending reports whether err means the user has no exercise to answer
func IsNoPending(err error) bool {
	return errors.Is(err, database.ErrNoPendingExercise)
}
