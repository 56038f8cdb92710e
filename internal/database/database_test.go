package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/phrasebot/pkg/models"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DATABASE_PATH", ":memory:")
	require.NoError(t, Connect())
	t.Cleanup(func() { Close() })
}

func TestSchemaStatementsPerDriver(t *testing.T) {
	for _, stmt := range schemaStatements("postgres") {
		assert.NotContains(t, stmt, "AUTOINCREMENT")
	}
	assert.Contains(t, schemaStatements("postgres")[0], "BIGSERIAL PRIMARY KEY")

	for _, stmt := range schemaStatements("sqlite3") {
		assert.NotContains(t, stmt, "BIGSERIAL")
	}
	assert.Contains(t, schemaStatements("sqlite3")[0], "INTEGER PRIMARY KEY AUTOINCREMENT")
}

func TestPhraseCreateAndGet(t *testing.T) {
	setupTestDB(t)
	repo := NewPhraseRepository()
	ctx := context.Background()

	phrase := &models.Phrase{
		SourceText: "to make up one's mind",
		TargetText: "принять решение",
		Context:    "I can't make up my mind about the job offer.",
	}
	require.NoError(t, repo.Create(ctx, phrase))
	assert.NotZero(t, phrase.ID)
	assert.Equal(t, models.DifficultyMedium, phrase.Difficulty)
	assert.False(t, phrase.DateAdded.IsZero())

	got, err := repo.GetByID(ctx, phrase.ID)
	require.NoError(t, err)
	assert.Equal(t, "to make up one's mind", got.SourceText)
	assert.Equal(t, 0.0, got.TotalScore)
	assert.False(t, got.Learned)
	assert.True(t, got.IsActive)

	bySource, err := repo.GetBySourceText(ctx, "to make up one's mind")
	require.NoError(t, err)
	assert.Equal(t, phrase.ID, bySource.ID)
}

func TestPhraseCreateDuplicate(t *testing.T) {
	setupTestDB(t)
	repo := NewPhraseRepository()
	ctx := context.Background()

	first := &models.Phrase{SourceText: "break the ice", TargetText: "растопить лёд"}
	require.NoError(t, repo.Create(ctx, first))

	dup := &models.Phrase{SourceText: "break the ice", TargetText: "другой перевод"}
	err := repo.Create(ctx, dup)
	assert.ErrorIs(t, err, ErrDuplicatePhrase)
}

func TestUniqueViolationDetection(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	insert := "INSERT INTO phrases (source_text, target_text) VALUES ($1, $2)"
	_, err := DB.ExecContext(ctx, insert, "break the ice", "растопить лёд")
	require.NoError(t, err)

	// the raw constraint error, as seen when two inserts race past the
	// duplicate pre-check
	_, err = DB.ExecContext(ctx, insert, "break the ice", "другой перевод")
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))

	assert.False(t, isUniqueViolation(nil))
	assert.False(t, isUniqueViolation(context.Canceled))
}

func TestPhraseNotFound(t *testing.T) {
	setupTestDB(t)
	repo := NewPhraseRepository()
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 12345)
	assert.ErrorIs(t, err, ErrPhraseNotFound)

	_, err = repo.GetBySourceText(ctx, "no such phrase")
	assert.ErrorIs(t, err, ErrPhraseNotFound)

	err = repo.Update(ctx, &models.Phrase{ID: 12345, TargetText: "x"})
	assert.ErrorIs(t, err, ErrPhraseNotFound)
}

func TestGetEligibleExcludesLearnedAndInactive(t *testing.T) {
	setupTestDB(t)
	repo := NewPhraseRepository()
	ctx := context.Background()

	active := &models.Phrase{SourceText: "active one", TargetText: "а"}
	learned := &models.Phrase{SourceText: "learned one", TargetText: "б"}
	retired := &models.Phrase{SourceText: "retired one", TargetText: "в"}
	for _, p := range []*models.Phrase{active, learned, retired} {
		require.NoError(t, repo.Create(ctx, p))
	}
	require.NoError(t, repo.SeedProgress(ctx, learned.ID, 3.0, 3.0))
	require.NoError(t, repo.Deactivate(ctx, retired.ID))

	eligible, err := repo.GetEligible(ctx)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, active.ID, eligible[0].ID)
}

func TestApplyScoreAccumulatesAndMarksLearned(t *testing.T) {
	setupTestDB(t)
	repo := NewPhraseRepository()
	ctx := context.Background()

	phrase := &models.Phrase{SourceText: "hit the road", TargetText: "отправиться в путь"}
	require.NoError(t, repo.Create(ctx, phrase))

	upd, err := repo.ApplyScore(ctx, phrase.ID, 1.0, 3.0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, upd.NewTotal)
	assert.False(t, upd.JustLearned)
	assert.True(t, upd.Changed)

	_, err = repo.ApplyScore(ctx, phrase.ID, 1.0, 3.0)
	require.NoError(t, err)

	upd, err = repo.ApplyScore(ctx, phrase.ID, 1.0, 3.0)
	require.NoError(t, err)
	assert.Equal(t, 3.0, upd.NewTotal)
	assert.True(t, upd.JustLearned)

	// further answers no longer move the total
	upd, err = repo.ApplyScore(ctx, phrase.ID, 0.5, 3.0)
	require.NoError(t, err)
	assert.Equal(t, 3.0, upd.NewTotal)
	assert.False(t, upd.JustLearned)
	assert.False(t, upd.Changed)

	got, err := repo.GetByID(ctx, phrase.ID)
	require.NoError(t, err)
	assert.True(t, got.Learned)
	assert.Equal(t, 3.0, got.TotalScore)
}

func TestApplyScoreUnknownPhrase(t *testing.T) {
	setupTestDB(t)
	repo := NewPhraseRepository()

	_, err := repo.ApplyScore(context.Background(), 999, 1.0, 3.0)
	assert.ErrorIs(t, err, ErrPhraseNotFound)
}

func TestPendingExerciseReplaceSemantics(t *testing.T) {
	setupTestDB(t)
	phrases := NewPhraseRepository()
	exercises := NewExerciseRepository()
	ctx := context.Background()

	first := &models.Phrase{SourceText: "first phrase", TargetText: "первая"}
	second := &models.Phrase{SourceText: "second phrase", TargetText: "вторая"}
	require.NoError(t, phrases.Create(ctx, first))
	require.NoError(t, phrases.Create(ctx, second))

	_, err := exercises.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNoPendingExercise)

	require.NoError(t, exercises.Replace(ctx, &models.PendingExercise{
		UserID:     1,
		PhraseID:   first.ID,
		SourceText: first.SourceText,
		TargetText: first.TargetText,
		Direction:  models.DirectionSourceToTarget,
	}))
	require.NoError(t, exercises.Replace(ctx, &models.PendingExercise{
		UserID:     1,
		PhraseID:   second.ID,
		SourceText: second.SourceText,
		TargetText: second.TargetText,
		Direction:  models.DirectionTargetToSource,
	}))

	got, err := exercises.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.PhraseID)
	assert.Equal(t, models.DirectionTargetToSource, got.Direction)

	all, err := exercises.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, exercises.Delete(ctx, 1))
	_, err = exercises.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNoPendingExercise)
}

func TestSettingsDefaultsAndUpdates(t *testing.T) {
	setupTestDB(t)
	repo := NewSettingsRepository()
	ctx := context.Background()

	settings, err := repo.GetOrCreate(ctx, 1)
	require.NoError(t, err)
	assert.False(t, settings.AutoSendEnabled)
	assert.Equal(t, 1, settings.SendIntervalHours)
	assert.Nil(t, settings.LastSentAt)

	require.NoError(t, repo.SetAutoSend(ctx, 1, true))
	require.NoError(t, repo.SetInterval(ctx, 1, 4))
	require.NoError(t, repo.UpdateLastSent(ctx, 1))

	settings, err = repo.GetOrCreate(ctx, 1)
	require.NoError(t, err)
	assert.True(t, settings.AutoSendEnabled)
	assert.Equal(t, 4, settings.SendIntervalHours)
	assert.NotNil(t, settings.LastSentAt)

	enabled, err := repo.ListAutoSendEnabled(ctx)
	require.NoError(t, err)
	assert.Len(t, enabled, 1)

	assert.Error(t, repo.SetInterval(ctx, 1, 0))
}

func TestUserStatistics(t *testing.T) {
	setupTestDB(t)
	phrases := NewPhraseRepository()
	attempts := NewAttemptRepository()
	stats := NewStatsRepository()
	ctx := context.Background()

	a := &models.Phrase{SourceText: "phrase a", TargetText: "а"}
	b := &models.Phrase{SourceText: "phrase b", TargetText: "б"}
	require.NoError(t, phrases.Create(ctx, a))
	require.NoError(t, phrases.Create(ctx, b))
	require.NoError(t, phrases.SeedProgress(ctx, a.ID, 3.0, 3.0))

	require.NoError(t, attempts.Create(ctx, &models.Attempt{UserID: 1, PhraseID: a.ID, Answer: "x", Score: 1.0}))
	require.NoError(t, attempts.Create(ctx, &models.Attempt{UserID: 1, PhraseID: b.ID, Answer: "y", Score: 0.5}))

	got, err := stats.GetUserStatistics(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalPhrases)
	assert.Equal(t, 1, got.LearnedPhrases)
	assert.InDelta(t, 50.0, got.LearningRate, 0.001)
	assert.Equal(t, 2, got.TotalAttempts)
	assert.InDelta(t, 0.75, got.AverageScore, 0.001)
}

func TestAttemptHistory(t *testing.T) {
	setupTestDB(t)
	phrases := NewPhraseRepository()
	attempts := NewAttemptRepository()
	ctx := context.Background()

	p := &models.Phrase{SourceText: "once in a blue moon", TargetText: "крайне редко"}
	require.NoError(t, phrases.Create(ctx, p))

	for _, score := range []float64{0.3, 0.7, 1.0} {
		require.NoError(t, attempts.Create(ctx, &models.Attempt{
			UserID:   1,
			PhraseID: p.ID,
			Answer:   "answer",
			Score:    score,
		}))
	}

	history, err := attempts.ListByPhrase(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.Len(t, history, 2)
	assert.Equal(t, 1.0, history[0].Score)

	count, err := attempts.CountByUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
