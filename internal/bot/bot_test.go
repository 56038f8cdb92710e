package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/phrasebot/internal/database"
	"github.com/example/phrasebot/internal/learning"
	"github.com/example/phrasebot/pkg/models"
)

func TestNewRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	_, err := New(nil, nil)
	assert.Error(t, err)
}

func TestNewRequiresDatabase(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	database.DB = nil
	_, err := New(nil, nil)
	assert.Error(t, err)
}

func TestNewParsesAllowedUser(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("DATABASE_PATH", ":memory:")
	require.NoError(t, database.Connect())
	t.Cleanup(func() { database.Close() })

	t.Setenv("ALLOWED_USER_ID", "42")
	b, err := New(learning.NewEngine(nil, nil), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(42), b.allowedUserID)

	t.Setenv("ALLOWED_USER_ID", "not a number")
	_, err = New(learning.NewEngine(nil, nil), nil)
	assert.Error(t, err)
}

func TestFormatResultPerfectAnswer(t *testing.T) {
	text := formatResult(&models.ScoreResult{
		Score:     1.0,
		NewTotal:  2.0,
		Threshold: 3.0,
		Feedback:  "Perfect.",
		Direction: models.DirectionSourceToTarget,
	})

	assert.Contains(t, text, "Score: *1.0*")
	assert.Contains(t, text, "Perfect.")
	assert.Contains(t, text, "Progress: 2.0 / 3.0")
	assert.Contains(t, text, "Next: /reverse")
	assert.NotContains(t, text, "Reference:")
}

func TestFormatResultReverseDirectionHintsForward(t *testing.T) {
	text := formatResult(&models.ScoreResult{
		Score:     0.8,
		NewTotal:  0.8,
		Threshold: 3.0,
		Direction: models.DirectionTargetToSource,
	})

	assert.Contains(t, text, "Next: /phrase")
}

func TestFormatResultUsesConfiguredThreshold(t *testing.T) {
	text := formatResult(&models.ScoreResult{
		Score:     0.5,
		NewTotal:  1.5,
		Threshold: 5.0,
	})

	assert.Contains(t, text, "Progress: 1.5 / 5.0")
}

func TestFormatResultImperfectAnswerShowsReference(t *testing.T) {
	text := formatResult(&models.ScoreResult{
		Score:       0.5,
		NewTotal:    0.5,
		Feedback:    "Partial match.",
		CorrectText: "закончить на сегодня",
		Suggestions: []string{"watch the verb aspect"},
	})

	assert.Contains(t, text, "Reference: *закончить на сегодня*")
	assert.Contains(t, text, "watch the verb aspect")
}

func TestFormatResultMastery(t *testing.T) {
	text := formatResult(&models.ScoreResult{
		Score:       1.0,
		NewTotal:    3.0,
		JustLearned: true,
	})

	assert.Contains(t, text, "Phrase learned")
	assert.NotContains(t, text, "Progress:")
}
